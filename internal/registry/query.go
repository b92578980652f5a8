package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/model"
)

const (
	dialTimeout   = 300 * time.Millisecond
	statusTimeout = 500 * time.Millisecond
)

// deviceEntry is one record of the devices.json file.
type deviceEntry struct {
	Name      string `json:"name"`
	Addr      string `json:"addr"`
	Default   bool   `json:"default,omitempty"`
	WidthDots int    `json:"widthDots,omitempty"`
	Protocol  string `json:"protocol,omitempty"`
}

// FileProber enumerates devices from a JSON device file and probes each one
// live for status over its raw print socket.
type FileProber struct {
	path  string
	probe func(addr string) model.DeviceStatus
	log   *zap.Logger
}

// NewFileProber builds the production querier for a device file path.
func NewFileProber(path string, log *zap.Logger) *FileProber {
	return &FileProber{path: path, probe: probeStatus, log: log}
}

// Query reads the device file and probes every entry. A missing or
// unreadable file is an enumeration failure; an unreachable device is not —
// it just reports a degraded status.
func (p *FileProber) Query(ctx context.Context) ([]model.Device, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("read device file: %w", err)
	}
	var entries []deviceEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse device file: %w", err)
	}

	devices := make([]model.Device, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		width := e.WidthDots
		if width == 0 {
			width = 576 // 80mm heads default to 576 dots
		}
		protocol := e.Protocol
		if protocol == "" {
			protocol = model.ProtocolESCPOS
		}
		d := model.Device{
			Name:      e.Name,
			Addr:      e.Addr,
			Default:   e.Default,
			WidthDots: width,
			Protocol:  protocol,
			Status:    p.probe(e.Addr),
		}
		p.log.Debug("device probed",
			zap.String("device", d.Name),
			zap.String("status", d.Status.String()))
		devices = append(devices, d)
	}
	return devices, nil
}

// probeStatus dials the raw print socket and, when connected, asks for the
// ESC/POS transmit-status byte (DLE EOT 1). The reply bits are vendor
// hints at best; the mapping below is deliberately coarse and the selection
// policy stays permissive about whatever comes out of it.
//
//	dial refused        -> error
//	dial timed out      -> unknown (device may be mid-job and not accepting)
//	no status reply     -> idle (socket open, printer mute on DLE EOT)
//	bit 3 set (offline) -> paused
//	bit 5 set (cover)   -> busy
//	bit 6 set (feeding) -> processing
func probeStatus(addr string) model.DeviceStatus {
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return model.StatusUnknown
		}
		return model.StatusError
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(statusTimeout))
	if _, err := conn.Write([]byte{0x10, 0x04, 0x01}); err != nil {
		return model.StatusError
	}
	reply := make([]byte, 1)
	if _, err := conn.Read(reply); err != nil {
		return model.StatusIdle
	}
	switch {
	case reply[0]&0x08 != 0:
		return model.StatusPaused
	case reply[0]&0x20 != 0:
		return model.StatusBusy
	case reply[0]&0x40 != 0:
		return model.StatusProcessing
	default:
		return model.StatusIdle
	}
}
