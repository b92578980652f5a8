// Package transport delivers framed print payloads to physical devices.
package transport

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/model"
)

const (
	dialTimeout = 5 * time.Second
	drainPause  = 500 * time.Millisecond
)

// Transport pushes one complete payload to one device. The write returning
// is the completion signal the dispatcher races against its timeout.
type Transport interface {
	Deliver(ctx context.Context, device model.Device, payload []byte) error
}

// TCP writes payloads to the device's raw print socket (the 9100 path).
type TCP struct{}

func NewTCP() *TCP {
	return &TCP{}
}

func (t *TCP) Deliver(ctx context.Context, device model.Device, payload []byte) error {
	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", device.Addr)
	if err != nil {
		return fmt.Errorf("connect %s: %w", device.Addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetWriteDeadline(deadline)
	}
	if _, err := conn.Write(payload); err != nil {
		return fmt.Errorf("write to %s: %w", device.Addr, err)
	}

	// Printer firmware drops the tail of a job if the socket closes the
	// instant the last byte is buffered. Hold briefly before hanging up.
	select {
	case <-time.After(drainPause):
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}
