package model

// DeviceStatus is the status the registry last observed for a device.
// Platform status reporting is unreliable; these values are treated as
// hints, not truth. The selection policy owns the usability table.
type DeviceStatus int

const (
	StatusUnknown DeviceStatus = iota
	StatusIdle
	StatusBusy
	StatusProcessing
	StatusPaused
	StatusError
)

var statusNames = map[DeviceStatus]string{
	StatusUnknown:    "unknown",
	StatusIdle:       "idle",
	StatusBusy:       "busy",
	StatusProcessing: "processing",
	StatusPaused:     "paused",
	StatusError:      "error",
}

func (s DeviceStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// Device protocols: how rendered output is delivered to the hardware.
const (
	ProtocolESCPOS = "escpos" // raster bytes to a raw 9100 socket (default)
	ProtocolPDF    = "pdf"    // the printToPDF payload sent as-is
)

// Device is one immutable registry snapshot entry. Each registry query
// produces a fresh list; entries are never mutated in place.
type Device struct {
	Name      string       `json:"name"`
	Addr      string       `json:"addr"` // host:port of the raw print socket
	Status    DeviceStatus `json:"status"`
	Default   bool         `json:"default"`
	WidthDots int          `json:"widthDots"` // raster width, 384 or 576
	Protocol  string       `json:"protocol,omitempty"`
}
