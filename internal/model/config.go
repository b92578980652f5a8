package model

import (
	"os"
	"strings"
	"time"
)

// Config carries the process configuration. Values come from defaults
// overridden by environment variables (loaded from .env at startup); the
// device file and menu catalog are separate JSON files next to it.
type Config struct {
	ListenAddr  string
	Location    string // printed in ticket headers
	DeviceFile  string
	CatalogFile string
	BillsFile   string
	BillPDFDir  string
	ChromePath  string // empty = auto-detect

	DeviceTTL   time.Duration // device cache time-to-live
	RenderDelay time.Duration // layout settle delay before printing
	JobTimeout  time.Duration // wall-clock bound per print job

	// DevicePatterns is the ordered, case-insensitive substring list the
	// selection policy prefers when no default device is flagged.
	DevicePatterns []string
}

// DefaultDevicePatterns covers ticket/thermal hardware naming seen in the
// field: generic terms first, vendor model prefixes after.
var DefaultDevicePatterns = []string{
	"thermal", "pos", "receipt", "ticket",
	"epson", "tm-", "star", "bixolon", "citizen",
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		ListenAddr:     ":8090",
		Location:       "COUNTER-1",
		DeviceFile:     "config/devices.json",
		CatalogFile:    "config/catalog.json",
		BillsFile:      "data/bills.json",
		BillPDFDir:     "data/bills",
		DeviceTTL:      60 * time.Second,
		RenderDelay:    1500 * time.Millisecond,
		JobTimeout:     20 * time.Second,
		DevicePatterns: DefaultDevicePatterns,
	}
}

// LoadConfig applies SWIFTBILL_* environment overrides on top of defaults.
func LoadConfig() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("SWIFTBILL_LISTEN"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("SWIFTBILL_LOCATION"); v != "" {
		cfg.Location = v
	}
	if v := os.Getenv("SWIFTBILL_DEVICE_FILE"); v != "" {
		cfg.DeviceFile = v
	}
	if v := os.Getenv("SWIFTBILL_CATALOG_FILE"); v != "" {
		cfg.CatalogFile = v
	}
	if v := os.Getenv("SWIFTBILL_BILLS_FILE"); v != "" {
		cfg.BillsFile = v
	}
	if v := os.Getenv("SWIFTBILL_BILL_PDF_DIR"); v != "" {
		cfg.BillPDFDir = v
	}
	if v := os.Getenv("SWIFTBILL_CHROME_PATH"); v != "" {
		cfg.ChromePath = v
	}
	if v := os.Getenv("SWIFTBILL_DEVICE_PATTERNS"); v != "" {
		var patterns []string
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				patterns = append(patterns, p)
			}
		}
		if len(patterns) > 0 {
			cfg.DevicePatterns = patterns
		}
	}
	if v := os.Getenv("SWIFTBILL_JOB_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.JobTimeout = d
		}
	}
	if v := os.Getenv("SWIFTBILL_RENDER_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RenderDelay = d
		}
	}
	return cfg
}
