// Package policy picks one target device when the caller names none.
// The procedure is deterministic and deliberately permissive: platform
// status codes are unreliable, so an implausible-looking device list still
// yields a best-effort pick rather than a refusal.
package policy

import (
	"strings"

	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/model"
)

// usableStatus is the explicit usability table. Paused counts as usable
// because most firmware keeps queuing output while paused; error and
// unknown are excluded here but still reachable through the raw fallback.
var usableStatus = map[model.DeviceStatus]bool{
	model.StatusIdle:       true,
	model.StatusBusy:       true,
	model.StatusProcessing: true,
	model.StatusPaused:     true,
}

// Selector chooses devices using an ordered list of case-insensitive name
// substrings associated with ticket/thermal hardware.
type Selector struct {
	patterns []string
}

// NewSelector builds a selector. An empty pattern list falls back to
// model.DefaultDevicePatterns.
func NewSelector(patterns []string) *Selector {
	if len(patterns) == 0 {
		patterns = model.DefaultDevicePatterns
	}
	return &Selector{patterns: patterns}
}

// Usable reports whether a status is in the usability table.
func (s *Selector) Usable(status model.DeviceStatus) bool {
	return usableStatus[status]
}

// Select picks one device, in order:
//  1. empty list -> model.ErrNoDeviceFound
//  2. exactly one device flagged default -> that device
//  3. among usable-status devices, the first name-pattern match,
//     else the first usable device in registry order
//  4. nothing usable -> the first device of the raw list, best-effort
//
// Ambiguity never errors; only an empty list does.
func (s *Selector) Select(devices []model.Device) (model.Device, error) {
	if len(devices) == 0 {
		return model.Device{}, model.ErrNoDeviceFound
	}

	var defaults []model.Device
	for _, d := range devices {
		if d.Default {
			defaults = append(defaults, d)
		}
	}
	if len(defaults) == 1 {
		return defaults[0], nil
	}

	var usable []model.Device
	for _, d := range devices {
		if usableStatus[d.Status] {
			usable = append(usable, d)
		}
	}
	if len(usable) == 0 {
		return devices[0], nil
	}

	for _, pattern := range s.patterns {
		for _, d := range usable {
			if strings.Contains(strings.ToLower(d.Name), strings.ToLower(pattern)) {
				return d, nil
			}
		}
	}
	return usable[0], nil
}
