package model

import (
	"time"

	"github.com/google/uuid"
)

// TicketKind tells the renderer and dispatcher what document a job carries.
type TicketKind string

const (
	KindKitchenTicket TicketKind = "kitchen-ticket"
	KindDrinksTicket  TicketKind = "drinks-ticket"
	KindBill          TicketKind = "bill"
)

// KindForGroup maps a routing group to the ticket kind printed for it.
func KindForGroup(g RoutingGroup) TicketKind {
	if g == GroupDrinks {
		return KindDrinksTicket
	}
	return KindKitchenTicket
}

// TicketContent is the renderer's output: the fixed-width text layout plus
// the HTML document loaded into the rendering surface.
type TicketContent struct {
	Kind TicketKind
	Text string
	HTML string
}

// TicketJob is one dispatch request. It lives for the duration of a single
// dispatch call and is discarded once a JobResult is produced.
type TicketJob struct {
	ID           uuid.UUID
	Kind         TicketKind
	Content      TicketContent
	TargetDevice string // explicit device name, empty = selection policy
	CreatedAt    time.Time
}

// NewTicketJob stamps a job with an id and creation time. The dispatch
// timeout is measured from CreatedAt.
func NewTicketJob(kind TicketKind, content TicketContent, target string) TicketJob {
	return TicketJob{
		ID:           uuid.New(),
		Kind:         kind,
		Content:      content,
		TargetDevice: target,
		CreatedAt:    time.Now(),
	}
}

// JobResult is the immutable outcome of one dispatch. Every failure mode is
// folded into ErrorKind/Message here; dispatch errors never propagate as
// process-fatal errors.
type JobResult struct {
	Success   bool      `json:"success"`
	Device    string    `json:"device,omitempty"`
	ErrorKind ErrorKind `json:"errorKind,omitempty"`
	Message   string    `json:"message,omitempty"`
}

// OrderPrintSummary aggregates the results of one order's concurrent ticket
// jobs. Partial success is a valid terminal outcome: Success is true when at
// least one sub-job printed.
type OrderPrintSummary struct {
	Success  bool                 `json:"success"`
	Printed  int                  `json:"printed"`
	Total    int                  `json:"total"`
	PerGroup map[string]JobResult `json:"perGroup"`
}

// DeviceInfo is the UI-facing projection of a registry entry.
type DeviceInfo struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	IsDefault bool   `json:"isDefault"`
}

// DeviceList is the ListDevices boundary response.
type DeviceList struct {
	Available     bool         `json:"available"`
	DefaultDevice string       `json:"defaultDevice,omitempty"`
	Devices       []DeviceInfo `json:"devices"`
}

// DeviceProbe is the TestDevice boundary response.
type DeviceProbe struct {
	Usable bool   `json:"usable"`
	Status string `json:"status"`
}
