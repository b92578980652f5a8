// Package printing is the boundary the UI layer talks to: single-ticket
// silent print, whole-order fan-out with partial-success aggregation, and
// device diagnostics.
package printing

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/dispatch"
	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/model"
	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/policy"
	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/registry"
	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/render"
	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/routing"
)

// Event is one job lifecycle notification pushed to the UI event stream.
type Event struct {
	Type      string    `json:"type"` // job_queued | job_settled
	JobID     string    `json:"jobId"`
	Kind      string    `json:"kind"`
	Device    string    `json:"device,omitempty"`
	Success   bool      `json:"success"`
	ErrorKind string    `json:"errorKind,omitempty"`
	Message   string    `json:"message,omitempty"`
	At        time.Time `json:"at"`
}

// EventSink receives job events. Publish must not block dispatch.
type EventSink interface {
	Publish(Event)
}

// NopSink drops events; used when no UI stream is attached.
type NopSink struct{}

func (NopSink) Publish(Event) {}

// Service wires the registry, selection policy and dispatcher behind the
// boundary operations.
type Service struct {
	registry   *registry.Registry
	selector   *policy.Selector
	dispatcher *dispatch.Dispatcher
	events     EventSink
	location   string
	log        *zap.Logger
}

func NewService(
	reg *registry.Registry,
	selector *policy.Selector,
	dispatcher *dispatch.Dispatcher,
	events EventSink,
	location string,
	log *zap.Logger,
) *Service {
	if events == nil {
		events = NopSink{}
	}
	return &Service{
		registry:   reg,
		selector:   selector,
		dispatcher: dispatcher,
		events:     events,
		location:   location,
		log:        log,
	}
}

// PrintTicket silently prints caller-supplied ticket content, to the named
// device when given, else to whatever the selection policy picks.
func (s *Service) PrintTicket(ctx context.Context, content string, targetDevice string) model.JobResult {
	job := model.NewTicketJob(model.KindKitchenTicket, render.Freeform(content), targetDevice)
	return s.dispatchAndNotify(ctx, job)
}

// PrintOrderTickets classifies the order, renders one ticket per occupied
// routing group and dispatches all of them concurrently. Results are
// aggregated only after every job settles; partial success is reported as
// such, never as an outright failure.
func (s *Service) PrintOrderTickets(ctx context.Context, order *model.Order, catalog routing.Catalog) model.OrderPrintSummary {
	groups := routing.Classify(order.Items, catalog)
	renderCtx := render.Context{
		Location:  s.locationFor(order),
		Table:     order.Table,
		Timestamp: order.CreatedAt,
	}

	type settled struct {
		group  model.RoutingGroup
		result model.JobResult
	}
	results := make(chan settled, len(groups))
	var wg sync.WaitGroup

	for group, items := range groups {
		content := render.Ticket(group, items, renderCtx)
		job := model.NewTicketJob(model.KindForGroup(group), content, "")
		wg.Add(1)
		go func(g model.RoutingGroup, j model.TicketJob) {
			defer wg.Done()
			results <- settled{group: g, result: s.dispatchAndNotify(ctx, j)}
		}(group, job)
	}
	wg.Wait()
	close(results)

	summary := model.OrderPrintSummary{
		Total:    len(groups),
		PerGroup: make(map[string]model.JobResult, len(groups)),
	}
	for r := range results {
		summary.PerGroup[string(r.group)] = r.result
		if r.result.Success {
			summary.Printed++
		}
	}
	summary.Success = summary.Printed > 0
	return summary
}

// PrintBill renders and prints the customer bill for a finalized order.
func (s *Service) PrintBill(ctx context.Context, order *model.Order, targetDevice string) model.JobResult {
	content := render.Bill(order, render.Context{
		Location:  s.locationFor(order),
		Table:     order.Table,
		OrderRef:  order.ID.String(),
		Timestamp: order.CreatedAt,
	})
	job := model.NewTicketJob(model.KindBill, content, targetDevice)
	return s.dispatchAndNotify(ctx, job)
}

// ListDevices reports the current registry snapshot for UI display. An
// enumeration failure degrades to an empty, unavailable list.
func (s *Service) ListDevices(ctx context.Context) model.DeviceList {
	devices, err := s.registry.CachedOrFresh(ctx)
	if err != nil {
		s.log.Warn("device enumeration failed", zap.Error(err))
		return model.DeviceList{Available: false, Devices: []model.DeviceInfo{}}
	}

	list := model.DeviceList{
		Available: len(devices) > 0,
		Devices:   make([]model.DeviceInfo, 0, len(devices)),
	}
	for _, d := range devices {
		if d.Default && list.DefaultDevice == "" {
			list.DefaultDevice = d.Name
		}
		list.Devices = append(list.Devices, model.DeviceInfo{
			Name:      d.Name,
			Status:    d.Status.String(),
			IsDefault: d.Default,
		})
	}
	return list
}

// TestDevice probes a single named device. The status is taken from a fresh
// enumeration so the answer reflects the hardware now, not the cache.
func (s *Service) TestDevice(ctx context.Context, name string) (model.DeviceProbe, error) {
	devices, err := s.registry.ListDevices(ctx)
	if err != nil {
		return model.DeviceProbe{Usable: false, Status: model.StatusUnknown.String()}, err
	}
	for _, d := range devices {
		if d.Name == name {
			return model.DeviceProbe{
				Usable: s.selector.Usable(d.Status),
				Status: d.Status.String(),
			}, nil
		}
	}
	return model.DeviceProbe{Usable: false, Status: model.StatusUnknown.String()}, model.ErrNoDeviceFound
}

func (s *Service) dispatchAndNotify(ctx context.Context, job model.TicketJob) model.JobResult {
	s.events.Publish(Event{
		Type:  "job_queued",
		JobID: job.ID.String(),
		Kind:  string(job.Kind),
		At:    time.Now(),
	})
	result := <-s.dispatcher.Dispatch(ctx, job)
	s.events.Publish(Event{
		Type:      "job_settled",
		JobID:     job.ID.String(),
		Kind:      string(job.Kind),
		Device:    result.Device,
		Success:   result.Success,
		ErrorKind: string(result.ErrorKind),
		Message:   result.Message,
		At:        time.Now(),
	})
	return result
}

func (s *Service) locationFor(order *model.Order) string {
	if order.Location != "" {
		return order.Location
	}
	return s.location
}
