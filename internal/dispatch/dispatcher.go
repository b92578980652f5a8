// Package dispatch executes print jobs end-to-end. This is the single
// implementation of the silent-print flow: resolve device, allocate an
// ephemeral rendering surface, load content, wait out layout settling,
// issue the print instruction, deliver, release. A wall-clock timeout
// measured from job creation races the normal completion path; whichever
// side loses, the surface is released exactly once.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/escpos"
	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/model"
	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/policy"
	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/registry"
	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/surface"
	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/transport"
)

// Dispatcher runs jobs. All fields are read-only after construction, so one
// dispatcher serves any number of concurrent jobs.
type Dispatcher struct {
	surfaces    surface.Factory
	transport   transport.Transport
	registry    *registry.Registry
	selector    *policy.Selector
	renderDelay time.Duration
	timeout     time.Duration
	log         *zap.Logger
}

func New(
	surfaces surface.Factory,
	tr transport.Transport,
	reg *registry.Registry,
	selector *policy.Selector,
	renderDelay, timeout time.Duration,
	log *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		surfaces:    surfaces,
		transport:   tr,
		registry:    reg,
		selector:    selector,
		renderDelay: renderDelay,
		timeout:     timeout,
		log:         log,
	}
}

// Dispatch runs the job asynchronously and delivers exactly one result on
// the returned channel. The caller's other jobs are never blocked; errors
// of every kind are folded into the JobResult.
func (d *Dispatcher) Dispatch(ctx context.Context, job model.TicketJob) <-chan model.JobResult {
	out := make(chan model.JobResult, 1)
	go func() {
		out <- d.run(ctx, job)
	}()
	return out
}

func (d *Dispatcher) run(ctx context.Context, job model.TicketJob) model.JobResult {
	// The timeout is anchored at job creation, not at scheduling.
	jctx, cancel := context.WithDeadline(ctx, job.CreatedAt.Add(d.timeout))
	defer cancel()

	device, err := d.resolveDevice(jctx, job)
	if err != nil {
		d.log.Warn("print job has no device",
			zap.String("job", job.ID.String()), zap.Error(err))
		return model.FailedResult("", err)
	}

	surf, err := d.surfaces.New(jctx)
	if err != nil {
		return model.FailedResult(device.Name, fmt.Errorf("allocate surface: %w", err))
	}
	var once sync.Once
	release := func() { once.Do(surf.Close) }
	defer release()

	done := make(chan model.JobResult, 1)
	go func() {
		done <- d.execute(jctx, job, surf, device)
	}()

	select {
	case res := <-done:
		return res
	case <-jctx.Done():
		// The loser of the race is abandoned; once Printing has begun the
		// physical device may still produce output. Release here so the
		// surface is gone before the result is observable.
		release()
		d.log.Warn("print job timed out",
			zap.String("job", job.ID.String()),
			zap.String("device", device.Name))
		return model.FailedResult(device.Name, model.ErrTimeout)
	}
}

// execute walks ContentLoading -> RenderDelay -> Printing on an already
// allocated surface.
func (d *Dispatcher) execute(ctx context.Context, job model.TicketJob, surf surface.Surface, device model.Device) model.JobResult {
	if err := surf.Load(ctx, job.Content.HTML); err != nil {
		return model.FailedResult(device.Name, loadOrTimeout(ctx, err))
	}

	// Fixed settle delay: the surface reports load completion before its
	// asynchronous layout has stabilized, and printing too early yields
	// half-rendered tickets.
	select {
	case <-time.After(d.renderDelay):
	case <-ctx.Done():
		return model.FailedResult(device.Name, model.ErrTimeout)
	}

	payload, err := d.printPayload(ctx, surf, device)
	if err != nil {
		return model.FailedResult(device.Name, printOrTimeout(ctx, err))
	}

	if err := d.transport.Deliver(ctx, device, payload); err != nil {
		return model.FailedResult(device.Name, printOrTimeout(ctx, err))
	}

	d.log.Info("print job completed",
		zap.String("job", job.ID.String()),
		zap.String("kind", string(job.Kind)),
		zap.String("device", device.Name))
	return model.JobResult{Success: true, Device: device.Name}
}

// printPayload issues the print instruction and frames the output for the
// device's delivery protocol.
func (d *Dispatcher) printPayload(ctx context.Context, surf surface.Surface, device model.Device) ([]byte, error) {
	if device.Protocol == model.ProtocolPDF {
		pdf, err := surf.PrintToPDF(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrPrintFailure, err)
		}
		return pdf, nil
	}
	png, err := surf.Screenshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrPrintFailure, err)
	}
	payload, err := escpos.Job(png, device.WidthDots)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrPrintFailure, err)
	}
	return payload, nil
}

// resolveDevice applies the explicit target if the job names one, otherwise
// the selection policy over the cached-or-fresh snapshot. An enumeration
// failure keeps its DeviceQueryError identity in the result.
func (d *Dispatcher) resolveDevice(ctx context.Context, job model.TicketJob) (model.Device, error) {
	devices, err := d.registry.CachedOrFresh(ctx)
	if err != nil {
		return model.Device{}, err
	}
	if job.TargetDevice != "" {
		for _, dev := range devices {
			if dev.Name == job.TargetDevice {
				return dev, nil
			}
		}
		return model.Device{}, fmt.Errorf("%w: device %q not registered", model.ErrNoDeviceFound, job.TargetDevice)
	}
	return d.selector.Select(devices)
}

// loadOrTimeout keeps a deadline-driven load abort classified as Timeout
// rather than LoadFailure.
func loadOrTimeout(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return model.ErrTimeout
	}
	return fmt.Errorf("%w: %v", model.ErrLoadFailure, err)
}

func printOrTimeout(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return model.ErrTimeout
	}
	if errors.Is(err, model.ErrPrintFailure) {
		return err
	}
	return fmt.Errorf("%w: %v", model.ErrPrintFailure, err)
}
