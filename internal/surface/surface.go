// Package surface provides the ephemeral, invisible rendering surface a
// print job draws on. One surface serves exactly one job and is released
// on every exit path; surfaces are never shared or pooled.
package surface

import "context"

// Surface is one allocated rendering surface. The production implementation
// is a headless Chrome tab; tests substitute fakes.
type Surface interface {
	// Load places the ticket document on the surface and waits for the
	// load to complete.
	Load(ctx context.Context, html string) error
	// PrintToPDF issues the silent print instruction with fixed physical
	// parameters (no margins, background graphics, 80mm paper width,
	// content-sized height) and returns the payload.
	PrintToPDF(ctx context.Context) ([]byte, error)
	// Screenshot captures the full rendered document as PNG, the input to
	// ESC/POS rasterization.
	Screenshot(ctx context.Context) ([]byte, error)
	// Close releases the surface. Safe to call more than once.
	Close()
}

// Factory allocates surfaces. The surface is torn down when Close is called
// or when the allocation context is cancelled, whichever comes first.
type Factory interface {
	New(ctx context.Context) (Surface, error)
}
