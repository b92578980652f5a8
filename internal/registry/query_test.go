package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/model"
)

func TestFileProberQuery(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "devices.json")
	content := `[
		{"name": "EPSON-TM88", "addr": "10.0.0.21:9100", "default": true},
		{"name": "Bar-Star", "addr": "10.0.0.22:9100", "widthDots": 384, "protocol": "pdf"}
	]`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	p := NewFileProber(path, zap.NewNop())
	p.probe = func(addr string) model.DeviceStatus { return model.StatusIdle }

	devices, err := p.Query(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(devices) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(devices))
	}
	first := devices[0]
	if !first.Default || first.WidthDots != 576 || first.Protocol != model.ProtocolESCPOS {
		t.Fatalf("defaults not applied: %+v", first)
	}
	if devices[1].WidthDots != 384 || devices[1].Protocol != model.ProtocolPDF {
		t.Fatalf("explicit fields not honored: %+v", devices[1])
	}
	if first.Status != model.StatusIdle {
		t.Fatalf("probe status not attached: %v", first.Status)
	}
}

func TestFileProberMissingFileIsQueryError(t *testing.T) {
	p := NewFileProber(filepath.Join(t.TempDir(), "absent.json"), zap.NewNop())
	if _, err := p.Query(context.Background()); err == nil {
		t.Fatalf("expected error for missing device file")
	}
}

func TestFileProberMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	p := NewFileProber(path, zap.NewNop())
	if _, err := p.Query(context.Background()); err == nil {
		t.Fatalf("expected error for malformed device file")
	}
}
