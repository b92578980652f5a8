package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/dispatch"
	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/model"
	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/policy"
	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/printing"
	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/registry"
	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/store"
	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/surface"
)

var tinyPNG = func() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}()

type okSurface struct{}

func (okSurface) Load(context.Context, string) error         { return nil }
func (okSurface) PrintToPDF(context.Context) ([]byte, error) { return []byte("%PDF"), nil }
func (okSurface) Screenshot(context.Context) ([]byte, error) { return tinyPNG, nil }
func (okSurface) Close()                                     {}

type okFactory struct{}

func (okFactory) New(context.Context) (surface.Surface, error) { return okSurface{}, nil }

type okTransport struct{}

func (okTransport) Deliver(context.Context, model.Device, []byte) error { return nil }

type staticQuerier []model.Device

func (q staticQuerier) Query(ctx context.Context) ([]model.Device, error) { return q, nil }

func newTestRouter(t *testing.T, devices []model.Device) (*Server, http.Handler) {
	t.Helper()
	log := zap.NewNop()
	reg := registry.New(staticQuerier(devices), time.Minute, log)
	selector := policy.NewSelector(nil)
	d := dispatch.New(okFactory{}, okTransport{}, reg, selector, time.Millisecond, 5*time.Second, log)
	hub := NewHub(log)
	svc := printing.NewService(reg, selector, d, hub, "COUNTER-1", log)

	catalog := store.NewCatalog([]store.MenuEntry{
		{ID: 1, Name: "Tea", Price: decimal.NewFromInt(15), Group: model.GroupDrinks},
		{ID: 2, Name: "Idli", Price: decimal.NewFromInt(50), Group: model.GroupKitchen},
	})
	dir := t.TempDir()
	st := store.NewStore(filepath.Join(dir, "bills.json"), filepath.Join(dir, "pdf"), log)

	srv := New(svc, reg, st, catalog, hub, log)
	return srv, srv.Router()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func posDevices() []model.Device {
	return []model.Device{
		{Name: "EPSON-TM88", Addr: "10.0.0.21:9100", Status: model.StatusIdle, WidthDots: 576, Protocol: model.ProtocolESCPOS, Default: true},
	}
}

func TestHealthz(t *testing.T) {
	_, router := newTestRouter(t, posDevices())
	w := doJSON(t, router, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("healthz = %d", w.Code)
	}
}

func TestDevicesEndpoint(t *testing.T) {
	_, router := newTestRouter(t, posDevices())
	w := doJSON(t, router, http.MethodGet, "/devices", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("devices = %d", w.Code)
	}
	var list model.DeviceList
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if !list.Available || list.DefaultDevice != "EPSON-TM88" {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestDevicesEndpointEmpty(t *testing.T) {
	_, router := newTestRouter(t, nil)
	w := doJSON(t, router, http.MethodGet, "/devices", nil)
	var list model.DeviceList
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if list.Available {
		t.Fatalf("empty registry must report available:false")
	}
}

func TestTestDeviceEndpoint(t *testing.T) {
	_, router := newTestRouter(t, posDevices())
	w := doJSON(t, router, http.MethodGet, "/devices/EPSON-TM88/test", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("test = %d body=%s", w.Code, w.Body)
	}
	w = doJSON(t, router, http.MethodGet, "/devices/Ghost/test", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown device = %d", w.Code)
	}
}

func TestPrintEndpointValidation(t *testing.T) {
	_, router := newTestRouter(t, posDevices())
	w := doJSON(t, router, http.MethodPost, "/print", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing content should 400, got %d", w.Code)
	}
}

func TestPrintEndpoint(t *testing.T) {
	_, router := newTestRouter(t, posDevices())
	w := doJSON(t, router, http.MethodPost, "/print", map[string]string{"content": "TEST TICKET"})
	if w.Code != http.StatusOK {
		t.Fatalf("print = %d body=%s", w.Code, w.Body)
	}
	var result model.JobResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if !result.Success || result.Device != "EPSON-TM88" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestOrderFlowThroughAPI(t *testing.T) {
	_, router := newTestRouter(t, posDevices())

	w := doJSON(t, router, http.MethodPost, "/orders", map[string]string{"table": "7"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create order = %d", w.Code)
	}
	var order model.Order
	if err := json.Unmarshal(w.Body.Bytes(), &order); err != nil {
		t.Fatal(err)
	}

	base := fmt.Sprintf("/orders/%s", order.ID)
	for _, item := range []map[string]int{{"id": 1, "quantity": 2}, {"id": 2, "quantity": 1}} {
		w = doJSON(t, router, http.MethodPost, base+"/items", item)
		if w.Code != http.StatusOK {
			t.Fatalf("add item = %d body=%s", w.Code, w.Body)
		}
	}

	w = doJSON(t, router, http.MethodPost, base+"/print", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("print order = %d body=%s", w.Code, w.Body)
	}
	var summary model.OrderPrintSummary
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatal(err)
	}
	if summary.Printed != 2 || summary.Total != 2 {
		t.Fatalf("expected printed:2 total:2, got %+v", summary)
	}

	w = doJSON(t, router, http.MethodPost, base+"/finalize", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("finalize = %d body=%s", w.Code, w.Body)
	}
	// Order leaves the active set.
	w = doJSON(t, router, http.MethodGet, base, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("finalized order still active: %d", w.Code)
	}
}

func TestConcurrentItemAddsAndReads(t *testing.T) {
	_, router := newTestRouter(t, posDevices())
	w := doJSON(t, router, http.MethodPost, "/orders", map[string]string{"table": "7"})
	var order model.Order
	if err := json.Unmarshal(w.Body.Bytes(), &order); err != nil {
		t.Fatal(err)
	}
	base := fmt.Sprintf("/orders/%s", order.ID)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				doJSON(t, router, http.MethodPost, base+"/items", map[string]int{"id": 1, "quantity": 1})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				doJSON(t, router, http.MethodGet, base, nil)
			}
		}()
	}
	wg.Wait()

	w = doJSON(t, router, http.MethodGet, base, nil)
	var got model.Order
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Items) != 1 || got.Items[0].Quantity != 80 {
		t.Fatalf("adds lost under concurrency: %+v", got.Items)
	}
}

func TestEventFeedPreservesOrder(t *testing.T) {
	srv, router := newTestRouter(t, posDevices())
	ts := httptest.NewServer(router)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	// The handshake response can land before the hub registers the client.
	deadline := time.Now().Add(time.Second)
	for {
		srv.hub.mu.Lock()
		n := len(srv.hub.clients)
		srv.hub.mu.Unlock()
		if n > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("client never registered with hub")
		}
		time.Sleep(5 * time.Millisecond)
	}

	const n = 20
	for i := 0; i < n; i++ {
		srv.hub.Publish(printing.Event{Type: "job_queued", JobID: strconv.Itoa(i)})
	}
	for i := 0; i < n; i++ {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var ev printing.Event
		if err := conn.ReadJSON(&ev); err != nil {
			t.Fatal(err)
		}
		if ev.JobID != strconv.Itoa(i) {
			t.Fatalf("event %d arrived as job %s; feed reordered", i, ev.JobID)
		}
	}
}

func TestAddUnknownMenuItem(t *testing.T) {
	_, router := newTestRouter(t, posDevices())
	w := doJSON(t, router, http.MethodPost, "/orders", map[string]string{"table": "1"})
	var order model.Order
	json.Unmarshal(w.Body.Bytes(), &order)

	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/orders/%s/items", order.ID), map[string]int{"id": 99, "quantity": 1})
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown menu item = %d", w.Code)
	}
}

func TestPrintOrderPayloadEndpoint(t *testing.T) {
	_, router := newTestRouter(t, posDevices())
	body := map[string]any{
		"items": []map[string]any{
			{"id": 1, "name": "Tea", "quantity": 2, "unitPrice": "15"},
		},
	}
	w := doJSON(t, router, http.MethodPost, "/print/order", body)
	if w.Code != http.StatusOK {
		t.Fatalf("print/order = %d body=%s", w.Code, w.Body)
	}

	w = doJSON(t, router, http.MethodPost, "/print/order", map[string]any{"items": []any{}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty order should 400, got %d", w.Code)
	}
}
