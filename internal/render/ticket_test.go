package render

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/model"
)

var testTime = time.Date(2026, 3, 14, 12, 30, 0, 0, time.UTC)

func testContext() Context {
	return Context{Location: "COUNTER-1", Table: "7", Timestamp: testTime}
}

func testItems() []model.OrderItem {
	return []model.OrderItem{
		{ID: 1, Name: "Tea", Quantity: 2, UnitPrice: decimal.NewFromInt(15)},
		{ID: 2, Name: "Idli", Quantity: 1, UnitPrice: decimal.NewFromInt(50)},
	}
}

func TestTicketDeterministic(t *testing.T) {
	a := Ticket(model.GroupDrinks, testItems(), testContext())
	b := Ticket(model.GroupDrinks, testItems(), testContext())
	if a.Text != b.Text {
		t.Fatalf("text differs between identical renders")
	}
	if a.HTML != b.HTML {
		t.Fatalf("html differs between identical renders")
	}
}

func TestTicketLayout(t *testing.T) {
	content := Ticket(model.GroupDrinks, testItems(), testContext())

	if content.Kind != model.KindDrinksTicket {
		t.Fatalf("expected drinks-ticket kind, got %s", content.Kind)
	}
	for _, want := range []string{"DRINKS", "COUNTER-1", "TABLE: 7", "14/03/2026 12:30", "2x Tea", "1x Idli", "ITEMS: 3"} {
		if !strings.Contains(content.Text, want) {
			t.Fatalf("ticket missing %q:\n%s", want, content.Text)
		}
	}
}

func TestTicketLinesWithinWidth(t *testing.T) {
	items := append(testItems(), model.OrderItem{
		ID:       3,
		Name:     "Paneer Butter Masala with Extra Long Descriptive Name And Then Some",
		Quantity: 12,
	})
	content := Ticket(model.GroupKitchen, items, testContext())

	for i, line := range strings.Split(content.Text, "\n") {
		if n := len([]rune(line)); n > Width {
			t.Fatalf("line %d exceeds %d columns (%d): %q", i, Width, n, line)
		}
	}
	// The long name must survive wrapping intact.
	joined := strings.ReplaceAll(strings.ReplaceAll(content.Text, "\n    ", ""), "\n", "\n")
	if !strings.Contains(joined, "Paneer Butter Masala with Extra Long") {
		t.Fatalf("wrapped name lost content:\n%s", content.Text)
	}
}

func TestBillTotalsAndQR(t *testing.T) {
	order := &model.Order{
		ID:       uuid.MustParse("a5b0c8f0-0000-4000-8000-000000000001"),
		Table:    "7",
		Location: "COUNTER-1",
		Items: []model.OrderItem{
			{ID: 1, Name: "Tea", Quantity: 2, UnitPrice: decimal.NewFromInt(15)},
			{ID: 2, Name: "Idli", Quantity: 1, UnitPrice: decimal.NewFromInt(50), Surcharge: decimal.NewFromInt(5)},
		},
		CreatedAt: testTime,
	}
	ctx := testContext()
	ctx.OrderRef = order.ID.String()
	content := Bill(order, ctx)

	if content.Kind != model.KindBill {
		t.Fatalf("expected bill kind, got %s", content.Kind)
	}
	for _, want := range []string{"BILL", "SUBTOTAL", "80.00", "SURCHARGE", "5.00", "TOTAL", "85.00"} {
		if !strings.Contains(content.Text, want) {
			t.Fatalf("bill missing %q:\n%s", want, content.Text)
		}
	}
	if !strings.Contains(content.HTML, "data:image/png;base64,") {
		t.Fatalf("bill HTML missing QR data URI")
	}
}

func TestBillMoneyColumnAligned(t *testing.T) {
	order := &model.Order{
		Items: []model.OrderItem{
			{ID: 1, Name: "Tea", Quantity: 2, UnitPrice: decimal.NewFromInt(15)},
		},
		CreatedAt: testTime,
	}
	content := Bill(order, testContext())

	for _, line := range strings.Split(content.Text, "\n") {
		if strings.Contains(line, "30.00") && len([]rune(line)) != Width {
			t.Fatalf("money line not padded to full width: %q", line)
		}
	}
}

func TestBillSurvivesOversizedAmount(t *testing.T) {
	huge, err := decimal.NewFromString("1e60")
	if err != nil {
		t.Fatal(err)
	}
	order := &model.Order{
		Items: []model.OrderItem{
			{ID: 1, Name: "Tea", Quantity: 1, UnitPrice: decimal.NewFromInt(15), Surcharge: huge},
		},
		CreatedAt: testTime,
	}
	content := Bill(order, testContext())

	for i, line := range strings.Split(content.Text, "\n") {
		if n := len([]rune(line)); n > Width {
			t.Fatalf("line %d exceeds %d columns (%d): %q", i, Width, n, line)
		}
	}
	// The label still appears even though the amount owns its own lines.
	if !strings.Contains(content.Text, "SURCHARGE") {
		t.Fatalf("oversized amount dropped its label:\n%s", content.Text)
	}
}

func TestWrapHTMLEscapesContent(t *testing.T) {
	html := WrapHTML("<script>alert(1)</script>", "")
	if strings.Contains(html, "<script>") {
		t.Fatalf("ticket text not escaped in surface document")
	}
	if !strings.Contains(html, "80mm") {
		t.Fatalf("surface document missing fixed physical width")
	}
}

func TestFreeformKeepsContentVerbatim(t *testing.T) {
	content := Freeform("LINE ONE\nLINE TWO")
	if content.Text != "LINE ONE\nLINE TWO" {
		t.Fatalf("freeform content reshaped: %q", content.Text)
	}
}
