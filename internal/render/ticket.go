// Package render turns classified order data into final ticket content:
// a fixed-width text layout safe for 80mm thermal stock, wrapped in the
// monospace HTML document the rendering surface loads. Rendering is pure;
// identical inputs produce byte-identical output.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/model"
)

// Width is the ticket column count. 80mm stock carries 42 monospace
// columns at the standard font; lines are wrapped at this bound explicitly
// so no downstream layout engine gets to make flow decisions.
const Width = 42

const timeLayout = "02/01/2006 15:04"

// Context carries the order metadata printed on every ticket.
type Context struct {
	Location  string
	Table     string
	OrderRef  string
	Timestamp time.Time
}

// Ticket renders a kitchen or drinks ticket for one routing group.
func Ticket(group model.RoutingGroup, items []model.OrderItem, ctx Context) model.TicketContent {
	kind := model.KindForGroup(group)

	var b strings.Builder
	writeHeader(&b, strings.ToUpper(string(group)), ctx)
	for _, item := range items {
		writeWrapped(&b, fmt.Sprintf("%dx %s", item.Quantity, item.Name))
	}
	writeFooter(&b, items)

	text := b.String()
	return model.TicketContent{Kind: kind, Text: text, HTML: WrapHTML(text, "")}
}

// Bill renders the customer bill: items with a right-aligned money column,
// a totals block, and a QR of the order reference for reprint lookup.
func Bill(order *model.Order, ctx Context) model.TicketContent {
	var b strings.Builder
	writeHeader(&b, "BILL", ctx)
	for _, item := range order.Items {
		writeMoneyLine(&b, fmt.Sprintf("%dx %s", item.Quantity, item.Name), item.LineTotal())
	}
	b.WriteString(rule() + "\n")
	writeMoneyLine(&b, "SUBTOTAL", order.Subtotal())
	if surcharge := order.SurchargeTotal(); !surcharge.IsZero() {
		writeMoneyLine(&b, "SURCHARGE", surcharge)
	}
	writeMoneyLine(&b, "TOTAL", order.Total())
	writeFooter(&b, order.Items)

	qr := ""
	if ctx.OrderRef != "" {
		qr = qrDataURI(ctx.OrderRef)
	}
	text := b.String()
	return model.TicketContent{Kind: model.KindBill, Text: text, HTML: WrapHTML(text, qr)}
}

// Freeform wraps caller-supplied ticket text without reshaping it, for the
// single-ticket print boundary operation.
func Freeform(content string) model.TicketContent {
	return model.TicketContent{
		Kind: model.KindKitchenTicket,
		Text: content,
		HTML: WrapHTML(content, ""),
	}
}

func writeHeader(b *strings.Builder, label string, ctx Context) {
	b.WriteString(center(label) + "\n")
	b.WriteString(rule() + "\n")
	if ctx.Location != "" {
		b.WriteString(truncate(ctx.Location) + "\n")
	}
	if ctx.Table != "" {
		b.WriteString(truncate("TABLE: "+ctx.Table) + "\n")
	}
	b.WriteString(ctx.Timestamp.Format(timeLayout) + "\n")
	b.WriteString(rule() + "\n")
}

func writeFooter(b *strings.Builder, items []model.OrderItem) {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	b.WriteString(rule() + "\n")
	b.WriteString(fmt.Sprintf("ITEMS: %d\n", count))
}

// writeWrapped hard-wraps a line at the column bound; continuation lines
// are indented four columns.
func writeWrapped(b *strings.Builder, line string) {
	const indent = 4
	for first := true; ; first = false {
		limit := Width
		prefix := ""
		if !first {
			limit = Width - indent
			prefix = strings.Repeat(" ", indent)
		}
		runes := []rune(line)
		if len(runes) <= limit {
			b.WriteString(prefix + line + "\n")
			return
		}
		b.WriteString(prefix + string(runes[:limit]) + "\n")
		line = string(runes[limit:])
	}
}

// writeMoneyLine lays out a label and a right-aligned amount on one line;
// oversize labels are truncated so the money column never drifts. An amount
// too wide to share the line pushes the label onto its own line and wraps.
func writeMoneyLine(b *strings.Builder, label string, amount decimal.Decimal) {
	money := amount.StringFixed(2)
	maxLabel := Width - len(money) - 1
	if maxLabel < 1 {
		b.WriteString(truncate(label) + "\n")
		writeWrapped(b, money)
		return
	}
	runes := []rune(label)
	if len(runes) > maxLabel {
		runes = runes[:maxLabel]
	}
	b.WriteString(fmt.Sprintf("%-*s %s\n", maxLabel, string(runes), money))
}

func center(s string) string {
	runes := []rune(s)
	if len(runes) >= Width {
		return string(runes[:Width])
	}
	pad := (Width - len(runes)) / 2
	return strings.Repeat(" ", pad) + s
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) > Width {
		return string(runes[:Width])
	}
	return s
}

func rule() string {
	return strings.Repeat("-", Width)
}
