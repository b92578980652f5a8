package render

import (
	"embed"
	"encoding/base64"
	"html/template"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

//go:embed templates/ticket.html
var templateFS embed.FS

var ticketTemplate = template.Must(template.ParseFS(templateFS, "templates/ticket.html"))

type ticketDoc struct {
	Body string
	QR   template.URL
}

// WrapHTML embeds the fixed-width ticket text in the surface document. The
// page CSS pins the physical width to 80mm with zero margins so the print
// instruction needs no layout decisions of its own.
func WrapHTML(text string, qrDataURI string) string {
	var b strings.Builder
	err := ticketTemplate.Execute(&b, ticketDoc{Body: text, QR: template.URL(qrDataURI)})
	if err != nil {
		// The template is embedded and the input is plain text; execution
		// cannot fail at runtime. Fall back to a bare pre block anyway.
		return "<!DOCTYPE html><html><body><pre>" +
			template.HTMLEscapeString(text) + "</pre></body></html>"
	}
	return b.String()
}

// qrDataURI encodes content as a QR code PNG data URI, empty on failure
// (the bill still prints without its QR).
func qrDataURI(content string) string {
	png, err := qrcode.Encode(content, qrcode.Medium, 128)
	if err != nil {
		return ""
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
