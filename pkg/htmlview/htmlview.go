// Package htmlview renders an invoice document as a printable HTML page.
package htmlview

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/sangkips/quickbill-api/internal/domain/entity"
)

const ContentType = "text/html; charset=utf-8"

const invoiceHTMLTemplate = `<!doctype html>
<html lang="es">
<head>
  <meta charset="utf-8" />
  <title>{{.Title}} {{.Meta.Number}}</title>
  <style>
    * { box-sizing: border-box; }
    body {
      margin: 0;
      padding: 32px;
      font-family: "Helvetica Neue", Arial, sans-serif;
      color: #212529;
      background: #ffffff;
    }
    .invoice { width: 210mm; max-width: 100%; margin: 0 auto; }
    .header {
      display: flex;
      justify-content: space-between;
      align-items: flex-start;
      border-bottom: 1px solid #dee2e6;
      padding-bottom: 16px;
      margin-bottom: 24px;
    }
    .header h1 { margin: 0; font-size: 32px; letter-spacing: 0.04em; }
    .meta { text-align: right; font-size: 14px; }
    .meta .label { font-weight: bold; }
    .parties { display: flex; gap: 32px; margin-bottom: 24px; }
    .party { flex: 1; font-size: 14px; line-height: 1.5; }
    .party h3 { margin: 0 0 4px; font-size: 14px; }
    table { width: 100%; border-collapse: collapse; font-size: 14px; }
    th, td { padding: 8px; border-bottom: 1px solid #e9ecef; }
    th { background: #f1f3f5; text-align: left; }
    .num { text-align: right; white-space: nowrap; }
    .totals { margin-left: auto; margin-top: 16px; width: 280px; font-size: 14px; }
    .totals div { display: flex; justify-content: space-between; padding: 4px 0; }
    .totals .grand { font-size: 18px; font-weight: bold; border-top: 1px solid #dee2e6; }
    .notes { margin-top: 32px; font-size: 14px; white-space: pre-line; }
  </style>
</head>
<body>
  <div class="invoice">
    <div class="header">
      <h1>{{.Title}}</h1>
      <div class="meta">
        <div><span class="label">Factura #:</span> {{.Meta.Number}}</div>
        <div><span class="label">Fecha de emisión:</span> {{.Meta.IssueDate}}</div>
        <div><span class="label">Fecha de vencimiento:</span> {{.Meta.DueDate}}</div>
      </div>
    </div>
    <div class="parties">
      <div class="party">
        <h3>De:</h3>
        {{template "party" .Issuer}}
      </div>
      <div class="party">
        <h3>Para:</h3>
        {{template "party" .Recipient}}
      </div>
    </div>
    <table>
      <thead>
        <tr>
          <th>Descripción</th>
          <th class="num">Cantidad</th>
          <th class="num">Precio</th>
          <th class="num">Importe</th>
        </tr>
      </thead>
      <tbody>
        {{range .Rows}}
        <tr>
          <td>{{.Description}}</td>
          <td class="num">{{.Quantity}}</td>
          <td class="num">{{.UnitPrice}}</td>
          <td class="num">{{.Amount}}</td>
        </tr>
        {{end}}
      </tbody>
    </table>
    <div class="totals">
      <div><span>Subtotal:</span><span>{{.Totals.Subtotal}}</span></div>
      <div><span>{{.Totals.TaxLabel}}:</span><span>{{.Totals.TaxAmount}}</span></div>
      <div class="grand"><span>Total:</span><span>{{.Totals.Total}}</span></div>
    </div>
    {{if .HasNotes}}
    <div class="notes">
      <strong>Notas:</strong>
      <div>{{.Notes}}</div>
    </div>
    {{end}}
  </div>
</body>
</html>
{{define "party"}}<div><strong>{{.Name}}</strong></div>
        {{range lines .}}<div>{{.}}</div>
        {{end}}{{end}}
`

// Renderer turns documents into HTML. It is safe for concurrent use.
type Renderer struct {
	tpl *template.Template
}

// NewRenderer parses the invoice template.
func NewRenderer() *Renderer {
	funcs := template.FuncMap{
		"lines": partyLines,
	}
	return &Renderer{
		tpl: template.Must(template.New("invoice").Funcs(funcs).Parse(invoiceHTMLTemplate)),
	}
}

// Render writes the document as a standalone HTML page. All values are
// escaped by html/template.
func (r *Renderer) Render(doc *entity.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func partyLines(p entity.DocumentParty) []string {
	var lines []string
	for _, s := range []string{
		p.TaxID,
		p.Address,
		strings.TrimSpace(p.PostalCode + " " + p.City),
		p.Country,
		p.Email,
		p.Phone,
	} {
		if s = strings.TrimSpace(s); s != "" {
			lines = append(lines, s)
		}
	}
	return lines
}
