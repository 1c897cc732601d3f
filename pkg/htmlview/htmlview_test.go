package htmlview

import (
	"strings"
	"testing"

	"github.com/sangkips/quickbill-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	doc := &entity.Document{
		Title:     "FACTURA",
		Issuer:    entity.DocumentParty{Name: "Taller SL", TaxID: "B1", City: "Madrid", PostalCode: "28013", Country: "España"},
		Recipient: entity.DocumentParty{Name: "<script>alert(1)</script>", Country: "México"},
		Meta:      entity.DocumentMeta{Number: "F-2024-001", IssueDate: "10/03/2024", DueDate: "10/04/2024"},
		Rows: []entity.DocumentRow{
			{Description: "Primero", Quantity: "1", UnitPrice: "10,00 €", Amount: "10,00 €"},
			{Description: "Segundo", Quantity: "2", UnitPrice: "5,00 €", Amount: "10,00 €"},
		},
		Totals: entity.DocumentTotals{Subtotal: "20,00 €", TaxLabel: "IVA (21%)", TaxAmount: "4,20 €", Total: "24,20 €"},
	}

	out, err := NewRenderer().Render(doc)
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, "Factura #:</span> F-2024-001")
	assert.Contains(t, html, "28013 Madrid")
	assert.Contains(t, html, "IVA (21%):")
	assert.Contains(t, html, "24,20 €")
	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.NotContains(t, html, "Notas:")
	assert.Less(t, strings.Index(html, "Primero"), strings.Index(html, "Segundo"))

	doc.Notes = "Gracias"
	out, err = NewRenderer().Render(doc)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Notas:")
}
