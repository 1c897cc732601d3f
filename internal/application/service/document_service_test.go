package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/quickbill-api/internal/domain/entity"
	"github.com/sangkips/quickbill-api/pkg/apperror"
	"github.com/sangkips/quickbill-api/pkg/billing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderDocument(t *testing.T) {
	inv := validInvoice("F-2024-001")
	inv.Notes = "  Pago a 30 días  "

	doc := RenderDocument(&inv)
	require.NotNil(t, doc)
	assert.Equal(t, DocumentTitle, doc.Title)
	assert.Equal(t, "F-2024-001", doc.Meta.Number)
	assert.Equal(t, "10/03/2024", doc.Meta.IssueDate)
	assert.Equal(t, "10/04/2024", doc.Meta.DueDate)
	assert.Equal(t, "España", doc.Recipient.Country)

	require.Len(t, doc.Rows, 1)
	assert.Equal(t, "10", doc.Rows[0].Quantity)
	assert.Equal(t, "50,00\u00a0€", doc.Rows[0].UnitPrice)
	assert.Equal(t, "500,00\u00a0€", doc.Rows[0].Amount)

	assert.Equal(t, "500,00\u00a0€", doc.Totals.Subtotal)
	assert.Equal(t, "IVA (21%)", doc.Totals.TaxLabel)
	assert.Equal(t, "105,00\u00a0€", doc.Totals.TaxAmount)
	assert.Equal(t, "605,00\u00a0€", doc.Totals.Total)
	assert.Equal(t, "EUR", doc.Totals.Currency)
	assert.True(t, doc.Totals.RawTotal.Equal(decimal.NewFromInt(605)))

	assert.True(t, doc.HasNotes())
	assert.Equal(t, "Pago a 30 días", doc.Notes)

	inv.Notes = "   "
	assert.False(t, RenderDocument(&inv).HasNotes())
	assert.Nil(t, RenderDocument(nil))
}

func TestRenderDocumentFollowsItemOrder(t *testing.T) {
	inv := validInvoice("F-2024-002")
	inv = inv.AddItem()
	var err error
	inv, err = inv.WithItem(1, entity.LineItem{Description: "Hosting", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(100)})
	require.NoError(t, err)
	inv, err = inv.MoveItem(1, 0)
	require.NoError(t, err)

	doc := RenderDocument(&inv)
	require.Len(t, doc.Rows, 2)
	assert.Equal(t, "Hosting", doc.Rows[0].Description)
	assert.Equal(t, "Diseño de logotipo", doc.Rows[1].Description)
	assert.Equal(t, "726,00\u00a0€", doc.Totals.Total)
}

func TestDocumentServiceGetDocument(t *testing.T) {
	env := newTestEnv(t, billing.NullProvider{})
	invoices := newInvoiceService(env)
	documents := NewDocumentService(env.invoices)
	ctx, session := env.anonymous(t)

	out, err := invoices.Finalize(ctx, &FinalizeInput{Invoice: validInvoice("F-2024-003"), Session: session})
	require.NoError(t, err)

	doc, inv, err := documents.GetDocument(ctx, out.Invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, "F-2024-003", inv.InvoiceNumber)
	assert.Equal(t, "605,00\u00a0€", doc.Totals.Total)

	_, _, err = documents.GetDocument(context.Background(), out.Invoice.ID)
	assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code, "no owner in context")

	_, _, err = documents.GetDocument(ctx, uuid.New())
	assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)
}
