package pdfexport

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/sangkips/quickbill-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func sampleDocument(rows int) *entity.Document {
	doc := &entity.Document{
		Title: "FACTURA",
		Issuer: entity.DocumentParty{
			Name: "Taller Núñez SL", TaxID: "B12345678", Address: "Calle Mayor 1",
			City: "Madrid", PostalCode: "28013", Country: "España",
		},
		Recipient: entity.DocumentParty{
			Name: "Cliente Ejemplo", TaxID: "12345678Z", Address: "Avenida del Puerto 7",
			City: "Valencia", PostalCode: "46023", Country: "España", Email: "cliente@example.com",
		},
		Meta: entity.DocumentMeta{Number: "F-2024-001", IssueDate: "10/03/2024", DueDate: "10/04/2024"},
		Totals: entity.DocumentTotals{
			Subtotal: "500,00 €", TaxLabel: "IVA (21%)", TaxAmount: "105,00 €", Total: "605,00 €",
		},
		Notes: "Pago por transferencia bancaria.",
	}
	for i := 0; i < rows; i++ {
		doc.Rows = append(doc.Rows, entity.DocumentRow{
			Description: "Servicio de diseño " + strconv.Itoa(i+1),
			Quantity:    "10",
			UnitPrice:   "50,00 €",
			Amount:      "500,00 €",
		})
	}
	return doc
}

func TestExportValidDocument(t *testing.T) {
	e := NewExporter(Options{})
	art, err := e.Export(context.Background(), sampleDocument(1), FileName("F-2024-001"))
	require.NoError(t, err)

	assert.Equal(t, "factura-F-2024-001.pdf", art.Name)
	assert.Equal(t, ContentType, art.ContentType)
	assert.True(t, bytes.HasPrefix(art.Content, []byte("%PDF-")))
	assert.Equal(t, int64(len(art.Content)), art.Size)
	assert.Equal(t, 1, art.PageCount)
	assert.Len(t, art.Checksum, 64)
}

func TestExportNilDocument(t *testing.T) {
	art, err := NewExporter(Options{}).Export(context.Background(), nil, "factura.pdf")
	assert.ErrorIs(t, err, ErrDocumentUnavailable)
	assert.Nil(t, art)
}

func TestExportCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	art, err := NewExporter(Options{}).Export(ctx, sampleDocument(1), "factura.pdf")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, art)
}

func TestExportFlowsOntoMorePages(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	e := NewExporter(Options{Logger: zap.New(core)})

	art, err := e.Export(context.Background(), sampleDocument(120), "factura.pdf")
	require.NoError(t, err)
	assert.Greater(t, art.PageCount, 1)
	assert.Equal(t, 1, logs.FilterMessage("multi-page invoice exported").Len())
}

func TestRowTallerThanPageContinues(t *testing.T) {
	doc := sampleDocument(2)
	doc.Rows[0].Description = strings.Repeat("Mantenimiento mensual de servidores ", 500)

	l := newLayout(doc)
	l.pdf.AddPage()
	l.table()
	require.NoError(t, l.pdf.Error())

	assert.GreaterOrEqual(t, l.pdf.PageNo(), 3)
	assert.LessOrEqual(t, l.pdf.GetY(), pageHeight-footerSpace+4, "rows stay above the footer")

	art, err := NewExporter(Options{}).Export(context.Background(), doc, "factura.pdf")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, art.PageCount, 3)
}

func TestExportPageCap(t *testing.T) {
	art, err := NewExporter(Options{MaxPages: 1}).Export(context.Background(), sampleDocument(120), "factura.pdf")
	assert.ErrorIs(t, err, ErrTooManyPages)
	assert.Nil(t, art)

	art, err = NewExporter(Options{MaxPages: 1}).Export(context.Background(), sampleDocument(3), "factura.pdf")
	require.NoError(t, err)
	assert.Equal(t, 1, art.PageCount)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "factura-F-2024-001.pdf", FileName("F-2024-001"))
	assert.Equal(t, "factura-F-2024-001.pdf", FileName(" F/2024/001 "))
	assert.Equal(t, "factura-F-2024-001.pdf", FileName("F 2024 001"))
	assert.Equal(t, "factura-A-B.pdf", FileName("A/B"))
	assert.Equal(t, "factura.pdf", FileName("  "))
	assert.Equal(t, "factura.pdf", FileName("../"))
}

func TestPartyLinesSkipBlanks(t *testing.T) {
	lines := partyLines(entity.DocumentParty{TaxID: "B1", City: "Madrid", Country: "España"})
	assert.Equal(t, []string{"B1", "Madrid", "España"}, lines)
}
