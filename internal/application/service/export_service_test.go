package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/quickbill-api/internal/domain/entity"
	"github.com/sangkips/quickbill-api/pkg/apperror"
	"github.com/sangkips/quickbill-api/pkg/artifact"
	"github.com/sangkips/quickbill-api/pkg/billing"
	"github.com/sangkips/quickbill-api/pkg/pdfexport"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExportStoresArtifact(t *testing.T) {
	env := newTestEnv(t, billing.NullProvider{})
	ctx, session := env.anonymous(t)
	out, err := newInvoiceService(env).Finalize(ctx, &FinalizeInput{Invoice: validInvoice("F-2024-001"), Session: session})
	require.NoError(t, err)

	root := t.TempDir()
	svc := NewExportService(
		NewDocumentService(env.invoices),
		pdfexport.NewExporter(pdfexport.Options{}),
		artifact.NewLocalStore(root),
		time.Minute,
		zap.NewNop(),
	)

	res, err := svc.Export(ctx, &ExportInput{InvoiceID: out.Invoice.ID, Owner: "anon", Store: true})
	require.NoError(t, err)
	assert.Equal(t, "factura-F-2024-001.pdf", res.Artifact.Name)
	assert.Equal(t, 1, res.Artifact.PageCount)
	assert.True(t, len(res.Artifact.Content) > 4 && string(res.Artifact.Content[:4]) == "%PDF")

	require.NotNil(t, res.Object)
	assert.Equal(t, "invoices/anon/factura-F-2024-001.pdf", res.Object.Key)
	stored, err := os.ReadFile(filepath.Join(root, res.Object.Key))
	require.NoError(t, err)
	assert.Equal(t, res.Artifact.Content, stored)

	plain, err := svc.Export(ctx, &ExportInput{InvoiceID: out.Invoice.ID})
	require.NoError(t, err)
	assert.Nil(t, plain.Object)
}

func TestExportFailures(t *testing.T) {
	env := newTestEnv(t, billing.NullProvider{})
	ctx, _, _ := env.signedIn(t)
	svc := NewExportService(
		NewDocumentService(env.invoices),
		pdfexport.NewExporter(pdfexport.Options{MaxPages: 1}),
		artifact.NewNullStore(),
		time.Minute,
		zap.NewNop(),
	)

	_, err := svc.Export(ctx, &ExportInput{InvoiceID: uuid.New()})
	assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)

	inv := validInvoice("F-2024-099")
	for i := 0; i < 120; i++ {
		inv.Items = append(inv.Items, entity.LineItem{
			Description: fmt.Sprintf("Línea %d", i),
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   decimal.NewFromInt(10),
		})
	}
	inv.NumberPositions()
	require.NoError(t, env.invoices.Create(ctx, &inv))

	_, err = svc.Export(ctx, &ExportInput{InvoiceID: inv.ID})
	appErr := apperror.GetAppError(err)
	assert.Equal(t, http.StatusBadGateway, appErr.Code)
	assert.Equal(t, MsgExportFailed, appErr.Message)
	assert.True(t, errors.Is(err, pdfexport.ErrTooManyPages))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = svc.Export(cancelled, &ExportInput{InvoiceID: inv.ID})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExportRejectsConcurrentExportOfSameInvoice(t *testing.T) {
	svc := NewExportService(nil, pdfexport.NewExporter(pdfexport.Options{}), artifact.NewNullStore(), 0, zap.NewNop())
	id := uuid.New()

	require.True(t, svc.acquire(id))
	_, err := svc.Export(context.Background(), &ExportInput{InvoiceID: id})
	assert.Equal(t, http.StatusConflict, apperror.GetAppError(err).Code)
	assert.ErrorIs(t, err, ErrExportInProgress)

	svc.release(id)
	assert.True(t, svc.acquire(id))
}
