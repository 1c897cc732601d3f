package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/quickbill-api/pkg/apperror"
	"github.com/sangkips/quickbill-api/pkg/artifact"
	"github.com/sangkips/quickbill-api/pkg/pdfexport"
	"go.uber.org/zap"
)

// MsgExportFailed is the retryable message shown for any export failure.
const MsgExportFailed = "Could not generate the PDF, please try again"

// ErrExportInProgress is returned while the same invoice is being exported.
var ErrExportInProgress = errors.New("export already in progress")

// ExportService turns stored invoices into PDF files.
type ExportService struct {
	documents *DocumentService
	exporter  *pdfexport.Exporter
	store     artifact.Store
	timeout   time.Duration
	logger    *zap.Logger

	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

// NewExportService creates a new export service
func NewExportService(
	documents *DocumentService,
	exporter *pdfexport.Exporter,
	store artifact.Store,
	timeout time.Duration,
	logger *zap.Logger,
) *ExportService {
	return &ExportService{
		documents: documents,
		exporter:  exporter,
		store:     store,
		timeout:   timeout,
		logger:    logger,
		inFlight:  make(map[uuid.UUID]struct{}),
	}
}

// ExportInput selects the invoice and where its file is kept
type ExportInput struct {
	InvoiceID uuid.UUID
	// Owner is the storage folder of the file.
	Owner string
	// Store keeps a copy in the artifact store.
	Store bool
}

// ExportOutput is the generated file and, when stored, its location.
type ExportOutput struct {
	Artifact *pdfexport.Artifact `json:"artifact"`
	Object   *artifact.Object    `json:"object,omitempty"`
}

// Export renders the invoice and converts it to PDF. Only one export per
// invoice runs at a time.
func (s *ExportService) Export(ctx context.Context, input *ExportInput) (*ExportOutput, error) {
	if !s.acquire(input.InvoiceID) {
		return nil, apperror.NewConflictError("An export of this invoice is already running").Wrap(ErrExportInProgress)
	}
	defer s.release(input.InvoiceID)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, inv, err := s.documents.GetDocument(ctx, input.InvoiceID)
	if err != nil {
		return nil, err
	}

	art, err := s.exporter.Export(ctx, doc, pdfexport.FileName(inv.InvoiceNumber))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		s.logger.Error("invoice export failed",
			zap.String("invoice_id", input.InvoiceID.String()),
			zap.Error(err),
		)
		return nil, apperror.ErrBadGateway.Wrap(err).WithMessage(MsgExportFailed)
	}

	out := &ExportOutput{Artifact: art}
	if !input.Store {
		return out, nil
	}

	obj, err := s.store.Put(ctx, artifact.Key(input.Owner, art.Name), art.ContentType, art.Content)
	if err != nil {
		s.logger.Error("failed to store exported invoice",
			zap.String("invoice_id", input.InvoiceID.String()),
			zap.String("driver", s.store.Driver()),
			zap.Error(err),
		)
		return nil, apperror.ErrBadGateway.Wrap(err).WithMessage(MsgExportFailed)
	}
	out.Object = obj

	s.logger.Info("invoice exported",
		zap.String("invoice_id", input.InvoiceID.String()),
		zap.String("key", obj.Key),
		zap.Int("pages", art.PageCount),
		zap.Int64("size", art.Size),
	)
	return out, nil
}

func (s *ExportService) acquire(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[id]; busy {
		return false
	}
	s.inFlight[id] = struct{}{}
	return true
}

func (s *ExportService) release(id uuid.UUID) {
	s.mu.Lock()
	delete(s.inFlight, id)
	s.mu.Unlock()
}
