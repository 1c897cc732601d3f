package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/quickbill-api/internal/domain/entity"
	"github.com/sangkips/quickbill-api/internal/domain/enum"
	"github.com/sangkips/quickbill-api/internal/domain/gate"
	"github.com/sangkips/quickbill-api/internal/domain/repository"
	"github.com/sangkips/quickbill-api/pkg/apperror"
	"github.com/sangkips/quickbill-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Messages shared by the HTTP layer.
const (
	MsgLastItem        = "An invoice must have at least one item"
	MsgLimitReached    = "You have reached your invoice limit"
	MsgDuplicateNumber = "Invoice number already exists"
)

// InvoiceService handles invoice editing and persistence
type InvoiceService struct {
	invoiceRepo repository.InvoiceRepository
	userRepo    repository.UserRepository
	logger      *zap.Logger
	now         func() time.Time
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	userRepo repository.UserRepository,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		userRepo:    userRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// NewDraft returns a defaulted invoice. A signed-in user's business profile
// prefills the issuer block.
func (s *InvoiceService) NewDraft(ctx context.Context, userID *uuid.UUID) (*entity.Invoice, error) {
	draft := entity.NewDraft(s.now())
	if userID == nil {
		return &draft, nil
	}

	user, err := s.userRepo.GetByID(ctx, *userID)
	if err != nil {
		s.logger.Warn("business profile unavailable, using blank issuer", zap.String("user_id", userID.String()), zap.Error(err))
		return &draft, nil
	}
	if user != nil {
		draft = draft.WithIssuer(user.IssuerParty())
	}
	return &draft, nil
}

// EditOp names an editing operation.
type EditOp string

const (
	EditSetNumber    EditOp = "set_number"
	EditSetIssueDate EditOp = "set_issue_date"
	EditSetDueDate   EditOp = "set_due_date"
	EditSetIssuer    EditOp = "set_issuer"
	EditSetRecipient EditOp = "set_recipient"
	EditSetItem      EditOp = "set_item"
	EditAddItem      EditOp = "add_item"
	EditRemoveItem   EditOp = "remove_item"
	EditMoveItem     EditOp = "move_item"
	EditSetTaxRate   EditOp = "set_tax_rate"
	EditSetNotes     EditOp = "set_notes"
)

// EditInput represents one edit applied to a draft
type EditInput struct {
	Invoice entity.Invoice
	Op      EditOp
	Index   int
	To      int
	Value   string
	Party   *entity.Party
	Item    *entity.LineItem
	TaxRate *decimal.Decimal
}

// ApplyEdit returns the draft with one edit applied. The input invoice is
// left untouched, including when the edit fails.
func (s *InvoiceService) ApplyEdit(input *EditInput) (*entity.Invoice, error) {
	inv := input.Invoice
	var (
		next entity.Invoice
		err  error
	)

	switch input.Op {
	case EditSetNumber:
		next = inv.WithNumber(input.Value)
	case EditSetIssueDate, EditSetDueDate:
		d, perr := entity.ParseDate(input.Value)
		if perr != nil {
			field := "issue_date"
			if input.Op == EditSetDueDate {
				field = "due_date"
			}
			return nil, apperror.NewFieldError(field, "Invalid date, use YYYY-MM-DD")
		}
		if input.Op == EditSetIssueDate {
			next = inv.WithIssueDate(d)
		} else {
			next = inv.WithDueDate(d)
		}
	case EditSetIssuer, EditSetRecipient:
		if input.Party == nil {
			return nil, apperror.NewBadRequestError("party is required")
		}
		if input.Op == EditSetIssuer {
			next = inv.WithIssuer(*input.Party)
		} else {
			next = inv.WithRecipient(*input.Party)
		}
	case EditSetItem:
		if input.Item == nil {
			return nil, apperror.NewBadRequestError("item is required")
		}
		next, err = inv.WithItem(input.Index, *input.Item)
	case EditAddItem:
		next = inv.AddItem()
	case EditRemoveItem:
		next, err = inv.RemoveItem(input.Index)
	case EditMoveItem:
		next, err = inv.MoveItem(input.Index, input.To)
	case EditSetTaxRate:
		if input.TaxRate == nil || !enum.IsAllowedTaxRate(*input.TaxRate) {
			return nil, apperror.NewFieldError("tax_rate_percent", "Tax rate must be one of 0, 4, 10 or 21")
		}
		next = inv.WithTaxRate(*input.TaxRate)
	case EditSetNotes:
		next = inv.WithNotes(input.Value)
	default:
		return nil, apperror.NewBadRequestError(fmt.Sprintf("unknown edit operation %q", input.Op))
	}

	if err != nil {
		return nil, editError(err)
	}
	return &next, nil
}

func editError(err error) error {
	switch {
	case errors.Is(err, entity.ErrLastItem):
		return apperror.NewUnprocessableError(MsgLastItem).Wrap(err)
	case errors.Is(err, entity.ErrItemIndex):
		return apperror.NewBadRequestError("Item index out of range").Wrap(err)
	default:
		return err
	}
}

// PreviewOutput is a rendered draft plus what still blocks finalization.
type PreviewOutput struct {
	Document *entity.Document     `json:"document"`
	Valid    bool                 `json:"valid"`
	Errors   []apperror.FieldError `json:"errors,omitempty"`
}

// Preview renders a draft. Validation problems are reported, not fatal, so
// an incomplete draft still previews.
func (s *InvoiceService) Preview(inv *entity.Invoice) *PreviewOutput {
	errs := inv.Validate()
	return &PreviewOutput{
		Document: RenderDocument(inv),
		Valid:    len(errs) == 0,
		Errors:   errs,
	}
}

// FinalizeInput represents an explicit invoice submission
type FinalizeInput struct {
	Invoice entity.Invoice
	Session *gate.Session
}

// FinalizeOutput is the stored invoice and the entitlement after storing it.
type FinalizeOutput struct {
	Invoice     *entity.Invoice   `json:"invoice"`
	Entitlement *gate.Entitlement `json:"entitlement,omitempty"`
}

// Finalize validates the invoice, checks the entitlement, stores it and
// signals the gate. Storage requires the owner in ctx.
func (s *InvoiceService) Finalize(ctx context.Context, input *FinalizeInput) (*FinalizeOutput, error) {
	if input.Session == nil {
		return nil, apperror.ErrUnauthorized
	}
	inv := input.Invoice

	if errs := inv.Validate(); len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}

	ent, err := input.Session.Allow(ctx)
	if errors.Is(err, gate.ErrLimitReached) {
		return nil, apperror.NewForbiddenError(MsgLimitReached).WithData(ent).Wrap(err)
	}
	if err != nil {
		return nil, err
	}

	existing, err := s.invoiceRepo.GetByNumber(ctx, inv.InvoiceNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError(MsgDuplicateNumber)
	}

	id := input.Session.Identity()
	inv.ID = uuid.Nil
	inv.UserID = id.UserID
	inv.AnonymousID = ""
	if id.IsAnonymous() {
		inv.AnonymousID = id.AnonymousID
	}
	inv.Status = enum.InvoiceStatusFinalized
	inv.Items = append([]entity.LineItem(nil), inv.Items...)
	for i := range inv.Items {
		inv.Items[i].ID = uuid.Nil
		inv.Items[i].InvoiceID = uuid.Nil
	}

	if err := s.invoiceRepo.Create(ctx, &inv); err != nil {
		if errors.Is(err, repository.ErrDuplicateInvoiceNumber) {
			return nil, apperror.NewConflictError(MsgDuplicateNumber).Wrap(err)
		}
		return nil, err
	}

	if err := input.Session.RecordFinalized(ctx); err != nil {
		s.logger.Warn("failed to record finalized invoice", zap.String("owner", id.OwnerKey()), zap.Error(err))
	}

	ent, err = input.Session.Entitlement(ctx)
	if err != nil {
		ent = nil
	}

	s.logger.Info("invoice finalized",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("owner", id.OwnerKey()),
		zap.Int("items", len(inv.Items)),
	)
	return &FinalizeOutput{Invoice: &inv, Entitlement: ent}, nil
}

// ListInvoicesInput represents list filters
type ListInvoicesInput struct {
	Pagination *pagination.PaginationParams
	Search     string
	SortBy     string
	SortOrder  string
}

// ListInvoices returns the owner's invoices, newest first by default.
func (s *InvoiceService) ListInvoices(ctx context.Context, input *ListInvoicesInput) (*pagination.PaginatedResult[entity.Invoice], error) {
	if input.Pagination == nil {
		input.Pagination = pagination.DefaultPagination()
	}
	input.Pagination.Validate()

	invoices, total, err := s.invoiceRepo.List(ctx, &repository.InvoiceFilterParams{
		Pagination: input.Pagination,
		Search:     input.Search,
		SortBy:     input.SortBy,
		SortOrder:  input.SortOrder,
	})
	if err != nil {
		return nil, err
	}

	p := pagination.NewPagination(input.Pagination.Page, input.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(invoices, p), nil
}

// AllInvoices returns every invoice of the owner, page by page.
func (s *InvoiceService) AllInvoices(ctx context.Context) ([]entity.Invoice, error) {
	var all []entity.Invoice
	params := &pagination.PaginationParams{Page: 1, PerPage: 100}
	for {
		page, total, err := s.invoiceRepo.List(ctx, &repository.InvoiceFilterParams{
			Pagination: params,
			SortBy:     "issue_date",
			SortOrder:  "asc",
		})
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) == 0 || int64(len(all)) >= total {
			return all, nil
		}
		params.Page++
	}
}

// GetInvoice returns one of the owner's invoices.
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	return inv, nil
}

// DeleteInvoice removes one of the owner's invoices.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetInvoice(ctx, id); err != nil {
		return err
	}
	return s.invoiceRepo.Delete(ctx, id)
}
