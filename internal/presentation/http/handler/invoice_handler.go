package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/quickbill-api/internal/application/service"
	"github.com/sangkips/quickbill-api/internal/domain/entity"
	"github.com/sangkips/quickbill-api/internal/presentation/http/dto/request"
	"github.com/sangkips/quickbill-api/internal/presentation/http/dto/response"
	"github.com/sangkips/quickbill-api/pkg/htmlview"
	"github.com/sangkips/quickbill-api/pkg/logger"
	"github.com/sangkips/quickbill-api/pkg/pagination"
	"github.com/sangkips/quickbill-api/pkg/spreadsheet"
	"go.uber.org/zap"
)

// InvoiceHandler handles invoice editing, finalization and lookup
type InvoiceHandler struct {
	invoices  *service.InvoiceService
	documents *service.DocumentService
	html      *htmlview.Renderer
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoices *service.InvoiceService, documents *service.DocumentService, html *htmlview.Renderer) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, documents: documents, html: html}
}

// NewDraft returns a defaulted draft
// @Summary New draft
// @Description Defaulted invoice; the issuer is prefilled for signed-in users
// @Tags invoices
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /invoices/draft [post]
func (h *InvoiceHandler) NewDraft(c *gin.Context) {
	draft, err := h.invoices.NewDraft(c.Request.Context(), GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Draft created", draft)
}

// EditDraft applies one edit to a draft and returns the new draft
// @Summary Edit draft
// @Tags invoices
// @Accept json
// @Produce json
// @Param request body request.EditInvoiceRequest true "Draft and edit"
// @Success 200 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /invoices/draft/edit [post]
func (h *InvoiceHandler) EditDraft(c *gin.Context) {
	var req request.EditInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	next, err := h.invoices.ApplyEdit(&service.EditInput{
		Invoice: req.Invoice,
		Op:      service.EditOp(req.Op),
		Index:   req.Index,
		To:      req.To,
		Value:   req.Value,
		Party:   req.Party,
		Item:    req.Item,
		TaxRate: req.TaxRate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Draft updated", next)
}

// Preview validates and renders a draft
// @Summary Preview draft
// @Tags invoices
// @Accept json
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /invoices/preview [post]
func (h *InvoiceHandler) Preview(c *gin.Context) {
	var inv entity.Invoice
	if err := c.ShouldBindJSON(&inv); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	response.OK(c, "Preview rendered", h.invoices.Preview(&inv))
}

// PreviewHTML renders a draft as an HTML page
// @Summary Preview draft as HTML
// @Tags invoices
// @Accept json
// @Produce html
// @Router /invoices/preview/html [post]
func (h *InvoiceHandler) PreviewHTML(c *gin.Context) {
	var inv entity.Invoice
	if err := c.ShouldBindJSON(&inv); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	h.writeHTML(c, service.RenderDocument(&inv))
}

// Finalize stores the invoice when the session's entitlement allows it
// @Summary Finalize invoice
// @Tags invoices
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Idempotency key"
// @Success 201 {object} response.APIResponse
// @Failure 403 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /invoices [post]
func (h *InvoiceHandler) Finalize(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	var inv entity.Invoice
	if err := c.ShouldBindJSON(&inv); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	out, err := h.invoices.Finalize(c.Request.Context(), &service.FinalizeInput{Invoice: inv, Session: session})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Invoice created successfully", out)
}

// ListInvoices lists the caller's invoices
// @Summary List invoices
// @Tags invoices
// @Produce json
// @Param page query int false "Page number"
// @Param per_page query int false "Items per page"
// @Param search query string false "Number or recipient"
// @Success 200 {object} response.APIResponse
// @Router /invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	var q request.ListInvoicesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.invoices.ListInvoices(c.Request.Context(), &service.ListInvoicesInput{
		Pagination: &pagination.PaginationParams{Page: q.Page, PerPage: q.PerPage},
		Search:     q.Search,
		SortBy:     q.SortBy,
		SortOrder:  q.SortOrder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, "Invoices retrieved successfully", result)
}

// ExportSpreadsheet downloads every invoice of the caller as xlsx
// @Summary Export invoices as xlsx
// @Tags invoices
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Router /invoices/export.xlsx [get]
func (h *InvoiceHandler) ExportSpreadsheet(c *gin.Context) {
	invoices, err := h.invoices.AllInvoices(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	body, err := spreadsheet.Invoices(invoices)
	if err != nil {
		logger.FromContext(c.Request.Context()).Error("spreadsheet export failed", zap.Error(err))
		response.ErrorWithCode(c, http.StatusBadGateway, "Could not generate the spreadsheet, please try again")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+spreadsheet.FileName+`"`)
	c.Data(http.StatusOK, spreadsheet.ContentType, body)
}

// GetInvoice returns one invoice with its totals
// @Summary Get invoice
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	inv, err := h.invoices.GetInvoice(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Invoice retrieved successfully", inv)
}

// GetDocument returns the rendered document of an invoice
// @Summary Get invoice document
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} response.APIResponse
// @Router /invoices/{id}/document [get]
func (h *InvoiceHandler) GetDocument(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	doc, _, err := h.documents.GetDocument(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Document rendered", doc)
}

// GetPreview renders a stored invoice as an HTML page
// @Summary Invoice HTML preview
// @Tags invoices
// @Produce html
// @Param id path string true "Invoice ID"
// @Router /invoices/{id}/preview [get]
func (h *InvoiceHandler) GetPreview(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	doc, _, err := h.documents.GetDocument(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.writeHTML(c, doc)
}

// DeleteInvoice deletes one of the caller's invoices
// @Summary Delete invoice
// @Tags invoices
// @Param id path string true "Invoice ID"
// @Success 200 {object} response.APIResponse
// @Router /invoices/{id} [delete]
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.invoices.DeleteInvoice(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Invoice deleted successfully", nil)
}

func (h *InvoiceHandler) writeHTML(c *gin.Context, doc *entity.Document) {
	body, err := h.html.Render(doc)
	if err != nil {
		logger.FromContext(c.Request.Context()).Error("html preview failed", zap.Error(err))
		response.InternalServerError(c, "Could not render the preview")
		return
	}
	c.Data(http.StatusOK, htmlview.ContentType, body)
}
