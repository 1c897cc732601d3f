package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/quickbill-api/internal/application/service"
	"github.com/sangkips/quickbill-api/internal/presentation/http/dto/request"
	"github.com/sangkips/quickbill-api/internal/presentation/http/dto/response"
)

// statusClientClosedRequest is logged when the caller goes away mid-export.
const statusClientClosedRequest = 499

// ExportHandler handles PDF exports
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler creates a new export handler
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Export generates the PDF and keeps a copy in the artifact store
// @Summary Export invoice to PDF
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param request body request.ExportInvoiceRequest false "Export options"
// @Success 201 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Failure 502 {object} response.APIResponse
// @Router /invoices/{id}/export [post]
func (h *ExportHandler) Export(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	session, ok := requireSession(c)
	if !ok {
		return
	}

	var req request.ExportInvoiceRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}
	}
	store := req.Store == nil || *req.Store

	out, err := h.exports.Export(c.Request.Context(), &service.ExportInput{
		InvoiceID: id,
		Owner:     ownerFolder(session.Identity()),
		Store:     store,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, "Invoice exported", out)
}

// DownloadPDF generates the PDF and sends it as an attachment
// @Summary Download invoice PDF
// @Tags invoices
// @Produce application/pdf
// @Param id path string true "Invoice ID"
// @Router /invoices/{id}/pdf [get]
func (h *ExportHandler) DownloadPDF(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	out, err := h.exports.Export(c.Request.Context(), &service.ExportInput{InvoiceID: id})
	if err != nil {
		h.fail(c, err)
		return
	}

	art := out.Artifact
	c.Header("Content-Disposition", `attachment; filename="`+art.Name+`"`)
	c.Header("X-Checksum-SHA256", art.Checksum)
	c.Data(http.StatusOK, art.ContentType, art.Content)
}

func (h *ExportHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, context.Canceled) {
		// The client is gone, nothing to write to
		c.Status(statusClientClosedRequest)
		return
	}
	response.Error(c, err)
}
