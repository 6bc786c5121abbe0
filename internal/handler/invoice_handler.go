package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ridwanfathin/invoice-service/internal/domain"
	"github.com/ridwanfathin/invoice-service/internal/model"
	"github.com/ridwanfathin/invoice-service/internal/service"
)

// InvoiceRenderer turns a stored invoice into a printable document
type InvoiceRenderer interface {
	Render(invoice *domain.Invoice) ([]byte, error)
}

// InvoiceHandler handles HTTP requests for invoice records
type InvoiceHandler struct {
	invoices service.InvoiceService
	renderer InvoiceRenderer
	errors   ErrorMapper
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoices service.InvoiceService, renderer InvoiceRenderer, errs ErrorMapper) *InvoiceHandler {
	return &InvoiceHandler{
		invoices: invoices,
		renderer: renderer,
		errors:   errs,
	}
}

// RegisterRoutes registers the handler's routes on an authenticated group
func (h *InvoiceHandler) RegisterRoutes(router gin.IRouter) {
	invoices := router.Group("/invoices")
	invoices.POST("", h.CreateInvoice)
	invoices.GET("", h.ListInvoices)
	invoices.GET("/:invoiceId", h.GetInvoice)
	invoices.PUT("/:invoiceId", h.UpdateInvoice)
	invoices.DELETE("/:invoiceId", h.DeleteInvoice)
	invoices.PATCH("/:invoiceId/status", h.ChangeStatus)
	invoices.GET("/:invoiceId/pdf", h.DownloadPDF)
}

// CreateInvoice handles the POST /invoices endpoint
// @Summary Create an invoice
// @Description Create an invoice. Line totals, subtotal, tax and total are computed by the server.
// @Tags invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param invoice body model.CreateInvoiceRequest true "Invoice data"
// @Success 201 {object} domain.Invoice "Invoice created"
// @Failure 400 {object} model.ErrorResponse "Validation failed"
// @Failure 401 {object} model.ErrorResponse "Unauthorized"
// @Failure 502 {object} model.ErrorResponse "Storage failure"
// @Router /v1/invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req model.CreateInvoiceRequest
	if err := bindJSON(c, &req); err != nil {
		respondBadRequest(c, ErrInvalidInput, newErrorDetail("body", err.Error()))
		return
	}

	invoice, err := h.invoices.Create(c.Request.Context(), userID, req.ToDraft())
	if err != nil {
		h.errors.respond(c, "create_invoice", err)
		return
	}

	respondCreated(c, invoice)
}

// ListInvoices handles the GET /invoices endpoint
// @Summary List invoices
// @Description List the caller's invoices, newest first
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size, 0 for all" default(0)
// @Param offset query int false "Number of invoices to skip" default(0)
// @Success 200 {object} model.InvoiceListResponse
// @Failure 400 {object} model.ErrorResponse "Invalid query parameters"
// @Failure 401 {object} model.ErrorResponse "Unauthorized"
// @Router /v1/invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	opts, err := listOptions(c)
	if err != nil {
		respondBadRequest(c, ErrInvalidQueryParam, newErrorDetail("query", err.Error()))
		return
	}

	invoices, err := h.invoices.ListByOwner(c.Request.Context(), userID, opts)
	if err != nil {
		h.errors.respond(c, "list_invoices", err)
		return
	}
	if invoices == nil {
		invoices = []*domain.Invoice{}
	}

	respondOK(c, model.InvoiceListResponse{Items: invoices, Limit: opts.Limit, Offset: opts.Offset})
}

// GetInvoice handles the GET /invoices/{invoiceId} endpoint
// @Summary Get an invoice
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param invoiceId path string true "Invoice ID"
// @Success 200 {object} domain.Invoice
// @Failure 403 {object} model.ErrorResponse "Not the owner"
// @Failure 404 {object} model.ErrorResponse "Invoice not found"
// @Router /v1/invoices/{invoiceId} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	invoice, err := h.invoices.Get(c.Request.Context(), userID, c.Param("invoiceId"))
	if err != nil {
		h.errors.respond(c, "get_invoice", err)
		return
	}

	respondOK(c, invoice)
}

// UpdateInvoice handles the PUT /invoices/{invoiceId} endpoint
// @Summary Update an invoice
// @Description Merge the provided fields. Sending items replaces all of them and recomputes the totals.
// @Tags invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param invoiceId path string true "Invoice ID"
// @Param invoice body model.UpdateInvoiceRequest true "Fields to change"
// @Success 200 {object} domain.Invoice
// @Failure 400 {object} model.ErrorResponse "Validation failed"
// @Failure 403 {object} model.ErrorResponse "Not the owner"
// @Failure 404 {object} model.ErrorResponse "Invoice not found"
// @Router /v1/invoices/{invoiceId} [put]
func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req model.UpdateInvoiceRequest
	if err := bindJSON(c, &req); err != nil {
		respondBadRequest(c, ErrInvalidInput, newErrorDetail("body", err.Error()))
		return
	}

	invoice, err := h.invoices.Update(c.Request.Context(), userID, c.Param("invoiceId"), req.ToPatch())
	if err != nil {
		h.errors.respond(c, "update_invoice", err)
		return
	}

	respondOK(c, invoice)
}

// DeleteInvoice handles the DELETE /invoices/{invoiceId} endpoint
// @Summary Delete an invoice
// @Tags invoices
// @Security BearerAuth
// @Param invoiceId path string true "Invoice ID"
// @Success 204 "Invoice deleted"
// @Failure 403 {object} model.ErrorResponse "Not the owner"
// @Failure 404 {object} model.ErrorResponse "Invoice not found"
// @Router /v1/invoices/{invoiceId} [delete]
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.invoices.Delete(c.Request.Context(), userID, c.Param("invoiceId")); err != nil {
		h.errors.respond(c, "delete_invoice", err)
		return
	}

	respondNoContent(c)
}

// ChangeStatus handles the PATCH /invoices/{invoiceId}/status endpoint
// @Summary Mark an invoice paid or unpaid
// @Tags invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param invoiceId path string true "Invoice ID"
// @Param status body model.StatusRequest true "New status, Paid or Unpaid"
// @Success 200 {object} domain.Invoice
// @Failure 400 {object} model.ErrorResponse "Unknown status"
// @Failure 403 {object} model.ErrorResponse "Not the owner"
// @Failure 404 {object} model.ErrorResponse "Invoice not found"
// @Router /v1/invoices/{invoiceId}/status [patch]
func (h *InvoiceHandler) ChangeStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req model.StatusRequest
	if err := bindJSON(c, &req); err != nil {
		respondBadRequest(c, ErrInvalidInput, newErrorDetail("status", "is required"))
		return
	}

	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		h.errors.respond(c, "change_status", err)
		return
	}

	invoice, err := h.invoices.ChangeStatus(c.Request.Context(), userID, c.Param("invoiceId"), status)
	if err != nil {
		h.errors.respond(c, "change_status", err)
		return
	}

	respondOK(c, invoice)
}

// DownloadPDF handles the GET /invoices/{invoiceId}/pdf endpoint
// @Summary Download an invoice as PDF
// @Tags invoices
// @Produce application/pdf
// @Security BearerAuth
// @Param invoiceId path string true "Invoice ID"
// @Success 200 {file} file "Invoice PDF"
// @Failure 403 {object} model.ErrorResponse "Not the owner"
// @Failure 404 {object} model.ErrorResponse "Invoice not found"
// @Router /v1/invoices/{invoiceId}/pdf [get]
func (h *InvoiceHandler) DownloadPDF(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	invoice, err := h.invoices.Get(c.Request.Context(), userID, c.Param("invoiceId"))
	if err != nil {
		h.errors.respond(c, "download_pdf", err)
		return
	}

	doc, err := h.renderer.Render(invoice)
	if err != nil {
		h.errors.Log.Error().Err(err).Str("invoice_id", invoice.ID).Msg("Failed to render invoice pdf")
		respondInternalServerError(c, ErrInternalServer)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, invoice.InvoiceNumber))
	c.Data(http.StatusOK, "application/pdf", doc)
}
