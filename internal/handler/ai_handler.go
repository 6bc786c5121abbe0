package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ridwanfathin/invoice-service/internal/model"
	"github.com/ridwanfathin/invoice-service/internal/service"
)

// AIHandler serves the AI assisted endpoints
type AIHandler struct {
	invoices  service.InvoiceService
	assistant service.AssistantService
	errors    ErrorMapper
}

// NewAIHandler creates a new AI handler
func NewAIHandler(invoices service.InvoiceService, assistant service.AssistantService, errs ErrorMapper) *AIHandler {
	return &AIHandler{
		invoices:  invoices,
		assistant: assistant,
		errors:    errs,
	}
}

// RegisterRoutes registers the handler's routes. The extra handlers run before each
// route, which is where rate limiting is attached.
func (h *AIHandler) RegisterRoutes(router gin.IRouter, handlers ...gin.HandlerFunc) {
	ai := router.Group("/ai", handlers...)
	ai.POST("/parse-text", h.ParseText)
	ai.POST("/generate-reminder", h.GenerateReminder)
	ai.GET("/dashboard-summary", h.DashboardSummary)
}

// ParseText handles the POST /ai/parse-text endpoint
// @Summary Create an invoice from free text
// @Description The text is sent to the language model; its answer is validated field by field before the invoice is stored.
// @Tags ai
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.ParseTextRequest true "Free text description"
// @Success 201 {object} domain.Invoice "Invoice created"
// @Failure 400 {object} model.ErrorResponse "Text missing"
// @Failure 422 {object} model.ErrorResponse "Model output rejected"
// @Failure 429 {object} model.ErrorResponse "Rate limit exceeded"
// @Failure 502 {object} model.ErrorResponse "Model unavailable"
// @Router /v1/ai/parse-text [post]
func (h *AIHandler) ParseText(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req model.ParseTextRequest
	if err := bindJSON(c, &req); err != nil {
		respondBadRequest(c, ErrInvalidInput, newErrorDetail("text", "is required"))
		return
	}

	invoice, err := h.invoices.CreateFromText(c.Request.Context(), userID, req.Text)
	if err != nil {
		h.errors.respond(c, "parse_text", err)
		return
	}

	respondCreated(c, invoice)
}

// GenerateReminder handles the POST /ai/generate-reminder endpoint
// @Summary Draft a payment reminder
// @Tags ai
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.ReminderRequest true "Invoice to remind about"
// @Success 200 {object} model.ReminderResponse
// @Failure 403 {object} model.ErrorResponse "Not the owner"
// @Failure 404 {object} model.ErrorResponse "Invoice not found"
// @Failure 502 {object} model.ErrorResponse "Model unavailable"
// @Router /v1/ai/generate-reminder [post]
func (h *AIHandler) GenerateReminder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req model.ReminderRequest
	if err := bindJSON(c, &req); err != nil {
		respondBadRequest(c, ErrInvalidInput, newErrorDetail("invoiceId", "is required"))
		return
	}

	text, err := h.assistant.DraftReminder(c.Request.Context(), userID, req.InvoiceID)
	if err != nil {
		h.errors.respond(c, "generate_reminder", err)
		return
	}

	respondOK(c, model.ReminderResponse{Reminder: text})
}

// DashboardSummary handles the GET /ai/dashboard-summary endpoint
// @Summary Dashboard totals and insights
// @Tags ai
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.DashboardSummary
// @Failure 401 {object} model.ErrorResponse "Unauthorized"
// @Router /v1/ai/dashboard-summary [get]
func (h *AIHandler) DashboardSummary(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	summary, err := h.assistant.DashboardSummary(c.Request.Context(), userID)
	if err != nil {
		h.errors.respond(c, "dashboard_summary", err)
		return
	}

	respondOK(c, summary)
}
