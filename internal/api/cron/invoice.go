package cron

import (
	"net/http"

	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/service"
	"github.com/gin-gonic/gin"
)

// InvoiceHandler handles invoice related cron jobs. An external scheduler
// hits these endpoints; they are mounted outside the public /v1 group.
type InvoiceHandler struct {
	invoiceService service.InvoiceService
	logger         *logger.Logger
}

// NewInvoiceHandler creates a new invoice cron handler
func NewInvoiceHandler(invoiceService service.InvoiceService, logger *logger.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		logger:         logger,
	}
}

// @Summary Generate invoices
// @Description Generate invoices for all subscription cycles that have ended
// @Tags Cron
// @Produce json
// @Success 200 {object} service.GenerateInvoicesResult
// @Failure 500 {object} ierr.ErrorResponse
// @Router /cron/invoices/generate [post]
func (h *InvoiceHandler) GenerateInvoices(c *gin.Context) {
	h.logger.Infow("starting invoice generation run")

	result, err := h.invoiceService.GenerateInvoices(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}
