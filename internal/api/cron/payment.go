package cron

import (
	"net/http"

	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/service"
	"github.com/gin-gonic/gin"
)

// PaymentHandler handles payment related cron jobs
type PaymentHandler struct {
	paymentService service.PaymentService
	logger         *logger.Logger
}

// NewPaymentHandler creates a new payment cron handler
func NewPaymentHandler(paymentService service.PaymentService, logger *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

// @Summary Retry failed payments
// @Description Re-run payment processing for invoices with failed payments
// @Tags Cron
// @Produce json
// @Success 200 {object} service.RetryFailedPaymentsResult
// @Failure 500 {object} ierr.ErrorResponse
// @Router /cron/payments/retry [post]
func (h *PaymentHandler) RetryFailedPayments(c *gin.Context) {
	h.logger.Infow("starting failed payment retry run")

	result, err := h.paymentService.RetryFailedPayments(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}
