package handler

import (
	"io"
	"net/http"

	paymentapp "github.com/pharmacy/backend/internal/application/payment"
	"github.com/pharmacy/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// WebhookVerifier checks a webhook delivery's signature and decodes it
type WebhookVerifier interface {
	VerifyWebhook(payload []byte, signature string) (*paymentapp.Event, error)
}

// PaymentHandler handles payment intent and webhook HTTP requests
type PaymentHandler struct {
	BaseHandler
	payments *paymentapp.Service
	verifier WebhookVerifier
	logger   *zap.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *paymentapp.Service, verifier WebhookVerifier, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		payments: paymentService,
		verifier: verifier,
		logger:   logger,
	}
}

type createIntentRequest struct {
	OrderID string `json:"order_id" binding:"required,uuid"`
}

// IntentResponse is the wire form of a payment intent
type IntentResponse struct {
	IntentID     string `json:"intent_id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}

// CreateIntent opens a processor payment intent for the customer's order
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	uid, err := userID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	var req createIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}
	orderID, err := parseUUID(req.OrderID)
	if err != nil {
		h.BadRequest(c, "Invalid order id")
		return
	}

	intent, err := h.payments.CreateIntent(c.Request.Context(), uid, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, IntentResponse{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       intent.Status,
	})
}

type refundRequest struct {
	Amount string `json:"amount"`
}

// Refund starts a refund of a paid order. The body may carry an amount for a
// partial refund; an empty body refunds the full order total.
func (h *PaymentHandler) Refund(c *gin.Context) {
	orderID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order id")
		return
	}

	var req refundRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.BadRequest(c, "Invalid request body")
		return
	}
	var amount *decimal.Decimal
	if req.Amount != "" {
		parsed, err := decimal.NewFromString(req.Amount)
		if err != nil {
			h.BadRequest(c, "Invalid refund amount")
			return
		}
		amount = &parsed
	}

	if err := h.payments.Refund(c.Request.Context(), orderID, amount); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Webhook receives processor event deliveries. A bad signature answers 400
// so only genuinely undelivered events are retried; handler outcomes that
// are not errors (duplicates, unknown types) answer 200 to stop redelivery.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, 1<<20))
	if err != nil {
		h.BadRequest(c, "Unreadable payload")
		return
	}

	event, err := h.verifier.VerifyWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		h.logger.Warn("webhook signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeBadRequest, "Invalid signature"))
		return
	}

	result, err := h.payments.HandleEvent(c.Request.Context(), event)
	if err != nil {
		// answer 500 so the processor redelivers after the transient failure
		h.logger.Error("webhook processing failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(dto.ErrCodeInternal, "Event processing failed"))
		return
	}

	h.Success(c, gin.H{
		"status":   string(result.Status),
		"order_id": result.OrderID,
	})
}
