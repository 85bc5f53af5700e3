package handler

import (
	"time"

	prescriptionapp "github.com/pharmacy/backend/internal/application/prescription"
	"github.com/pharmacy/backend/internal/domain/prescription"
	"github.com/pharmacy/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Uploaded prescription files are images or PDFs of bounded size
const maxPrescriptionFileSize = 10 << 20 // 10 MiB

var allowedPrescriptionTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// PrescriptionHandler handles prescription upload and review HTTP requests
type PrescriptionHandler struct {
	BaseHandler
	prescriptions *prescriptionapp.Service
}

// NewPrescriptionHandler creates a new prescription handler
func NewPrescriptionHandler(prescriptionService *prescriptionapp.Service) *PrescriptionHandler {
	return &PrescriptionHandler{prescriptions: prescriptionService}
}

// PrescriptionResponse is the wire form of a prescription submission
type PrescriptionResponse struct {
	ID              uuid.UUID  `json:"id"`
	OrderID         uuid.UUID  `json:"order_id"`
	Status          string     `json:"status"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func toPrescriptionResponse(p *prescription.Prescription) PrescriptionResponse {
	return PrescriptionResponse{
		ID:              p.ID,
		OrderID:         p.OrderID,
		Status:          string(p.Status),
		RejectionReason: p.RejectionReason,
		ReviewedAt:      p.ReviewedAt,
		CreatedAt:       p.CreatedAt,
	}
}

// Upload attaches a prescription file to the customer's order
func (h *PrescriptionHandler) Upload(c *gin.Context) {
	uid, err := userID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	orderID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order id")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Missing prescription file")
		return
	}
	if fileHeader.Size > maxPrescriptionFileSize {
		h.BadRequest(c, "Prescription file exceeds the size limit")
		return
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if !allowedPrescriptionTypes[contentType] {
		h.BadRequest(c, "Prescription file must be an image or a PDF")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Unreadable prescription file")
		return
	}
	defer file.Close()

	p, err := h.prescriptions.Upload(c.Request.Context(), prescriptionapp.UploadInput{
		OrderID:     orderID,
		CustomerID:  uid,
		Filename:    fileHeader.Filename,
		ContentType: contentType,
		Body:        file,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toPrescriptionResponse(p))
}

// ListPending returns unreviewed submissions for the pharmacist queue
func (h *PrescriptionHandler) ListPending(c *gin.Context) {
	var req struct {
		Offset int `form:"offset" binding:"min=0"`
		Limit  int `form:"limit" binding:"min=0,max=100"`
	}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}
	if req.Limit == 0 {
		req.Limit = 20
	}

	pending, err := h.prescriptions.ListPending(c.Request.Context(), req.Offset, req.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]PrescriptionResponse, 0, len(pending))
	for i := range pending {
		responses = append(responses, toPrescriptionResponse(&pending[i]))
	}
	h.SuccessWithMeta(c, responses, req.Offset, req.Limit, len(responses))
}

// FileURL returns a short-lived link to the uploaded file for review
func (h *PrescriptionHandler) FileURL(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid prescription id")
		return
	}

	url, err := h.prescriptions.FileURL(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"url": url})
}

// Approve records a pharmacist approval and releases the order for payment
func (h *PrescriptionHandler) Approve(c *gin.Context) {
	pharmacistID, ok := middleware.UserIDFrom(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid prescription id")
		return
	}

	if err := h.prescriptions.Approve(c.Request.Context(), id, pharmacistID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

type rejectPrescriptionRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Reject records a pharmacist rejection and cancels the order
func (h *PrescriptionHandler) Reject(c *gin.Context) {
	pharmacistID, ok := middleware.UserIDFrom(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid prescription id")
		return
	}
	var req rejectPrescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Rejection reason is required")
		return
	}

	if err := h.prescriptions.Reject(c.Request.Context(), id, pharmacistID, req.Reason); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
