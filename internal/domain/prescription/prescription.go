package prescription

import (
	"time"

	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Status represents the review state of a prescription submission
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// IsValid checks if the status is a known Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Prescription binds a customer's uploaded prescription file to an order.
// One submission per order; a pharmacist's decision is terminal.
type Prescription struct {
	shared.BaseEntity
	OrderID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	CustomerID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	FileKey         string     `gorm:"size:512;not null"`
	Status          Status     `gorm:"size:20;not null;index"`
	ReviewedBy      *uuid.UUID `gorm:"type:uuid"`
	ReviewedAt      *time.Time
	RejectionReason string `gorm:"size:500"`
}

// TableName returns the database table name
func (Prescription) TableName() string {
	return "prescriptions"
}

// NewPrescription creates a pending submission for an order
func NewPrescription(orderID, customerID uuid.UUID, fileKey string) (*Prescription, error) {
	if fileKey == "" {
		return nil, shared.NewDomainError("INVALID_FILE", "Prescription file reference cannot be empty")
	}
	return &Prescription{
		BaseEntity: shared.NewBaseEntity(),
		OrderID:    orderID,
		CustomerID: customerID,
		FileKey:    fileKey,
		Status:     StatusPending,
	}, nil
}

// IsPending reports whether the submission still awaits review
func (p *Prescription) IsPending() bool {
	return p.Status == StatusPending
}

func (p *Prescription) review(reviewerID uuid.UUID) error {
	if !p.IsPending() {
		return shared.NewInvalidStateError("Prescription already reviewed")
	}
	now := time.Now()
	p.ReviewedBy = &reviewerID
	p.ReviewedAt = &now
	p.UpdatedAt = now
	return nil
}

// Approve records a pharmacist approval. Fails on an already-reviewed row.
func (p *Prescription) Approve(pharmacistID uuid.UUID) error {
	if err := p.review(pharmacistID); err != nil {
		return err
	}
	p.Status = StatusApproved
	p.RejectionReason = ""
	return nil
}

// Reject records a pharmacist rejection with a reason. Fails on an
// already-reviewed row.
func (p *Prescription) Reject(pharmacistID uuid.UUID, reason string) error {
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason cannot be empty")
	}
	if err := p.review(pharmacistID); err != nil {
		return err
	}
	p.Status = StatusRejected
	p.RejectionReason = reason
	return nil
}
