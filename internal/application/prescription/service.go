package prescription

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/pharmacy/backend/internal/application/notification"
	"github.com/pharmacy/backend/internal/domain/order"
	"github.com/pharmacy/backend/internal/domain/prescription"
	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ServiceConfig wires the prescription gate
type ServiceConfig struct {
	Prescriptions prescription.PrescriptionRepository
	Orders        order.OrderRepository
	TxScope       TransactionScope
	Storage       FileStorage
	Notifier      notification.Notifier
	URLExpiry     time.Duration
	Logger        *zap.Logger
}

// Service binds prescription uploads to orders and applies pharmacist
// decisions. It is the only writer of the order status in the review path.
type Service struct {
	prescriptions prescription.PrescriptionRepository
	orders        order.OrderRepository
	txScope       TransactionScope
	storage       FileStorage
	notifier      notification.Notifier
	urlExpiry     time.Duration
	logger        *zap.Logger
}

// NewService creates a prescription gate service
func NewService(cfg ServiceConfig) *Service {
	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = DefaultURLExpiry
	}
	return &Service{
		prescriptions: cfg.Prescriptions,
		orders:        cfg.Orders,
		txScope:       cfg.TxScope,
		storage:       cfg.Storage,
		notifier:      cfg.Notifier,
		urlExpiry:     expiry,
		logger:        cfg.Logger,
	}
}

// UploadInput carries a prescription file submission
type UploadInput struct {
	OrderID     uuid.UUID
	CustomerID  uuid.UUID
	Filename    string
	ContentType string
	Body        io.Reader
}

// Upload stores the file and creates a pending submission. The order must
// belong to the uploader and be waiting on a prescription, and may carry at
// most one submission over its lifetime. A rejection cancels the order, so
// the customer starts over with a fresh checkout rather than resubmitting.
func (s *Service) Upload(ctx context.Context, input UploadInput) (*prescription.Prescription, error) {
	o, err := s.orders.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if !o.IsOwnedBy(input.CustomerID) {
		return nil, shared.ErrForbidden
	}
	if o.Status != order.StatusAwaitingPrescription {
		return nil, shared.NewInvalidStateError("Order is not awaiting a prescription")
	}

	if _, err := s.prescriptions.FindByOrderID(ctx, input.OrderID); err == nil {
		return nil, shared.NewInvalidStateError("Order already has a prescription")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	key := fileKey(input.Filename)
	if err := s.storage.Upload(ctx, key, input.Body, input.ContentType); err != nil {
		return nil, fmt.Errorf("upload prescription file: %w", err)
	}

	p, err := prescription.NewPrescription(input.OrderID, input.CustomerID, key)
	if err != nil {
		return nil, err
	}
	if err := s.prescriptions.Save(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("prescription uploaded",
		zap.String("prescription_id", p.ID.String()),
		zap.String("order_id", input.OrderID.String()))
	return p, nil
}

// Approve records a pharmacist approval and releases the linked order for
// payment in the same transaction. The customer is notified after commit.
func (s *Service) Approve(ctx context.Context, prescriptionID, pharmacistID uuid.UUID) error {
	var orderID, customerID uuid.UUID
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := repos.Prescriptions().FindByID(ctx, prescriptionID)
		if err != nil {
			return err
		}
		if err := p.Approve(pharmacistID); err != nil {
			return err
		}

		o, err := repos.Orders().FindByID(ctx, p.OrderID)
		if err != nil {
			return err
		}
		if err := o.ApprovePrescription(); err != nil {
			return err
		}
		orderID = o.ID
		customerID = o.CustomerID

		if err := repos.Prescriptions().Save(ctx, p); err != nil {
			return err
		}
		return repos.Orders().Save(ctx, o)
	})
	if err != nil {
		return err
	}

	s.notify(ctx, notification.Message{
		CustomerID: customerID,
		Subject:    "Prescription approved",
		Body:       fmt.Sprintf("Your prescription for order %s was approved. You can now complete the payment.", orderID),
	})
	s.logger.Info("prescription approved",
		zap.String("prescription_id", prescriptionID.String()),
		zap.String("pharmacist_id", pharmacistID.String()))
	return nil
}

// Reject records a pharmacist rejection and cancels the linked order in the
// same transaction. The customer is notified with the reason after commit.
func (s *Service) Reject(ctx context.Context, prescriptionID, pharmacistID uuid.UUID, reason string) error {
	var orderID, customerID uuid.UUID
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := repos.Prescriptions().FindByID(ctx, prescriptionID)
		if err != nil {
			return err
		}
		if err := p.Reject(pharmacistID, reason); err != nil {
			return err
		}

		o, err := repos.Orders().FindByID(ctx, p.OrderID)
		if err != nil {
			return err
		}
		if err := o.Cancel("prescription rejected: " + reason); err != nil {
			return err
		}
		orderID = o.ID
		customerID = o.CustomerID

		if err := repos.Prescriptions().Save(ctx, p); err != nil {
			return err
		}
		return repos.Orders().Save(ctx, o)
	})
	if err != nil {
		return err
	}

	s.notify(ctx, notification.Message{
		CustomerID: customerID,
		Subject:    "Prescription rejected",
		Body:       fmt.Sprintf("Your prescription for order %s was rejected: %s", orderID, reason),
	})
	s.logger.Info("prescription rejected",
		zap.String("prescription_id", prescriptionID.String()),
		zap.String("reason", reason))
	return nil
}

// ListPending returns unreviewed submissions, oldest first
func (s *Service) ListPending(ctx context.Context, offset, limit int) ([]prescription.Prescription, error) {
	return s.prescriptions.FindPending(ctx, offset, limit)
}

// FileURL returns a short-lived link to the uploaded file for review
func (s *Service) FileURL(ctx context.Context, prescriptionID uuid.UUID) (string, error) {
	p, err := s.prescriptions.FindByID(ctx, prescriptionID)
	if err != nil {
		return "", err
	}
	return s.storage.PresignedURL(ctx, p.FileKey, s.urlExpiry)
}

func (s *Service) notify(ctx context.Context, msg notification.Message) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, msg); err != nil {
		s.logger.Warn("prescription notification failed", zap.Error(err))
	}
}

func fileKey(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("prescriptions/%s.%s", uuid.New(), ext)
}
