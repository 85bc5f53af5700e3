package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pharmacy/backend/internal/domain/order"
	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements order.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

var _ order.OrderRepository = (*GormOrderRepository)(nil)

// NewGormOrderRepository creates a new order repository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID retrieves an order with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&o, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByIDForUpdate retrieves an order with a row lock. Concurrent webhook
// deliveries for the same order queue up on this lock.
func (r *GormOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		First(&o, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByPaymentIntentID resolves the order holding a processor intent reference
func (r *GormOrderRepository) FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*order.Order, error) {
	var o order.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&o, "payment_intent_id = ?", paymentIntentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindActiveByCustomer returns the customer's checkout-blocking order
func (r *GormOrderRepository) FindActiveByCustomer(ctx context.Context, customerID uuid.UUID) (*order.Order, error) {
	var o order.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("customer_id = ? AND status IN ?", customerID, order.ActiveStatuses).
		First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByCustomer returns the customer's orders, newest first
func (r *GormOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, offset, limit int) ([]order.Order, error) {
	var orders []order.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

// Save persists an order and its items. A unique-index violation surfaces as
// ErrAlreadyExists so callers can map it to their own conflict error.
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	err := r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(o).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	return err
}

// EnsureOneActiveOrderIndex creates the partial unique index that lets the
// database itself refuse a second checkout-blocking order for a customer.
// The in-transaction existence check in checkout gives the friendly error;
// this index closes the race between two concurrent checkouts.
func EnsureOneActiveOrderIndex(db *gorm.DB) error {
	quoted := make([]string, len(order.ActiveStatuses))
	for i, status := range order.ActiveStatuses {
		quoted[i] = "'" + string(status) + "'"
	}
	stmt := fmt.Sprintf(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_one_active_per_customer "+
			"ON orders (customer_id) WHERE status IN (%s)",
		strings.Join(quoted, ", "))
	return db.Exec(stmt).Error
}
