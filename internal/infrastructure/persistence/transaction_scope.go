package persistence

import (
	"context"

	checkoutapp "github.com/pharmacy/backend/internal/application/checkout"
	paymentapp "github.com/pharmacy/backend/internal/application/payment"
	prescriptionapp "github.com/pharmacy/backend/internal/application/prescription"
	"github.com/pharmacy/backend/internal/domain/catalog"
	"github.com/pharmacy/backend/internal/domain/inventory"
	"github.com/pharmacy/backend/internal/domain/order"
	"github.com/pharmacy/backend/internal/domain/prescription"
	"gorm.io/gorm"
)

// txRepositories bundles repositories bound to one open transaction. It
// satisfies the per-service transactional repository interfaces.
type txRepositories struct {
	orders        *GormOrderRepository
	products      *GormProductRepository
	batches       *GormBatchRepository
	prescriptions *GormPrescriptionRepository
}

func newTxRepositories(tx *gorm.DB) *txRepositories {
	return &txRepositories{
		orders:        NewGormOrderRepository(tx),
		products:      NewGormProductRepository(tx),
		batches:       NewGormBatchRepository(tx),
		prescriptions: NewGormPrescriptionRepository(tx),
	}
}

func (t *txRepositories) Orders() order.OrderRepository       { return t.orders }
func (t *txRepositories) Products() catalog.ProductRepository { return t.products }
func (t *txRepositories) Batches() inventory.BatchRepository  { return t.batches }
func (t *txRepositories) Prescriptions() prescription.PrescriptionRepository {
	return t.prescriptions
}

// GormCheckoutTransactionScope runs checkout work in one transaction
type GormCheckoutTransactionScope struct {
	database *Database
}

var _ checkoutapp.TransactionScope = (*GormCheckoutTransactionScope)(nil)

// NewGormCheckoutTransactionScope creates a checkout transaction scope
func NewGormCheckoutTransactionScope(database *Database) *GormCheckoutTransactionScope {
	return &GormCheckoutTransactionScope{database: database}
}

// Execute runs fn inside a database transaction
func (s *GormCheckoutTransactionScope) Execute(ctx context.Context, fn func(repos checkoutapp.TransactionalRepositories) error) error {
	return s.database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newTxRepositories(tx))
	})
}

// GormPaymentTransactionScope runs payment reconciliation in one transaction
type GormPaymentTransactionScope struct {
	database *Database
}

var _ paymentapp.TransactionScope = (*GormPaymentTransactionScope)(nil)

// NewGormPaymentTransactionScope creates a payment transaction scope
func NewGormPaymentTransactionScope(database *Database) *GormPaymentTransactionScope {
	return &GormPaymentTransactionScope{database: database}
}

// Execute runs fn inside a database transaction
func (s *GormPaymentTransactionScope) Execute(ctx context.Context, fn func(repos paymentapp.TransactionalRepositories) error) error {
	return s.database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newTxRepositories(tx))
	})
}

// GormPrescriptionTransactionScope runs prescription review in one transaction
type GormPrescriptionTransactionScope struct {
	database *Database
}

var _ prescriptionapp.TransactionScope = (*GormPrescriptionTransactionScope)(nil)

// NewGormPrescriptionTransactionScope creates a prescription transaction scope
func NewGormPrescriptionTransactionScope(database *Database) *GormPrescriptionTransactionScope {
	return &GormPrescriptionTransactionScope{database: database}
}

// Execute runs fn inside a database transaction
func (s *GormPrescriptionTransactionScope) Execute(ctx context.Context, fn func(repos prescriptionapp.TransactionalRepositories) error) error {
	return s.database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newTxRepositories(tx))
	})
}
