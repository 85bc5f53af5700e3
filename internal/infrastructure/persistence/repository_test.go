package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/pharmacy/backend/internal/domain/cart"
	"github.com/pharmacy/backend/internal/domain/catalog"
	"github.com/pharmacy/backend/internal/domain/inventory"
	"github.com/pharmacy/backend/internal/domain/order"
	"github.com/pharmacy/backend/internal/domain/prescription"
	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&catalog.Product{},
		&inventory.Batch{},
		&order.Order{},
		&order.Item{},
		&prescription.Prescription{},
		&cart.ShadowItem{},
	))
	require.NoError(t, EnsureOneActiveOrderIndex(db))
	return db
}

func createBatch(t *testing.T, db *gorm.DB, productID uuid.UUID, number string, qty int, expiry *time.Time) *inventory.Batch {
	t.Helper()
	b, err := inventory.NewBatch(productID, number, qty, decimal.NewFromFloat(9.90), expiry)
	require.NoError(t, err)
	require.NoError(t, db.Create(b).Error)
	return b
}

func TestBatchRepository_FindSellableFEFO(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBatchRepository(db)
	ctx := context.Background()
	productID := uuid.New()

	soon := time.Now().AddDate(0, 1, 0)
	later := time.Now().AddDate(0, 6, 0)
	past := time.Now().AddDate(0, 0, -1)

	createBatch(t, db, productID, "LATER", 10, &later)
	createBatch(t, db, productID, "SOON", 10, &soon)
	createBatch(t, db, productID, "NO-EXPIRY", 10, nil)
	createBatch(t, db, productID, "EXPIRED", 10, &past)

	blocked := createBatch(t, db, productID, "BLOCKED", 10, &soon)
	blocked.Block()
	require.NoError(t, repo.Save(ctx, blocked))

	drained := createBatch(t, db, productID, "DRAINED", 5, &soon)
	drained.Deduct(5)
	require.NoError(t, repo.Save(ctx, drained))

	// another product's stock must not leak in
	createBatch(t, db, uuid.New(), "OTHER", 10, &soon)

	batches, err := repo.FindSellableFEFO(ctx, productID)
	require.NoError(t, err)
	require.Len(t, batches, 3)
	assert.Equal(t, "SOON", batches[0].BatchNumber)
	assert.Equal(t, "LATER", batches[1].BatchNumber)
	assert.Equal(t, "NO-EXPIRY", batches[2].BatchNumber, "no expiry sorts last")
}

func TestBatchRepository_FindLatestRestockTarget(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBatchRepository(db)
	ctx := context.Background()
	productID := uuid.New()

	soon := time.Now().AddDate(0, 1, 0)
	later := time.Now().AddDate(0, 6, 0)
	createBatch(t, db, productID, "SOON", 10, &soon)
	createBatch(t, db, productID, "LATER", 10, &later)

	target, err := repo.FindLatestRestockTarget(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, "LATER", target.BatchNumber)

	_, err = repo.FindLatestRestockTarget(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestBatchRepository_FindByBatchNumber(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBatchRepository(db)
	ctx := context.Background()

	createBatch(t, db, uuid.New(), "LOT-42", 10, nil)

	found, err := repo.FindByBatchNumber(ctx, "LOT-42")
	require.NoError(t, err)
	assert.Equal(t, 10, found.CurrentQuantity)

	_, err = repo.FindByBatchNumber(ctx, "LOT-MISSING")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestOrderRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	customerID := uuid.New()
	o := order.NewOrder(customerID)
	require.NoError(t, o.AddItem(uuid.New(), 2, decimal.NewFromFloat(100.00)))
	require.NoError(t, o.FinishCheckout())
	require.NoError(t, repo.Save(ctx, o))

	found, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusReadyForPayment, found.Status)
	require.Len(t, found.Items, 1)
	assert.True(t, found.TotalAmount.Equal(decimal.NewFromInt(200)))
}

func TestOrderRepository_FindActiveByCustomer(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()
	customerID := uuid.New()

	_, err := repo.FindActiveByCustomer(ctx, customerID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	done := order.NewOrder(customerID)
	require.NoError(t, done.AddItem(uuid.New(), 1, decimal.NewFromInt(10)))
	require.NoError(t, done.FinishCheckout())
	require.NoError(t, done.MarkPaid())
	require.NoError(t, repo.Save(ctx, done))

	// a paid order does not block a new checkout
	_, err = repo.FindActiveByCustomer(ctx, customerID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	active := order.NewOrder(customerID)
	require.NoError(t, active.AddItem(uuid.New(), 1, decimal.NewFromInt(10)))
	require.NoError(t, active.FinishCheckout())
	require.NoError(t, repo.Save(ctx, active))

	found, err := repo.FindActiveByCustomer(ctx, customerID)
	require.NoError(t, err)
	assert.Equal(t, active.ID, found.ID)
}

func TestOrderRepository_SecondActiveOrderRefusedByIndex(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()
	customerID := uuid.New()

	first := order.NewOrder(customerID)
	require.NoError(t, first.AddItem(uuid.New(), 1, decimal.NewFromInt(10)))
	require.NoError(t, first.FinishCheckout())
	require.NoError(t, repo.Save(ctx, first))

	// a second active order for the same customer hits the partial unique
	// index even though no existence check ran
	second := order.NewOrder(customerID)
	require.NoError(t, second.AddItem(uuid.New(), 1, decimal.NewFromInt(10)))
	require.NoError(t, second.FinishCheckout())
	err := repo.Save(ctx, second)
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	// other customers and settled orders are unaffected
	other := order.NewOrder(uuid.New())
	require.NoError(t, other.AddItem(uuid.New(), 1, decimal.NewFromInt(10)))
	require.NoError(t, other.FinishCheckout())
	require.NoError(t, repo.Save(ctx, other))

	require.NoError(t, first.MarkPaid())
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))
}

func TestOrderRepository_FindByPaymentIntentID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	o := order.NewOrder(uuid.New())
	require.NoError(t, o.AddItem(uuid.New(), 1, decimal.NewFromInt(10)))
	require.NoError(t, o.FinishCheckout())
	o.PaymentIntentID = "pi_abc"
	require.NoError(t, repo.Save(ctx, o))

	found, err := repo.FindByPaymentIntentID(ctx, "pi_abc")
	require.NoError(t, err)
	assert.Equal(t, o.ID, found.ID)

	_, err = repo.FindByPaymentIntentID(ctx, "pi_missing")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestProductRepository_FindStorefront(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	vitamin, err := catalog.NewProduct("Vitamin C 500mg", catalog.CategorySupplement, false)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, vitamin))

	hidden, err := catalog.NewProduct("Hidden Product", catalog.CategoryOTC, false)
	require.NoError(t, err)
	hidden.Deactivate()
	require.NoError(t, repo.Save(ctx, hidden))

	products, err := repo.FindStorefront(ctx, catalog.StorefrontFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "vitamin-c-500mg", products[0].Slug)

	products, err = repo.FindStorefront(ctx, catalog.StorefrontFilter{Search: "vitamin", Limit: 10})
	require.NoError(t, err)
	assert.Len(t, products, 1)

	products, err = repo.FindStorefront(ctx, catalog.StorefrontFilter{Category: catalog.CategoryOTC, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestPrescriptionRepository_FindPending(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPrescriptionRepository(db)
	ctx := context.Background()

	older, err := prescription.NewPrescription(uuid.New(), uuid.New(), "prescriptions/a.jpg")
	require.NoError(t, err)
	older.CreatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, repo.Save(ctx, older))

	newer, err := prescription.NewPrescription(uuid.New(), uuid.New(), "prescriptions/b.jpg")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, newer))

	reviewed, err := prescription.NewPrescription(uuid.New(), uuid.New(), "prescriptions/c.jpg")
	require.NoError(t, err)
	require.NoError(t, reviewed.Approve(uuid.New()))
	require.NoError(t, repo.Save(ctx, reviewed))

	pending, err := repo.FindPending(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, older.ID, pending[0].ID, "oldest submission reviewed first")
}

func TestCartShadowRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCartShadowRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	first := uuid.New()
	second := uuid.New()
	require.NoError(t, repo.Replace(ctx, userID, []cart.Line{
		{ProductID: first, Quantity: 2},
		{ProductID: second, Quantity: 1},
	}))

	lines, err := repo.Find(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, lines, 2)

	// replace swaps the rows, not merges
	require.NoError(t, repo.Replace(ctx, userID, []cart.Line{{ProductID: first, Quantity: 7}}))
	lines, err = repo.Find(ctx, userID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 7, lines[0].Quantity)

	require.NoError(t, repo.Clear(ctx, userID))
	lines, err = repo.Find(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}
