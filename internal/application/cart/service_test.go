package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/pharmacy/backend/internal/domain/cart"
	"github.com/pharmacy/backend/internal/domain/catalog"
	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, userID uuid.UUID) (*cart.Snapshot, bool, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*cart.Snapshot), args.Bool(1), args.Error(2)
}

func (m *MockCache) Put(ctx context.Context, userID uuid.UUID, snapshot *cart.Snapshot) error {
	args := m.Called(ctx, userID, snapshot)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockShadowRepository struct {
	mock.Mock
}

func (m *MockShadowRepository) Replace(ctx context.Context, userID uuid.UUID, lines []cart.Line) error {
	args := m.Called(ctx, userID, lines)
	return args.Error(0)
}

func (m *MockShadowRepository) Find(ctx context.Context, userID uuid.UUID) ([]cart.Line, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cart.Line), args.Error(1)
}

func (m *MockShadowRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindStorefront(ctx context.Context, filter catalog.StorefrontFilter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, offset, limit int) ([]catalog.Product, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

type MockStockChecker struct {
	mock.Mock
}

func (m *MockStockChecker) AvailableStock(ctx context.Context, productID uuid.UUID) (int, error) {
	args := m.Called(ctx, productID)
	return args.Int(0), args.Error(1)
}

type cartFixture struct {
	cache    *MockCache
	shadow   *MockShadowRepository
	products *MockProductRepository
	stock    *MockStockChecker
	service  *Service
}

func newFixture() *cartFixture {
	f := &cartFixture{
		cache:    new(MockCache),
		shadow:   new(MockShadowRepository),
		products: new(MockProductRepository),
		stock:    new(MockStockChecker),
	}
	f.service = NewService(f.cache, f.shadow, f.products, f.stock, zap.NewNop())
	return f
}

func activeProduct(t *testing.T) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct("Vitamin D3", catalog.CategorySupplement, false)
	require.NoError(t, err)
	return p
}

func TestGet_CacheMissRebuildsFromShadow(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	productID := uuid.New()

	f.cache.On("Get", mock.Anything, userID).Return(nil, false, nil)
	f.shadow.On("Find", mock.Anything, userID).Return([]cart.Line{{ProductID: productID, Quantity: 2}}, nil)
	f.cache.On("Put", mock.Anything, userID, mock.AnythingOfType("*cart.Snapshot")).Return(nil)

	snapshot, err := f.service.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 2, snapshot.QuantityOf(productID))
	f.cache.AssertExpectations(t)
}

func TestGet_AbsentCartReadsEmpty(t *testing.T) {
	f := newFixture()
	userID := uuid.New()

	f.cache.On("Get", mock.Anything, userID).Return(nil, false, nil)
	f.shadow.On("Find", mock.Anything, userID).Return([]cart.Line{}, nil)

	snapshot, err := f.service.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, snapshot.IsEmpty())
	f.cache.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddItem(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	product := activeProduct(t)

	f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.cache.On("Get", mock.Anything, userID).Return(&cart.Snapshot{}, true, nil)
	f.stock.On("AvailableStock", mock.Anything, product.ID).Return(10, nil)
	f.cache.On("Put", mock.Anything, userID, mock.AnythingOfType("*cart.Snapshot")).Return(nil)
	f.shadow.On("Replace", mock.Anything, userID, mock.Anything).Return(nil)

	snapshot, err := f.service.AddItem(context.Background(), userID, product.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, snapshot.QuantityOf(product.ID))

	f.service.WaitShadowSync()
	f.shadow.AssertExpectations(t)
}

func TestAddItem_ShadowWriteDoesNotBlockRequest(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	product := activeProduct(t)

	f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.cache.On("Get", mock.Anything, userID).Return(&cart.Snapshot{}, true, nil)
	f.stock.On("AvailableStock", mock.Anything, product.ID).Return(10, nil)
	f.cache.On("Put", mock.Anything, userID, mock.AnythingOfType("*cart.Snapshot")).Return(nil)

	release := make(chan struct{})
	f.shadow.On("Replace", mock.Anything, userID, mock.Anything).
		Run(func(args mock.Arguments) { <-release }).
		Return(nil)

	// the call must come back while the shadow write is still held up
	snapshot, err := f.service.AddItem(context.Background(), userID, product.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, snapshot.QuantityOf(product.ID))

	close(release)
	f.service.WaitShadowSync()
	f.shadow.AssertExpectations(t)
}

func TestAddItem_ShadowFailureSwallowed(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	product := activeProduct(t)

	f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.cache.On("Get", mock.Anything, userID).Return(&cart.Snapshot{}, true, nil)
	f.stock.On("AvailableStock", mock.Anything, product.ID).Return(10, nil)
	f.cache.On("Put", mock.Anything, userID, mock.AnythingOfType("*cart.Snapshot")).Return(nil)
	f.shadow.On("Replace", mock.Anything, userID, mock.Anything).Return(errors.New("db down"))

	_, err := f.service.AddItem(context.Background(), userID, product.ID, 1)
	require.NoError(t, err)
	f.service.WaitShadowSync()
}

func TestAddItem_ProspectiveQuantityExceedsStock(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	product := activeProduct(t)

	existing := &cart.Snapshot{Lines: []cart.Line{{ProductID: product.ID, Quantity: 8}}}
	f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.cache.On("Get", mock.Anything, userID).Return(existing, true, nil)
	f.stock.On("AvailableStock", mock.Anything, product.ID).Return(10, nil)

	_, err := f.service.AddItem(context.Background(), userID, product.ID, 3)
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)
	f.cache.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddItem_InactiveProduct(t *testing.T) {
	f := newFixture()
	product := activeProduct(t)
	product.Deactivate()
	f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)

	_, err := f.service.AddItem(context.Background(), uuid.New(), product.ID, 1)
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "PRODUCT_UNAVAILABLE", domainErr.Code)
}

func TestUpdateItem_EmptyCart(t *testing.T) {
	f := newFixture()
	userID := uuid.New()

	f.cache.On("Get", mock.Anything, userID).Return(&cart.Snapshot{}, true, nil)

	_, err := f.service.UpdateItem(context.Background(), userID, uuid.New(), 2)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdateItem_ZeroRemoves(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	productID := uuid.New()

	existing := &cart.Snapshot{Lines: []cart.Line{{ProductID: productID, Quantity: 2}}}
	f.cache.On("Get", mock.Anything, userID).Return(existing, true, nil)
	f.cache.On("Put", mock.Anything, userID, mock.AnythingOfType("*cart.Snapshot")).Return(nil)
	f.shadow.On("Replace", mock.Anything, userID, mock.Anything).Return(nil)

	snapshot, err := f.service.UpdateItem(context.Background(), userID, productID, 0)
	require.NoError(t, err)
	assert.True(t, snapshot.IsEmpty())

	f.service.WaitShadowSync()
	f.shadow.AssertExpectations(t)
}

func TestClear(t *testing.T) {
	f := newFixture()
	userID := uuid.New()

	f.cache.On("Delete", mock.Anything, userID).Return(nil)
	f.shadow.On("Clear", mock.Anything, userID).Return(nil)

	require.NoError(t, f.service.Clear(context.Background(), userID))
	f.cache.AssertExpectations(t)
	f.shadow.AssertExpectations(t)
}

func TestClear_ShadowFailureSwallowed(t *testing.T) {
	f := newFixture()
	userID := uuid.New()

	f.cache.On("Delete", mock.Anything, userID).Return(nil)
	f.shadow.On("Clear", mock.Anything, userID).Return(errors.New("db down"))

	assert.NoError(t, f.service.Clear(context.Background(), userID))
}
