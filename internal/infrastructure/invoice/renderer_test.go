package invoice

import (
	"context"
	"testing"

	"github.com/pharmacy/backend/internal/domain/catalog"
	"github.com/pharmacy/backend/internal/domain/order"
	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

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
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, offset, limit int) ([]catalog.Product, error) {
	args := m.Called(ctx, offset, limit)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, p *catalog.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func TestRender(t *testing.T) {
	products := new(MockProductRepository)
	renderer := NewHTMLRenderer(products)

	product, err := catalog.NewProduct("Ibuprofen 400mg", catalog.CategoryOTC, false)
	require.NoError(t, err)

	o := order.NewOrder(uuid.New())
	require.NoError(t, o.AddItem(product.ID, 2, decimal.NewFromFloat(4.50)))
	require.NoError(t, o.FinishCheckout())
	require.NoError(t, o.MarkPaid())

	products.On("FindByID", mock.Anything, product.ID).Return(product, nil)

	body, contentType, err := renderer.Render(context.Background(), o)
	require.NoError(t, err)
	assert.Equal(t, "text/html", contentType)
	assert.Contains(t, string(body), "Ibuprofen 400mg")
	assert.Contains(t, string(body), "9.00")
	assert.Contains(t, string(body), o.ID.String())
}

func TestRender_MissingProductFallsBackToID(t *testing.T) {
	products := new(MockProductRepository)
	renderer := NewHTMLRenderer(products)

	productID := uuid.New()
	o := order.NewOrder(uuid.New())
	require.NoError(t, o.AddItem(productID, 1, decimal.NewFromInt(10)))
	require.NoError(t, o.FinishCheckout())
	require.NoError(t, o.MarkPaid())

	products.On("FindByID", mock.Anything, productID).Return(nil, shared.ErrNotFound)

	body, _, err := renderer.Render(context.Background(), o)
	require.NoError(t, err)
	assert.Contains(t, string(body), productID.String())
}
