package catalog

import (
	"context"
	"testing"

	"github.com/pharmacy/backend/internal/domain/catalog"
	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
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

func TestCreateProduct(t *testing.T) {
	repo := new(MockProductRepository)
	service := NewService(repo, zap.NewNop())

	repo.On("FindBySlug", mock.Anything, "omega-3-fish-oil-1000mg").Return(nil, shared.ErrNotFound)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*catalog.Product")).Return(nil)

	product, err := service.CreateProduct(context.Background(), CreateProductInput{
		Name:     "Omega-3 Fish Oil 1000mg",
		Category: catalog.CategorySupplement,
	})
	require.NoError(t, err)
	assert.Equal(t, "omega-3-fish-oil-1000mg", product.Slug)
	assert.True(t, product.IsActive)
}

func TestCreateProduct_DuplicateSlug(t *testing.T) {
	repo := new(MockProductRepository)
	service := NewService(repo, zap.NewNop())

	existing, err := catalog.NewProduct("Omega-3 Fish Oil 1000mg", catalog.CategorySupplement, false)
	require.NoError(t, err)
	repo.On("FindBySlug", mock.Anything, existing.Slug).Return(existing, nil)

	_, err = service.CreateProduct(context.Background(), CreateProductInput{
		Name:     "Omega-3 Fish Oil 1000mg",
		Category: catalog.CategorySupplement,
	})
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "DUPLICATE_SLUG", domainErr.Code)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCreateProduct_InvalidCategory(t *testing.T) {
	service := NewService(new(MockProductRepository), zap.NewNop())

	_, err := service.CreateProduct(context.Background(), CreateProductInput{
		Name:     "Mystery Pills",
		Category: catalog.Category("candy"),
	})
	assert.Error(t, err)
}

func TestListStorefront_DefaultLimit(t *testing.T) {
	repo := new(MockProductRepository)
	service := NewService(repo, zap.NewNop())

	repo.On("FindStorefront", mock.Anything, mock.MatchedBy(func(f catalog.StorefrontFilter) bool {
		return f.Limit == 50
	})).Return([]catalog.Product{}, nil)

	_, err := service.ListStorefront(context.Background(), catalog.StorefrontFilter{})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestSetActive(t *testing.T) {
	repo := new(MockProductRepository)
	service := NewService(repo, zap.NewNop())

	product, err := catalog.NewProduct("Thermometer", catalog.CategoryMedicalDevice, false)
	require.NoError(t, err)

	repo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	repo.On("Save", mock.Anything, product).Return(nil)

	updated, err := service.SetActive(context.Background(), product.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
}
