package order

import (
	"context"
	"testing"

	"github.com/pharmacy/backend/internal/domain/order"
	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*order.Order, error) {
	args := m.Called(ctx, paymentIntentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindActiveByCustomer(ctx context.Context, customerID uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, offset, limit int) ([]order.Order, error) {
	args := m.Called(ctx, customerID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

type MockCanceller struct {
	mock.Mock
}

func (m *MockCanceller) Cancel(ctx context.Context, orderID uuid.UUID, reason string) error {
	args := m.Called(ctx, orderID, reason)
	return args.Error(0)
}

func newOrder(t *testing.T, customerID uuid.UUID) *order.Order {
	t.Helper()
	o := order.NewOrder(customerID)
	require.NoError(t, o.AddItem(uuid.New(), 1, decimal.NewFromInt(10)))
	require.NoError(t, o.FinishCheckout())
	return o
}

func TestGet_OwnershipEnforced(t *testing.T) {
	repo := new(MockOrderRepository)
	service := NewService(repo, new(MockCanceller), zap.NewNop())

	customerID := uuid.New()
	o := newOrder(t, customerID)
	repo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

	got, err := service.Get(context.Background(), customerID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	_, err = service.Get(context.Background(), uuid.New(), o.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestCancel(t *testing.T) {
	repo := new(MockOrderRepository)
	canceller := new(MockCanceller)
	service := NewService(repo, canceller, zap.NewNop())

	customerID := uuid.New()
	o := newOrder(t, customerID)
	repo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	canceller.On("Cancel", mock.Anything, o.ID, "cancelled by customer").Return(nil)

	require.NoError(t, service.Cancel(context.Background(), customerID, o.ID, ""))
	canceller.AssertExpectations(t)
}

func TestCancel_WrongOwner(t *testing.T) {
	repo := new(MockOrderRepository)
	canceller := new(MockCanceller)
	service := NewService(repo, canceller, zap.NewNop())

	o := newOrder(t, uuid.New())
	repo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

	err := service.Cancel(context.Background(), uuid.New(), o.ID, "")
	assert.ErrorIs(t, err, shared.ErrForbidden)
	canceller.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancel_PaidOrderRefused(t *testing.T) {
	repo := new(MockOrderRepository)
	canceller := new(MockCanceller)
	service := NewService(repo, canceller, zap.NewNop())

	customerID := uuid.New()
	o := newOrder(t, customerID)
	require.NoError(t, o.MarkPaid())
	repo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

	err := service.Cancel(context.Background(), customerID, o.ID, "")
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
	canceller.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything, mock.Anything)
}
