package prescription

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/pharmacy/backend/internal/application/notification"
	"github.com/pharmacy/backend/internal/domain/order"
	"github.com/pharmacy/backend/internal/domain/prescription"
	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockPrescriptionRepository struct {
	mock.Mock
}

func (m *MockPrescriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*prescription.Prescription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*prescription.Prescription), args.Error(1)
}

func (m *MockPrescriptionRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*prescription.Prescription, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*prescription.Prescription), args.Error(1)
}

func (m *MockPrescriptionRepository) FindPending(ctx context.Context, offset, limit int) ([]prescription.Prescription, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]prescription.Prescription), args.Error(1)
}

func (m *MockPrescriptionRepository) Save(ctx context.Context, p *prescription.Prescription) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

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

type MockFileStorage struct {
	mock.Mock
}

func (m *MockFileStorage) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	args := m.Called(ctx, key, body, contentType)
	return args.Error(0)
}

func (m *MockFileStorage) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, key, expiry)
	return args.String(0), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, msg notification.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type fakeTxScope struct {
	orders        *MockOrderRepository
	prescriptions *MockPrescriptionRepository
}

func (f *fakeTxScope) Orders() order.OrderRepository { return f.orders }
func (f *fakeTxScope) Prescriptions() prescription.PrescriptionRepository {
	return f.prescriptions
}

func (f *fakeTxScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(f)
}

type gateFixture struct {
	prescriptions *MockPrescriptionRepository
	orders        *MockOrderRepository
	storage       *MockFileStorage
	notifier      *MockNotifier
	service       *Service
}

func newFixture() *gateFixture {
	f := &gateFixture{
		prescriptions: new(MockPrescriptionRepository),
		orders:        new(MockOrderRepository),
		storage:       new(MockFileStorage),
		notifier:      new(MockNotifier),
	}
	f.service = NewService(ServiceConfig{
		Prescriptions: f.prescriptions,
		Orders:        f.orders,
		TxScope:       &fakeTxScope{orders: f.orders, prescriptions: f.prescriptions},
		Storage:       f.storage,
		Notifier:      f.notifier,
		Logger:        zap.NewNop(),
	})
	return f
}

func awaitingOrder(t *testing.T, customerID uuid.UUID) *order.Order {
	t.Helper()
	o := order.NewOrder(customerID)
	require.NoError(t, o.AddItem(uuid.New(), 1, decimal.NewFromInt(25)))
	o.RequiresPrescription = true
	require.NoError(t, o.FinishCheckout())
	return o
}

func TestUpload(t *testing.T) {
	f := newFixture()
	customerID := uuid.New()
	o := awaitingOrder(t, customerID)

	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.prescriptions.On("FindByOrderID", mock.Anything, o.ID).Return(nil, shared.ErrNotFound)
	f.storage.On("Upload", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "prescriptions/") && strings.HasSuffix(key, ".jpg")
	}), mock.Anything, "image/jpeg").Return(nil)
	f.prescriptions.On("Save", mock.Anything, mock.AnythingOfType("*prescription.Prescription")).Return(nil)

	p, err := f.service.Upload(context.Background(), UploadInput{
		OrderID:     o.ID,
		CustomerID:  customerID,
		Filename:    "scan.JPG",
		ContentType: "image/jpeg",
		Body:        strings.NewReader("fake image"),
	})
	require.NoError(t, err)
	assert.Equal(t, prescription.StatusPending, p.Status)
	f.storage.AssertExpectations(t)
}

func TestUpload_WrongOwner(t *testing.T) {
	f := newFixture()
	o := awaitingOrder(t, uuid.New())
	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)

	_, err := f.service.Upload(context.Background(), UploadInput{
		OrderID:    o.ID,
		CustomerID: uuid.New(),
		Filename:   "scan.jpg",
		Body:       strings.NewReader("x"),
	})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestUpload_OrderNotAwaiting(t *testing.T) {
	f := newFixture()
	customerID := uuid.New()
	o := order.NewOrder(customerID)
	require.NoError(t, o.AddItem(uuid.New(), 1, decimal.NewFromInt(10)))
	require.NoError(t, o.FinishCheckout())

	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)

	_, err := f.service.Upload(context.Background(), UploadInput{
		OrderID:    o.ID,
		CustomerID: customerID,
		Filename:   "scan.jpg",
		Body:       strings.NewReader("x"),
	})
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

func TestUpload_PendingSubmissionBlocksResubmit(t *testing.T) {
	f := newFixture()
	customerID := uuid.New()
	o := awaitingOrder(t, customerID)

	existing, err := prescription.NewPrescription(o.ID, customerID, "prescriptions/old.jpg")
	require.NoError(t, err)

	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.prescriptions.On("FindByOrderID", mock.Anything, o.ID).Return(existing, nil)

	_, err = f.service.Upload(context.Background(), UploadInput{
		OrderID:    o.ID,
		CustomerID: customerID,
		Filename:   "scan.jpg",
		Body:       strings.NewReader("x"),
	})
	require.Error(t, err)
	f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestApprove(t *testing.T) {
	f := newFixture()
	customerID := uuid.New()
	o := awaitingOrder(t, customerID)

	p, err := prescription.NewPrescription(o.ID, customerID, "prescriptions/a.jpg")
	require.NoError(t, err)

	f.prescriptions.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.prescriptions.On("Save", mock.Anything, p).Return(nil)
	f.orders.On("Save", mock.Anything, o).Return(nil)
	f.notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)

	pharmacistID := uuid.New()
	require.NoError(t, f.service.Approve(context.Background(), p.ID, pharmacistID))

	assert.Equal(t, prescription.StatusApproved, p.Status)
	assert.Equal(t, order.StatusReadyForPayment, o.Status)
	f.notifier.AssertCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestApprove_AlreadyReviewed(t *testing.T) {
	f := newFixture()
	customerID := uuid.New()
	o := awaitingOrder(t, customerID)

	p, err := prescription.NewPrescription(o.ID, customerID, "prescriptions/a.jpg")
	require.NoError(t, err)
	require.NoError(t, p.Approve(uuid.New()))

	f.prescriptions.On("FindByID", mock.Anything, p.ID).Return(p, nil)

	err = f.service.Approve(context.Background(), p.ID, uuid.New())
	require.Error(t, err)
	f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestReject_CancelsOrder(t *testing.T) {
	f := newFixture()
	customerID := uuid.New()
	o := awaitingOrder(t, customerID)

	p, err := prescription.NewPrescription(o.ID, customerID, "prescriptions/a.jpg")
	require.NoError(t, err)

	f.prescriptions.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.prescriptions.On("Save", mock.Anything, p).Return(nil)
	f.orders.On("Save", mock.Anything, o).Return(nil)
	f.notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, f.service.Reject(context.Background(), p.ID, uuid.New(), "blurry image"))

	assert.Equal(t, prescription.StatusRejected, p.Status)
	assert.Equal(t, "blurry image", p.RejectionReason)
	assert.Equal(t, order.StatusCancelled, o.Status)
}

func TestFileURL(t *testing.T) {
	f := newFixture()
	p, err := prescription.NewPrescription(uuid.New(), uuid.New(), "prescriptions/a.jpg")
	require.NoError(t, err)

	f.prescriptions.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	f.storage.On("PresignedURL", mock.Anything, "prescriptions/a.jpg", DefaultURLExpiry).
		Return("https://cdn.example/prescriptions/a.jpg?sig=x", nil)

	url, err := f.service.FileURL(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Contains(t, url, "prescriptions/a.jpg")
}
