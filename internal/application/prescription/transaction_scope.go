package prescription

import (
	"context"

	"github.com/pharmacy/backend/internal/domain/order"
	"github.com/pharmacy/backend/internal/domain/prescription"
)

// TransactionalRepositories exposes the repositories bound to one database
// transaction
type TransactionalRepositories interface {
	Orders() order.OrderRepository
	Prescriptions() prescription.PrescriptionRepository
}

// TransactionScope runs a function inside a single database transaction. A
// pharmacist decision and the order transition it drives commit together.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}
