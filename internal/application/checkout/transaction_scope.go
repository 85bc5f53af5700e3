package checkout

import (
	"context"

	"github.com/pharmacy/backend/internal/domain/catalog"
	"github.com/pharmacy/backend/internal/domain/inventory"
	"github.com/pharmacy/backend/internal/domain/order"
)

// TransactionalRepositories exposes the repositories bound to one database
// transaction
type TransactionalRepositories interface {
	Orders() order.OrderRepository
	Products() catalog.ProductRepository
	Batches() inventory.BatchRepository
}

// TransactionScope runs a function inside a single database transaction.
// The order and its items commit together or not at all.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}
