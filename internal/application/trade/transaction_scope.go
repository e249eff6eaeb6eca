package trade

import (
	"context"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/trade"
)

// TransactionScope runs a unit of work atomically.
type TransactionScope interface {
	// Execute runs fn within a database transaction. The transaction is
	// rolled back when fn returns an error and committed otherwise.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to repositories bound to one
// transaction. Code running inside Execute must use only these; repositories
// created outside the scope do not see the transaction.
type TransactionalRepositories interface {
	Orders() trade.OrderRepository
	OrderProducts() trade.OrderProductRepository
	Products() catalog.ProductRepository
	Users() identity.UserRepository
}

// NoOpTransactionScope runs fn directly against the given repositories.
// It is meant for unit tests with mocked repositories.
type NoOpTransactionScope struct {
	orders        trade.OrderRepository
	orderProducts trade.OrderProductRepository
	products      catalog.ProductRepository
	users         identity.UserRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope.
func NewNoOpTransactionScope(
	orders trade.OrderRepository,
	orderProducts trade.OrderProductRepository,
	products catalog.ProductRepository,
	users identity.UserRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orders:        orders,
		orderProducts: orderProducts,
		products:      products,
		users:         users,
	}
}

// Execute calls fn without a transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) Orders() trade.OrderRepository               { return s.orders }
func (s *NoOpTransactionScope) OrderProducts() trade.OrderProductRepository { return s.orderProducts }
func (s *NoOpTransactionScope) Products() catalog.ProductRepository         { return s.products }
func (s *NoOpTransactionScope) Users() identity.UserRepository              { return s.users }

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
