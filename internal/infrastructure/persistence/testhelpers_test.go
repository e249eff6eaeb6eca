package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/require"
)

// newTestDatabase opens a private in-memory sqlite database with the schema applied.
func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(&config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, AutoMigrate(db.DB))
	return db
}

type fixtures struct {
	t        *testing.T
	faker    *gofakeit.Faker
	users    *GormUserRepository
	products *GormProductRepository
	orders   *GormOrderRepository
}

func newFixtures(t *testing.T, db *Database) *fixtures {
	return &fixtures{
		t:        t,
		faker:    gofakeit.New(uint64(time.Now().UnixNano())),
		users:    NewGormUserRepository(db.DB),
		products: NewGormProductRepository(db.DB),
		orders:   NewGormOrderRepository(db.DB),
	}
}

func (f *fixtures) user() *identity.User {
	f.t.Helper()
	u, err := identity.NewUser(f.faker.Name(), f.faker.Street(), f.faker.Email())
	require.NoError(f.t, err)
	require.NoError(f.t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixtures) product() *catalog.Product {
	f.t.Helper()
	price := decimal.NewFromFloat(f.faker.Price(1, 500)).Round(2)
	p, err := catalog.NewProduct(f.faker.ProductName(), price)
	require.NoError(f.t, err)
	require.NoError(f.t, f.products.Create(context.Background(), p))
	return p
}

func (f *fixtures) order(userID uint64) *trade.Order {
	f.t.Helper()
	o, err := trade.NewOrder(userID, time.Time{})
	require.NoError(f.t, err)
	require.NoError(f.t, f.orders.Create(context.Background(), o))
	return o
}
