package trade_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/application/trade"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	domaintrade "github.com/storefront/backend/internal/domain/trade"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/migration"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const concurrentCallers = 8

func newService(db *gorm.DB) *trade.OrderService {
	return trade.NewOrderService(
		persistence.NewGormOrderRepository(db),
		persistence.NewGormOrderProductRepository(db),
		persistence.NewGormUserRepository(db),
		persistence.NewGormProductRepository(db),
		persistence.NewGormTransactionScope(db),
		zap.NewNop(),
	)
}

// seed creates one user, one order and one product.
func seed(t *testing.T, db *gorm.DB) (orderID, productID uint64) {
	t.Helper()
	ctx := context.Background()
	faker := gofakeit.New(uint64(time.Now().UnixNano()))

	u, err := identity.NewUser(faker.Name(), faker.Street(), faker.Email())
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormUserRepository(db).Create(ctx, u))

	p, err := catalog.NewProduct(faker.ProductName(), decimal.RequireFromString("12.50"))
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormProductRepository(db).Create(ctx, p))

	o, err := domaintrade.NewOrder(u.ID, time.Time{})
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormOrderRepository(db).Create(ctx, o))

	return o.ID, p.ID
}

// assertSingleAdd races concurrentCallers AddProduct calls for the same pair
// and checks that exactly one wins.
func assertSingleAdd(t *testing.T, db *gorm.DB) {
	svc := newService(db)
	orderID, productID := seed(t, db)

	var (
		wg      sync.WaitGroup
		start   = make(chan struct{})
		results = make(chan error, concurrentCallers)
	)
	for range concurrentCallers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			results <- svc.AddProduct(context.Background(), orderID, productID)
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	var ok, conflicts int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, shared.ErrConflict):
			assert.ErrorIs(t, err, shared.ErrDuplicateLink)
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, concurrentCallers-1, conflicts)

	products, err := svc.ListProducts(context.Background(), orderID)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, productID, products[0].ID)
}

func TestAddProduct_Concurrent_SQLite(t *testing.T) {
	db, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, persistence.AutoMigrate(db.DB))

	assertSingleAdd(t, db.DB)
}

func TestAddProduct_Concurrent_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("storefront_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	m, err := migration.NewFromURL(dsn, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.EqualValues(t, 1, version)
	require.NoError(t, m.Close())

	db, err := persistence.Open(postgres.Open(dsn), nil, true)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(concurrentCallers)
	t.Cleanup(func() { _ = sqlDB.Close() })

	assertSingleAdd(t, db)
}
