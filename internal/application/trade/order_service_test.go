package trade

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
)

type orderServiceFixture struct {
	orders   *MockOrderRepository
	links    *MockOrderProductRepository
	users    *MockUserRepository
	products *MockProductRepository
	svc      *OrderService
}

func newOrderServiceFixture(t *testing.T) *orderServiceFixture {
	f := &orderServiceFixture{
		orders:   new(MockOrderRepository),
		links:    new(MockOrderProductRepository),
		users:    new(MockUserRepository),
		products: new(MockProductRepository),
	}
	scope := NewNoOpTransactionScope(f.orders, f.links, f.products, f.users)
	f.svc = NewOrderService(f.orders, f.links, f.users, f.products, scope, zaptest.NewLogger(t))
	return f
}

func newTestOrder(t *testing.T, id, userID uint64) *trade.Order {
	t.Helper()
	o, err := trade.NewOrder(userID, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	o.ID = id
	return o
}

func u64(v uint64) *uint64 { return &v }
func str(s string) *string { return &s }

func TestOrderService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults order date to today", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		f.users.On("ExistsByID", ctx, uint64(1)).Return(true, nil)
		f.orders.On("Create", ctx, mock.AnythingOfType("*trade.Order")).
			Run(func(args mock.Arguments) { args.Get(1).(*trade.Order).ID = 10 }).
			Return(nil)

		resp, err := f.svc.Create(ctx, CreateOrderRequest{UserID: u64(1)})
		require.NoError(t, err)
		assert.Equal(t, uint64(10), resp.ID)
		assert.Equal(t, time.Now().UTC().Format("2006-01-02"), resp.OrderDate)
	})

	t.Run("explicit order date", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		f.users.On("ExistsByID", ctx, uint64(1)).Return(true, nil)
		f.orders.On("Create", ctx, mock.AnythingOfType("*trade.Order")).Return(nil)

		resp, err := f.svc.Create(ctx, CreateOrderRequest{UserID: u64(1), OrderDate: str("2023-12-24")})
		require.NoError(t, err)
		assert.Equal(t, "2023-12-24", resp.OrderDate)
	})

	t.Run("malformed order date", func(t *testing.T) {
		f := newOrderServiceFixture(t)

		_, err := f.svc.Create(ctx, CreateOrderRequest{UserID: u64(1), OrderDate: str("24/12/2023")})
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "Not a valid date.", de.Fields["order_date"])
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		f.users.On("ExistsByID", ctx, uint64(7)).Return(false, nil)

		_, err := f.svc.Create(ctx, CreateOrderRequest{UserID: u64(7)})
		assert.ErrorIs(t, err, shared.ErrNotFound)
		f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("missing user id", func(t *testing.T) {
		f := newOrderServiceFixture(t)

		_, err := f.svc.Create(ctx, CreateOrderRequest{})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestOrderService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("moves order to an existing user", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		f.orders.On("FindByID", ctx, uint64(3)).Return(newTestOrder(t, 3, 1), nil)
		f.users.On("ExistsByID", ctx, uint64(2)).Return(true, nil)
		f.orders.On("Update", ctx, mock.AnythingOfType("*trade.Order")).Return(nil)

		resp, err := f.svc.Update(ctx, 3, UpdateOrderRequest{UserID: u64(2), OrderDate: str("2024-06-30")})
		require.NoError(t, err)
		assert.Equal(t, uint64(2), resp.UserID)
		assert.Equal(t, "2024-06-30", resp.OrderDate)
	})

	t.Run("new user must exist", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		f.orders.On("FindByID", ctx, uint64(3)).Return(newTestOrder(t, 3, 1), nil)
		f.users.On("ExistsByID", ctx, uint64(9)).Return(false, nil)

		_, err := f.svc.Update(ctx, 3, UpdateOrderRequest{UserID: u64(9)})
		assert.ErrorIs(t, err, shared.ErrNotFound)
		f.orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestOrderService_ListForUser(t *testing.T) {
	ctx := context.Background()
	f := newOrderServiceFixture(t)
	f.orders.On("FindByUser", mock.Anything, uint64(1)).Return([]*trade.Order{newTestOrder(t, 1, 1), newTestOrder(t, 2, 1)}, nil)
	f.orders.On("FindByUser", mock.Anything, uint64(99)).Return([]*trade.Order{}, nil)

	list, err := f.svc.ListForUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []OrderResponse{
		{ID: 1, UserID: 1, OrderDate: "2024-05-01"},
		{ID: 2, UserID: 1, OrderDate: "2024-05-01"},
	}, list)

	empty, err := f.svc.ListForUser(ctx, 99)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestOrderService_AddProduct(t *testing.T) {
	ctx := mock.Anything

	t.Run("adds product", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		f.orders.On("FindByIDForUpdate", ctx, uint64(1)).Return(newTestOrder(t, 1, 1), nil)
		f.products.On("ExistsByID", ctx, uint64(2)).Return(true, nil)
		f.links.On("Exists", ctx, uint64(1), uint64(2)).Return(false, nil)
		f.links.On("Add", ctx, mock.MatchedBy(func(l *trade.OrderProduct) bool {
			return l.OrderID == 1 && l.ProductID == 2
		})).Return(nil)

		require.NoError(t, f.svc.AddProduct(context.Background(), 1, 2))
		f.links.AssertExpectations(t)
	})

	t.Run("product already in order", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		f.orders.On("FindByIDForUpdate", ctx, uint64(1)).Return(newTestOrder(t, 1, 1), nil)
		f.products.On("ExistsByID", ctx, uint64(2)).Return(true, nil)
		f.links.On("Exists", ctx, uint64(1), uint64(2)).Return(true, nil)

		err := f.svc.AddProduct(context.Background(), 1, 2)
		assert.ErrorIs(t, err, shared.ErrDuplicateLink)
		assert.Equal(t, "Product already in order", err.Error())
		f.links.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	})

	t.Run("insert race lost to the unique index", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		f.orders.On("FindByIDForUpdate", ctx, uint64(1)).Return(newTestOrder(t, 1, 1), nil)
		f.products.On("ExistsByID", ctx, uint64(2)).Return(true, nil)
		f.links.On("Exists", ctx, uint64(1), uint64(2)).Return(false, nil)
		f.links.On("Add", ctx, mock.Anything).Return(shared.ErrDuplicateLink)

		assert.ErrorIs(t, f.svc.AddProduct(context.Background(), 1, 2), shared.ErrDuplicateLink)
	})

	t.Run("missing order", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		f.orders.On("FindByIDForUpdate", ctx, uint64(1)).Return(nil, shared.NewNotFoundError("order", 1))

		err := f.svc.AddProduct(context.Background(), 1, 2)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		f.products.AssertNotCalled(t, "ExistsByID", mock.Anything, mock.Anything)
	})

	t.Run("missing product", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		f.orders.On("FindByIDForUpdate", ctx, uint64(1)).Return(newTestOrder(t, 1, 1), nil)
		f.products.On("ExistsByID", ctx, uint64(2)).Return(false, nil)

		err := f.svc.AddProduct(context.Background(), 1, 2)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.EqualError(t, err, "product with id 2 not found")
	})
}

func TestOrderService_RemoveProduct(t *testing.T) {
	ctx := mock.Anything

	t.Run("removes product", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		f.orders.On("ExistsByID", ctx, uint64(1)).Return(true, nil)
		f.products.On("ExistsByID", ctx, uint64(2)).Return(true, nil)
		f.links.On("Remove", ctx, uint64(1), uint64(2)).Return(nil)

		require.NoError(t, f.svc.RemoveProduct(context.Background(), 1, 2))
	})

	t.Run("product not in order", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		f.orders.On("ExistsByID", ctx, uint64(1)).Return(true, nil)
		f.products.On("ExistsByID", ctx, uint64(2)).Return(true, nil)
		f.links.On("Remove", ctx, uint64(1), uint64(2)).Return(shared.ErrMissingLink)

		err := f.svc.RemoveProduct(context.Background(), 1, 2)
		assert.ErrorIs(t, err, shared.ErrMissingLink)
		assert.Equal(t, shared.KindConflict, shared.KindOf(err))
	})

	t.Run("missing order", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		f.orders.On("ExistsByID", ctx, uint64(1)).Return(false, nil)

		assert.ErrorIs(t, f.svc.RemoveProduct(context.Background(), 1, 2), shared.ErrNotFound)
		f.links.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestOrderService_ListProducts(t *testing.T) {
	ctx := context.Background()

	t.Run("missing order", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		f.orders.On("ExistsByID", ctx, uint64(5)).Return(false, nil)

		_, err := f.svc.ListProducts(ctx, 5)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("returns products in association order", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		a, err := catalog.NewProduct("A", decimal.NewFromInt(1))
		require.NoError(t, err)
		a.ID = 2
		b, err := catalog.NewProduct("B", decimal.NewFromInt(2))
		require.NoError(t, err)
		b.ID = 1

		f.orders.On("ExistsByID", ctx, uint64(5)).Return(true, nil)
		f.links.On("FindProducts", ctx, uint64(5)).Return([]*catalog.Product{a, b}, nil)

		list, err := f.svc.ListProducts(ctx, 5)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, uint64(2), list[0].ID)
		assert.Equal(t, uint64(1), list[1].ID)
	})
}

func TestOrderService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newOrderServiceFixture(t)
	f.orders.On("Delete", ctx, uint64(4)).Return(nil)
	f.orders.On("Delete", ctx, uint64(5)).Return(shared.NewNotFoundError("order", 5))

	require.NoError(t, f.svc.Delete(ctx, 4))
	assert.ErrorIs(t, f.svc.Delete(ctx, 5), shared.ErrNotFound)
}

func TestOrderService_AssociationMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	metrics, err := telemetry.NewAssociationMetrics(provider.Meter("test"))
	require.NoError(t, err)

	f := newOrderServiceFixture(t)
	f.svc.SetAssociationMetrics(metrics)
	ctx := mock.Anything

	f.orders.On("FindByIDForUpdate", ctx, uint64(1)).Return(newTestOrder(t, 1, 1), nil)
	f.orders.On("ExistsByID", ctx, uint64(1)).Return(true, nil)
	f.products.On("ExistsByID", ctx, uint64(2)).Return(true, nil)
	f.links.On("Exists", ctx, uint64(1), uint64(2)).Return(false, nil).Once()
	f.links.On("Exists", ctx, uint64(1), uint64(2)).Return(true, nil)
	f.links.On("Add", ctx, mock.Anything).Return(nil)
	f.links.On("Remove", ctx, uint64(1), uint64(2)).Return(errors.New("connection reset"))

	require.NoError(t, f.svc.AddProduct(context.Background(), 1, 2))
	assert.ErrorIs(t, f.svc.AddProduct(context.Background(), 1, 2), shared.ErrDuplicateLink)
	err = f.svc.RemoveProduct(context.Background(), 1, 2)
	assert.EqualError(t, err, "connection reset")
	assert.Equal(t, shared.KindInternal, shared.KindOf(err))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				action, _ := dp.Attributes.Value(telemetry.AttrAction)
				totals[m.Name+"/"+action.AsString()] += dp.Value
			}
		}
	}
	assert.Equal(t, map[string]int64{
		"order_product_changes_total/add":   1,
		"order_product_conflicts_total/add": 1,
	}, totals)
}
