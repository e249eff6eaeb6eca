package trade

import (
	"context"
	"errors"

	appcatalog "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// OrderService manages orders and the products they contain.
type OrderService struct {
	orderRepo   trade.OrderRepository
	linkRepo    trade.OrderProductRepository
	userRepo    identity.UserRepository
	productRepo catalog.ProductRepository
	txScope     TransactionScope
	metrics     *telemetry.AssociationMetrics
	logger      *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo trade.OrderRepository,
	linkRepo trade.OrderProductRepository,
	userRepo identity.UserRepository,
	productRepo catalog.ProductRepository,
	txScope TransactionScope,
	logger *zap.Logger,
) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orderRepo:   orderRepo,
		linkRepo:    linkRepo,
		userRepo:    userRepo,
		productRepo: productRepo,
		txScope:     txScope,
		logger:      logger,
	}
}

// SetAssociationMetrics enables counting of association changes. A nil
// value disables it.
func (s *OrderService) SetAssociationMetrics(m *telemetry.AssociationMetrics) {
	s.metrics = m
}

// Create creates an order for an existing user
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	if req.UserID == nil {
		return nil, shared.NewFieldError("user_id", "Missing data for required field.")
	}
	date, err := parseOptionalDate(req.OrderDate)
	if err != nil {
		return nil, err
	}
	order, err := trade.NewOrder(*req.UserID, date)
	if err != nil {
		return nil, err
	}

	if err := s.requireUser(ctx, order.UserID); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("Order created",
		zap.Uint64("order_id", order.ID),
		zap.Uint64("user_id", order.UserID),
		zap.String("order_date", order.FormattedDate()),
	)
	resp := ToOrderResponse(order)
	return &resp, nil
}

// GetByID retrieves an order by ID
func (s *OrderService) GetByID(ctx context.Context, id uint64) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// List returns all orders in creation order
func (s *OrderService) List(ctx context.Context) ([]OrderResponse, error) {
	orders, err := s.orderRepo.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to list orders", zap.Error(err))
		return nil, err
	}
	return ToOrderResponses(orders), nil
}

// ListForUser returns the orders of userID. An unknown user has no orders.
func (s *OrderService) ListForUser(ctx context.Context, userID uint64) ([]OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "list_for_user", telemetry.SpanAttrUserID, userID)
	defer span.End()

	orders, err := s.orderRepo.FindByUser(ctx, userID)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to list user orders", zap.Uint64("user_id", userID), zap.Error(err))
		return nil, err
	}
	return ToOrderResponses(orders), nil
}

// Update changes the owner or date of an order
func (s *OrderService) Update(ctx context.Context, id uint64, req UpdateOrderRequest) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := trade.OrderChanges{UserID: req.UserID}
	if req.OrderDate != nil {
		date, err := trade.ParseDate(*req.OrderDate)
		if err != nil {
			return nil, err
		}
		changes.OrderDate = &date
	}
	if err := order.Apply(changes); err != nil {
		return nil, err
	}
	if req.UserID != nil {
		if err := s.requireUser(ctx, order.UserID); err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("Order updated", zap.Uint64("order_id", id))
	resp := ToOrderResponse(order)
	return &resp, nil
}

// Delete removes an order together with its product associations
func (s *OrderService) Delete(ctx context.Context, id uint64) error {
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Order deleted", zap.Uint64("order_id", id))
	return nil
}

// AddProduct puts productID into orderID. The order row is locked, both
// sides are resolved and membership is checked in one transaction; the
// unique index on the pair rejects a concurrent insert that slips past the
// check, so at most one caller succeeds.
func (s *OrderService) AddProduct(ctx context.Context, orderID, productID uint64) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "add_product",
		telemetry.SpanAttrOrderID, orderID,
		telemetry.SpanAttrProductID, productID,
	)
	defer span.End()
	defer func() { s.observe(ctx, span, telemetry.ActionAdd, orderID, productID, err) }()

	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.Orders().FindByIDForUpdate(ctx, orderID); err != nil {
			return err
		}
		if err := requireProduct(ctx, repos.Products(), productID); err != nil {
			return err
		}

		linked, err := repos.OrderProducts().Exists(ctx, orderID, productID)
		if err != nil {
			return err
		}
		if linked {
			return shared.ErrDuplicateLink
		}
		return repos.OrderProducts().Add(ctx, trade.NewOrderProduct(orderID, productID))
	})
}

// RemoveProduct takes productID out of orderID. The delete itself decides
// membership, so a concurrent remover sees the same conflict as a caller
// removing a product that was never added.
func (s *OrderService) RemoveProduct(ctx context.Context, orderID, productID uint64) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "remove_product",
		telemetry.SpanAttrOrderID, orderID,
		telemetry.SpanAttrProductID, productID,
	)
	defer span.End()
	defer func() { s.observe(ctx, span, telemetry.ActionRemove, orderID, productID, err) }()

	if err := s.requireOrder(ctx, orderID); err != nil {
		return err
	}
	if err := requireProduct(ctx, s.productRepo, productID); err != nil {
		return err
	}
	return s.linkRepo.Remove(ctx, orderID, productID)
}

// ListProducts returns the products of an order in the order they were added
func (s *OrderService) ListProducts(ctx context.Context, orderID uint64) ([]appcatalog.ProductResponse, error) {
	if err := s.requireOrder(ctx, orderID); err != nil {
		return nil, err
	}
	products, err := s.linkRepo.FindProducts(ctx, orderID)
	if err != nil {
		s.logger.Error("Failed to list order products", zap.Uint64("order_id", orderID), zap.Error(err))
		return nil, err
	}
	return appcatalog.ToProductResponses(products), nil
}

// observe records the outcome of an association change on span, metrics and log.
func (s *OrderService) observe(ctx context.Context, span trace.Span, action string, orderID, productID uint64, err error) {
	fields := []zap.Field{
		zap.String("action", action),
		zap.Uint64("order_id", orderID),
		zap.Uint64("product_id", productID),
	}
	switch {
	case err == nil:
		s.metrics.RecordChange(ctx, action)
		s.logger.Info("Order products changed", fields...)
	case errors.Is(err, shared.ErrDuplicateLink), errors.Is(err, shared.ErrMissingLink):
		s.metrics.RecordConflict(ctx, action)
		s.logger.Info("Order products change rejected", append(fields, zap.String("reason", err.Error()))...)
	case shared.KindOf(err) == shared.KindInternal:
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to change order products", append(fields, zap.Error(err))...)
	}
}

func (s *OrderService) requireUser(ctx context.Context, id uint64) error {
	exists, err := s.userRepo.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return shared.NewNotFoundError("user", id)
	}
	return nil
}

func (s *OrderService) requireOrder(ctx context.Context, id uint64) error {
	exists, err := s.orderRepo.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return shared.NewNotFoundError("order", id)
	}
	return nil
}

func requireProduct(ctx context.Context, repo catalog.ProductRepository, id uint64) error {
	exists, err := repo.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return shared.NewNotFoundError("product", id)
	}
	return nil
}
