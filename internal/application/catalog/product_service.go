package catalog

import (
	"context"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProductUsageChecker tells whether a product is contained in any order.
type ProductUsageChecker interface {
	IsProductReferenced(ctx context.Context, productID uint64) (bool, error)
}

// ProductService handles product-related business operations
type ProductService struct {
	productRepo catalog.ProductRepository
	usage       ProductUsageChecker
	logger      *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, usage ProductUsageChecker, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo: productRepo,
		usage:       usage,
		logger:      logger,
	}
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	if req.Price == nil {
		return nil, shared.NewFieldError("price", "Missing data for required field.")
	}
	product, err := catalog.NewProduct(req.Name, req.Price.Decimal)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		s.logger.Error("Failed to create product", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Product created",
		zap.Uint64("product_id", product.ID),
		zap.String("price", product.Price.StringFixed(catalog.PriceScale)),
	)
	resp := ToProductResponse(product)
	return &resp, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uint64) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// List returns all products in creation order
func (s *ProductService) List(ctx context.Context) ([]ProductResponse, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to list products", zap.Error(err))
		return nil, err
	}
	return ToProductResponses(products), nil
}

// Update applies the supplied fields to an existing product
func (s *ProductService) Update(ctx context.Context, id uint64, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := product.Apply(req.Changes()); err != nil {
		return nil, err
	}
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Product updated", zap.Uint64("product_id", id))
	resp := ToProductResponse(product)
	return &resp, nil
}

// Delete removes a product that is not contained in any order
func (s *ProductService) Delete(ctx context.Context, id uint64) error {
	exists, err := s.productRepo.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return shared.NewNotFoundError("product", id)
	}

	referenced, err := s.usage.IsProductReferenced(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		return shared.ErrInUse.WithMessage("product %d is contained in orders", id)
	}

	// The foreign key still rejects a product added to an order meanwhile.
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Product deleted", zap.Uint64("product_id", id))
	return nil
}
