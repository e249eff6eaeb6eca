package models

import (
	"time"

	"github.com/storefront/backend/internal/domain/trade"
	"gorm.io/datatypes"
)

// OrderModel is the persistence model for the Order domain entity.
type OrderModel struct {
	BaseModel
	UserID    uint64         `gorm:"not null;index:idx_orders_user_id"`
	OrderDate datatypes.Date `gorm:"not null"`

	// User exists only to declare the foreign key for AutoMigrate. NO ACTION
	// rather than RESTRICT: sqlite reports a RESTRICT violation as a trigger
	// failure instead of a foreign key error.
	User *UserModel `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:NO ACTION"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order entity.
func (m *OrderModel) ToDomain() *trade.Order {
	return &trade.Order{
		BaseEntity: m.BaseModel.ToDomain(),
		UserID:     m.UserID,
		OrderDate:  trade.TruncateDate(time.Time(m.OrderDate)),
	}
}

// FromDomain populates the persistence model from a domain Order entity.
func (m *OrderModel) FromDomain(o *trade.Order) {
	m.FromDomainBaseEntity(o.BaseEntity)
	m.UserID = o.UserID
	m.OrderDate = datatypes.Date(trade.TruncateDate(o.OrderDate))
}

// OrderModelFromDomain creates a new persistence model from a domain Order entity.
func OrderModelFromDomain(o *trade.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderProductModel is one row of the order/product association.
// idx_order_product_pair guarantees a product appears at most once per order.
type OrderProductModel struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	OrderID   uint64    `gorm:"not null;uniqueIndex:idx_order_product_pair,priority:1"`
	ProductID uint64    `gorm:"not null;uniqueIndex:idx_order_product_pair,priority:2;index:idx_order_product_product_id"`
	CreatedAt time.Time `gorm:"not null"`

	Order   *OrderModel   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Product *ProductModel `gorm:"foreignKey:ProductID;constraint:OnDelete:NO ACTION"`
}

// TableName returns the table name for GORM
func (OrderProductModel) TableName() string {
	return "order_product"
}

// ToDomain converts the persistence model to a domain OrderProduct.
func (m *OrderProductModel) ToDomain() *trade.OrderProduct {
	return &trade.OrderProduct{
		ID:        m.ID,
		OrderID:   m.OrderID,
		ProductID: m.ProductID,
		CreatedAt: m.CreatedAt,
	}
}

// OrderProductModelFromDomain creates a persistence model from a domain OrderProduct.
func OrderProductModelFromDomain(l *trade.OrderProduct) *OrderProductModel {
	return &OrderProductModel{
		ID:        l.ID,
		OrderID:   l.OrderID,
		ProductID: l.ProductID,
		CreatedAt: l.CreatedAt,
	}
}
