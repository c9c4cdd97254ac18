package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is an immutable, priced snapshot of a checked-out cart.
type Order struct {
	ID             uint            `gorm:"primarykey" json:"id"`
	UserID         uint            `gorm:"not null;index" json:"user_id"`
	TotalPrice     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`
	FullName       string          `gorm:"type:varchar(255)" json:"full_name"`
	Phone          string          `gorm:"type:varchar(32)" json:"phone"`
	Address        string          `gorm:"type:text" json:"address"`
	City           string          `gorm:"type:varchar(100)" json:"city"`
	PostalCode     string          `gorm:"type:varchar(20)" json:"postal_code"`
	PaymentMethod  string          `gorm:"type:varchar(50)" json:"payment_method"`
	ShippingOption string          `gorm:"type:varchar(50)" json:"shipping_option"`
	ShippingCost   decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"shipping_cost"`
	CreatedAt      time.Time       `gorm:"index" json:"created_at"`

	User  User        `gorm:"foreignKey:UserID" json:"-"`
	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem pins the product price paid at checkout.
type OrderItem struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	OrderID   uint            `gorm:"not null;index" json:"order_id"`
	ProductID uint            `gorm:"not null;index" json:"product_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`

	Product Product `gorm:"foreignKey:ProductID" json:"product"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// LineTotal is the snapshotted price times quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
