package model

import "github.com/shopspring/decimal"

// ShopListing is a shop row as shown in public listings.
type ShopListing struct {
	Shop
	ProductsCount      int64  `json:"products_count"`
	SubscriptionStatus string `gorm:"-" json:"subscription_status"` // active or expired
}

type ShopDetail struct {
	ShopListing
	Products []ProductListing `json:"products"`
}

type ShopStats struct {
	ShopID        uint            `json:"shop_id"`
	TotalProducts int64           `json:"total_products"`
	TotalOrders   int64           `json:"total_orders"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

type ProductListing struct {
	Product
	ShopName string `json:"shop_name"`
	ShopCity string `json:"shop_city"`
	PlanTier string `json:"plan_tier"`
}

// CartLine joins a cart row with the live product and shop data.
type CartLine struct {
	CartItemID uint            `json:"cart_item_id"`
	ProductID  uint            `json:"product_id"`
	Quantity   int             `json:"quantity"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Discount   decimal.Decimal `json:"discount"`
	Stock      int             `json:"stock"`
	ImageURL   string          `json:"image_url"`
	ShopID     uint            `json:"shop_id"`
	ShopName   string          `json:"shop_name"`
	ShopCity   string          `json:"shop_city"`
	LineTotal  decimal.Decimal `gorm:"-" json:"line_total"`
}

func (l *CartLine) ComputeLineTotal() decimal.Decimal {
	l.LineTotal = l.Price.Sub(l.Discount).Mul(decimal.NewFromInt(int64(l.Quantity)))
	return l.LineTotal
}

type OrderDetail struct {
	Order
	Items []OrderLine `json:"items"`
}

type OrderLine struct {
	OrderProduct
	ProductName string `json:"product_name"`
	ShopID      uint   `json:"shop_id"`
	ShopName    string `json:"shop_name"`
}
