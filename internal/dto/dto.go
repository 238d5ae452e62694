package dto

import (
	"emall-backend/internal/model"
	"emall-backend/internal/pagination"

	"github.com/shopspring/decimal"
)

type RegisterRequest struct {
	FullName string `json:"full_name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Phone    string `json:"phone" validate:"omitempty,phone,max=20"`
}

type RegisterShopOwnerRequest struct {
	RegisterRequest
	ShopName        string `json:"shop_name" validate:"required,min=2,max=100"`
	ShopDescription string `json:"shop_description" validate:"max=2000"`
	ShopCategory    string `json:"shop_category" validate:"omitempty,oneof=men women kids all"`
	City            string `json:"city" validate:"required,max=50"`
	Address         string `json:"address" validate:"max=500"`
	ShopPhone       string `json:"shop_phone" validate:"omitempty,phone,max=20"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
	Shop  *model.Shop `json:"shop,omitempty"`
}

type AddToCartRequest struct {
	UserID    uint `json:"user_id" validate:"required"`
	ProductID uint `json:"-" param:"productId" validate:"required"`
	Quantity  int  `json:"quantity"` // 0 means 1
}

type UpdateCartRequest struct {
	Quantity int `json:"quantity"`
}

type CartSummary struct {
	ItemCount     int             `json:"item_count"`
	TotalQuantity int             `json:"total_quantity"`
	TotalPrice    decimal.Decimal `json:"total_price"`
}

type CartResponse struct {
	Items   []model.CartLine `json:"items"`
	Summary CartSummary      `json:"summary"`
}

type CheckoutRequest struct {
	UserID          uint   `json:"user_id" validate:"required"`
	DeliveryMethod  string `json:"delivery_method" validate:"required,oneof=pickup delivery"`
	DeliveryAddress string `json:"delivery_address" validate:"required_if=DeliveryMethod delivery,max=500"`
	PhoneNumber     string `json:"phone_number" validate:"required,phone,max=20"`
	Notes           string `json:"notes" validate:"max=500"`
}

type CheckoutResponse struct {
	OrderID    uint            `json:"order_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type OrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed shipped delivered cancelled"`
}

type ProductRequest struct {
	Name        string          `json:"name" validate:"required,min=2,max=100"`
	Description string          `json:"description" validate:"max=2000"`
	Price       decimal.Decimal `json:"price"`
	Discount    decimal.Decimal `json:"discount"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
	Category    string          `json:"category" validate:"max=50"`
	ImageURL    string          `json:"image_url" validate:"omitempty,url,max=255"`
	Status      string          `json:"status" validate:"omitempty,oneof=active inactive"`
}

type ShopQuery struct {
	pagination.Params
	Keyword   string `query:"keyword"`
	Category  string `query:"category" validate:"omitempty,oneof=men women kids all"`
	PlanTier  string `query:"plan_tier" validate:"omitempty,oneof=first second third"`
	City      string `query:"city"`
	SortBy    string `query:"sortBy" validate:"omitempty,oneof=created_at name popularity"`
	SortOrder string `query:"sortOrder" validate:"omitempty,oneof=asc desc ASC DESC"`
}

type ProductQuery struct {
	pagination.Params
	Keyword   string `query:"keyword"`
	Category  string `query:"category"`
	ShopID    uint   `query:"shop_id"`
	MinPrice  string `query:"min_price" validate:"omitempty,number"`
	MaxPrice  string `query:"max_price" validate:"omitempty,number"`
	InStock   bool   `query:"in_stock"`
	SortBy    string `query:"sortBy" validate:"omitempty,oneof=created_at price name popularity"`
	SortOrder string `query:"sortOrder" validate:"omitempty,oneof=asc desc ASC DESC"`
}

type ShopStatusRequest struct {
	Status          string `json:"status" validate:"required,oneof=approved rejected suspended"`
	RejectionReason string `json:"rejection_reason" validate:"required_if=Status rejected,max=1000"`
}

type UserStatusRequest struct {
	Action string `json:"action" validate:"required,oneof=ban unban"`
}

type UsersQuery struct {
	pagination.Params
	Role string `query:"role" validate:"omitempty,oneof=customer shop_owner admin"`
}

type MonthlySalesQuery struct {
	Year  int `query:"year" validate:"omitempty,min=2000,max=2100"`
	Month int `query:"month" validate:"omitempty,min=1,max=12"`
}

type UpgradeRequest struct {
	NewPlan      string `json:"newPlan" validate:"required,oneof=first second third"`
	Duration     int    `json:"duration" validate:"required,min=1,max=12"`
	PaymentNonce string `json:"payment_nonce"`
}

type SubscriptionPricesRequest struct {
	First  decimal.Decimal `json:"first"`
	Second decimal.Decimal `json:"second"`
	Third  decimal.Decimal `json:"third"`
}

type BroadcastRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
	Type    string `json:"type" validate:"omitempty,oneof=info success warning error"`
	Target  string `json:"target" validate:"omitempty,oneof=all customers shop_owners"`
}

type AddressRequest struct {
	Title     string `json:"title" validate:"max=50"`
	FullName  string `json:"full_name" validate:"required,max=100"`
	Phone     string `json:"phone" validate:"required,phone,max=20"`
	City      string `json:"city" validate:"required,max=50"`
	Address   string `json:"address" validate:"required,max=500"`
	IsDefault bool   `json:"is_default"`
}
