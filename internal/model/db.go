package model

import "time"

const (
	RoleCustomer  = "customer"
	RoleShopOwner = "shop_owner"
	RoleAdmin     = "admin"

	UserStatusActive = "active"
	UserStatusBanned = "banned"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FullName  string    `gorm:"size:100;not null" json:"full_name"`
	Email     string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Role      string    `gorm:"size:20;index;not null;default:customer" json:"role"` // customer, shop_owner, admin
	Status    string    `gorm:"size:20;not null;default:active" json:"status"`       // active, banned
	Phone     string    `gorm:"size:20" json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Address struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Title     string    `gorm:"size:50" json:"title"`
	FullName  string    `gorm:"size:100;not null" json:"full_name"`
	Phone     string    `gorm:"size:20;not null" json:"phone"`
	City      string    `gorm:"size:50;not null" json:"city"`
	Address   string    `gorm:"type:text;not null" json:"address"`
	IsDefault bool      `gorm:"not null;default:false" json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	ParentID    *uint     `gorm:"index" json:"parent_id,omitempty"`
	Description string    `gorm:"type:text" json:"description"`
	ImageURL    string    `gorm:"size:255" json:"image_url"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// AllModels lists every table in creation order.
func AllModels() []any {
	return []any{
		&User{},
		&Shop{},
		&Product{},
		&CartItem{},
		&Order{},
		&OrderProduct{},
		&Subscription{},
		&SubscriptionPrice{},
		&Payment{},
		&Notification{},
		&ActivityLog{},
		&Category{},
		&Address{},
	}
}
