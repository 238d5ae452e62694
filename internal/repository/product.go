package repository

import (
	"context"
	"time"

	"emall-backend/internal/model"
	"emall-backend/internal/pagination"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductFilter struct {
	Keyword   string
	Category  string
	ShopID    uint
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	InStock   bool
	SortBy    string // created_at, price, name, popularity
	SortOrder string
	Page      pagination.Params
}

type CategoryCount struct {
	Category     string `json:"category"`
	ProductCount int64  `json:"product_count"`
}

type PriceRange struct {
	Category     string          `json:"category"`
	MinPrice     decimal.Decimal `json:"min_price"`
	MaxPrice     decimal.Decimal `json:"max_price"`
	AvgPrice     decimal.Decimal `json:"avg_price"`
	ProductCount int64           `json:"product_count"`
}

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, productID uint) error
	FindByID(ctx context.Context, productID uint) (*model.Product, error)
	FindListing(ctx context.Context, productID uint) (*model.ProductListing, error)
	List(ctx context.Context, filter ProductFilter) ([]model.ProductListing, int64, error)
	Featured(ctx context.Context, now time.Time, limit int) ([]model.ProductListing, error)
	CategoryCounts(ctx context.Context) ([]CategoryCount, error)
	PriceRanges(ctx context.Context) ([]PriceRange, error)

	Stock(ctx context.Context, tx *gorm.DB, productID uint) (int, error)
	DecrementStock(ctx context.Context, tx *gorm.DB, productID uint, quantity int) error
	RestoreStock(ctx context.Context, tx *gorm.DB, productID uint, quantity int) error
	IDsByShop(ctx context.Context, tx *gorm.DB, shopID uint) ([]uint, error)
	DeleteByShop(ctx context.Context, tx *gorm.DB, shopID uint) error
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepoImpl{
		db: db,
	}
}

const productListingColumns = `products.*,
	shops.name AS shop_name,
	shops.city AS shop_city,
	shops.plan_tier AS plan_tier`

// visible restricts to active products of approved shops.
func (r *productRepoImpl) visible(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("products").
		Joins("JOIN shops ON shops.id = products.shop_id").
		Where("shops.status = ?", model.ShopStatusApproved).
		Where("products.status = ?", model.ProductStatusActive)
}

func (r *productRepoImpl) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepoImpl) Update(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).
		Model(product).
		Select("name", "description", "price", "discount", "quantity", "category", "image_url", "status").
		Updates(product).Error
}

func (r *productRepoImpl) Delete(ctx context.Context, productID uint) error {
	result := r.db.WithContext(ctx).Delete(&model.Product{}, productID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepoImpl) FindByID(ctx context.Context, productID uint) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Where("id = ?", productID).
		First(&product).Error

	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *productRepoImpl) FindListing(ctx context.Context, productID uint) (*model.ProductListing, error) {
	var rows []model.ProductListing
	err := r.visible(ctx).
		Select(productListingColumns).
		Where("products.id = ?", productID).
		Limit(1).
		Scan(&rows).Error

	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	return &rows[0], nil
}

func (r *productRepoImpl) List(ctx context.Context, filter ProductFilter) ([]model.ProductListing, int64, error) {
	q := r.visible(ctx)
	if filter.Category != "" && filter.Category != model.CategoryAll {
		q = q.Where("products.category = ?", filter.Category)
	}
	if filter.ShopID != 0 {
		q = q.Where("products.shop_id = ?", filter.ShopID)
	}
	if filter.MinPrice != nil {
		q = q.Where("products.price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("products.price <= ?", *filter.MaxPrice)
	}
	if filter.InStock {
		q = q.Where("products.quantity > 0")
	}
	if filter.Keyword != "" {
		kw := likePattern(filter.Keyword)
		q = q.Where("LOWER(products.name) LIKE ?"+likeEscape+" OR LOWER(products.description) LIKE ?"+likeEscape, kw, kw)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	var products []model.ProductListing
	err := q.Select(productListingColumns).
		Order(tierOrder("shops.plan_tier")).
		Order(productSecondarySort(filter.SortBy, filter.SortOrder)).
		Order("products.id").
		Limit(page.Limit).
		Offset(page.Offset()).
		Scan(&products).Error

	return products, total, err
}

func productSecondarySort(sortBy, order string) string {
	switch sortBy {
	case "price":
		return "products.price " + sortDirection(order, "ASC")
	case "name":
		return "products.name " + sortDirection(order, "ASC")
	case "popularity":
		return "(SELECT COALESCE(SUM(op.quantity), 0) FROM order_products op WHERE op.product_id = products.id) " +
			sortDirection(order, "DESC")
	default:
		return "products.created_at " + sortDirection(order, "DESC")
	}
}

// Featured lists in-stock products of first-tier shops with a running
// subscription.
func (r *productRepoImpl) Featured(ctx context.Context, now time.Time, limit int) ([]model.ProductListing, error) {
	var products []model.ProductListing
	err := r.visible(ctx).
		Select(productListingColumns).
		Where("shops.plan_tier = ?", model.TierFirst).
		Where("shops.subscription_expires_at > ?", now).
		Where("products.quantity > 0").
		Order("products.created_at DESC").
		Order("products.id").
		Limit(limit).
		Scan(&products).Error

	return products, err
}

func (r *productRepoImpl) CategoryCounts(ctx context.Context) ([]CategoryCount, error) {
	var rows []CategoryCount
	err := r.visible(ctx).
		Select("products.category AS category, COUNT(*) AS product_count").
		Where("products.category <> ''").
		Group("products.category").
		Order("product_count DESC").
		Order("products.category").
		Scan(&rows).Error

	return rows, err
}

func (r *productRepoImpl) PriceRanges(ctx context.Context) ([]PriceRange, error) {
	var rows []PriceRange
	err := r.visible(ctx).
		Select(`products.category AS category,
			MIN(products.price) AS min_price,
			MAX(products.price) AS max_price,
			AVG(products.price) AS avg_price,
			COUNT(*) AS product_count`).
		Where("products.category <> ''").
		Group("products.category").
		Order("products.category").
		Scan(&rows).Error

	for i := range rows {
		rows[i].AvgPrice = rows[i].AvgPrice.Round(2)
	}

	return rows, err
}

func (r *productRepoImpl) Stock(ctx context.Context, tx *gorm.DB, productID uint) (int, error) {
	var product model.Product
	err := conn(ctx, r.db, tx).
		Select("id", "quantity").
		Where("id = ?", productID).
		First(&product).Error

	return product.Quantity, err
}

// DecrementStock only succeeds while stock covers quantity, so two
// concurrent checkouts can never drive it negative.
func (r *productRepoImpl) DecrementStock(ctx context.Context, tx *gorm.DB, productID uint, quantity int) error {
	result := conn(ctx, r.db, tx).
		Model(&model.Product{}).
		Where("id = ? AND quantity >= ?", productID, quantity).
		Update("quantity", gorm.Expr("quantity - ?", quantity))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStockConflict
	}

	return nil
}

func (r *productRepoImpl) RestoreStock(ctx context.Context, tx *gorm.DB, productID uint, quantity int) error {
	return conn(ctx, r.db, tx).
		Model(&model.Product{}).
		Where("id = ?", productID).
		Update("quantity", gorm.Expr("quantity + ?", quantity)).Error
}

func (r *productRepoImpl) IDsByShop(ctx context.Context, tx *gorm.DB, shopID uint) ([]uint, error) {
	var ids []uint
	err := conn(ctx, r.db, tx).
		Model(&model.Product{}).
		Where("shop_id = ?", shopID).
		Pluck("id", &ids).Error

	return ids, err
}

func (r *productRepoImpl) DeleteByShop(ctx context.Context, tx *gorm.DB, shopID uint) error {
	return conn(ctx, r.db, tx).
		Where("shop_id = ?", shopID).
		Delete(&model.Product{}).Error
}
