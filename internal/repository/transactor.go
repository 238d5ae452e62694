package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrStockConflict is returned by a conditional stock decrement that
// matched no row.
var ErrStockConflict = errors.New("stock conflict")

// Transactor scopes a unit of work. The callback receives the tx handle
// that must be passed to every repository call inside it; the tx is
// committed when fn returns nil and rolled back otherwise, including on
// panic.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormTransactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{
		db: db,
	}
}

func (t *gormTransactor) WithinTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return t.db.WithContext(ctx).Transaction(fn)
}

// conn picks the tx handle when one is given.
func conn(ctx context.Context, db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

func tierOrder(column string) string {
	return "CASE " + column + " WHEN 'first' THEN 1 WHEN 'second' THEN 2 WHEN 'third' THEN 3 ELSE 4 END"
}

func sortDirection(order string, fallback string) string {
	switch order {
	case "asc", "ASC":
		return "ASC"
	case "desc", "DESC":
		return "DESC"
	}
	return fallback
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// likeEscape follows every LIKE ? built from likePattern. '!' behaves the
// same on postgres, mysql and sqlite, unlike backslash.
const likeEscape = " ESCAPE '!'"

var likeReplacer = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// likePattern is a case-insensitive substring pattern for LOWER(col) LIKE ?
// with wildcards in the keyword matched literally.
func likePattern(keyword string) string {
	return "%" + likeReplacer.Replace(lower(keyword)) + "%"
}
