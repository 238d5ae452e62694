package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestFromDB(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		kind   Kind
		code   string
		status int
	}{
		{"record not found", gorm.ErrRecordNotFound, KindNotFound, CodeNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("find user: %w", gorm.ErrRecordNotFound), KindNotFound, CodeNotFound, http.StatusNotFound},
		{"gorm duplicate", gorm.ErrDuplicatedKey, KindConflict, CodeDuplicate, http.StatusConflict},
		{"gorm foreign key", gorm.ErrForeignKeyViolated, KindValidation, CodeReferenceNotFound, http.StatusBadRequest},
		{"pg unique", &pgconn.PgError{Code: "23505"}, KindConflict, CodeDuplicate, http.StatusConflict},
		{"pg foreign key", &pgconn.PgError{Code: "23503"}, KindValidation, CodeReferenceNotFound, http.StatusBadRequest},
		{"pg invalid text", &pgconn.PgError{Code: "22P02"}, KindValidation, CodeInvalidFormat, http.StatusBadRequest},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062}, KindConflict, CodeDuplicate, http.StatusConflict},
		{"mysql foreign key", &mysql.MySQLError{Number: 1452}, KindValidation, CodeReferenceNotFound, http.StatusBadRequest},
		{"unknown", errors.New("connection reset"), KindPersistence, CodePersistence, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromDB(tt.err, "user")
			appErr, ok := As(err)
			require.True(t, ok)
			assert.Equal(t, tt.kind, appErr.Kind)
			assert.Equal(t, tt.code, appErr.Code)
			assert.Equal(t, tt.status, appErr.HTTPStatus())
		})
	}
}

func TestFromDB_NilAndPassthrough(t *testing.T) {
	assert.NoError(t, FromDB(nil, "user"))

	orig := EmptyCart()
	assert.Same(t, orig, FromDB(orig, "cart"))
}

func TestPersistenceCapturesStack(t *testing.T) {
	err := Persistence(errors.New("boom"))
	assert.NotEmpty(t, err.StackTrace())
	assert.ErrorContains(t, err, "boom")
}

func TestInsufficientStockDetails(t *testing.T) {
	err := InsufficientStock(7, 10, 3)
	assert.Equal(t, CodeInsufficientStock, err.Code)
	assert.Equal(t, uint(7), err.Details["product_id"])
	assert.Equal(t, 10, err.Details["requested"])
	assert.Equal(t, 3, err.Details["available"])
	assert.True(t, IsCode(fmt.Errorf("checkout: %w", err), CodeInsufficientStock))
}

func TestStockExceededDetails(t *testing.T) {
	err := StockExceeded(1, 4, 3, 5)
	assert.Equal(t, KindValidation, err.Kind)
	assert.Equal(t, 4, err.Details["in_cart"])
	assert.Equal(t, 5, err.Details["available"])
}
