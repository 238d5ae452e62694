package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, Params{Page: 1, Limit: 20}, Params{}.Normalize())
	assert.Equal(t, Params{Page: 1, Limit: 100}, Params{Page: -3, Limit: 500}.Normalize())
	assert.Equal(t, Params{Page: 4, Limit: 5}, Params{Page: 4, Limit: 5}.Normalize())
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Params{Page: 1, Limit: 20}.Offset())
	assert.Equal(t, 20, Params{Page: 2, Limit: 20}.Offset())
	assert.Equal(t, 90, Params{Page: 10, Limit: 10}.Offset())
}

func TestNewMeta(t *testing.T) {
	m := NewMeta(Params{Page: 2, Limit: 20}, 45)
	assert.Equal(t, 3, m.TotalPages)
	assert.Equal(t, int64(45), m.Total)

	assert.Equal(t, 0, NewMeta(Params{}, 0).TotalPages)
	assert.Equal(t, 1, NewMeta(Params{Limit: 20}, 20).TotalPages)
	assert.Equal(t, 2, NewMeta(Params{Limit: 20}, 21).TotalPages)
}

func TestNewPageNeverNil(t *testing.T) {
	p := NewPage[int](nil, Params{}, 0)
	assert.NotNil(t, p.Items)
	assert.Empty(t, p.Items)
}
