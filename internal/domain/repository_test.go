package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListFilter_Normalize(t *testing.T) {
	f := ListFilter{Limit: 0, Offset: -3}
	f.Normalize()
	assert.Equal(t, DefaultLimit, f.Limit)
	assert.Equal(t, 0, f.Offset)

	f = ListFilter{Limit: 10_000}
	f.Normalize()
	assert.Equal(t, MaxLimit, f.Limit)
}

func TestPage(t *testing.T) {
	all := []int{1, 2, 3, 4, 5}

	res := Page(all, ListFilter{Limit: 2, Offset: 2})
	assert.Equal(t, []int{3, 4}, res.Items)
	assert.Equal(t, int64(5), res.TotalCount)

	res = Page(all, ListFilter{Limit: 2, Offset: 10})
	assert.Empty(t, res.Items)
	assert.Equal(t, int64(5), res.TotalCount)
}
