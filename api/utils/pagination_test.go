package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPaginationDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/uploads", nil)
	p, err := ExtractPagination(r)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, 0, p.Offset)
}

func TestExtractPaginationExplicit(t *testing.T) {
	r := httptest.NewRequest("GET", "/uploads?page=3&limit=10", nil)
	p, err := ExtractPagination(r)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 10, p.Limit)
	assert.Equal(t, 20, p.Offset)
}

func TestExtractPaginationRejectsBadValues(t *testing.T) {
	for _, target := range []string{"/u?page=0", "/u?page=abc", "/u?limit=-1"} {
		r := httptest.NewRequest("GET", target, nil)
		_, err := ExtractPagination(r)
		assert.Error(t, err, target)
	}
}

func TestSetPaginationStats(t *testing.T) {
	p := PaginationParams{Page: 1, Limit: 20}
	p.SetPaginationStats(45)
	assert.Equal(t, 45, p.TotalRecords)
	assert.Equal(t, 3, p.TotalPages)

	p.SetPaginationStats(0)
	assert.Equal(t, 0, p.TotalPages)
}

func TestBoundsClipsToTotal(t *testing.T) {
	p := PaginationParams{Page: 2, Limit: 20, Offset: 20}
	start, end := p.Bounds(25)
	assert.Equal(t, 20, start)
	assert.Equal(t, 25, end)

	start, end = p.Bounds(5)
	assert.Equal(t, 5, start)
	assert.Equal(t, 5, end)
}
