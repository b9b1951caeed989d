package utils

import (
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPageBounds(t *testing.T) {
	tests := []struct {
		name               string
		page, size, length int
		start, end         int
	}{
		{"first page", 1, 4, 10, 0, 4},
		{"middle page", 2, 4, 10, 4, 8},
		{"last partial page", 3, 4, 10, 8, 10},
		{"past the end", 4, 4, 10, 10, 10},
		{"empty list", 1, 4, 0, 0, 0},
		{"zero page", 0, 4, 10, 0, 0},
		{"page that would overflow", math.MaxInt/12 + 2, 12, 5, 5, 5},
		{"huge page on a full list", math.MaxInt, 4, 10, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := PageBounds(tt.page, tt.size, tt.length)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0, 12))
	assert.Equal(t, 1, TotalPages(12, 12))
	assert.Equal(t, 2, TotalPages(13, 12))
	assert.Equal(t, 1, TotalPages(5, 0))
}

func TestGetPageParam(t *testing.T) {
	e := echo.New()
	for query, want := range map[string]int{"?page=3": 3, "?page=-1": 0, "?page=abc": 0, "": 0} {
		req := httptest.NewRequest(http.MethodGet, "/v1/catalog"+query, nil)
		c := e.NewContext(req, httptest.NewRecorder())
		assert.Equal(t, want, GetPageParam(c), query)
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"149.9", "R$ 149,90"},
		{"0", "R$ 0,00"},
		{"1234.5", "R$ 1.234,50"},
		{"1234567.891", "R$ 1.234.567,89"},
		{"-10", "-R$ 10,00"},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMoney("R$", decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestDiscountPercent(t *testing.T) {
	old := 189.90
	pct, ok := DiscountPercent(149.90, &old)
	assert.True(t, ok)
	assert.Equal(t, 21, pct)

	_, ok = DiscountPercent(149.90, nil)
	assert.False(t, ok)

	same := 149.90
	_, ok = DiscountPercent(149.90, &same)
	assert.False(t, ok)
}
