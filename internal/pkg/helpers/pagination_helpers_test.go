package helpers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCalculateOffsetLimit(t *testing.T) {
	offset, limit := CalculateOffsetLimit(3, 20)
	assert.EqualValues(t, 40, offset)
	assert.Equal(t, 20, limit)

	offset, limit = CalculateOffsetLimit(0, 500)
	assert.EqualValues(t, 0, offset)
	assert.Equal(t, DefaultPageSize, limit)
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(25, 2, 10)
	assert.Equal(t, 2, info.CurrentPage)
	assert.Equal(t, 3, info.TotalPages)
	assert.EqualValues(t, 25, info.TotalItems)

	info = NewPaginationInfo(25, 9, 10)
	assert.Equal(t, 3, info.CurrentPage)

	info = NewPaginationInfo(0, 1, 10)
	assert.Equal(t, 1, info.TotalPages)
}

func TestParsePaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		query    string
		wantPage int
		wantSize int
	}{
		{"/?page=4&size=25", 4, 25},
		{"/?page=-1&size=abc", DefaultPage, DefaultPageSize},
		{"/", DefaultPage, DefaultPageSize},
		{"/?page=2&size=1000", 2, DefaultPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", tt.query, nil)
			page, size := ParsePaginationParams(c)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantSize, size)
		})
	}
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 90*time.Minute, ParseDuration("1h30m", time.Second))
	assert.Equal(t, time.Second, ParseDuration("soon", time.Second))
}
