package helpers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yigit/peers/internal/pkg/apperrors"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ParseIDParam reads a positive int64 path parameter
func ParseIDParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid " + name + " parameter").
			WithDetails(map[string]interface{}{"field": name, "value": c.Param(name)})
	}
	return id, nil
}

// ParseLimit reads the "limit" query parameter, clamped to [1, max].
// Missing or malformed values yield def.
func ParseLimit(c *gin.Context, def, max int) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// ParsePaginationParams extracts the 1-based page and page size
func ParsePaginationParams(c *gin.Context) (page, size int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err = strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(DefaultPageSize)))
	if err != nil || size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return page, size
}
