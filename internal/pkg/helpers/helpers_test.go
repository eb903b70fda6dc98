package helpers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/peers/internal/pkg/apperrors"
)

func testContext(target string, params gin.Params) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", target, nil)
	c.Params = params
	return c
}

func TestParseIDParam(t *testing.T) {
	id, err := ParseIDParam(testContext("/", gin.Params{{Key: "id", Value: "17"}}), "id")
	require.NoError(t, err)
	assert.Equal(t, int64(17), id)

	for _, v := range []string{"", "abc", "0", "-3"} {
		_, err := ParseIDParam(testContext("/", gin.Params{{Key: "id", Value: v}}), "id")
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed, v)
	}
}

func TestParseLimit(t *testing.T) {
	assert.Equal(t, 12, ParseLimit(testContext("/", nil), 12, 50))
	assert.Equal(t, 5, ParseLimit(testContext("/?limit=5", nil), 12, 50))
	assert.Equal(t, 50, ParseLimit(testContext("/?limit=500", nil), 12, 50))
	assert.Equal(t, 12, ParseLimit(testContext("/?limit=-1", nil), 12, 50))
}

func TestParsePaginationParams(t *testing.T) {
	page, size := ParsePaginationParams(testContext("/?page=3&size=5", nil))
	assert.Equal(t, 3, page)
	assert.Equal(t, 5, size)

	page, size = ParsePaginationParams(testContext("/?page=x&size=1000", nil))
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPageSize, size)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	got, info := Paginate(items, 2, 2)
	assert.Equal(t, []int{3, 4}, got)
	assert.Equal(t, PageInfo{CurrentPage: 2, TotalPages: 3, PageSize: 2, TotalItems: 5}, info)

	got, _ = Paginate(items, 9, 2)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got, info = Paginate([]int{}, 1, 10)
	assert.Empty(t, got)
	assert.Equal(t, 1, info.TotalPages)
}

func TestNilIfBlank(t *testing.T) {
	blank, padded := "   ", "  hi "
	assert.Nil(t, NilIfBlank(nil))
	assert.Nil(t, NilIfBlank(&blank))
	assert.Equal(t, "hi", *NilIfBlank(&padded))
	assert.Equal(t, "", Deref(nil))
}
