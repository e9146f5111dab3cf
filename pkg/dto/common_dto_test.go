package dto

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestPageQuery_Normalize(t *testing.T) {
	q := PageQuery{}
	q.Normalize()
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, DefaultPageLimit, q.Limit)
	assert.Equal(t, 0, q.Offset())

	q = PageQuery{Page: 3, Limit: 500}
	q.Normalize()
	assert.Equal(t, MaxPageLimit, q.Limit)
	assert.Equal(t, 2*MaxPageLimit, q.Offset())

	q = PageQuery{Page: 1 << 61, Limit: MaxPageLimit}
	q.Normalize()
	assert.Equal(t, MaxPage, q.Page)
	assert.Equal(t, (MaxPage-1)*MaxPageLimit, q.Offset())
}

func TestPageQuery_BindingRejectsHugePage(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for raw, ok := range map[string]bool{
		"page=2&limit=10":          true,
		"page=100000":              true,
		"page=100001":              false,
		"page=2305843009213693952": false,
		"page=0":                   true,
		"limit=51":                 false,
	} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/items?"+raw, nil)

		var q PageQuery
		err := c.ShouldBindQuery(&q)
		assert.Equal(t, ok, err == nil, raw)
	}
}

func TestNewPaginationMeta(t *testing.T) {
	meta := NewPaginationMeta(2, 10, 25)
	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, int64(25), meta.TotalItems)
	assert.Equal(t, 2, meta.CurrentPage)

	assert.Equal(t, 0, NewPaginationMeta(1, 10, 0).TotalPages)
	assert.Equal(t, 1, NewPaginationMeta(1, 10, 10).TotalPages)
}

func TestNewPaginated_NilData(t *testing.T) {
	page := NewPaginated[string](nil, PageQuery{Page: 1, Limit: 5}, 0)
	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)
}

func TestProperty_TotalPagesCoverAllItems(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("pages * limit covers total without an empty trailing page", prop.ForAll(
		func(total int, limit int) bool {
			meta := NewPaginationMeta(1, limit, int64(total))
			if meta.TotalPages*limit < total {
				return false
			}
			return total == 0 || (meta.TotalPages-1)*limit < total
		},
		gen.IntRange(0, 10000),
		gen.IntRange(1, MaxPageLimit),
	))

	properties.TestingRun(t)
}

func TestProperty_OffsetNeverNegative(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("normalized offset stays within the last reachable page", prop.ForAll(
		func(page int, limit int) bool {
			q := PageQuery{Page: page, Limit: limit}
			q.Normalize()
			offset := q.Offset()
			return offset >= 0 && offset <= (MaxPage-1)*MaxPageLimit
		},
		gen.Int(),
		gen.Int(),
	))

	properties.TestingRun(t)
}
