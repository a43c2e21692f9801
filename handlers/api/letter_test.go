package api

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageWindowFirstPage(t *testing.T) {
	start, end, page, size := pageWindow(120, 1, 50)

	assert.Equal(t, 0, start)
	assert.Equal(t, 50, end)
	assert.Equal(t, 1, page)
	assert.Equal(t, 50, size)
}

func TestPageWindowLastPartialPage(t *testing.T) {
	start, end, _, _ := pageWindow(120, 3, 50)

	assert.Equal(t, 100, start)
	assert.Equal(t, 120, end)
}

func TestPageWindowPastEndCollapsesToLastPage(t *testing.T) {
	start, end, page, _ := pageWindow(10, 99, 50)

	assert.Equal(t, 0, start)
	assert.Equal(t, 10, end)
	assert.Equal(t, 1, page)
}

func TestPageWindowHostileValuesStayInBounds(t *testing.T) {
	for _, page := range []int{math.MaxInt64, math.MinInt64, -1, 0} {
		for _, size := range []int{math.MaxInt64, math.MinInt64, -1, 0} {
			start, end, _, _ := pageWindow(5, page, size)

			assert.GreaterOrEqual(t, start, 0)
			assert.LessOrEqual(t, start, end)
			assert.LessOrEqual(t, end, 5)
		}
	}
}

func TestPageWindowCapsPageSize(t *testing.T) {
	_, end, _, size := pageWindow(1000, 1, 100000)

	assert.Equal(t, maxPageSize, size)
	assert.Equal(t, maxPageSize, end)
}

func TestPageWindowEmptyList(t *testing.T) {
	start, end, page, _ := pageWindow(0, 1, 50)

	assert.Equal(t, 0, start)
	assert.Equal(t, 0, end)
	assert.Equal(t, 1, page)
}
