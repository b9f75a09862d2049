package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPaginationMeta(t *testing.T) {
	t.Run("rounds the page count up", func(t *testing.T) {
		meta := NewPaginationMeta(1, 20, 45)
		assert.Equal(t, 3, meta.TotalPage)
		assert.Equal(t, int64(45), meta.Total)
	})

	t.Run("exact division", func(t *testing.T) {
		assert.Equal(t, 2, NewPaginationMeta(1, 20, 40).TotalPage)
	})

	t.Run("empty result", func(t *testing.T) {
		assert.Equal(t, 0, NewPaginationMeta(1, 20, 0).TotalPage)
	})

	t.Run("zero page size", func(t *testing.T) {
		assert.Equal(t, 0, NewPaginationMeta(1, 0, 45).TotalPage)
	})
}
