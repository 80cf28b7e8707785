package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeByCode(t *testing.T) {
	t.Run("allocates nil map", func(t *testing.T) {
		m, added := MergeByCode(nil, []Company{company(1), company(2)})
		require.NotNil(t, m)
		assert.Equal(t, 2, added)
		assert.Len(t, m, 2)
	})

	t.Run("never overwrites a known code", func(t *testing.T) {
		m, _ := MergeByCode(nil, []Company{{Code: 7, ShortName: "first"}})
		m, added := MergeByCode(m, []Company{{Code: 7, ShortName: "second"}})
		assert.Zero(t, added)
		assert.Equal(t, "first", m[7].ShortName)
	})

	t.Run("duplicates inside one batch count once", func(t *testing.T) {
		m, added := MergeByCode(CompanyMap{}, []Company{company(3), company(3), company(4)})
		assert.Equal(t, 2, added)
		assert.Len(t, m, 2)
	})

	t.Run("idempotent", func(t *testing.T) {
		batch := companies(1, 10)
		m, _ := MergeByCode(nil, batch)
		before := len(m)
		m, added := MergeByCode(m, batch)
		assert.Zero(t, added)
		assert.Equal(t, before, len(m))
	})

	t.Run("empty batch", func(t *testing.T) {
		m, added := MergeByCode(CompanyMap{1: company(1)}, nil)
		assert.Zero(t, added)
		assert.Len(t, m, 1)
	})
}

func TestCodeBounds(t *testing.T) {
	_, _, ok := codeBounds(CompanyMap{})
	assert.False(t, ok)

	m, _ := MergeByCode(nil, []Company{company(42), company(-3), company(900)})
	lo, hi, ok := codeBounds(m)
	require.True(t, ok)
	assert.Equal(t, int64(-3), lo)
	assert.Equal(t, int64(900), hi)
}
