package pow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	assert := assert.New(t)

	t.Run("sorts fields lexicographically", func(t *testing.T) {
		got, err := Canonicalize(map[string]any{"title": "A", "price": 10})
		assert.NoError(err)
		assert.Equal(`{"price":10,"title":"A"}`, string(got))
	})

	t.Run("field order independent", func(t *testing.T) {
		a, err := Canonicalize(struct {
			B int `json:"b"`
			A int `json:"a"`
		}{2, 1})
		assert.NoError(err)

		b, err := Canonicalize(map[string]any{"a": 1, "b": 2})
		assert.NoError(err)

		assert.Equal(a, b)
		assert.Equal(`{"a":1,"b":2}`, string(a))
	})

	t.Run("excludes named fields", func(t *testing.T) {
		got, err := Canonicalize(map[string]any{"title": "A", "nonce": 42}, "nonce")
		assert.NoError(err)
		assert.Equal(`{"title":"A"}`, string(got))
	})

	t.Run("numbers carried verbatim", func(t *testing.T) {
		got, err := Canonicalize(map[string]any{"price": 10, "rate": 1.5})
		assert.NoError(err)
		assert.Equal(`{"price":10,"rate":1.5}`, string(got))
	})

	t.Run("no html escaping", func(t *testing.T) {
		got, err := Canonicalize(map[string]any{"image": "https://example.com/a?x=1&y=<2>"})
		assert.NoError(err)
		assert.Equal(`{"image":"https://example.com/a?x=1&y=<2>"}`, string(got))
	})

	t.Run("rejects non-object records", func(t *testing.T) {
		_, err := Canonicalize([]int{1, 2, 3})
		assert.Error(err)
	})
}
