package stdx

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errBoom = errors.New("boom")

func TestMust(t *testing.T) {
	t.Run("Must1 returns the value", func(t *testing.T) {
		assert.Equal(t, 42, Must1(42, nil))
	})

	t.Run("Must1 panics on error", func(t *testing.T) {
		assert.PanicsWithError(t, errBoom.Error(), func() { Must1("call", errBoom) })
	})
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", FirstNonEmpty("", "b", "c"))
	assert.Equal(t, "", FirstNonEmpty())
	assert.Equal(t, "", FirstNonEmpty("", ""))
}
