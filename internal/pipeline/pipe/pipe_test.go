package pipe

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSkip(t *testing.T) {
	assert.True(t, IsSkip(Skip("nothing to patch")))
	assert.True(t, IsSkip(fmt.Errorf("wrapped: %w", Skipf("%d files", 3))))
	assert.False(t, IsSkip(errors.New("boom")))
	assert.Equal(t, "no ruby binary configured", Skip("no ruby binary configured").Error())
}
