package tokenizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCount(t *testing.T) {
	assert.Equal(t, 0, Count("gpt-4o", ""))

	short := Count("gpt-4o", "hello")
	long := Count("gpt-4o", strings.Repeat("hello world ", 50))
	assert.Greater(t, short, 0)
	assert.Greater(t, long, short)
}

func TestApproximate(t *testing.T) {
	assert.Equal(t, 0, Approximate(""))
	assert.Equal(t, 1, Approximate("hi"))
	assert.Equal(t, 1, Approximate("four"))
	assert.Equal(t, 2, Approximate("fives"))
	assert.Equal(t, 25, Approximate(strings.Repeat("a", 100)))
}
