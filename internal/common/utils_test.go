package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasAnyPrefix(t *testing.T) {
	assert.True(t, HasAnyPrefix("https://example.com/data.csv", "http://", "https://"))
	assert.True(t, HasAnyPrefix("HTTP://EXAMPLE.COM", "http://"))
	assert.False(t, HasAnyPrefix("data/https.csv", "http://", "https://"))
	assert.False(t, HasAnyPrefix("anything"))
}
