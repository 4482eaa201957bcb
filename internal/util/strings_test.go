package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPluralize(t *testing.T) {
	assert.Equal(t, "endpoints", Pluralize(0, "endpoint", "endpoints"))
	assert.Equal(t, "endpoint", Pluralize(1, "endpoint", "endpoints"))
	assert.Equal(t, "endpoints", Pluralize(2, "endpoint", "endpoints"))
}

func TestCountOf(t *testing.T) {
	tests := []struct {
		count int
		want  string
	}{
		{0, "0 nodes"},
		{1, "1 node"},
		{12, "12 nodes"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CountOf(tt.count, "node", "nodes"))
	}
}
