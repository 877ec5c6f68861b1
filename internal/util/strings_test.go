package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanList(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "nil", in: nil, want: nil},
		{name: "only blanks", in: []string{"", "  "}, want: nil},
		{name: "keeps order", in: []string{"b", "a", "c"}, want: []string{"b", "a", "c"}},
		{name: "dedupes after trim", in: []string{" localhost", "127.0.0.1", "localhost ", ""}, want: []string{"localhost", "127.0.0.1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanList(tt.in))
		})
	}
}
