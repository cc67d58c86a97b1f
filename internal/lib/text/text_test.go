package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{name: "short", in: "Echo", n: 10, want: "Echo"},
		{name: "exact", in: "Echo", n: 4, want: "Echo"},
		{name: "cut", in: "Echo Dot", n: 4, want: "Echo"},
		{name: "multibyte", in: "₹₹₹₹", n: 2, want: "₹₹"},
		{name: "empty", in: "", n: 3, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.n))
		})
	}
}
