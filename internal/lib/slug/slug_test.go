package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Echo Dot (4th Gen)", "echo-dot-4th-gen"},
		{"  Fire TV Stick -- 4K  ", "fire-tv-stick-4k"},
		{"boAt Airdopes 141!", "boat-airdopes-141"},
		{"snake_case stays", "snake_case-stays"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Make(tt.in))
		})
	}
}
