package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentage(t *testing.T) {
	tests := []struct {
		name             string
		completed, total int
		want             int
	}{
		{"empty course", 0, 0, 0},
		{"empty course with stray facts", 3, 0, 0},
		{"nothing done", 0, 4, 0},
		{"quarter", 1, 4, 25},
		{"half", 2, 4, 50},
		{"all", 4, 4, 100},
		{"rounds down", 1, 3, 33},
		{"rounds up", 2, 3, 67},
		{"rounds half up", 1, 8, 13},
		{"clamped high", 5, 4, 100},
		{"clamped low", -1, 4, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Percentage(tc.completed, tc.total))
		})
	}
}
