package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnique(t *testing.T) {
	tests := []struct {
		name string
		in   []uint
		want []uint
	}{
		{name: "empty", in: nil, want: nil},
		{name: "zero ids dropped", in: []uint{0, 3, 0}, want: []uint{3}},
		{name: "repeats collapse", in: []uint{4, 2, 4, 2, 7}, want: []uint{4, 2, 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ElementsMatch(t, tt.want, unique(tt.in))
		})
	}
}
