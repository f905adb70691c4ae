package bis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeFragment(t *testing.T) {
	assert.Equal(t, "#bis=1,2,3", EncodeFragment([]int{1, 2, 3}))
	assert.Equal(t, "#bis=19019", EncodeFragment([]int{19019}))
	assert.Equal(t, "", EncodeFragment(nil))
	assert.Equal(t, "", EncodeFragment([]int{}))
}

func TestDecodeFragment(t *testing.T) {
	tests := []struct {
		name     string
		hash     string
		expected []int
	}{
		{"plain", "#bis=1,2,3", []int{1, 2, 3}},
		{"order kept", "#bis=30,10,20", []int{30, 10, 20}},
		{"junk dropped", "#bis=1,abc,2", []int{1, 2}},
		{"non-positive dropped", "#bis=0,-4,5", []int{5}},
		{"fractions dropped", "#bis=1.5,2", []int{2}},
		{"empty tokens dropped", "#bis=,,7,", []int{7}},
		{"spaces tolerated", "#bis= 8, 9", []int{8, 9}},
		{"nothing usable", "#bis=abc", []int{}},
		{"found after other text", "#foo#bis=4", []int{4}},
		{"no bis value", "#bis=", nil},
		{"other hash", "#level=20", nil},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DecodeFragment(tt.hash))
		})
	}
}

func TestFragmentRoundTrip(t *testing.T) {
	ids := []int{16921, 16922, 16923, 19019}
	assert.Equal(t, ids, DecodeFragment(EncodeFragment(ids)))
}

func TestUniqueIDs(t *testing.T) {
	assert.Equal(t, []int{3, 1, 2}, UniqueIDs([]int{3, 1, 3, 2, 1}))
	assert.Equal(t, []int{}, UniqueIDs(nil))
}
