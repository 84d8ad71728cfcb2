package il

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderAndCompact(t *testing.T) {
	testCases := []struct {
		name     string
		input    []BinSpan
		expected []BinSpan
	}{
		{
			name:     "empty",
			input:    nil,
			expected: nil,
		},
		{
			name:     "touching ranges merge, non-touching do not",
			input:    []BinSpan{NewBinSpan(0, 5), NewBinSpan(5, 3), NewBinSpan(10, 2)},
			expected: []BinSpan{NewBinSpan(0, 8), NewBinSpan(10, 2)},
		},
		{
			name:     "unsorted input is sorted first",
			input:    []BinSpan{NewBinSpan(10, 2), NewBinSpan(5, 3), NewBinSpan(0, 5)},
			expected: []BinSpan{NewBinSpan(0, 8), NewBinSpan(10, 2)},
		},
		{
			name:     "overlapping ranges merge",
			input:    []BinSpan{NewBinSpan(0, 6), NewBinSpan(4, 4)},
			expected: []BinSpan{NewBinSpan(0, 8)},
		},
		{
			name:     "contained range is absorbed",
			input:    []BinSpan{NewBinSpan(0, 10), NewBinSpan(2, 3)},
			expected: []BinSpan{NewBinSpan(0, 10)},
		},
		{
			name:     "duplicates collapse",
			input:    []BinSpan{NewBinSpan(3, 2), NewBinSpan(3, 2), NewBinSpan(3, 2)},
			expected: []BinSpan{NewBinSpan(3, 2)},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := OrderAndCompact(tc.input)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestOrderAndCompactIdempotent(t *testing.T) {
	input := []BinSpan{
		NewBinSpan(20, 1),
		NewBinSpan(0, 5),
		NewBinSpan(5, 3),
		NewBinSpan(7, 2),
		NewBinSpan(21, 4),
	}
	once := OrderAndCompact(input)
	twice := OrderAndCompact(once)
	assert.Equal(t, once, twice)
}

func TestOrderAndCompactDoesNotMutateInput(t *testing.T) {
	input := []BinSpan{NewBinSpan(10, 2), NewBinSpan(0, 5)}
	_ = OrderAndCompact(input)
	assert.Equal(t, []BinSpan{NewBinSpan(10, 2), NewBinSpan(0, 5)}, input)
}
