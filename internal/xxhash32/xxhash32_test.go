package xxhash32

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zeebo/xxh3"
)

func TestSum_TruncatesXXH3_64(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty string", ""},
		{"short string", "entry.txt"},
		{"long string", "a/much/longer/entry/path/name.bin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sum(tt.data)
			assert.Equal(t, uint32(xxh3.HashString(tt.data)), got, "Sum must be the low 32 bits of XXH3-64")
			assert.Equal(t, SumBytes([]byte(tt.data)), got, "Sum and SumBytes must agree")
		})
	}
}

func TestSum_Deterministic(t *testing.T) {
	const name = "duplicate/name"
	assert.Equal(t, Sum(name), Sum(name))
}

func TestSum_DifferentNamesUsuallyDiffer(t *testing.T) {
	assert.NotEqual(t, Sum("alpha"), Sum("beta"))
}
