package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitWindows(t *testing.T) {
	text := strings.Repeat("x", 795) + strings.Repeat("y", 805) + strings.Repeat("z", 800)
	require.Equal(t, 2400, len(text))

	chunks, err := Collect(text, 1000, 200)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	runes := []rune(text)
	assert.Equal(t, string(runes[0:1000]), chunks[0])
	assert.Equal(t, string(runes[800:1800]), chunks[1])
	assert.Equal(t, string(runes[1600:2400]), chunks[2])
}

func TestSplitShortText(t *testing.T) {
	chunks, err := Collect("short text", 1000, 200)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0])
}

func TestSplitExactWindow(t *testing.T) {
	text := strings.Repeat("a", 1000)
	chunks, err := Collect(text, 1000, 200)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSplitEmptyText(t *testing.T) {
	chunks, err := Collect("", 1000, 200)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSplitRejectsBadParameters(t *testing.T) {
	cases := []struct {
		name          string
		size, overlap int
	}{
		{"zero size", 0, 0},
		{"negative size", -1, 0},
		{"negative overlap", 100, -1},
		{"overlap equals size", 100, 100},
		{"overlap exceeds size", 100, 150},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Split("abc", tc.size, tc.overlap)
			assert.Error(t, err)
		})
	}
}

func TestSplitDeterministic(t *testing.T) {
	text := strings.Repeat("abcdefghij", 500)
	first, err := Collect(text, 300, 50)
	require.NoError(t, err)
	second, err := Collect(text, 300, 50)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// The non-overlapping leading segment of each chunk, concatenated in order,
// must reconstruct the input exactly.
func TestSplitCoverage(t *testing.T) {
	text := strings.Repeat("0123456789", 777)
	size, overlap := 1000, 200
	chunks, err := Collect(text, size, overlap)
	require.NoError(t, err)

	var b strings.Builder
	step := size - overlap
	for i, c := range chunks {
		if i == len(chunks)-1 {
			b.WriteString(c)
			break
		}
		b.WriteString(c[:step])
	}
	assert.Equal(t, text, b.String())
}

func TestSplitTermination(t *testing.T) {
	text := strings.Repeat("a", 10007)
	size, overlap := 100, 99
	n, err := Count(text, size, overlap)
	require.NoError(t, err)
	// at most ceil(len/(size-overlap)) windows
	assert.LessOrEqual(t, n, (len(text)+size-overlap-1)/(size-overlap))
}

func TestSplitIsRestartable(t *testing.T) {
	seq, err := Split(strings.Repeat("b", 2500), 1000, 200)
	require.NoError(t, err)

	count := func() int {
		n := 0
		for range seq {
			n++
		}
		return n
	}
	assert.Equal(t, count(), count())
}

func TestSplitMultibyte(t *testing.T) {
	text := strings.Repeat("é", 1500)
	chunks, err := Collect(text, 1000, 200)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, 1000, len([]rune(chunks[0])))
	assert.Equal(t, 700, len([]rune(chunks[1])))
}
