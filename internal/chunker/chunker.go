package chunker

import (
	"fmt"
	"iter"
)

// Defaults balance retrieval granularity against redundant indexing cost:
// each window carries 80% new content.
const (
	DefaultSize    = 1000
	DefaultOverlap = 200
)

// Split returns a lazy, restartable sequence of overlapping windows over
// text. Windows are size runes long (the last one may be shorter) and each
// window starts size-overlap runes after the previous one. An empty text
// yields an empty sequence.
//
// size must be positive and overlap must satisfy 0 <= overlap < size;
// anything else cannot make forward progress and is rejected up front.
func Split(text string, size, overlap int) (iter.Seq[string], error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunker: size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunker: overlap must be in [0,%d), got %d", size, overlap)
	}

	runes := []rune(text)
	step := size - overlap

	return func(yield func(string) bool) {
		for start := 0; start < len(runes); start += step {
			end := start + size
			if end > len(runes) {
				end = len(runes)
			}
			if !yield(string(runes[start:end])) {
				return
			}
			if end == len(runes) {
				return
			}
		}
	}, nil
}

// Collect materializes the full chunk list.
func Collect(text string, size, overlap int) ([]string, error) {
	seq, err := Split(text, size, overlap)
	if err != nil {
		return nil, err
	}
	var chunks []string
	for c := range seq {
		chunks = append(chunks, c)
	}
	return chunks, nil
}

// Count returns the number of chunks Split would emit, without
// materializing them.
func Count(text string, size, overlap int) (int, error) {
	seq, err := Split(text, size, overlap)
	if err != nil {
		return 0, err
	}
	n := 0
	for range seq {
		n++
	}
	return n, nil
}
