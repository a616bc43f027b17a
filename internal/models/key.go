package models

import (
	"fmt"
	"strconv"
	"strings"
)

// ChunkKey identifies one chunk of an ingested document. Keys render as
// {doc}-{index}-{total} with a 1-based index. Document names may contain
// dashes themselves, so parsing works from the right.
type ChunkKey struct {
	Doc   string
	Index int
	Total int
}

func (k ChunkKey) String() string {
	return fmt.Sprintf("%s-%d-%d", k.Doc, k.Index, k.Total)
}

// ParseChunkKey parses a rendered chunk key.
func ParseChunkKey(s string) (ChunkKey, error) {
	last := strings.LastIndex(s, "-")
	if last <= 0 {
		return ChunkKey{}, fmt.Errorf("malformed chunk key %q", s)
	}
	prev := strings.LastIndex(s[:last], "-")
	if prev <= 0 {
		return ChunkKey{}, fmt.Errorf("malformed chunk key %q", s)
	}
	index, err := strconv.Atoi(s[prev+1 : last])
	if err != nil {
		return ChunkKey{}, fmt.Errorf("malformed chunk key %q: %w", s, err)
	}
	total, err := strconv.Atoi(s[last+1:])
	if err != nil {
		return ChunkKey{}, fmt.Errorf("malformed chunk key %q: %w", s, err)
	}
	if index < 1 || total < 1 || index > total {
		return ChunkKey{}, fmt.Errorf("chunk key %q out of range", s)
	}
	return ChunkKey{Doc: s[:prev], Index: index, Total: total}, nil
}

// Provenance returns the segment of a record key before the first dash,
// the docID carried in record metadata. For dashed document names this is
// the name's first segment only; existing stores rely on that shape.
func Provenance(key string) string {
	if i := strings.Index(key, "-"); i >= 0 {
		return key[:i]
	}
	return key
}
