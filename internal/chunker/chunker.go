package chunker

import (
	"strings"
	"unicode/utf8"
)

// TokenCounter measures text in chunk-budget units.
type TokenCounter func(s string) int

// DefaultTokenCounter approximates tokens as one per four runes.
func DefaultTokenCounter(s string) int {
	return utf8.RuneCountInString(s) / 4
}

// splitSequences are the break classes tried in order when a fragment
// exceeds its budget: line breaks first, then sentence ends, weaker
// punctuation, whitespace, hyphens.
var splitSequences = [][]rune{
	{'\n', '\r'},
	{'.'},
	{'?', '!'},
	{';'},
	{':'},
	{','},
	{')', ']', '}'},
	{' '},
	{'-'},
}

type options struct {
	count TokenCounter
}

// Option adjusts chunking behavior.
type Option func(*options)

// WithTokenCounter replaces the default rune-based counter.
func WithTokenCounter(c TokenCounter) Option {
	return func(o *options) { o.count = c }
}

// Chunk splits text into chunks measuring at most maxChunkSize. Pass one
// cuts the text into lines at half the budget, preferring natural break
// points; pass two merges whole lines back into chunks up to the full
// budget. The same counter measures both passes, so the output is stable
// for a given input and budget.
func Chunk(text string, maxChunkSize int, opts ...Option) []string {
	o := options{count: DefaultTokenCounter}
	for _, opt := range opts {
		opt(&o)
	}
	if maxChunkSize < 1 {
		maxChunkSize = 1
	}
	lineBudget := maxChunkSize / 2
	if lineBudget < 1 {
		lineBudget = 1
	}
	lines := SplitLines(text, lineBudget, o.count)
	return SplitParagraphs(lines, maxChunkSize, o.count)
}

// SplitLines cuts text into lines measuring at most maxTokensPerLine,
// breaking at the strongest separator available near the budget.
// Separators stay attached to the left fragment, so relative to the input
// only whitespace is lost. Lines come back trimmed, empty lines dropped.
func SplitLines(text string, maxTokensPerLine int, count TokenCounter) []string {
	if count == nil {
		count = DefaultTokenCounter
	}
	if maxTokensPerLine < 1 {
		maxTokensPerLine = 1
	}
	pieces := splitRecursive(text, maxTokensPerLine, count, 0)
	lines := make([]string, 0, len(pieces))
	for _, p := range pieces {
		p = strings.TrimSpace(p)
		if p != "" {
			lines = append(lines, p)
		}
	}
	return lines
}

// SplitParagraphs merges whole lines into paragraphs measuring at most
// maxTokensPerParagraph. A line is never re-split; a single line at or
// over the budget passes through as its own paragraph.
func SplitParagraphs(lines []string, maxTokensPerParagraph int, count TokenCounter) []string {
	if count == nil {
		count = DefaultTokenCounter
	}
	if maxTokensPerParagraph < 1 {
		maxTokensPerParagraph = 1
	}
	var paragraphs []string
	cur := ""
	for _, line := range lines {
		if cur == "" {
			cur = line
			continue
		}
		joined := cur + "\n" + line
		if count(joined) <= maxTokensPerParagraph {
			cur = joined
			continue
		}
		paragraphs = append(paragraphs, cur)
		cur = line
	}
	if cur != "" {
		paragraphs = append(paragraphs, cur)
	}
	return paragraphs
}

func splitRecursive(text string, budget int, count TokenCounter, level int) []string {
	if count(text) <= budget {
		if text == "" {
			return nil
		}
		return []string{text}
	}
	if level >= len(splitSequences) {
		return splitRunes(text, budget, count)
	}
	parts := splitAfterAny(text, splitSequences[level])
	if len(parts) == 1 {
		// separator absent at this level, try the next
		return splitRecursive(text, budget, count, level+1)
	}
	var out []string
	for _, part := range parts {
		if count(part) <= budget {
			out = append(out, part)
		} else {
			out = append(out, splitRecursive(part, budget, count, level+1)...)
		}
	}
	return mergeWithin(out, budget, count)
}

// splitAfterAny cuts text after every occurrence of any separator rune,
// keeping the separator on the left fragment.
func splitAfterAny(text string, seps []rune) []string {
	var parts []string
	start := 0
	for i, r := range text {
		for _, sep := range seps {
			if r == sep {
				parts = append(parts, text[start:i+utf8.RuneLen(r)])
				start = i + utf8.RuneLen(r)
				break
			}
		}
	}
	if start < len(text) {
		parts = append(parts, text[start:])
	}
	return parts
}

// mergeWithin greedily rejoins adjacent fragments while the joined measure
// stays within the budget, so breaks land as close to it as possible.
func mergeWithin(parts []string, budget int, count TokenCounter) []string {
	var out []string
	cur := ""
	for _, p := range parts {
		if cur == "" {
			cur = p
			continue
		}
		if count(cur+p) <= budget {
			cur += p
			continue
		}
		out = append(out, cur)
		cur = p
	}
	if cur != "" {
		out = append(out, cur)
	}
	return out
}

// splitRunes is the last resort for text without separators: hard cuts at
// the budget.
func splitRunes(text string, budget int, count TokenCounter) []string {
	var out []string
	cur := ""
	for _, r := range text {
		if cur != "" && count(cur+string(r)) > budget {
			out = append(out, cur)
			cur = ""
		}
		cur += string(r)
	}
	if cur != "" {
		out = append(out, cur)
	}
	return out
}
