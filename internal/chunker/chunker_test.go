package chunker

import (
	"reflect"
	"strings"
	"testing"
	"unicode"
)

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func TestChunkEmpty(t *testing.T) {
	if got := Chunk("", 512); len(got) != 0 {
		t.Fatalf("expected no chunks, got %d", len(got))
	}
}

func TestChunkWhitespaceOnly(t *testing.T) {
	if got := Chunk("  \n\t\n  ", 512); len(got) != 0 {
		t.Fatalf("expected no chunks, got %d", len(got))
	}
}

func TestChunkShortText(t *testing.T) {
	got := Chunk("hello world", 512)
	if len(got) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(got))
	}
	if got[0] != "hello world" {
		t.Fatalf("unexpected chunk %q", got[0])
	}
}

func TestChunkBudgetRespected(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 200)
	chunks := Chunk(text, 512)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := DefaultTokenCounter(c); n > 512 {
			t.Fatalf("chunk %d measures %d, over the budget", i, n)
		}
	}
}

func TestChunkReconstruction(t *testing.T) {
	texts := []string{
		strings.Repeat("The quick brown fox jumps over the lazy dog. ", 120),
		"one line\nanother line\n" + strings.Repeat("filler sentence here. ", 150),
	}
	for _, text := range texts {
		chunks := Chunk(text, 256)
		joined := strings.Join(chunks, "")
		if stripSpace(joined) != stripSpace(text) {
			t.Fatal("chunks do not reconstruct the input")
		}
	}
}

func TestChunkDeterministic(t *testing.T) {
	text := strings.Repeat("Alpha beta gamma delta epsilon. ", 300)
	first := Chunk(text, 512)
	second := Chunk(text, 512)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("same input produced different chunks")
	}
}

func TestChunkUniformLines(t *testing.T) {
	// 72 lines of 84 characters merge into six 256-unit lines in pass one
	// and pair up into three chunks of 509 units in pass two.
	text := strings.Repeat(strings.Repeat("a", 84)+"\n", 72)
	chunks := Chunk(text, 512)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := DefaultTokenCounter(c); n > 512 {
			t.Fatalf("chunk %d measures %d, over the budget", i, n)
		}
	}
	if stripSpace(strings.Join(chunks, "")) != stripSpace(text) {
		t.Fatal("chunks do not reconstruct the input")
	}
}

func TestSplitLinesSentenceBreaks(t *testing.T) {
	lines := SplitLines("First sentence. Second sentence.", 4, DefaultTokenCounter)
	want := []string{"First sentence.", "Second sentence."}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("expected %v, got %v", want, lines)
	}
}

func TestSplitLinesHardSplit(t *testing.T) {
	lines := SplitLines(strings.Repeat("x", 100), 5, nil)
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d", len(lines))
	}
	for i, l := range lines {
		if n := DefaultTokenCounter(l); n > 5 {
			t.Fatalf("line %d measures %d, over the budget", i, n)
		}
	}
	if strings.Join(lines, "") != strings.Repeat("x", 100) {
		t.Fatal("hard split lost characters")
	}
}

func TestSplitLinesExactBudget(t *testing.T) {
	text := strings.Repeat("z", 1024)
	lines := SplitLines(text, 256, nil)
	if len(lines) != 1 || lines[0] != text {
		t.Fatalf("expected the text to pass through whole, got %d lines", len(lines))
	}
}

func TestSplitParagraphsLongLinePassesThrough(t *testing.T) {
	line := strings.Repeat("y", 4000)
	paragraphs := SplitParagraphs([]string{line}, 512, nil)
	if len(paragraphs) != 1 || paragraphs[0] != line {
		t.Fatalf("expected the line to pass through whole, got %d paragraphs", len(paragraphs))
	}
}

func TestSplitParagraphsKeepsLinesWhole(t *testing.T) {
	a := strings.Repeat("a", 1200)
	b := strings.Repeat("b", 1200)
	c := strings.Repeat("c", 120)
	paragraphs := SplitParagraphs([]string{a, b, c}, 512, nil)
	want := []string{a, b + "\n" + c}
	if !reflect.DeepEqual(paragraphs, want) {
		t.Fatalf("expected %d paragraphs with whole lines, got %v", len(want), len(paragraphs))
	}
}

func TestChunkCustomCounter(t *testing.T) {
	words := func(s string) int { return len(strings.Fields(s)) }
	text := "one two three four five six seven eight nine ten"
	chunks := Chunk(text, 6, WithTokenCounter(words))
	want := []string{"one two three\nfour five six", "seven eight nine\nten"}
	if !reflect.DeepEqual(chunks, want) {
		t.Fatalf("expected %v, got %v", want, chunks)
	}
}
