package embedding

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCachedFuncReusesVectors(t *testing.T) {
	calls := 0
	fn := CachedFunc(func(ctx context.Context, text string) ([]float32, error) {
		calls++
		return []float32{1, 0}, nil
	}, time.Minute, time.Minute)

	for i := 0; i < 3; i++ {
		vec, err := fn(context.Background(), "hello")
		if err != nil {
			t.Fatalf("embed: %v", err)
		}
		if len(vec) != 2 || vec[0] != 1 {
			t.Fatalf("unexpected vector %v", vec)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one provider call for repeated text, got %d", calls)
	}

	if _, err := fn(context.Background(), "other"); err != nil {
		t.Fatalf("embed: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected a distinct text to miss the cache, got %d calls", calls)
	}
}

func TestCachedFuncDoesNotCacheErrors(t *testing.T) {
	calls := 0
	fn := CachedFunc(func(ctx context.Context, text string) ([]float32, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("provider down")
		}
		return []float32{0, 1}, nil
	}, time.Minute, time.Minute)

	if _, err := fn(context.Background(), "hello"); err == nil {
		t.Fatal("expected first call to fail")
	}
	vec, err := fn(context.Background(), "hello")
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if len(vec) != 2 || vec[1] != 1 {
		t.Fatalf("unexpected vector %v", vec)
	}
	if calls != 2 {
		t.Fatalf("expected the failed call to be retried, got %d calls", calls)
	}
}
