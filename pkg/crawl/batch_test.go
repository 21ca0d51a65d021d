package crawl

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestResolveBatches_SplitsIntoBatches(t *testing.T) {
	ids := make([]string, 250)
	for i := range ids {
		ids[i] = fmt.Sprintf("song-%d", i)
	}

	var mu sync.Mutex
	var batchSizes []int

	likes, err := ResolveBatches(context.Background(), ids, 100, 0,
		func(ctx context.Context, batch []string) (map[string]int, error) {
			mu.Lock()
			batchSizes = append(batchSizes, len(batch))
			mu.Unlock()

			result := make(map[string]int, len(batch))
			for _, id := range batch {
				result[id] = len(id)
			}
			return result, nil
		})
	if err != nil {
		t.Fatalf("ResolveBatches() error = %v", err)
	}

	if len(batchSizes) != 3 {
		t.Fatalf("Expected 3 batches for 250 ids, got %d", len(batchSizes))
	}
	total := 0
	for _, size := range batchSizes {
		if size > 100 {
			t.Errorf("Batch size %d exceeds limit 100", size)
		}
		total += size
	}
	if total != 250 {
		t.Errorf("Batches cover %d ids, want 250", total)
	}
	if len(likes) != 250 {
		t.Errorf("Resolved %d ids, want 250", len(likes))
	}
}

func TestResolveBatches_AbsentIDGetsDefault(t *testing.T) {
	ids := []string{"known", "unknown"}

	likes, err := ResolveBatches(context.Background(), ids, 100, -1,
		func(ctx context.Context, batch []string) (map[string]int, error) {
			return map[string]int{"known": 42}, nil
		})
	if err != nil {
		t.Fatalf("ResolveBatches() error = %v", err)
	}

	if likes["known"] != 42 {
		t.Errorf("likes[known] = %d, want 42", likes["known"])
	}
	if got, ok := likes["unknown"]; !ok || got != -1 {
		t.Errorf("likes[unknown] = %d (present=%v), want default -1", got, ok)
	}
}

func TestResolveBatches_SingleFailureFailsAll(t *testing.T) {
	ids := make([]string, 250)
	for i := range ids {
		ids[i] = fmt.Sprintf("song-%d", i)
	}

	batchErr := errors.New("batch lookup failed")
	var calls int
	var mu sync.Mutex

	likes, err := ResolveBatches(context.Background(), ids, 100, 0,
		func(ctx context.Context, batch []string) (map[string]int, error) {
			mu.Lock()
			calls++
			failing := calls == 2
			mu.Unlock()
			if failing {
				return nil, batchErr
			}
			return map[string]int{}, nil
		})

	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !errors.Is(err, batchErr) {
		t.Errorf("Expected wrapped batch error, got %v", err)
	}
	if likes != nil {
		t.Errorf("Expected no partial mapping on failure, got %d entries", len(likes))
	}
}

func TestResolveBatches_EmptyIDs(t *testing.T) {
	likes, err := ResolveBatches(context.Background(), nil, 100, 0,
		func(ctx context.Context, batch []string) (map[string]int, error) {
			t.Error("fetchBatch should not be called for empty ids")
			return nil, nil
		})
	if err != nil {
		t.Fatalf("ResolveBatches() error = %v", err)
	}
	if len(likes) != 0 {
		t.Errorf("Expected empty mapping, got %d entries", len(likes))
	}
}

func TestChunk(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		size     int
		expected []int
	}{
		{"exact multiple", 200, 100, []int{100, 100}},
		{"remainder", 250, 100, []int{100, 100, 50}},
		{"single partial", 7, 100, []int{7}},
		{"empty", 0, 100, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids := make([]int, tt.count)
			batches := chunk(ids, tt.size)

			if len(batches) != len(tt.expected) {
				t.Fatalf("chunk() produced %d batches, want %d", len(batches), len(tt.expected))
			}
			for i, batch := range batches {
				if len(batch) != tt.expected[i] {
					t.Errorf("batch %d has %d ids, want %d", i, len(batch), tt.expected[i])
				}
			}
		})
	}
}
