package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/dreschagin/system-diagnostics/internal/domain/entity"
	"github.com/dreschagin/system-diagnostics/internal/domain/valueobject"
)

func testCycle() (*entity.Snapshot, *entity.AnalysisResult) {
	reading, _ := entity.NewCategoryReading(valueobject.CPU, map[string]float64{"usage_percent": 12}, nil)
	snap := entity.NewSnapshot(time.Now(), map[string]string{"os": "linux"},
		map[valueobject.Category]entity.CategoryReading{valueobject.CPU: reading}, nil)
	result := entity.NewAnalysisResult(snap.ID(), valueobject.StatusOK, nil, nil, nil, time.Now())
	return snap, result
}

func TestGetBeforeFirstCycle(t *testing.T) {
	c := NewSnapshotCache()

	if _, _, ok := c.Get(); ok {
		t.Fatal("expected cache miss before first cycle")
	}
	if c.Ready() {
		t.Fatal("expected not ready before first cycle")
	}
}

func TestSetThenGetReturnsPair(t *testing.T) {
	c := NewSnapshotCache()
	snap, result := testCycle()

	if err := c.Set(snap, result); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	gotSnap, gotResult, ok := c.Get()
	if !ok {
		t.Fatal("expected cache hit")
	}
	if gotSnap.ID() != snap.ID() {
		t.Fatal("cache returned wrong snapshot")
	}
	if gotResult.SnapshotID() != snap.ID() {
		t.Fatal("cache returned mismatched result")
	}
	if !c.Ready() {
		t.Fatal("expected ready after first cycle")
	}
}

func TestSetRejectsMismatchedPair(t *testing.T) {
	c := NewSnapshotCache()
	snap, _ := testCycle()
	_, otherResult := testCycle()

	if err := c.Set(snap, otherResult); err == nil {
		t.Fatal("expected rejection of result from another snapshot")
	}
	if c.Ready() {
		t.Fatal("rejected pair must not mark the cache ready")
	}
}

func TestSetRejectsNil(t *testing.T) {
	c := NewSnapshotCache()
	snap, result := testCycle()

	if err := c.Set(nil, result); err == nil {
		t.Fatal("expected error for nil snapshot")
	}
	if err := c.Set(snap, nil); err == nil {
		t.Fatal("expected error for nil result")
	}
}

func TestConcurrentReadersSeeConsistentPairs(t *testing.T) {
	c := NewSnapshotCache()

	done := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			snap, result := testCycle()
			if err := c.Set(snap, result); err != nil {
				t.Errorf("set failed: %v", err)
				return
			}
		}
		close(done)
	}()

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				snap, result, ok := c.Get()
				if !ok {
					continue
				}
				if result.SnapshotID() != snap.ID() {
					t.Error("reader observed a torn snapshot/result pair")
					return
				}
			}
		}()
	}

	wg.Wait()
}
