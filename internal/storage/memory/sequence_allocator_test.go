package memory_test

import (
	"sort"
	"sync"
	"testing"

	"github.com/fishgalaxy/backend/internal/domain"
	"github.com/fishgalaxy/backend/internal/storage/memory"
)

func TestSequenceAllocator_Bootstrap(t *testing.T) {
	allocator := memory.NewSequenceAllocator()

	first, err := allocator.AllocateNext(domain.OrderIDScope)
	if err != nil {
		t.Fatalf("allocate failed: %v", err)
	}
	if first != domain.SequenceBootstrap {
		t.Fatalf("expected first allocation %d, got %d", domain.SequenceBootstrap, first)
	}

	second, err := allocator.AllocateNext(domain.OrderIDScope)
	if err != nil {
		t.Fatalf("allocate failed: %v", err)
	}
	if second != first+1 {
		t.Fatalf("expected %d, got %d", first+1, second)
	}
}

func TestSequenceAllocator_ScopesAreIndependent(t *testing.T) {
	allocator := memory.NewSequenceAllocator()

	if _, err := allocator.AllocateNext(domain.OrderIDScope); err != nil {
		t.Fatalf("allocate failed: %v", err)
	}
	other, err := allocator.AllocateNext("Invoice.invoiceId")
	if err != nil {
		t.Fatalf("allocate failed: %v", err)
	}
	if other != domain.SequenceBootstrap {
		t.Fatalf("new scope must bootstrap at %d, got %d", domain.SequenceBootstrap, other)
	}
}

func TestSequenceAllocator_ConcurrentDistinct(t *testing.T) {
	allocator := memory.NewSequenceAllocator()

	const n = 100
	results := make([]int64, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			v, err := allocator.AllocateNext(domain.OrderIDScope)
			if err != nil {
				t.Errorf("allocate failed: %v", err)
				return
			}
			results[i] = v
		}(i)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i] < results[j] })
	for i := 0; i < n; i++ {
		want := domain.SequenceBootstrap + int64(i)
		if results[i] != want {
			t.Fatalf("expected contiguous distinct values, at %d got %d want %d", i, results[i], want)
		}
	}
}
