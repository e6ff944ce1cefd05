package scheduler

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Result pairs a worker output with the 1-based position of its input.
type Result[R any] struct {
	SeqNum int
	Value  R
}

// Run processes items from in on a pool of workers. Results arrive in
// completion order tagged with sequence numbers so callers can restore input
// order. If workers is 0, it defaults to NumCPU.
func Run[T, R any](workers int, in <-chan T, fn func(T) R) <-chan Result[R] {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	out := make(chan Result[R], workers*2)
	var seq atomic.Int64
	var mu sync.Mutex

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				// Receive and number under one lock so numbering follows input order.
				mu.Lock()
				item, ok := <-in
				n := int(seq.Add(1))
				mu.Unlock()
				if !ok {
					return
				}
				out <- Result[R]{SeqNum: n, Value: fn(item)}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// InOrder consumes results and calls emit in sequence-number order,
// buffering results that arrive early.
func InOrder[R any](results <-chan Result[R], emit func(R)) {
	next := 1
	pending := make(map[int]R)
	for r := range results {
		if r.SeqNum != next {
			pending[r.SeqNum] = r.Value
			continue
		}
		emit(r.Value)
		next++
		for {
			v, ok := pending[next]
			if !ok {
				break
			}
			emit(v)
			delete(pending, next)
			next++
		}
	}
}

// Slice feeds items into a closed channel for Run.
func Slice[T any](items []T) <-chan T {
	ch := make(chan T, len(items))
	for _, it := range items {
		ch <- it
	}
	close(ch)
	return ch
}
