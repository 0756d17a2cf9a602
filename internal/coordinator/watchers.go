package coordinator

import "sync"

// watchers is a set of change callbacks. Callbacks run on the goroutine that
// performed the mutation, after the owning coordinator released its lock.
type watchers struct {
	mu   sync.Mutex
	next int
	fns  map[int]func()
}

func (w *watchers) add(fn func()) (stop func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fns == nil {
		w.fns = make(map[int]func())
	}
	id := w.next
	w.next++
	w.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			delete(w.fns, id)
			w.mu.Unlock()
		})
	}
}

func (w *watchers) notify() {
	w.mu.Lock()
	fns := make([]func(), 0, len(w.fns))
	for _, fn := range w.fns {
		fns = append(fns, fn)
	}
	w.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (w *watchers) clear() {
	w.mu.Lock()
	w.fns = nil
	w.mu.Unlock()
}
