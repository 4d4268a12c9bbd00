package hierarchy

import (
	"context"
	"errors"
	"sync"
	"time"
)

type fakeStore struct {
	mu       sync.Mutex
	children map[string][]string // "<level>:<parent>"
	calls    map[string]int
	delay    time.Duration
	err      error
	// started receives once per call when set; release blocks calls until closed.
	started chan struct{}
	release chan struct{}
}

func newFakeStore(children map[string][]string) *fakeStore {
	return &fakeStore{children: children, calls: map[string]int{}}
}

func (f *fakeStore) ListChildCodes(_ context.Context, parent string, level Level) ([]string, error) {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	k := cacheKey(parent, level)
	f.mu.Lock()
	f.calls[k]++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.children[k], nil
}

func (f *fakeStore) callCount(parent string, level Level) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[cacheKey(parent, level)]
}

func (f *fakeStore) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

var errDown = errors.New("db down")

func jabarFixture() *fakeStore {
	return newFakeStore(map[string][]string{
		cacheKey("32", Regency):     {"3201", "3202"},
		cacheKey("3201", District):  {"320101", "320102"},
		cacheKey("3202", District):  {"320201"},
		cacheKey("320101", Village): {"3201012001", "3201012002"},
		cacheKey("320102", Village): {"3201022001"},
		cacheKey("3201", Regency):   nil,
		cacheKey("3201", Village):   nil,
		cacheKey("320201", Village): {"3202012001"},
	})
}
