// Package pagination walks a paginated endpoint page by page and exposes the
// accumulated, de-duplicated items.
package pagination

import (
	"context"
	"sync"

	"github.com/bassista/go_flix/internal/model"
)

// PageFetcher loads one page (1-based).
type PageFetcher[T any] func(ctx context.Context, page int) (model.Page[T], error)

// Aggregator accumulates pages in page order. It is safe for concurrent use;
// concurrent LoadMore calls are serialized so a page is never requested twice.
type Aggregator[T any] struct {
	fetch     PageFetcher[T]
	idOf      func(T) int
	startPage int

	loadMu     sync.Mutex // serializes LoadMore
	mu         sync.Mutex // guards pages and generation
	pages      []model.Page[T]
	generation uint64
}

// New creates an aggregator that starts at startPage (values below 1 mean 1).
func New[T any](fetch PageFetcher[T], idOf func(T) int, startPage int) *Aggregator[T] {
	if startPage < 1 {
		startPage = 1
	}
	return &Aggregator[T]{fetch: fetch, idOf: idOf, startPage: startPage}
}

// LoadMore fetches the next page. The first call fetches the start page; later
// calls fetch last+1 only while the last page reports more data. It returns
// whether a page was fetched.
func (a *Aggregator[T]) LoadMore(ctx context.Context) (bool, error) {
	a.loadMu.Lock()
	defer a.loadMu.Unlock()

	a.mu.Lock()
	gen := a.generation
	next := a.startPage
	if n := len(a.pages); n > 0 {
		last := a.pages[n-1]
		if !last.HasMore() {
			a.mu.Unlock()
			return false, nil
		}
		next = last.Page + 1
	}
	a.mu.Unlock()

	page, err := a.fetch(ctx, next)
	if err != nil {
		return false, err
	}
	if page.Page == 0 {
		page.Page = next
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.generation {
		// reset while fetching: the page belongs to the previous sequence
		return false, nil
	}
	a.pages = append(a.pages, page)
	return true, nil
}

// Items returns the items of every fetched page in page order, keeping the first
// occurrence of each id.
func (a *Aggregator[T]) Items() []T {
	a.mu.Lock()
	defer a.mu.Unlock()

	total := 0
	for _, p := range a.pages {
		total += len(p.Results)
	}
	all := make([]T, 0, total)
	for _, p := range a.pages {
		all = append(all, p.Results...)
	}
	return Deduplicate(all, a.idOf)
}

// HasMore reports whether the most recently fetched page has a successor.
// Before the first fetch it is false.
func (a *Aggregator[T]) HasMore() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.pages) == 0 {
		return false
	}
	return a.pages[len(a.pages)-1].HasMore()
}

// Pages returns the number of fetched pages.
func (a *Aggregator[T]) Pages() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pages)
}

// TotalResults returns total_results as reported by the first page.
func (a *Aggregator[T]) TotalResults() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.pages) == 0 {
		return 0
	}
	return a.pages[0].TotalResults
}

// Reset discards every fetched page; the next LoadMore starts over at the start page.
func (a *Aggregator[T]) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pages = nil
	a.generation++
}

// Deduplicate keeps the first occurrence of each id, preserving order.
func Deduplicate[T any](items []T, idOf func(T) int) []T {
	seen := make(map[int]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		id := idOf(item)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, item)
	}
	return out
}
