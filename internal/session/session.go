// Package session holds the ephemeral state of one catalog view:
// filter selection, sort, pagination and view mode. A session is
// rebuilt from the query string when established; afterwards state
// flows one way, from the session out to the URL sink, debounced so a
// burst of filter edits settles into a single push.
package session

import (
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"storefront-service/internal/catalog"
	"storefront-service/internal/debounce"
	"storefront-service/internal/facet"
	"storefront-service/internal/models"
	"storefront-service/internal/pagination"
	"storefront-service/internal/urlstate"
	"storefront-service/internal/util"
)

// DefaultURLDelay is the settle window for URL pushes.
const DefaultURLDelay = 300 * time.Millisecond

// URLSink receives the canonical query string after state changes
// settle. In a browser this would be a history push.
type URLSink func(query string)

// Session is one catalog view's state. Safe for concurrent use.
type Session struct {
	cat    *catalog.Catalog
	sink   URLSink
	push   *debounce.Debouncer
	logger *zap.Logger

	mu         sync.Mutex
	state      urlstate.State
	lastPushed string
}

// New starts a session with default state.
func New(cat *catalog.Catalog, sink URLSink, urlDelay time.Duration) *Session {
	return fromState(cat, urlstate.DefaultState(), sink, urlDelay)
}

// FromQuery establishes a session from an incoming query string. This
// is the only moment the URL is read; the starting state counts as
// already pushed.
func FromQuery(cat *catalog.Catalog, query url.Values, sink URLSink, urlDelay time.Duration) *Session {
	return fromState(cat, urlstate.Decode(query), sink, urlDelay)
}

func fromState(cat *catalog.Catalog, st urlstate.State, sink URLSink, urlDelay time.Duration) *Session {
	if cat == nil {
		panic("session: nil catalog")
	}
	if urlDelay <= 0 {
		urlDelay = DefaultURLDelay
	}
	return &Session{
		cat:        cat,
		sink:       sink,
		push:       debounce.New(urlDelay),
		logger:     util.GetLogger(),
		state:      st,
		lastPushed: urlstate.Encode(st),
	}
}

// Close cancels any pending URL push.
func (s *Session) Close() {
	s.push.Stop()
}

// SetFilter adds or removes one facet value and resets to page 1.
func (s *Session) SetFilter(t models.FacetType, value string, checked bool) {
	s.mu.Lock()
	values := s.state.Filters.Values(t)

	if checked {
		found := false
		for _, v := range values {
			if v == value {
				found = true
				break
			}
		}
		if !found {
			s.state.Filters.SetValues(t, append(append([]string(nil), values...), value))
		}
	} else {
		kept := make([]string, 0, len(values))
		for _, v := range values {
			if v != value {
				kept = append(kept, v)
			}
		}
		if len(kept) == 0 {
			kept = nil
		}
		s.state.Filters.SetValues(t, kept)
	}

	s.state.Page = urlstate.DefaultPage
	s.mu.Unlock()

	s.settle()
}

// RemoveFilter removes one active filter chip.
func (s *Session) RemoveFilter(t models.FacetType, value string) {
	s.SetFilter(t, value, false)
}

// ClearAll resets the selection, the sort order and the page.
func (s *Session) ClearAll() {
	s.mu.Lock()
	s.state.Filters = models.FilterSelection{}
	s.state.Sort = models.SortRelevance
	s.state.Page = urlstate.DefaultPage
	s.mu.Unlock()

	s.settle()
}

// SetSort changes the sort order. Unknown tokens are ignored.
func (s *Session) SetSort(sort models.SortOption) {
	if !models.ValidSortOption(sort) {
		return
	}
	s.mu.Lock()
	s.state.Sort = sort
	s.mu.Unlock()

	s.settle()
}

// SetPage moves to a page. The planner's output is the expected
// source of page numbers; values below 1 are ignored.
func (s *Session) SetPage(page int) {
	if page < 1 {
		return
	}
	s.mu.Lock()
	s.state.Page = page
	s.mu.Unlock()

	s.settle()
}

// SetPerPage changes the page size and resets to page 1. Sizes
// outside the allowed set are ignored.
func (s *Session) SetPerPage(perPage int) {
	allowed := false
	for _, opt := range urlstate.PerPageOptions {
		if perPage == opt {
			allowed = true
			break
		}
	}
	if !allowed {
		return
	}

	s.mu.Lock()
	s.state.PerPage = perPage
	s.state.Page = urlstate.DefaultPage
	s.mu.Unlock()

	s.settle()
}

// SetView changes the display mode. Unknown tokens are ignored.
func (s *Session) SetView(view models.ViewType) {
	if !models.ValidViewType(view) {
		return
	}
	s.mu.Lock()
	s.state.View = view
	s.mu.Unlock()

	s.settle()
}

// State returns a snapshot of the session state.
func (s *Session) State() urlstate.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Filters = s.state.Filters.Clone()
	return st
}

// Results returns the full filtered, sorted product list.
func (s *Session) Results(now time.Time) []models.Product {
	st := s.State()

	util.FilterQueriesTotal.Inc()
	start := time.Now()
	result := facet.FilterAndSort(s.cat, st.Filters, st.Sort, now)
	util.FilterQueryDuration.Observe(time.Since(start).Seconds())

	return result
}

// PageItems returns the current page window along with the effective
// page and total page count. The exposed page is clamped to
// [1, totalPages] when filters have shrunk the result set below the
// selected page; the stored page is left as-is.
func (s *Session) PageItems(now time.Time) (items []models.Product, page, totalPages int) {
	results := s.Results(now)
	st := s.State()

	totalPages = pagination.TotalPages(len(results), st.PerPage)
	page = st.Page
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}

	start, end := pagination.Window(len(results), page, st.PerPage)
	return results[start:end], page, totalPages
}

// PagePlan returns the page-number sequence for the current state.
func (s *Session) PagePlan(now time.Time) []int {
	_, page, totalPages := s.PageItems(now)
	return pagination.Plan(totalPages, page)
}

// ActiveFilters derives the chip list from the current selection.
func (s *Session) ActiveFilters() []models.ActiveFilter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Filters.ActiveFilters()
}

// FacetCounts computes the would-match count for every vocabulary
// value, each against the baseline of all other active facets.
// Recomputed in full on every call; no caching across mutations.
func (s *Session) FacetCounts(now time.Time) map[models.FacetType]map[string]int {
	st := s.State()

	start := time.Now()
	counts := make(map[models.FacetType]map[string]int, len(models.FacetTypes))
	for _, t := range models.FacetTypes {
		values := s.cat.Facets.Values(t)
		byValue := make(map[string]int, len(values))
		for _, v := range values {
			byValue[v] = facet.FacetCount(s.cat, st.Filters, t, v, now)
		}
		counts[t] = byValue
	}
	util.FacetCountDuration.Observe(time.Since(start).Seconds())

	return counts
}

// CanonicalQuery returns the canonical encoding of the current state.
func (s *Session) CanonicalQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return urlstate.Encode(s.state)
}

// settle schedules a debounced URL push. The encoding is taken when
// the task fires so a burst of edits pushes only its final state, and
// an unchanged encoding is not re-pushed.
func (s *Session) settle() {
	if s.sink == nil {
		return
	}
	s.push.Trigger(func() {
		s.mu.Lock()
		encoded := urlstate.Encode(s.state)
		changed := encoded != s.lastPushed
		if changed {
			s.lastPushed = encoded
		}
		s.mu.Unlock()

		if changed {
			s.sink(encoded)
		}
	})
}
