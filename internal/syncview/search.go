package syncview

import (
	"strings"
	"sync"

	"github.com/wayplanhq/wayplan-backend/internal/places"
)

// SearchSession guards a debounced autocomplete box against stale results: a
// response is only applied while its query string is still the newest one
// typed. A result set for a superseded query is dropped.
type SearchSession struct {
	mu      sync.Mutex
	query   string
	results []places.Suggestion
}

func NewSearchSession() *SearchSession {
	return &SearchSession{}
}

// Supersede records the newest query string and returns it normalized.
// Previously cached results stay visible until a fresh set is applied.
func (s *SearchSession) Supersede(query string) string {
	normalized := strings.TrimSpace(query)
	s.mu.Lock()
	s.query = normalized
	s.mu.Unlock()
	return normalized
}

// Apply installs results for a query. It reports false, leaving the cache
// untouched, when the query has been superseded since the request was fired.
func (s *SearchSession) Apply(query string, results []places.Suggestion) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(query) != s.query {
		return false
	}
	s.results = append([]places.Suggestion(nil), results...)
	return true
}

// Current returns the newest query and the last applied results.
func (s *SearchSession) Current() (string, []places.Suggestion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query, append([]places.Suggestion(nil), s.results...)
}
