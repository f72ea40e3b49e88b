package session

import (
	"context"
	"strings"
)

const (
	searchHistoryLimit = 20
	savedSearchLimit   = 10
	suggestionLimit    = 5
)

// SearchHistory returns recent queries, newest first.
func (s *Store) SearchHistory(ctx context.Context) []string {
	var history []string
	if !s.readJSON(ctx, KeySearchHistory, &history) {
		return []string{}
	}
	return history
}

// RecordSearch puts query at the front of the history unless already present.
func (s *Store) RecordSearch(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	history := s.SearchHistory(ctx)
	for _, q := range history {
		if q == query {
			return nil
		}
	}
	history = append([]string{query}, history...)
	if len(history) > searchHistoryLimit {
		history = history[:searchHistoryLimit]
	}
	return s.writeJSON(ctx, KeySearchHistory, history)
}

// SavedSearches returns pinned queries, oldest first.
func (s *Store) SavedSearches(ctx context.Context) []string {
	var saved []string
	if !s.readJSON(ctx, KeySavedSearches, &saved) {
		return []string{}
	}
	return saved
}

// SaveSearch pins query, keeping the last ten, and records it in the history.
func (s *Store) SaveSearch(ctx context.Context, query string) ([]string, error) {
	query = strings.TrimSpace(query)
	saved := s.SavedSearches(ctx)
	if query == "" {
		return saved, nil
	}
	saved = append(saved, query)
	if len(saved) > savedSearchLimit {
		saved = saved[len(saved)-savedSearchLimit:]
	}
	if err := s.writeJSON(ctx, KeySavedSearches, saved); err != nil {
		return nil, err
	}
	if err := s.RecordSearch(ctx, query); err != nil {
		return nil, err
	}
	return saved, nil
}

// Suggest returns up to five history entries containing input, case-insensitively.
// Inputs shorter than three characters get no suggestions.
func (s *Store) Suggest(ctx context.Context, input string) []string {
	if len([]rune(input)) <= 2 {
		return []string{}
	}
	needle := strings.ToLower(input)
	out := []string{}
	for _, q := range s.SearchHistory(ctx) {
		if strings.Contains(strings.ToLower(q), needle) {
			out = append(out, q)
			if len(out) == suggestionLimit {
				break
			}
		}
	}
	return out
}
