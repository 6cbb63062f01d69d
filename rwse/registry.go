package rwse

import (
	"fmt"
	"sync"
)

// Registry owns the current confusion-set configuration and maps every word to
// the set it belongs to. Configuration is replaced wholesale; lookups between
// configurations are read-only and safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byWord map[string][]string
	groups [][]string
}

// NewRegistry constructs an empty, unconfigured registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Configure replaces the entire configuration. Every group is normalized and
// deduplicated; a group with fewer than two distinct members after cleaning,
// or a word appearing in more than one group, rejects the whole call and
// leaves the previous configuration active.
func (r *Registry) Configure(groups [][]string) error {
	byWord := make(map[string][]string)
	kept := make([][]string, 0, len(groups))
	for i, group := range groups {
		cleaned := make([]string, 0, len(group))
		seen := make(map[string]struct{}, len(group))
		for _, raw := range group {
			word := NormalizeWord(raw)
			if word == "" {
				continue
			}
			if _, ok := seen[word]; ok {
				continue
			}
			seen[word] = struct{}{}
			cleaned = append(cleaned, word)
		}
		if len(cleaned) < 2 {
			return fmt.Errorf("confusion set %d needs at least two distinct words", i)
		}
		for _, word := range cleaned {
			if _, ok := byWord[word]; ok {
				return fmt.Errorf("word %q appears in more than one confusion set", word)
			}
			byWord[word] = cleaned
		}
		kept = append(kept, cleaned)
	}
	r.mu.Lock()
	r.byWord = byWord
	r.groups = kept
	r.mu.Unlock()
	return nil
}

// Lookup returns the confusion set containing the word, in configured member
// order. It returns ErrNotConfigured before the first successful Configure
// call and a wrapped ErrUnknownWord when the word belongs to no set.
func (r *Registry) Lookup(word string) ([]string, error) {
	key := NormalizeWord(word)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.byWord == nil {
		return nil, ErrNotConfigured
	}
	set, ok := r.byWord[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWord, word)
	}
	out := make([]string, len(set))
	copy(out, set)
	return out, nil
}

// Contains reports whether the word belongs to any configured confusion set.
func (r *Registry) Contains(word string) bool {
	key := NormalizeWord(word)
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byWord[key]
	return ok
}

// Size returns the number of distinct words across all configured sets.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byWord)
}

// Sets returns a deep copy of the configured groups in configuration order.
func (r *Registry) Sets() [][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([][]string, len(r.groups))
	for i, group := range r.groups {
		out[i] = make([]string, len(group))
		copy(out[i], group)
	}
	return out
}
