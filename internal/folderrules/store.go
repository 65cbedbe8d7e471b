package folderrules

import (
	"fmt"
	"sync"

	"mentorportal/internal/domain"
)

// Store tracks the level the folder-creation UI currently targets.
// One Store belongs to one session; it starts at Root and is never persisted.
type Store struct {
	rules *Rules

	mu           sync.RWMutex
	currentLevel Level
}

// NewStore creates a store positioned at Root.
func NewStore(rules *Rules) *Store {
	return &Store{
		rules:        rules,
		currentLevel: Root,
	}
}

// Rules returns the hierarchy table backing the store.
func (s *Store) Rules() *Rules {
	return s.rules
}

// SetCurrentLevel moves the pointer. Unknown levels are rejected.
func (s *Store) SetCurrentLevel(level Level) error {
	if !s.rules.Has(level) {
		return fmt.Errorf("%w: unknown folder level %q", domain.ErrValidation, level)
	}

	s.mu.Lock()
	s.currentLevel = level
	s.mu.Unlock()
	return nil
}

// CurrentLevel returns the level the UI is creating folders under.
func (s *Store) CurrentLevel() Level {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentLevel
}

// GetCurrentRules returns the rule for the current level.
func (s *Store) GetCurrentRules() Rule {
	return s.rules.Rule(s.CurrentLevel())
}
