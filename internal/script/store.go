package script

import (
	"sort"
	"sync"
)

// GlobalScope is the scope used when none is given
const GlobalScope = "global"

// Store keeps one symbol pool per scope. Pools are created on first use
// and cleared in place, so callers holding a pool observe a clear.
//
// The pool returned by Pool must not be read while Update runs on the
// same scope.
type Store struct {
	mu    sync.RWMutex
	pools map[string]*DefinitionMap
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{pools: make(map[string]*DefinitionMap)}
}

func scopeKey(scope string) string {
	if scope == "" {
		return GlobalScope
	}
	return scope
}

// Pool returns the pool of scope, creating it when missing
func (s *Store) Pool(scope string) *DefinitionMap {
	key := scopeKey(scope)

	s.mu.RLock()
	pool, ok := s.pools[key]
	s.mu.RUnlock()
	if ok {
		return pool
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if pool, ok := s.pools[key]; ok {
		return pool
	}
	pool = NewDefinitionMap()
	s.pools[key] = pool
	return pool
}

// Clear empties the pool of scope without replacing it
func (s *Store) Clear(scope string) {
	pool := s.Pool(scope)

	s.mu.Lock()
	defer s.mu.Unlock()
	pool.reset()
}

// Update clears the pool of scope and fills it from lines
func (s *Store) Update(scope string, lines []string) *DefinitionMap {
	pool := s.Pool(scope)

	s.mu.Lock()
	defer s.mu.Unlock()
	Populate(pool, lines)
	return pool
}

// Define appends a variable occurrence to the pool of scope
func (s *Store) Define(scope string, tok Token) {
	pool := s.Pool(scope)

	s.mu.Lock()
	defer s.mu.Unlock()
	pool.SetVar[tok.Word] = append(pool.SetVar[tok.Word], tok)
}

// Delete drops the pool of scope
func (s *Store) Delete(scope string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pools, scopeKey(scope))
}

// Scopes lists the known scopes in sorted order
func (s *Store) Scopes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	scopes := make([]string, 0, len(s.pools))
	for scope := range s.pools {
		scopes = append(scopes, scope)
	}
	sort.Strings(scopes)
	return scopes
}
