package session

import (
	"sync"

	"github.com/dmitrijs2005/newsinsight/internal/models"
)

// State is the single current-session slot plus its listeners.
type State struct {
	mu        sync.RWMutex
	current   *models.Session
	Listeners *Registry
}

func NewState() *State {
	return &State{Listeners: NewRegistry()}
}

// Current returns a copy of the active session, or nil.
func (s *State) Current() *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

// User returns a copy of the signed-in user, or nil.
func (s *State) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	u := s.current.User
	return &u
}

func (s *State) Set(sess models.Session) {
	s.mu.Lock()
	s.current = &sess
	s.mu.Unlock()
}

func (s *State) Clear() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}
