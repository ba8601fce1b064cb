package server

import (
	"log/slog"
	"sync"

	"github.com/KaramelBytes/markboard-cli/internal/grades"
	"github.com/KaramelBytes/markboard-cli/internal/parser"
	"github.com/KaramelBytes/markboard-cli/internal/pipeline"
)

// Store keeps live sessions in memory; nothing survives a restart.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*pipeline.Session
	opt      grades.Options
	popt     parser.Options
	logger   *slog.Logger
}

// NewStore creates an empty session store.
func NewStore(opt grades.Options, popt parser.Options, logger *slog.Logger) *Store {
	return &Store{sessions: make(map[string]*pipeline.Session), opt: opt, popt: popt, logger: logger}
}

// Create starts a new empty session.
func (s *Store) Create() *pipeline.Session {
	sess := pipeline.New(s.opt, s.popt, s.logger)
	s.mu.Lock()
	s.sessions[sess.ID()] = sess
	s.mu.Unlock()
	return sess
}

// Get returns the session with id.
func (s *Store) Get(id string) (*pipeline.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Delete removes a session, reporting whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
