package jobs

import (
	"sync"
)

// Record is the stored view of one job's lifecycle.
type Record struct {
	Status   JobStatus `json:"status"`
	Progress Progress  `json:"progress"`
	Outcome  *Outcome  `json:"outcome,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Store keeps job records in memory for the lifetime of the process and
// feeds off pipeline events. Durable storage belongs to the surrounding
// application.
type Store struct {
	mu      sync.RWMutex
	records map[string]*Record
}

func NewStore() *Store {
	return &Store{records: make(map[string]*Record)}
}

var _ Listener = (*Store)(nil)

func (s *Store) Get(jobID string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[jobID]
	if !ok {
		return Record{}, false
	}
	return *r, true
}

func (s *Store) upsert(jobID string) *Record {
	r, ok := s.records[jobID]
	if !ok {
		r = &Record{Status: StatusDrafting}
		s.records[jobID] = r
	}
	return r
}

func (s *Store) Queued(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsert(jobID).Status = StatusQueued
}

func (s *Store) Progress(jobID string, p Progress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.upsert(jobID)
	r.Status = StatusProcessing
	r.Progress = p
}

func (s *Store) Complete(jobID string, o Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.upsert(jobID)
	r.Status = StatusCompleted
	r.Outcome = &o
}

func (s *Store) Error(jobID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.upsert(jobID)
	r.Status = StatusFailed
	r.Error = err.Error()
}
