package a2a

import "sync"

// Store is a thread-safe in-memory task store. Tasks are retained for the
// process lifetime; there is no persistence or cross-process sharing. Put
// snapshots the task and Get hands out a copy, so a caller can keep mutating
// its task while another goroutine reads or serializes the stored state.
type Store struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{tasks: make(map[string]*Task)}
}

// Get returns a copy of the task with the given id, or nil.
func (s *Store) Get(id string) *Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task := s.tasks[id]
	if task == nil {
		return nil
	}
	return task.clone()
}

// Put inserts or replaces a task, storing a snapshot of its current state.
func (s *Store) Put(task *Task) {
	snap := task.clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[snap.ID] = snap
}

// Delete removes a task, reporting whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[id]
	delete(s.tasks, id)
	return ok
}

// Len returns the number of stored tasks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}
