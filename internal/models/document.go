package models

import "sync"

// Document is one uploaded file. Data is owned by the caller and is never
// mutated by the pipeline.
type Document struct {
	Name string
	Data []byte
}

// ProcessedDocument is the normalized, budgeted text of a Document.
type ProcessedDocument struct {
	Name string
	Text string
}

// DocumentSet keeps uploaded documents unique by name, in insertion order.
type DocumentSet struct {
	mu    sync.RWMutex
	order []string
	docs  map[string][]byte
}

func NewDocumentSet() *DocumentSet {
	return &DocumentSet{docs: make(map[string][]byte)}
}

// Put adds a document. Re-adding an existing name replaces its content and
// keeps its original position.
func (s *DocumentSet) Put(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.docs == nil {
		s.docs = make(map[string][]byte)
	}
	if _, ok := s.docs[name]; !ok {
		s.order = append(s.order, name)
	}
	s.docs[name] = data
}

func (s *DocumentSet) Remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[name]; !ok {
		return false
	}
	delete(s.docs, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *DocumentSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *DocumentSet) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Snapshot returns the documents in insertion order. The slice is a private
// copy; the byte payloads are shared read-only with the set.
func (s *DocumentSet) Snapshot() []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]Document, 0, len(s.order))
	for _, name := range s.order {
		docs = append(docs, Document{Name: name, Data: s.docs[name]})
	}
	return docs
}
