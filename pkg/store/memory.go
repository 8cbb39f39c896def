package store

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/xhad/docqa/internal/models"
)

// Memory is a process-local history store.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string][]models.Exchange
}

func NewMemory() *Memory {
	return &Memory{sessions: make(map[string][]models.Exchange)}
}

func (m *Memory) Append(_ context.Context, e models.Exchange) error {
	e = withDefaults(e)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[e.SessionID] = append(m.sessions[e.SessionID], e)
	return nil
}

func (m *Memory) List(_ context.Context, sessionID string, limit int) ([]models.Exchange, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.sessions[sessionID]
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	return append([]models.Exchange(nil), all...), nil
}

func (m *Memory) Clear(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

func withDefaults(e models.Exchange) models.Exchange {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	return e
}

func sanitizeUTF8(s string) string {
	if !utf8.ValidString(s) {
		v := make([]rune, 0, len(s))
		for i, r := range s {
			if r == utf8.RuneError {
				_, size := utf8.DecodeRuneInString(s[i:])
				if size == 1 {
					continue
				}
			}
			v = append(v, r)
		}
		return string(v)
	}
	return s
}
