package store

import (
	"context"
	"sort"
	"sync"

	"cryptotracker/internal/models"
)

// Memory is an in-process Store for tests and the offline simulation CLI.
type Memory struct {
	mu     sync.RWMutex
	alerts map[string]models.Alert
	order  []string
}

func NewMemory() *Memory {
	return &Memory{alerts: make(map[string]models.Alert)}
}

func (m *Memory) List(_ context.Context) ([]models.Alert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Alert, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.alerts[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) Save(_ context.Context, alert models.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.alerts[alert.ID]; !exists {
		m.order = append(m.order, alert.ID)
	}
	m.alerts[alert.ID] = alert
	return nil
}

func (m *Memory) SaveAll(_ context.Context, alerts []models.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.alerts = make(map[string]models.Alert, len(alerts))
	m.order = m.order[:0]
	for _, alert := range alerts {
		if _, exists := m.alerts[alert.ID]; !exists {
			m.order = append(m.order, alert.ID)
		}
		m.alerts[alert.ID] = alert
	}
	return nil
}

func (m *Memory) Update(_ context.Context, alert models.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.alerts[alert.ID]; !exists {
		return ErrNotFound
	}
	m.alerts[alert.ID] = alert
	return nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.alerts[id]; !exists {
		return ErrNotFound
	}
	delete(m.alerts, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.alerts = make(map[string]models.Alert)
	m.order = nil
	return nil
}
