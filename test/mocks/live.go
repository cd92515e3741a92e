package mocks

import (
	"context"
	"sync"

	"github.com/aimd54/team-leaderboard/internal/models"
)

// PublishedMessage is one message captured by MockPublisher.
type PublishedMessage struct {
	Type    string
	Payload interface{}
}

// MockPublisher records every published message
type MockPublisher struct {
	mu       sync.Mutex
	messages []PublishedMessage
}

// Publish records the message
func (m *MockPublisher) Publish(messageType string, payload interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.messages = append(m.messages, PublishedMessage{Type: messageType, Payload: payload})
}

// Messages returns a copy of the recorded messages
func (m *MockPublisher) Messages() []PublishedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]PublishedMessage, len(m.messages))
	copy(out, m.messages)
	return out
}

// LeaderChange is one notification captured by MockNotifier.
type LeaderChange struct {
	Previous *models.Team
	Current  *models.Team
}

// MockNotifier records leader change notifications
type MockNotifier struct {
	mu      sync.Mutex
	changes []LeaderChange

	// Err, when set, is returned by every call.
	Err error
}

// SendLeaderChange records the change
func (m *MockNotifier) SendLeaderChange(ctx context.Context, previous, current *models.Team) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.changes = append(m.changes, LeaderChange{Previous: previous, Current: current})
	return m.Err
}

// Changes returns a copy of the recorded notifications
func (m *MockNotifier) Changes() []LeaderChange {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]LeaderChange, len(m.changes))
	copy(out, m.changes)
	return out
}
