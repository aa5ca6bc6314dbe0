// Package events publishes account lifecycle events to the message bus.
// The core treats the bus as an external collaborator behind a narrow
// port; delivery semantics beyond the push are the consumer's problem.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// StreamKey is the Redis list key account events are pushed onto.
const StreamKey = "accounts:events"

// Event types.
const (
	TypeAccountOpened    = "account.opened"
	TypeAccountDeposited = "account.deposited"
	TypeAccountWithdrawn = "account.withdrawn"
	TypeAccountClosed    = "account.closed"
	TypeAccountFrozen    = "account.frozen"
	TypeAccountDormant   = "account.dormant"
	TypeAccountActivated = "account.activated"
)

// Message is the wire form of an account event. The account number is
// carried masked; consumers that need the full number must load the
// account themselves.
type Message struct {
	Type          string    `json:"type"`
	AccountID     string    `json:"account_id"`
	AccountNumber string    `json:"account_number"`
	Amount        string    `json:"amount,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Publisher pushes account events onto a Redis list (FIFO via RPUSH).
type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) Publish(ctx context.Context, msg Message) error {
	if msg.OccurredAt.IsZero() {
		msg.OccurredAt = time.Now().UTC()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("Publish: marshal: %w", err)
	}

	if err := p.client.RPush(ctx, StreamKey, data).Err(); err != nil {
		return fmt.Errorf("Publish: %w", err)
	}
	return nil
}

// QueueLength returns the number of undelivered events.
func (p *Publisher) QueueLength(ctx context.Context) (int64, error) {
	return p.client.LLen(ctx, StreamKey).Result()
}
