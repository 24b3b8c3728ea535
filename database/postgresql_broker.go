// Copyright (C) 2025 l3montree GmbH
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package database

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/l3montree-dev/sbomguard/monitoring"
	"github.com/l3montree-dev/sbomguard/shared"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

type PostgreSQLMessage struct {
	ID        string               `json:"id"`
	Channel   shared.PubSubChannel `json:"topic"`
	Payload   map[string]any       `json:"payload"`
	Timestamp time.Time            `json:"timestamp"`
	SenderID  string               `json:"sender_id,omitempty"`
}

func (m PostgreSQLMessage) GetChannel() shared.PubSubChannel {
	return m.Channel
}

func (m PostgreSQLMessage) GetPayload() map[string]any {
	return m.Payload
}

type listeningConnection struct {
	conn        *pgxpool.Conn
	subscribers []chan map[string]any
}

// PostgreSQLBroker distributes analysis events between instances using PostgreSQL LISTEN/NOTIFY
type PostgreSQLBroker struct {
	db                       *pgxpool.Pool
	subscribers              map[shared.PubSubChannel]*listeningConnection
	subscribeMux             sync.RWMutex
	ctx                      context.Context
	cancel                   context.CancelFunc
	wg                       sync.WaitGroup
	ID                       string
	shouldReceiveOwnMessages bool
}

var _ shared.PubSubBroker = (*PostgreSQLBroker)(nil)

func (b *PostgreSQLBroker) SetShouldReceiveOwnMessages(should bool) {
	b.shouldReceiveOwnMessages = should
}

func NewPostgreSQLBroker(db *pgxpool.Pool) *PostgreSQLBroker {
	ctx, cancel := context.WithCancel(context.Background())
	return &PostgreSQLBroker{
		db:          db,
		subscribers: make(map[shared.PubSubChannel]*listeningConnection),
		ctx:         ctx,
		cancel:      cancel,
		ID:          uuid.New().String(),
	}
}

func (b *PostgreSQLBroker) Publish(ctx context.Context, message shared.PubSubMessage) error {
	topic := message.GetChannel()

	pgMessage := PostgreSQLMessage{
		ID:        uuid.New().String(),
		Channel:   topic,
		Payload:   message.GetPayload(),
		Timestamp: time.Now(),
		SenderID:  b.ID,
	}

	messageJSON, err := json.Marshal(pgMessage)
	if err != nil {
		return errors.Wrap(err, "failed to marshal PostgreSQL message")
	}

	if _, err := b.db.Exec(ctx, "SELECT pg_notify($1, $2)", string(topic), string(messageJSON)); err != nil {
		return errors.Wrap(err, "failed to send notification")
	}

	slog.Debug("message published", "topic", topic, "messageID", pgMessage.ID)
	return nil
}

func (b *PostgreSQLBroker) Subscribe(topic shared.PubSubChannel) (<-chan map[string]any, error) {
	b.subscribeMux.Lock()
	defer b.subscribeMux.Unlock()

	ch := make(chan map[string]any, 100)

	if existing, ok := b.subscribers[topic]; ok {
		existing.subscribers = append(existing.subscribers, ch)
		return ch, nil
	}

	ctxWithTimeout, cancel := context.WithTimeout(b.ctx, 30*time.Second)
	defer cancel()
	conn, err := b.db.Acquire(ctxWithTimeout)
	if err != nil {
		return nil, errors.Wrap(err, "failed to acquire connection for listening")
	}
	if _, err = conn.Exec(ctxWithTimeout, "LISTEN "+pq.QuoteIdentifier(string(topic))); err != nil {
		conn.Release()
		return nil, errors.Wrapf(err, "failed to listen on topic %s", topic)
	}

	b.subscribers[topic] = &listeningConnection{
		conn:        conn,
		subscribers: []chan map[string]any{ch},
	}
	b.wg.Go(func() {
		b.processMessages(topic, conn)
	})

	return ch, nil
}

func (b *PostgreSQLBroker) processMessages(topic shared.PubSubChannel, conn *pgxpool.Conn) {
	defer conn.Release()
	for {
		notification, err := conn.Conn().WaitForNotification(b.ctx)
		if err != nil {
			if b.ctx.Err() == nil {
				monitoring.Alert("could not listen for notifications from PostgreSQL broker", err)
			}
			return
		}
		if notification == nil || notification.Channel != string(topic) {
			continue
		}

		var message PostgreSQLMessage
		if err := json.Unmarshal([]byte(notification.Payload), &message); err != nil {
			slog.Error("Failed to unmarshal message", "error", err, "payload", notification.Payload)
			continue
		}

		if message.SenderID == b.ID && !b.shouldReceiveOwnMessages {
			continue
		}

		b.subscribeMux.RLock()
		listening, exists := b.subscribers[topic]
		var subscribers []chan map[string]any
		if exists {
			subscribers = append(subscribers, listening.subscribers...)
		}
		b.subscribeMux.RUnlock()

		for _, subscriber := range subscribers {
			select {
			case subscriber <- message.Payload:
			default:
				slog.Warn("subscriber channel full, dropping message", "topic", topic, "messageID", message.ID)
			}
		}
	}
}

// Close stops all listening connections. Subscriber channels are closed afterwards.
func (b *PostgreSQLBroker) Close() {
	b.cancel()
	b.wg.Wait()

	b.subscribeMux.Lock()
	defer b.subscribeMux.Unlock()
	for topic, listening := range b.subscribers {
		for _, ch := range listening.subscribers {
			close(ch)
		}
		delete(b.subscribers, topic)
	}
}

// IsHealthy checks if all listening connections are still alive
func (b *PostgreSQLBroker) IsHealthy(ctx context.Context) bool {
	if err := b.db.Ping(ctx); err != nil {
		slog.Error("database is not healthy", "error", err)
		return false
	}
	return b.ctx.Err() == nil
}
