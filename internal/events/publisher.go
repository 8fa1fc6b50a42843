package events

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"catalog-service/internal/models"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// Catalog event subjects
const (
	SubjectImportCompleted = "catalog.import.completed"
	SubjectCategoryCreated = "catalog.category.created"
)

// ImportCompletedEvent is published after every import batch so downstream
// consumers (search indexers, storefront cache warmers) can react.
type ImportCompletedEvent struct {
	Format     string    `json:"format"`
	TotalRows  int       `json:"totalRows"`
	Inserted   int       `json:"inserted"`
	Updated    int       `json:"updated"`
	Failed     int       `json:"failed"`
	OccurredAt time.Time `json:"occurredAt"`
}

// CategoryCreatedEvent announces a category auto-created during import.
type CategoryCreatedEvent struct {
	CategoryID string    `json:"categoryId"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher publishes catalog events over NATS. A nil *Publisher is valid
// and publishes nothing, so callers never need to guard.
type Publisher struct {
	conn   *nats.Conn
	logger *logrus.Entry
}

// NewPublisher connects to NATS_URL (default nats.DefaultURL).
func NewPublisher(logger *logrus.Logger) (*Publisher, error) {
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = nats.DefaultURL
	}

	conn, err := nats.Connect(natsURL,
		nats.Name("catalog-service"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}

	return &Publisher{
		conn:   conn,
		logger: logger.WithField("component", "events.publisher"),
	}, nil
}

// PublishImportCompleted publishes an import summary event.
func (p *Publisher) PublishImportCompleted(ctx context.Context, format models.SourceFormat, result *models.ImportResult) {
	if p == nil {
		return
	}
	p.publish(SubjectImportCompleted, ImportCompletedEvent{
		Format:     string(format),
		TotalRows:  result.TotalRows,
		Inserted:   result.InsertedCount,
		Updated:    result.UpdatedCount,
		Failed:     result.FailedCount,
		OccurredAt: time.Now().UTC(),
	})
}

// PublishCategoryCreated publishes a category creation event.
func (p *Publisher) PublishCategoryCreated(ctx context.Context, category *models.Category) {
	if p == nil {
		return
	}
	p.publish(SubjectCategoryCreated, CategoryCreatedEvent{
		CategoryID: category.ID.String(),
		Name:       category.Name,
		Slug:       category.Slug,
		OccurredAt: time.Now().UTC(),
	})
}

// publish is fire-and-forget: event delivery failures are logged, never
// surfaced to the import path.
func (p *Publisher) publish(subject string, event interface{}) {
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.WithError(err).WithField("subject", subject).Error("failed to marshal event")
		return
	}
	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.WithError(err).WithField("subject", subject).Warn("failed to publish event")
	}
}

// Close drains the connection.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	p.conn.Drain()
}
