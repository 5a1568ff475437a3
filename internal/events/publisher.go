package events

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// Event subjects published by this service
const (
	SubjectConsolidated = "masterfile.consolidated"
	SubjectPublished    = "masterfile.published"
	SubjectImported     = "pricelist.imported"
)

// Event is the envelope for all consolidation events
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	TenantID  string                 `json:"tenantId"`
	Source    string                 `json:"source"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Publisher publishes consolidation lifecycle events over NATS. A nil
// Publisher is safe to call; events are then dropped, so the engine keeps
// working when the broker is unavailable.
type Publisher struct {
	conn   *nats.Conn
	logger *logrus.Entry
}

// NewPublisher connects to NATS and returns an event publisher
func NewPublisher(logger *logrus.Logger) (*Publisher, error) {
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = nats.DefaultURL
	}

	conn, err := nats.Connect(natsURL,
		nats.Name("consolidation-service"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &Publisher{
		conn:   conn,
		logger: logger.WithField("component", "consolidation-events"),
	}, nil
}

// Close drains and closes the NATS connection
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}

// PublishConsolidated publishes a masterfile.consolidated event after a
// completed consolidation pass
func (p *Publisher) PublishConsolidated(tenantID string, jobRunID uuid.UUID, entryCount, eligibleCount int) {
	p.publish(SubjectConsolidated, tenantID, map[string]interface{}{
		"jobRunId":      jobRunID.String(),
		"entryCount":    entryCount,
		"eligibleCount": eligibleCount,
	})
}

// PublishImported publishes a pricelist.imported event after a supplier import
func (p *Publisher) PublishImported(tenantID string, supplierID, jobRunID uuid.UUID, accepted, rejected int) {
	p.publish(SubjectImported, tenantID, map[string]interface{}{
		"supplierId": supplierID.String(),
		"jobRunId":   jobRunID.String(),
		"accepted":   accepted,
		"rejected":   rejected,
	})
}

// PublishSynced publishes a masterfile.published event after a storefront sync
func (p *Publisher) PublishSynced(tenantID string, jobRunID uuid.UUID, uploaded, failed int) {
	p.publish(SubjectPublished, tenantID, map[string]interface{}{
		"jobRunId": jobRunID.String(),
		"uploaded": uploaded,
		"failed":   failed,
	})
}

func (p *Publisher) publish(subject, tenantID string, data map[string]interface{}) {
	if p == nil || p.conn == nil {
		return
	}

	event := Event{
		ID:        uuid.New().String(),
		Type:      subject,
		TenantID:  tenantID,
		Source:    "consolidation-service",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.WithError(err).Warn("Failed to marshal event")
		return
	}
	if err := p.conn.Publish(subject, payload); err != nil {
		p.logger.WithError(err).WithField("subject", subject).Warn("Failed to publish event")
	}
}
