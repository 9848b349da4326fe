// internal/adapter/events/publisher.go

// Package events publishes run lifecycle events to NATS. The publisher is
// best-effort: a publish failure is logged and never fails the run.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"brandtrust/internal/config"
	"brandtrust/internal/domain/brand"
)

// Subjects under the analysis topic
const (
	topicPrefix      = "analysis"
	subjectStarted   = "started"
	subjectSource    = "source"
	subjectCompleted = "completed"
)

// Publisher emits analysis run events. A nil Publisher is valid and
// publishes nothing, so callers never branch on whether events are enabled.
type Publisher struct {
	conn *nats.Conn
}

// Connect dials the event bus. Returns a nil publisher without error when
// no URL is configured.
func Connect(cfg config.NATSConfig) (*Publisher, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	conn, err := nats.Connect(cfg.URL,
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to event bus: %w", err)
	}

	log.Info().Str("url", cfg.URL).Msg("event bus connected")
	return &Publisher{conn: conn}, nil
}

// Conn exposes the underlying connection for subscribers. Nil when events
// are disabled.
func (p *Publisher) Conn() *nats.Conn {
	if p == nil {
		return nil
	}
	return p.conn
}

// Close drains the connection
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	p.conn.Close()
}

// RunStarted announces a new analysis run
func (p *Publisher) RunStarted(runID string, q brand.Query) {
	p.publish(runID, subjectStarted, map[string]any{
		"run_id":     runID,
		"brand":      q.Brand,
		"started_at": time.Now().UTC(),
	})
}

// SourceFinished announces one source result as it lands
func (p *Publisher) SourceFinished(runID string, result brand.SourceResult) {
	p.publish(runID, subjectSource, map[string]any{
		"run_id":   runID,
		"source":   result.Source,
		"status":   result.Status,
		"findings": len(result.Findings),
		"error":    result.Error,
	})
}

// RunCompleted announces the final score of a run
func (p *Publisher) RunCompleted(runID string, brandName string, finalScore float64, interpretation string) {
	p.publish(runID, subjectCompleted, map[string]any{
		"run_id":               runID,
		"brand":                brandName,
		"final_score":          finalScore,
		"score_interpretation": interpretation,
		"completed_at":         time.Now().UTC(),
	})
}

// RunFailed announces a run that could not produce a report
func (p *Publisher) RunFailed(runID string, brandName string, runErr error) {
	p.publish(runID, subjectCompleted, map[string]any{
		"run_id": runID,
		"brand":  brandName,
		"error":  runErr.Error(),
	})
}

func (p *Publisher) publish(runID, subject string, payload map[string]any) {
	if p == nil || p.conn == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.Warn().Err(err).Str("subject", subject).Msg("event encoding failed")
		return
	}

	topic := fmt.Sprintf("%s.%s.%s", topicPrefix, runID, subject)
	if err := p.conn.Publish(topic, data); err != nil {
		log.Warn().Err(err).Str("topic", topic).Msg("event publish failed")
	}
}
