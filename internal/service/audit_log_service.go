package service

import (
	"context"
	"fmt"
	"strings"

	"banking-assistant-be/internal/pkg/logger"
	"banking-assistant-be/pkg/events"
	pktNats "banking-assistant-be/pkg/nats" // Renamed to avoid collision
)

// AuditLogService drains the audit stream into a rotated file so every
// answer and ingest leaves a reviewable record even if NATS retention lapses.
type AuditLogService struct {
	subscriber *pktNats.Subscriber
	logger     logger.ILogger
}

func NewAuditLogService(sub *pktNats.Subscriber, log logger.ILogger) *AuditLogService {
	return &AuditLogService{
		subscriber: sub,
		logger:     log,
	}
}

// Start begins listening to the audit bus.
func (s *AuditLogService) Start() {
	err := s.subscriber.Subscribe("audit.>", "audit-log-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("AuditLogService", "Failed to start audit subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("AuditLogService", "Audit log service started, listening to audit.>", nil)
}

func (s *AuditLogService) handleEvent(ctx context.Context, event events.Event) error {
	// Strip "audit." prefix from type (NATS subject includes the stream prefix)
	typeCode := strings.TrimPrefix(event.EventType(), "audit.")

	s.logger.Info("Audit", fmt.Sprintf("Event: %s", typeCode), event.Payload())
	return nil
}
