package services

import (
	"context"
	"fmt"
	"time"

	"mediroute/internal/models"
	"mediroute/pkg/logger"
	"mediroute/pkg/push"
)

// RowEvent is the change-notification payload published on redis and relayed
// to websocket dashboard subscribers. The field layout matches the websocket
// hub's message shape so the bridge can forward payloads verbatim.
type RowEvent struct {
	Type      string      `json:"type"`
	Table     string      `json:"table"`
	Event     string      `json:"event"` // insert, update
	Timestamp int64       `json:"timestamp"`
	Data      interface{} `json:"data"`
}

const RowEventChannel = "mediroute:row_events"

type NotificationService interface {
	// PublishRowEvent fans a persistence change out to live subscribers.
	// Failures are logged, never surfaced; notification is best-effort.
	PublishRowEvent(ctx context.Context, table, event string, row interface{})

	NotifyTokenAssigned(ctx context.Context, token *models.EmergencyToken, hospital *models.Hospital)
	NotifyTokenDeclined(ctx context.Context, token *models.EmergencyToken)
	NotifyTokenCancelled(ctx context.Context, token *models.EmergencyToken)
}

type notificationService struct {
	cacheSvc     CacheService
	pushProvider push.PushProvider
	logger       *logger.Logger
}

func NewNotificationService(cacheSvc CacheService, pushProvider push.PushProvider, log *logger.Logger) NotificationService {
	return &notificationService{
		cacheSvc:     cacheSvc,
		pushProvider: pushProvider,
		logger:       log,
	}
}

func (s *notificationService) PublishRowEvent(ctx context.Context, table, event string, row interface{}) {
	payload := RowEvent{
		Type:      "row_event",
		Table:     table,
		Event:     event,
		Timestamp: time.Now().Unix(),
		Data:      row,
	}

	if err := s.cacheSvc.Publish(ctx, RowEventChannel, payload); err != nil {
		s.logger.WithError(err).WithField("table", table).Warn("Failed to publish row event")
	}
}

func (s *notificationService) NotifyTokenAssigned(ctx context.Context, token *models.EmergencyToken, hospital *models.Hospital) {
	if s.pushProvider == nil {
		return
	}

	req := &push.NotificationRequest{
		Title:    "Incoming emergency transport",
		Body:     fmt.Sprintf("Ambulance en route with %s case, token %s", token.EmergencyType, token.Code),
		Priority: "high",
		Data: map[string]string{
			"token_id": token.ID.Hex(),
			"code":     token.Code,
			"status":   string(token.Status),
		},
	}
	if hospital != nil && hospital.PushToken != "" {
		req.Token = hospital.PushToken
	} else {
		req.Topic = "hospitals"
	}

	if _, err := s.pushProvider.SendNotification(ctx, req); err != nil {
		s.logger.WithError(err).WithTokenID(token.ID).Warn("Failed to push assignment notification")
	}
}

func (s *notificationService) NotifyTokenDeclined(ctx context.Context, token *models.EmergencyToken) {
	if s.pushProvider == nil {
		return
	}

	req := &push.NotificationRequest{
		Topic:    "ambulances",
		Title:    "Hospital declined transport",
		Body:     fmt.Sprintf("Token %s declined: %s", token.Code, token.DeclineReason),
		Priority: "high",
		Data: map[string]string{
			"token_id":     token.ID.Hex(),
			"ambulance_id": token.AmbulanceID.Hex(),
			"status":       string(token.Status),
		},
	}

	if _, err := s.pushProvider.SendNotification(ctx, req); err != nil {
		s.logger.WithError(err).WithTokenID(token.ID).Warn("Failed to push decline notification")
	}
}

func (s *notificationService) NotifyTokenCancelled(ctx context.Context, token *models.EmergencyToken) {
	if s.pushProvider == nil {
		return
	}

	req := &push.NotificationRequest{
		Topic:    "dashboard",
		Title:    "Transport cancelled",
		Body:     fmt.Sprintf("Token %s cancelled by %s", token.Code, token.CancelledBy),
		Priority: "normal",
		Data: map[string]string{
			"token_id": token.ID.Hex(),
			"status":   string(token.Status),
		},
	}

	if _, err := s.pushProvider.SendNotification(ctx, req); err != nil {
		s.logger.WithError(err).WithTokenID(token.ID).Warn("Failed to push cancellation notification")
	}
}
