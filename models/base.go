package models

import (
	"context"
	"time"

	"github.com/basma-app/maintenance_backend/config"
	"github.com/basma-app/maintenance_backend/utils"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

type RequestEventType string

const (
	RequestEventCreated       RequestEventType = "request.created"
	RequestEventStatusChanged RequestEventType = "request.status_changed"
	RequestEventAssigned      RequestEventType = "request.assigned"
)

// requestEventsChannel is where downstream notification workers (push,
// email) subscribe. Delivery is their concern, not this engine's.
const requestEventsChannel = "maintenance.request.events"

type RequestEvent struct {
	EventType     RequestEventType `json:"event_type"`
	RequestId     int              `json:"request_id"`
	Identifier    string           `json:"identifier"`
	Building      string           `json:"building"`
	FromStatus    RequestStatus    `json:"from_status,omitempty"`
	ToStatus      RequestStatus    `json:"to_status"`
	AssignedToId  *int             `json:"assigned_to_id,omitempty"`
	ChangedById   int              `json:"changed_by_id"`
	ChangedByName string           `json:"changed_by_name,omitempty"`
	Reason        string           `json:"reason,omitempty"`
	CorrelationId string           `json:"correlation_id"`
	OccurredAt    time.Time        `json:"occurred_at"`
}

// dispatchRequestEvent publishes the event after the owning transaction
// has committed. It is fire-and-forget: publishing runs on its own
// goroutine with its own deadline, a failure is logged and dropped, and
// nothing here can affect the already-committed state change.
func dispatchRequestEvent(ctx context.Context, eventType RequestEventType, request *MaintenanceRequest, fromStatus RequestStatus, toStatus RequestStatus, reason string) {
	if !config.NotificationsEnabled() {
		return
	}

	userId, _ := utils.GetUserIdFromContext(ctx)
	userName, _ := utils.GetUserNameFromContext(ctx)
	event := RequestEvent{
		EventType:     eventType,
		RequestId:     request.ID,
		Identifier:    request.CustomIdentifier,
		Building:      request.Building,
		FromStatus:    fromStatus,
		ToStatus:      toStatus,
		AssignedToId:  request.AssignedToId,
		ChangedById:   userId,
		ChangedByName: userName,
		Reason:        reason,
		CorrelationId: correlationIdFromContextOrNew(ctx),
		OccurredAt:    time.Now().UTC(),
	}

	go func() {
		publishCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		payload, err := utils.MarshalToJSON(event)
		if err != nil {
			config.LogError(config.GetLogger(), "models", "dispatchRequestEvent", "Marshal event", event, err)
			return
		}
		if err := config.PublishRedisMessage(publishCtx, requestEventsChannel, []byte(payload)); err != nil {
			config.LogError(config.GetLogger(), "models", "dispatchRequestEvent", "Publish event", event, err)
		}
	}()
}

func correlationIdFromContextOrNew(ctx context.Context) string {
	if ctx != nil {
		if v, ok := utils.GetCorrelationIdFromContext(ctx); ok && v != "" {
			return v
		}
	}
	return uuid.NewString()
}
