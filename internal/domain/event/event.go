package event

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/insurdesk/claims-desk/internal/domain/entity"
)

// Payload keys with a dedicated column in the claim history
const (
	KeyPreviousStatus = "previous_status"
	KeyNewStatus      = "new_status"
	KeyActor          = "actor"
)

// Event represents a domain event on a claim
type Event struct {
	ID        string                 `json:"id"`
	Type      Type                   `json:"type"`
	ClaimRef  int64                  `json:"claim_ref"`
	ClaimID   string                 `json:"claim_id"`
	Payload   map[string]interface{} `json:"payload"`
	Timestamp time.Time              `json:"timestamp"`
}

// NewEvent creates a new domain event with auto-generated ID and timestamp
func NewEvent(eventType Type, claimRef int64, claimID string, payload map[string]interface{}) *Event {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ClaimRef:  claimRef,
		ClaimID:   claimID,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// WithPayload returns a new Event with an added payload key-value pair (immutable operation)
func (e *Event) WithPayload(key string, value interface{}) *Event {
	newPayload := make(map[string]interface{}, len(e.Payload)+1)
	for k, v := range e.Payload {
		newPayload[k] = v
	}
	newPayload[key] = value

	cp := *e
	cp.Payload = newPayload
	return &cp
}

// GetPayloadString retrieves a string value from the payload
func (e *Event) GetPayloadString(key string) string {
	if val, ok := e.Payload[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// GetPayloadInt retrieves an int64 value from the payload
func (e *Event) GetPayloadInt(key string) int64 {
	if val, ok := e.Payload[key]; ok {
		switch v := val.(type) {
		case int64:
			return v
		case int:
			return int64(v)
		case float64:
			return int64(v)
		}
	}
	return 0
}

// ToClaimEvent flattens the event into a history row. Payload keys without
// a dedicated column are rendered into Detail as sorted key=value pairs.
func (e *Event) ToClaimEvent() *entity.ClaimEvent {
	var extra []string
	for k, v := range e.Payload {
		switch k {
		case KeyPreviousStatus, KeyNewStatus, KeyActor:
			continue
		}
		extra = append(extra, fmt.Sprintf("%s=%v", k, v))
	}
	sort.Strings(extra)

	return &entity.ClaimEvent{
		EventID:        e.ID,
		ClaimRef:       e.ClaimRef,
		Type:           e.Type.String(),
		PreviousStatus: e.GetPayloadString(KeyPreviousStatus),
		NewStatus:      e.GetPayloadString(KeyNewStatus),
		Actor:          e.GetPayloadString(KeyActor),
		Detail:         strings.Join(extra, " "),
		CreatedAt:      e.Timestamp,
	}
}
