package entity

import "time"

// ClaimEvent is one entry of a claim's audit history
type ClaimEvent struct {
	ID             int64     `json:"id"`
	EventID        string    `json:"event_id"`
	ClaimRef       int64     `json:"claim_ref"`
	Type           string    `json:"type"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	NewStatus      string    `json:"new_status,omitempty"`
	Actor          string    `json:"actor,omitempty"`
	Detail         string    `json:"detail,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
