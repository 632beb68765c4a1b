package domain

import "time"

// MandateStatus covers delegation contracts between owners and agents.
type MandateStatus string

const (
	MandatePending  MandateStatus = "PENDING"
	MandateAccepted MandateStatus = "ACCEPTED"
	MandateRejected MandateStatus = "REJECTED"
	MandateComplete MandateStatus = "COMPLETED"
)

// VisitStatus covers scheduled property visits.
type VisitStatus string

const (
	VisitPending   VisitStatus = "PENDING"
	VisitValidated VisitStatus = "VALIDATED"
	VisitCancelled VisitStatus = "CANCELLED"
	VisitCompleted VisitStatus = "COMPLETED"
)

// Mandate authorizes an agent to manage an owner's property.
type Mandate struct {
	ID         string        `json:"id"`
	PropertyID string        `json:"property_id"`
	OwnerID    string        `json:"owner_id"`
	AgentID    string        `json:"agent_id"`
	Status     MandateStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Visit is a scheduled viewing of a property.
type Visit struct {
	ID          string      `json:"id"`
	PropertyID  string      `json:"property_id"`
	VisitorID   string      `json:"visitor_id"`
	Status      VisitStatus `json:"status"`
	ScheduledAt time.Time   `json:"scheduled_at"`
}
