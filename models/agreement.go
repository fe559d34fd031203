package models

import "time"

// Agreement states. Only ACTIVE agreements authorize searches and booking
// mutations.
const (
	AgreementActive    = "ACTIVE"
	AgreementSuspended = "SUSPENDED"
	AgreementExpired   = "EXPIRED"
)

// Agreement is the business relationship between one agent and one source.
// Locodes, when non-empty, restricts the agreement to the listed pickup
// locations.
type Agreement struct {
	Ref       string    `json:"ref" bson:"ref"`
	AgentID   string    `json:"agent_id" bson:"agentId"`
	SourceID  string    `json:"source_id" bson:"sourceId"`
	Status    string    `json:"status" bson:"status"`
	Locodes   []string  `json:"locodes,omitempty" bson:"locodes,omitempty"`
	Currency  string    `json:"currency,omitempty" bson:"currency,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"createdAt"`
}

// CoversLocode reports whether the agreement's coverage override admits the
// given pickup locode. An empty override means full coverage.
func (a *Agreement) CoversLocode(locode string) bool {
	if len(a.Locodes) == 0 {
		return true
	}
	for _, l := range a.Locodes {
		if l == locode {
			return true
		}
	}
	return false
}
