package events

import (
	"time"

	"github.com/KirkDiggler/shipyard-negotiation/internal/domain/firstlogin"
)

// EventType names a point in the negotiation lifecycle
type EventType string

const (
	EventTypeSessionStarted   EventType = "session_started"
	EventTypeShipClaimed      EventType = "ship_claimed"
	EventTypeResponseRecorded EventType = "response_recorded"
	EventTypeSessionCompleted EventType = "session_completed"
	EventTypeSessionAbandoned EventType = "session_abandoned"
)

// Event is published after the change it describes has been stored
type Event struct {
	Type      EventType
	SessionID string
	PlayerID  string
	At        time.Time

	// Sequence of the exchange just recorded, the claim included
	Sequence int

	Ship    firstlogin.ShipType
	Outcome *firstlogin.NegotiationOutcome
	Grant   *firstlogin.PlayerGrant
}
