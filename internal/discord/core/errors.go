package core

import (
	dnderr "github.com/KirkDiggler/shipyard-negotiation/internal/errors"
)

// ErrorResponse renders err for the player. Internal detail stays in the log.
func ErrorResponse(err error) *Response {
	return NewEphemeralResponse(dnderr.UserMessage(err))
}
