package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	dnderr "github.com/KirkDiggler/shipyard-negotiation/internal/errors"
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps an error code onto an HTTP status
func statusFor(err error) int {
	switch dnderr.GetCode(err) {
	case dnderr.CodeInvalidArgument:
		return http.StatusBadRequest
	case dnderr.CodeNotFound:
		return http.StatusNotFound
	case dnderr.CodePermissionDenied:
		return http.StatusForbidden
	case dnderr.CodeSessionAlreadyActive, dnderr.CodeInvalidPhase, dnderr.CodeAlreadyFinalized,
		dnderr.CodeSequenceConflict, dnderr.CodeConflict, dnderr.CodeAlreadyExists:
		return http.StatusConflict
	case dnderr.CodeIncompleteDialogue:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with a player-facing message. Codes and causes only go to the log.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := statusFor(err)
	attrs := []any{"error", err, "code", dnderr.GetCode(err), "status", status}
	for k, v := range dnderr.GetMeta(err) {
		attrs = append(attrs, k, v)
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", attrs...)
	} else {
		logger.Debug("request rejected", attrs...)
	}

	writeMessage(w, status, dnderr.UserMessage(err))
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
