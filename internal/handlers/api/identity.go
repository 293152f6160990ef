package api

import (
	"context"
	"net/http"
	"strings"
)

// PlayerHeader carries the caller's player id. Authentication happens upstream.
const PlayerHeader = "X-Player-ID"

type playerKey struct{}

func requirePlayer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		playerID := strings.TrimSpace(r.Header.Get(PlayerHeader))
		if playerID == "" {
			writeMessage(w, http.StatusUnauthorized, PlayerHeader+" header is required")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), playerKey{}, playerID)))
	})
}

func playerFrom(ctx context.Context) string {
	id, _ := ctx.Value(playerKey{}).(string)
	return id
}
