package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// ActorIDHeader carries the authenticated actor's identity, set by the
// upstream proxy that terminates the session. The engine trusts it and only
// enforces per-resource grants; it never does session auth itself.
const ActorIDHeader = "X-Actor-Id"

// actorID extracts the actor UUID from the trusted header. Returns uuid.Nil
// when the header is absent or malformed; callers decide whether that is
// acceptable for the route.
func actorID(r *http.Request) uuid.UUID {
	raw := strings.TrimSpace(r.Header.Get(ActorIDHeader))
	if raw == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// clientIP returns the caller's address for the audit trail, preferring the
// proxy-set forwarding header.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.IndexByte(fwd, ','); idx >= 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	return r.RemoteAddr
}
