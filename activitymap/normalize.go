// Package activitymap flattens auth activity events into audit records.
package activitymap

import (
	"strings"
	"time"

	"github.com/goliatone/go-widget-auth"
)

// AnonymousActor is the actor of events recorded before an identity is known
const AnonymousActor = "anonymous"

const (
	ObjectUser  = "user"
	ObjectToken = "token"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Record is the flat shape audit logs receive.
type Record struct {
	ActorID    string         `json:"actor_id"`
	Verb       string         `json:"verb"`
	Outcome    string         `json:"outcome"`
	ObjectType string         `json:"object_type"`
	ObjectID   string         `json:"object_id,omitempty"`
	Channel    string         `json:"channel,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Normalize flattens event for channel.
// Logout targets the revoked token by jti, every other event the user.
func Normalize(event auth.ActivityEvent, channel string) Record {
	rec := Record{
		ActorID:    strings.TrimSpace(event.PublicID),
		Verb:       string(event.EventType),
		Outcome:    OutcomeSuccess,
		ObjectType: ObjectUser,
		ObjectID:   strings.TrimSpace(event.PublicID),
		Channel:    channel,
		OccurredAt: event.OccurredAt,
	}

	if rec.ActorID == "" {
		rec.ActorID = AnonymousActor
	}
	if rec.ObjectID == "" {
		rec.ObjectID = strings.TrimSpace(event.Email)
	}
	if rec.OccurredAt.IsZero() {
		rec.OccurredAt = time.Now().UTC()
	}

	switch event.EventType {
	case auth.ActivityEventLoginFailure:
		rec.Outcome = OutcomeFailure
	case auth.ActivityEventLogout:
		if jti, ok := event.Metadata["jti"].(string); ok && jti != "" {
			rec.ObjectType = ObjectToken
			rec.ObjectID = jti
		}
	}

	if len(event.Metadata) > 0 {
		rec.Metadata = make(map[string]any, len(event.Metadata))
		for k, v := range event.Metadata {
			rec.Metadata[k] = v
		}
	}

	return rec
}
