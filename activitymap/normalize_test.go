package activitymap_test

import (
	"testing"
	"time"

	"github.com/goliatone/go-widget-auth"
	"github.com/goliatone/go-widget-auth/activitymap"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	ts := time.Date(2030, 1, 10, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		event auth.ActivityEvent
		want  activitymap.Record
	}{
		{
			name: "register",
			event: auth.ActivityEvent{
				EventType:  auth.ActivityEventRegistered,
				PublicID:   "user-100",
				Email:      "user@example.com",
				Metadata:   map[string]any{"admin": true},
				OccurredAt: ts,
			},
			want: activitymap.Record{
				ActorID:    "user-100",
				Verb:       "auth.register",
				Outcome:    activitymap.OutcomeSuccess,
				ObjectType: activitymap.ObjectUser,
				ObjectID:   "user-100",
				Channel:    "auth",
				Metadata:   map[string]any{"admin": true},
				OccurredAt: ts,
			},
		},
		{
			name: "failed login has no actor",
			event: auth.ActivityEvent{
				EventType:  auth.ActivityEventLoginFailure,
				Email:      "x@example.com",
				OccurredAt: ts,
			},
			want: activitymap.Record{
				ActorID:    activitymap.AnonymousActor,
				Verb:       "auth.login.failure",
				Outcome:    activitymap.OutcomeFailure,
				ObjectType: activitymap.ObjectUser,
				ObjectID:   "x@example.com",
				Channel:    "auth",
				OccurredAt: ts,
			},
		},
		{
			name: "logout targets the token",
			event: auth.ActivityEvent{
				EventType:  auth.ActivityEventLogout,
				PublicID:   "user-200",
				Metadata:   map[string]any{"jti": "token-1"},
				OccurredAt: ts,
			},
			want: activitymap.Record{
				ActorID:    "user-200",
				Verb:       "auth.logout",
				Outcome:    activitymap.OutcomeSuccess,
				ObjectType: activitymap.ObjectToken,
				ObjectID:   "token-1",
				Channel:    "auth",
				Metadata:   map[string]any{"jti": "token-1"},
				OccurredAt: ts,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, activitymap.Normalize(tt.event, "auth"))
		})
	}
}

func TestNormalize_CopiesMetadata(t *testing.T) {
	event := auth.ActivityEvent{
		EventType: auth.ActivityEventLoginSuccess,
		PublicID:  "user-1",
		Metadata:  map[string]any{"k": "v"},
	}

	rec := activitymap.Normalize(event, "auth")
	rec.Metadata["k"] = "changed"

	assert.Equal(t, "v", event.Metadata["k"])
	assert.False(t, rec.OccurredAt.IsZero())
}
