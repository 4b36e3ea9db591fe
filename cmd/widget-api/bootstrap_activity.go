package main

import (
	"context"

	"github.com/goliatone/go-widget-auth"
	"github.com/goliatone/go-widget-auth/activitymap"
	"go.uber.org/zap"
)

// auditSink writes normalized activity records to the audit logger
func auditSink(logger *zap.Logger) auth.ActivitySink {
	audit := logger.Named("audit")
	return auth.ActivitySinkFunc(func(_ context.Context, event auth.ActivityEvent) error {
		rec := activitymap.Normalize(event, "auth")
		audit.Info("activity",
			zap.String("actor_id", rec.ActorID),
			zap.String("verb", rec.Verb),
			zap.String("outcome", rec.Outcome),
			zap.String("object_type", rec.ObjectType),
			zap.String("object_id", rec.ObjectID),
			zap.String("channel", rec.Channel),
			zap.Any("metadata", rec.Metadata),
			zap.Time("occurred_at", rec.OccurredAt),
		)
		return nil
	})
}
