package logsvc

import (
	"context"
	"fmt"

	"github.com/Hexmon/e-dossier-sub006/core"
	"github.com/Hexmon/e-dossier-sub006/core/performance"
)

// AuditLogger records SPR changes as Info entries of a core.Logger.
type AuditLogger struct {
	logger core.Logger
}

var _ performance.AuditLogger = (*AuditLogger)(nil)

func NewAuditLogger(logger core.Logger) *AuditLogger {
	return &AuditLogger{logger: logger}
}

func (a AuditLogger) LogSprUpsert(_ context.Context, evt performance.AuditEvent) {
	action := "updated"
	if evt.Created {
		action = "created"
	}
	a.logger.Info(
		fmt.Sprintf("audit: spr %s (oc %s, semester %d)", action, evt.OCID, evt.Semester),
		map[string]interface{}{
			"event":          "spr.upsert",
			"created":        evt.Created,
			"oc_id":          evt.OCID,
			"enrollment_id":  evt.EnrollmentID,
			"semester":       evt.Semester,
			"changed_fields": evt.ChangedFields,
		},
		core.Actor{ID: evt.ActorID},
	)
}
