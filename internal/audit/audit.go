package audit

import (
	"context"

	"github.com/kingdice/presence-service/pkg/log"
)

// Audit actions for the presence hub.
const (
	ActionDisconnect  = "hub.disconnect"
	ActionAnnounce    = "presence.announce"
	ActionRetire      = "presence.retire"
	ActionJoinChat    = "chat.join"
	ActionLeaveChat   = "chat.leave"
	ActionSendMessage = "chat.send_message"
	ActionSendFailed  = "chat.send_failed"
)

// Field constants for audit entries.
const (
	FieldAction   = "action"
	FieldTargetID = "target_id"
	FieldDetail   = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action string, userID string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Msg(msg)
}

// LogWithDetail emits an audit log with extra detail field.
func LogWithDetail(ctx context.Context, action string, userID string, detail string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(FieldDetail, detail).
		Msg(msg)
}
