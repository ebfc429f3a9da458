package audit

import (
	"fmt"

	"scrumboard-api/internal/models"
)

// FormatMessage renders a human-readable sentence for an audit entry.
// Unknown actions fall back to a generic template; this never fails.
func FormatMessage(e *models.AuditLog) string {
	who := e.Username
	if who == "" {
		who = "someone"
	}
	name := e.EntityName
	if name == "" {
		name = string(e.EntityType)
	}

	switch e.Action {
	case models.ActionCreate:
		return fmt.Sprintf("%s created %s %q", who, e.EntityType, name)
	case models.ActionUpdate:
		if e.EntityID == "" {
			return fmt.Sprintf("%s reordered %ss", who, e.EntityType)
		}
		return fmt.Sprintf("%s updated %s %q", who, e.EntityType, name)
	case models.ActionDelete:
		return fmt.Sprintf("%s deleted %s %q", who, e.EntityType, name)
	case models.ActionLogin:
		return fmt.Sprintf("%s logged in", who)
	case models.ActionLogout:
		return fmt.Sprintf("%s logged out", who)
	case models.ActionApprove:
		return fmt.Sprintf("%s approved user %q", who, name)
	case models.ActionReject:
		return fmt.Sprintf("%s rejected user %q", who, name)
	case models.ActionLock:
		return fmt.Sprintf("%s locked %q", who, name)
	case models.ActionUnlock:
		return fmt.Sprintf("%s unlocked %q", who, name)
	default:
		return fmt.Sprintf("%s performed %s on %s", who, e.Action, e.EntityType)
	}
}
