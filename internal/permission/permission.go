package permission

import (
	"strings"

	"scrumboard-api/internal/models"
)

// IsAdmin reports whether the user holds the admin role.
func IsAdmin(u *models.User) bool {
	return u != nil && u.Role == models.RoleAdmin
}

// IsMod reports whether the user holds the mod role.
func IsMod(u *models.User) bool {
	return u != nil && u.Role == models.RoleMod
}

// IsAdminOrMod reports whether the user holds either privileged role.
func IsAdminOrMod(u *models.User) bool {
	return IsAdmin(u) || IsMod(u)
}

// IsActive reports whether the user's account is active. Pending and
// locked accounts have zero mutation capability regardless of role.
func IsActive(u *models.User) bool {
	return u != nil && u.Status == models.StatusActive
}

// IsLockable reports whether the field name belongs to the fixed
// lockable set. Unknown names are rejected at the boundary.
func IsLockable(field string) bool {
	return models.LockableFields[field]
}

// IsReviewer reports whether the actor is the task's designated
// reviewer. The comparison is case-insensitive on username.
func IsReviewer(actor *models.User, task *models.Task) bool {
	if actor == nil || task == nil || task.Reviewer == "" {
		return false
	}
	return strings.EqualFold(actor.Username, task.Reviewer)
}

// Decision is the outcome of a permission check.
type Decision struct {
	Allowed bool
	Reason  string
}

var allow = Decision{Allowed: true}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// CanWrite decides whether the actor may write the given task field.
//
// Rules, in order: inactive accounts are denied everything; the review
// field is reviewer-only for every role; owner is display-only after
// creation; admin/mod bypass field locks; members are denied locked
// fields.
func CanWrite(actor *models.User, task *models.Task, field string) Decision {
	if !IsActive(actor) {
		return deny("account not active")
	}

	if field == models.FieldReview {
		if IsReviewer(actor, task) {
			return allow
		}
		return deny("only the reviewer may edit review")
	}

	if field == models.FieldOwner {
		return deny("owner is display-only")
	}

	if IsAdminOrMod(actor) {
		return allow
	}

	if task.FieldLocked(field) {
		return deny("field locked")
	}
	return allow
}

// CanSetStatus decides whether the actor may set the task's status to
// the given value. The Done value is reviewer-gated on top of the
// generic field rules; all other values follow CanWrite alone.
func CanSetStatus(actor *models.User, task *models.Task, status models.TaskStatus) Decision {
	if d := CanWrite(actor, task, models.FieldStatus); !d.Allowed {
		return d
	}
	if status == models.StatusDone && !IsReviewer(actor, task) {
		return deny("only the reviewer may mark a task Done")
	}
	return allow
}
