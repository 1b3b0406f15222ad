package entity

import (
	"regexp"
	"time"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidEmail reports whether email has the local@domain.tld form.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Audit actions recorded on a user's trail.
const (
	ActionCreate       = "CREATE"
	ActionUpdate       = "UPDATE"
	ActionStatusUpdate = "STATUS_UPDATE"
	ActionPatchUpdate  = "PATCH_UPDATE"
	ActionSoftDelete   = "SOFT_DELETE"
	ActionRestore      = "RESTORE"
	ActionHardDelete   = "HARD_DELETE"
)

// SystemActor is used when a caller does not identify itself.
const SystemActor = "SYSTEM"

// AuditEntry is one immutable lifecycle event on a user's trail.
type AuditEntry struct {
	Action      string    `json:"action"`
	PerformedBy string    `json:"performed_by"`
	Timestamp   time.Time `json:"timestamp"`
	Details     string    `json:"details"`
}

type User struct {
	ID         string       `json:"id"`
	Username   string       `json:"username"`
	Email      string       `json:"email"`
	Name       string       `json:"name"`
	Roles      []string     `json:"roles"`
	Status     string       `json:"status"`
	Deleted    bool         `json:"deleted"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
	DeletedAt  *time.Time   `json:"deleted_at,omitempty"`
	AuditTrail []AuditEntry `json:"audit_trail"`
}

func NewUser(id, username, email, name string, roles []string, status string, now time.Time) *User {
	return &User{
		ID:        id,
		Username:  username,
		Email:     email,
		Name:      name,
		Roles:     append([]string(nil), roles...),
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MarkDeleted moves the user into the soft-deleted state.
func (u *User) MarkDeleted(now time.Time) {
	u.Deleted = true
	u.DeletedAt = &now
	u.UpdatedAt = now
}

// ClearDeleted moves the user back into the active state.
func (u *User) ClearDeleted(now time.Time) {
	u.Deleted = false
	u.DeletedAt = nil
	u.UpdatedAt = now
}

// GraceDeadline returns the instant at which the recovery window closes.
// ok is false when the user carries no deletion timestamp.
func (u *User) GraceDeadline(grace time.Duration) (deadline time.Time, ok bool) {
	if u.DeletedAt == nil {
		return time.Time{}, false
	}
	return u.DeletedAt.Add(grace), true
}

// Clone returns a deep copy so stores never share slices with callers.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Roles = append([]string(nil), u.Roles...)
	c.AuditTrail = append([]AuditEntry(nil), u.AuditTrail...)
	if u.DeletedAt != nil {
		t := *u.DeletedAt
		c.DeletedAt = &t
	}
	return &c
}

// SameRoles reports whether both role sets hold the same values in the same order.
func SameRoles(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
