package entity

import "time"

// Preference holds per-user display settings. At most one exists per user.
type Preference struct {
	ID                   string     `json:"id"`
	UserID               string     `json:"user_id"`
	Theme                string     `json:"theme"`
	Language             string     `json:"language"`
	NotificationsEnabled bool       `json:"notifications_enabled"`
	Deleted              bool       `json:"deleted"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
	DeletedAt            *time.Time `json:"deleted_at,omitempty"`

	DeletedByCascade bool `json:"-"`
}

func NewPreference(id, userID, theme, language string, notifications bool, now time.Time) *Preference {
	return &Preference{
		ID:                   id,
		UserID:               userID,
		Theme:                theme,
		Language:             language,
		NotificationsEnabled: notifications,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

func (p *Preference) MarkDeleted(now time.Time, cascade bool) {
	p.Deleted = true
	p.DeletedAt = &now
	p.UpdatedAt = now
	p.DeletedByCascade = cascade
}

// KeepDeleted turns a cascade deletion into a direct one, so restoring the
// owner leaves the record deleted. It reports whether anything changed.
func (p *Preference) KeepDeleted() bool {
	if !p.Deleted || !p.DeletedByCascade {
		return false
	}
	p.DeletedByCascade = false
	return true
}

func (p *Preference) ClearDeleted(now time.Time) {
	p.Deleted = false
	p.DeletedAt = nil
	p.UpdatedAt = now
	p.DeletedByCascade = false
}

func (p *Preference) Clone() *Preference {
	if p == nil {
		return nil
	}
	c := *p
	if p.DeletedAt != nil {
		t := *p.DeletedAt
		c.DeletedAt = &t
	}
	return &c
}
