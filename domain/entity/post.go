package entity

import "time"

type Post struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Deleted   bool       `json:"deleted"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`

	// DeletedByCascade is set when the post was soft-deleted as part of its
	// owner's deletion. Only those posts are brought back by a user restore.
	DeletedByCascade bool `json:"-"`
}

func NewPost(id, userID, title, content string, now time.Time) *Post {
	return &Post{
		ID:        id,
		UserID:    userID,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (p *Post) MarkDeleted(now time.Time, cascade bool) {
	p.Deleted = true
	p.DeletedAt = &now
	p.UpdatedAt = now
	p.DeletedByCascade = cascade
}

// KeepDeleted turns a cascade deletion into a direct one, so restoring the
// owner leaves the record deleted. It reports whether anything changed.
func (p *Post) KeepDeleted() bool {
	if !p.Deleted || !p.DeletedByCascade {
		return false
	}
	p.DeletedByCascade = false
	return true
}

func (p *Post) ClearDeleted(now time.Time) {
	p.Deleted = false
	p.DeletedAt = nil
	p.UpdatedAt = now
	p.DeletedByCascade = false
}

func (p *Post) Clone() *Post {
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
