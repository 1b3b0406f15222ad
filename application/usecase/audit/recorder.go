package audit

import (
	"github.com/juju/clock"

	"github.com/complyance/governance/domain/entity"
)

// Recorder appends lifecycle events to a user's audit trail. It only mutates
// the in-memory record; persisting it is the caller's job.
type Recorder struct {
	clock clock.Clock
}

func NewRecorder(clk clock.Clock) *Recorder {
	if clk == nil {
		clk = clock.WallClock
	}
	return &Recorder{clock: clk}
}

// Record appends an entry stamped with the current time and returns it.
func (r *Recorder) Record(user *entity.User, action, actorID, details string) entity.AuditEntry {
	if actorID == "" {
		actorID = entity.SystemActor
	}
	entry := entity.AuditEntry{
		Action:      action,
		PerformedBy: actorID,
		Timestamp:   r.clock.Now().UTC(),
		Details:     details,
	}
	if user.AuditTrail == nil {
		user.AuditTrail = make([]entity.AuditEntry, 0, 1)
	}
	user.AuditTrail = append(user.AuditTrail, entry)
	return entry
}
