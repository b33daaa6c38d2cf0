package session

import (
	"github.com/nerrad567/rangeview/internal/reading"
	"github.com/nerrad567/rangeview/internal/reconnect"
)

// Phase is the display phase derived from the session and the stored reading.
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseWaitingForData Phase = "waiting_for_data"
	PhaseActive         Phase = "active"
)

// Display labels for the phases without a reading.
const (
	LabelIdle    = "Press Start to begin"
	LabelWaiting = "Waiting for data..."
)

// Snapshot is a consistent, read-only view of the sensor state for one frame.
type Snapshot struct {
	Phase      Phase             `json:"state"`
	Label      string            `json:"label"`
	Reading    *reading.Reading  `json:"reading,omitempty"`
	Category   *reading.Category `json:"category,omitempty"`
	Connection reconnect.Status  `json:"connection"`
}

// Equal reports whether two snapshots would draw the same frame.
func (s Snapshot) Equal(o Snapshot) bool {
	if s.Phase != o.Phase || s.Label != o.Label {
		return false
	}
	if (s.Reading == nil) != (o.Reading == nil) {
		return false
	}
	if s.Reading != nil && (s.Reading.Value != o.Reading.Value || !s.Reading.ObservedAt.Equal(o.Reading.ObservedAt)) {
		return false
	}
	a, b := s.Connection, o.Connection
	return a.State == b.State &&
		a.Backoff == b.Backoff &&
		a.Failures == b.Failures &&
		a.NextAttemptAt.Equal(b.NextAttemptAt)
}

func idleSnapshot(conn reconnect.Status) Snapshot {
	return Snapshot{Phase: PhaseIdle, Label: LabelIdle, Connection: conn}
}

func waitingSnapshot(conn reconnect.Status) Snapshot {
	return Snapshot{Phase: PhaseWaitingForData, Label: LabelWaiting, Connection: conn}
}

func activeSnapshot(r reading.Reading, conn reconnect.Status) Snapshot {
	cat := reading.Classify(r.Value)
	return Snapshot{
		Phase:      PhaseActive,
		Label:      cat.Describe(r.Value),
		Reading:    &r,
		Category:   &cat,
		Connection: conn,
	}
}
