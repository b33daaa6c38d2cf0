package main

import (
	"sync/atomic"

	"github.com/nerrad567/rangeview/internal/session"
)

// framePublisher receives one display frame per tick.
type framePublisher interface {
	PublishSnapshot(session.Snapshot)
}

// frameSink forwards frames to a publisher that may be attached after the
// telemetry client is built. Frames before that are dropped.
type frameSink struct {
	target atomic.Pointer[framePublisher]
}

func (f *frameSink) set(p framePublisher) {
	f.target.Store(&p)
}

func (f *frameSink) publish(snap session.Snapshot) {
	if p := f.target.Load(); p != nil {
		(*p).PublishSnapshot(snap)
	}
}
