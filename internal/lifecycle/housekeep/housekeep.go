// Package housekeep drives an Engine's Update purely from wall-clock time,
// for a headless host that never calls Update itself (e.g. a long-running
// daemon with no game loop or request cycle of its own).
package housekeep

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/plugify-dev/plugify/internal/lifecycle"
	"github.com/plugify-dev/plugify/pkg/plugify"
)

// Housekeeper wraps a single cron entry that calls Engine.Update on a
// schedule, adapted from the teacher's per-plugin PluginScheduler down to
// one engine-wide job: only the host owns Update, so there is exactly one
// job to manage rather than a namespaced table of them.
type Housekeeper struct {
	cron  *cron.Cron
	eng   *lifecycle.Engine
	log   plugify.Logger
	entry cron.EntryID
	last  time.Time
}

// New builds a Housekeeper bound to eng; call Start to begin running it.
func New(eng *lifecycle.Engine, log plugify.Logger) *Housekeeper {
	return &Housekeeper{cron: cron.New(), eng: eng, log: log}
}

// Start schedules the Update tick at spec (standard 5-field cron syntax,
// e.g. "*/1 * * * *" for once a minute) and starts the underlying cron
// goroutine. The delta passed to Update is the wall-clock time since the
// previous tick, in milliseconds, so a module's on_update sees real elapsed
// time regardless of the schedule's granularity.
func (h *Housekeeper) Start(spec string) error {
	h.last = time.Now()
	id, err := h.cron.AddFunc(spec, h.tick)
	if err != nil {
		return fmt.Errorf("housekeep: parse schedule %q: %w", spec, err)
	}
	h.entry = id
	h.cron.Start()
	return nil
}

func (h *Housekeeper) tick() {
	defer func() {
		if r := recover(); r != nil && h.log != nil {
			h.log.Log(fmt.Sprintf("housekeep: update tick panicked: %v", r), plugify.SeverityError)
		}
	}()

	now := time.Now()
	delta := now.Sub(h.last).Seconds() * 1000
	h.last = now
	h.eng.Update(delta)
}

// Stop cancels the scheduled entry and waits for any in-flight tick to
// finish, per cron.Cron's own Stop contract.
func (h *Housekeeper) Stop() {
	h.cron.Remove(h.entry)
	ctx := h.cron.Stop()
	<-ctx.Done()
}
