// Package scheduler advances appointment status as wall-clock time
// passes. One periodic tick captures a single "now" and runs three
// passes against the store:
//
//	PLANNED -> ONGOING   start <= now < end
//	ONGOING -> DONE      end <= now
//	PLANNED -> DONE      end <= now (catch-up for windows the
//	                    scheduler never observed)
//
// The candidate sets are disjoint: a row past its end time fails the
// start pass's end > now predicate, so it can only be caught by the
// catch-up pass. Re-running a tick with the same now finds empty
// candidate sets, which makes every tick idempotent and recovery after
// a crashed tick safe.
package scheduler

import (
	"sync"
	"time"

	"github.com/labstack/gommon/log"

	"meetpoint/cmd/internal/clock"
	"meetpoint/cmd/internal/domain/entity"
)

// Store is the slice of persistence the scheduler needs.
type Store interface {
	FindEligibleForStart(now int64) ([]*entity.Appointment, error)
	FindEligibleForEnd(now int64) ([]*entity.Appointment, error)
	FindEligibleForCatchUp(now int64) ([]*entity.Appointment, error)
	SaveAll(appts []*entity.Appointment) error
}

type Scheduler struct {
	store    Store
	clock    clock.Clock
	interval time.Duration

	// tickMu serializes ticks. The loop alone cannot overlap itself,
	// but RunOnce is also reachable from the admin path; TryLock
	// gives skip-if-busy instead of queueing late ticks.
	tickMu sync.Mutex

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

func New(store Store, clk clock.Clock, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		store:    store,
		clock:    clk,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the tick loop. Safe to call once; Stop blocks until
// the loop has exited.
func (s *Scheduler) Start() {
	s.startOnce.Do(func() {
		go s.loop()
	})
}

func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		<-s.done
	})
}

func (s *Scheduler) loop() {
	defer close(s.done)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.RunOnce()
		}
	}
}

// RunOnce executes a single tick at the clock's current time,
// skipping entirely if a tick is already in flight. Also the manual
// trigger for tests and administrative use.
func (s *Scheduler) RunOnce() {
	if !s.tickMu.TryLock() {
		log.Warnf("status tick still running, skipping this interval")
		return
	}
	defer s.tickMu.Unlock()

	s.runTick(s.clock.Now().UTC().UnixMilli())
}

// runTick runs the three passes against one captured now. A failing
// pass is logged and does not stop the remaining passes; nothing here
// ever takes the loop down.
func (s *Scheduler) runTick(now int64) {
	log.Debugf("status tick at %d", now)

	s.runPass("start", entity.StatusOngoing, now, s.store.FindEligibleForStart)
	s.runPass("end", entity.StatusDone, now, s.store.FindEligibleForEnd)
	s.runPass("catch-up", entity.StatusDone, now, s.store.FindEligibleForCatchUp)
}

// runPass selects candidates, rewrites their status in memory, and
// persists the batch in one store call.
func (s *Scheduler) runPass(name string, target entity.Status, now int64, find func(int64) ([]*entity.Appointment, error)) {
	candidates, err := find(now)
	if err != nil {
		log.Errorf("%s pass: candidate query failed: %v", name, err)
		return
	}
	if len(candidates) == 0 {
		return
	}

	for _, appt := range candidates {
		log.Infof("%s pass: %s %s -> %s", name, appt.ID, appt.Status, target)
		appt.Status = target
	}

	if err := s.store.SaveAll(candidates); err != nil {
		log.Errorf("%s pass: batch update of %d appointments failed: %v", name, len(candidates), err)
		return
	}
	log.Infof("%s pass: %d appointments updated", name, len(candidates))
}
