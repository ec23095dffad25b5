// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package reminder

import (
	"sync"
	"time"

	"github.com/AccelByte/extend-resolve-challenge/pkg/calendar"
	"github.com/AccelByte/extend-resolve-challenge/pkg/clock"
	"github.com/AccelByte/extend-resolve-challenge/pkg/state"

	"github.com/sirupsen/logrus"
)

// Scheduler keeps at most one pending timer per key. Arming a key again
// invalidates the previous timer, even one that is already firing.
type Scheduler struct {
	clock clock.Clock

	mu      sync.Mutex
	timers  map[string]*entry
	nextGen uint64
}

type entry struct {
	gen   uint64
	at    time.Time
	timer clock.Timer
}

func NewScheduler(c clock.Clock) *Scheduler {
	return &Scheduler{
		clock:  c,
		timers: make(map[string]*entry),
	}
}

// Arm schedules fn to run at the given instant under key, replacing any
// pending timer for key.
func (s *Scheduler) Arm(key string, at time.Time, fn func()) {
	s.mu.Lock()
	if old, ok := s.timers[key]; ok && old.timer != nil {
		old.timer.Stop()
	}
	s.nextGen++
	gen := s.nextGen
	s.timers[key] = &entry{gen: gen, at: at}
	s.mu.Unlock()

	delay := at.Sub(s.clock.Now())
	timer := s.clock.AfterFunc(delay, func() {
		s.mu.Lock()
		current, ok := s.timers[key]
		if !ok || current.gen != gen {
			s.mu.Unlock()
			return
		}
		delete(s.timers, key)
		s.mu.Unlock()

		logrus.Debugf("reminder %s fired", key)
		fn()
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.timers[key]; ok && current.gen == gen {
		current.timer = timer
	} else {
		// Fired synchronously or replaced meanwhile.
		timer.Stop()
	}

	logrus.Debugf("reminder %s armed for %v", key, at)
}

// Cancel stops the pending timer for key. It reports whether one existed.
func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.timers[key]
	if !ok {
		return false
	}
	if current.timer != nil {
		current.timer.Stop()
	}
	delete(s.timers, key)
	return true
}

// Pending returns when the timer for key fires, if one is armed.
func (s *Scheduler) Pending(key string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.timers[key]
	if !ok {
		return time.Time{}, false
	}
	return current.at, true
}

// Len returns the number of pending timers.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels every pending timer.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, current := range s.timers {
		if current.timer != nil {
			current.timer.Stop()
		}
		delete(s.timers, key)
	}
}

// NextOccurrence returns the first wall-clock p in loc strictly after now.
func NextOccurrence(now time.Time, p state.PlaybackTime, loc *time.Location) time.Time {
	today := calendar.DayOf(now, loc)
	next := p.ScheduledTime(today, loc)
	if !next.After(now) {
		next = p.ScheduledTime(today.Next(), loc)
	}
	return next
}
