// Package quota gates the AI inference path behind a daily call ceiling and
// a minimum inter-call spacing, sized for a free-tier provider budget.
package quota

import (
	"sync"
	"time"
)

// Default limits stay conservatively inside the free inference tier.
const (
	DefaultMinInterval  = 60 * time.Second
	DefaultDailyCeiling = 50
)

// Governor is the process-wide quota state machine. All read-modify-write
// sequences run under one mutex so concurrent requests can never jointly
// overrun the ceiling. State is not persisted: a process restart starts a
// fresh budget, which is an accepted property, not a defect.
type Governor struct {
	mu           sync.Mutex
	minInterval  time.Duration
	dailyCeiling int

	dailyCount int
	lastCall   time.Time
	resetDay   time.Time // midnight of the current accounting day, local time

	nowFunc func() time.Time
}

// NewGovernor creates a governor. Non-positive arguments select the
// defaults (60s spacing, 50 calls/day).
func NewGovernor(minInterval time.Duration, dailyCeiling int) *Governor {
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}
	if dailyCeiling <= 0 {
		dailyCeiling = DefaultDailyCeiling
	}
	return &Governor{
		minInterval:  minInterval,
		dailyCeiling: dailyCeiling,
		nowFunc:      time.Now,
	}
}

// WithNow fixes the governor's clock for tests.
func (g *Governor) WithNow(now func() time.Time) *Governor {
	g.nowFunc = now
	return g
}

// Reserve atomically runs the day rollover, the permission check, and the
// call recording in one critical section. It returns true when the caller
// may, and now must, attempt exactly one AI invocation: the budget is
// consumed whether or not that invocation succeeds.
func (g *Governor) Reserve() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.nowFunc()
	g.resetIfNewDayLocked(now)
	if !g.canCallLocked(now) {
		return false
	}
	g.recordCallLocked(now)
	return true
}

// CanCallNow reports whether a call would currently be permitted, without
// consuming budget. It still performs the day rollover so the governor
// self-heals across idle periods.
func (g *Governor) CanCallNow() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.nowFunc()
	g.resetIfNewDayLocked(now)
	return g.canCallLocked(now)
}

// RecordCall consumes budget without a permission check. Reserve is the
// normal entry point; this exists for callers that checked separately.
func (g *Governor) RecordCall() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.recordCallLocked(g.nowFunc())
}

// ResetIfNewDay forces the rollover check. Reserve and CanCallNow already
// do this; the method exists for observability paths.
func (g *Governor) ResetIfNewDay() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resetIfNewDayLocked(g.nowFunc())
}

// Reset zeroes all state. For tests and manual recovery.
func (g *Governor) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dailyCount = 0
	g.lastCall = time.Time{}
	g.resetDay = time.Time{}
}

func (g *Governor) canCallLocked(now time.Time) bool {
	if g.dailyCount >= g.dailyCeiling {
		return false
	}
	return g.lastCall.IsZero() || now.Sub(g.lastCall) >= g.minInterval
}

func (g *Governor) recordCallLocked(now time.Time) {
	g.lastCall = now
	g.dailyCount++
}

func (g *Governor) resetIfNewDayLocked(now time.Time) {
	day := midnight(now)
	if !day.Equal(g.resetDay) {
		g.dailyCount = 0
		g.resetDay = day
	}
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Snapshot is a read-only view of the governor for observability.
type Snapshot struct {
	DailyUsed      int           `json:"daily_used"`
	DailyRemaining int           `json:"daily_remaining"`
	DailyCeiling   int           `json:"daily_ceiling"`
	MinInterval    time.Duration `json:"min_interval"`
	LastCall       time.Time     `json:"last_call"`
	ResetDay       time.Time     `json:"reset_day"`
}

// Status snapshots the current state. The rollover runs first so the
// numbers reflect the present accounting day.
func (g *Governor) Status() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.resetIfNewDayLocked(g.nowFunc())
	remaining := g.dailyCeiling - g.dailyCount
	if remaining < 0 {
		remaining = 0
	}
	return Snapshot{
		DailyUsed:      g.dailyCount,
		DailyRemaining: remaining,
		DailyCeiling:   g.dailyCeiling,
		MinInterval:    g.minInterval,
		LastCall:       g.lastCall,
		ResetDay:       g.resetDay,
	}
}
