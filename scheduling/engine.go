// Package scheduling is the class reservation and availability engine:
// temporal booking policy, free-slot resolution, reservation holds, the
// credit ledger and the atomic booking scheduler. It is decoupled from
// HTTP and from the database driver through the Store and lock.Locker
// interfaces.
package scheduling

import (
	"time"

	"github.com/edaline/tutorhub/lock"
)

type Config struct {
	// CutoffHour normalizes the minimum bookable instant (hour of day).
	CutoffHour int
	// HoldTTL is the default lifetime of a reservation hold.
	HoldTTL time.Duration
}

// Engine bundles the components over one store, locker and clock.
type Engine struct {
	Policy    *Policy
	Resolver  *Resolver
	Ledger    *Ledger
	Scheduler *Scheduler
	Holds     *HoldManager
	Groups    *RecurringGroupManager
}

func NewEngine(store Store, locker lock.Locker, cfg Config) *Engine {
	if cfg.HoldTTL <= 0 {
		cfg.HoldTTL = 15 * time.Minute
	}

	policy := NewPolicy(cfg.CutoffHour)
	ledger := NewLedger(store, policy)
	scheduler := NewScheduler(store, locker, policy, ledger)

	return &Engine{
		Policy:    policy,
		Resolver:  NewResolver(store, policy),
		Ledger:    ledger,
		Scheduler: scheduler,
		Holds:     NewHoldManager(store, locker, policy, scheduler, cfg.HoldTTL),
		Groups:    NewRecurringGroupManager(store, scheduler, policy, ledger),
	}
}
