package services

import (
	"time"

	"shelfwise/internal/models"
)

// ─── Fine Calculation Constants ───────────────────────────────────────────────

const (
	// LateFeePerDay is the flat per-day late fee in currency units.
	LateFeePerDay = 50.0

	// LatePenaltyCostFactor is the one-off "missing book" penalty applied as a
	// multiple of the book cost whenever a return is late at all.
	LatePenaltyCostFactor = 2.0

	// SmallDamageRate and LargeDamageRate are damage surcharges as fractions
	// of the book cost, applied independently of lateness.
	SmallDamageRate = 0.10
	LargeDamageRate = 0.50
)

// ComputeFine computes the monetary penalty and whole days late for a return.
//
// Rules:
//   - Late days  : both timestamps are truncated to UTC date boundaries and the
//     difference counted in whole days, clamped at zero. Returning on the due
//     date costs nothing, regardless of time of day.
//   - Late fine  : LatePenaltyCostFactor × cost + lateDays × LateFeePerDay,
//     only when at least one day late.
//   - Damage     : small adds SmallDamageRate × cost, large adds
//     LargeDamageRate × cost, none adds nothing.
//
// Pure and total: any two timestamps, any enumerated damage type and any
// non-negative cost produce a non-negative fine.
func ComputeFine(dueDate, returnDate time.Time, damage models.DamageType, bookCost float64) (fine float64, lateDays int) {
	due := dueDate.UTC().Truncate(24 * time.Hour)
	ret := returnDate.UTC().Truncate(24 * time.Hour)

	if ret.After(due) {
		lateDays = int(ret.Sub(due).Hours() / 24)
	}

	if lateDays > 0 {
		fine += LatePenaltyCostFactor*bookCost + float64(lateDays)*LateFeePerDay
	}

	switch damage {
	case models.DamageTypeSmall:
		fine += SmallDamageRate * bookCost
	case models.DamageTypeLarge:
		fine += LargeDamageRate * bookCost
	}

	return fine, lateDays
}
