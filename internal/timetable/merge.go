package timetable

// PeriodUpdate replaces Current with Next at the same natural key.
type PeriodUpdate struct {
	Current GeneratedPeriod `json:"current"`
	Next    GeneratedPeriod `json:"next"`
}

// MergePlan is the set of writes needed to reconcile incoming periods with persisted ones.
type MergePlan struct {
	Inserts   []GeneratedPeriod `json:"inserts"`
	Updates   []PeriodUpdate    `json:"updates"`
	Unchanged int               `json:"unchanged"`
	Skipped   int               `json:"skipped"`
}

// Empty reports whether the plan performs no writes.
func (p MergePlan) Empty() bool {
	return len(p.Inserts) == 0 && len(p.Updates) == 0
}

// PlanMerge reconciles incoming against existing. A persisted period is only rewritten when it has no
// unit and the incoming one does, or when the slot type changes. Unknown keys are inserted.
// Malformed or duplicate incoming periods are counted as skipped.
func PlanMerge(existing, incoming []GeneratedPeriod) MergePlan {
	current := make(map[PeriodKey]GeneratedPeriod, len(existing))
	for _, list := range groupExisting(existing) {
		for _, p := range list {
			current[p.Key()] = p
		}
	}

	var plan MergePlan
	seen := make(map[PeriodKey]bool, len(incoming))
	for _, p := range incoming {
		day, ok := ParseDay(string(p.DayOfWeek))
		if !ok || !validRange(p.StartTime, p.EndTime) {
			plan.Skipped++
			continue
		}
		p.DayOfWeek = day
		if p.SlotType == "" {
			p.SlotType = SlotLesson
		}
		if !p.SlotType.Valid() || seen[p.Key()] {
			plan.Skipped++
			continue
		}
		seen[p.Key()] = true

		have, exists := current[p.Key()]
		switch {
		case !exists:
			plan.Inserts = append(plan.Inserts, p)
		case have.SlotType != p.SlotType, !have.IsAssigned() && p.IsAssigned():
			if p.Room == "" {
				p.Room = have.Room
			}
			plan.Updates = append(plan.Updates, PeriodUpdate{Current: have, Next: p})
		default:
			plan.Unchanged++
		}
	}
	return plan
}
