package timetable

import (
	"math/rand"
	"sort"
	"time"
)

// Options tune one generation run. Zero values fall back to the engine Config.
type Options struct {
	MaxSameUnitPerDay int
	// FreePeriodsPerDay overrides the configured base free-period target when non-nil.
	FreePeriodsPerDay         *int
	RequiresTeacherAssignment bool
	// Rand drives pool shuffles and free-period draws. Nil uses a time-seeded source.
	Rand *rand.Rand
}

// Result is the full outcome of a generation run.
type Result struct {
	Periods []GeneratedPeriod
	// Fallbacks lists slots where no candidate satisfied the repetition constraints.
	Fallbacks []PeriodKey
	// Workload holds each teacher's periods in this class timetable, kept assignments included.
	Workload map[string]int
}

// Generator fills weekly class timetables from a daily template and a unit roster.
type Generator struct {
	cfg      Config
	pools    PoolBuilder
	balancer Balancer
}

// NewGenerator builds a generator for cfg.
func NewGenerator(cfg Config) *Generator {
	cfg = cfg.withDefaults()
	return &Generator{cfg: cfg, pools: NewPoolBuilder(cfg), balancer: NewBalancer(cfg)}
}

// Config returns the effective engine configuration.
func (g *Generator) Config() Config {
	return g.cfg
}

// Generate returns a period for every template slot of every working day, merged with existing.
// Inputs are never mutated.
func (g *Generator) Generate(template []PeriodSlotTemplate, units []TeachableUnit, existing []GeneratedPeriod, opts Options) []GeneratedPeriod {
	return g.Run(template, units, existing, opts).Periods
}

// Run is Generate with run diagnostics.
func (g *Generator) Run(template []PeriodSlotTemplate, units []TeachableUnit, existing []GeneratedPeriod, opts Options) Result {
	run := g.newRun(units, opts)
	slots := sanitizeTemplate(template)
	byDay := groupExisting(existing)
	run.seedKept(byDay)

	for _, day := range WorkingWeek {
		run.fillDay(day, slots, byDay[day])
	}
	return Result{Periods: run.out, Fallbacks: run.fallbacks, Workload: run.tracker.Snapshot()}
}

type generationRun struct {
	g         *Generator
	rng       *rand.Rand
	pool      []PoolEntry
	units     map[string]TeachableUnit
	tracker   *WorkloadTracker
	maxSame   int
	baseFree  int
	teachers  bool
	out       []GeneratedPeriod
	fallbacks []PeriodKey
}

func (g *Generator) newRun(units []TeachableUnit, opts Options) *generationRun {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	maxSame := opts.MaxSameUnitPerDay
	if maxSame <= 0 {
		maxSame = g.cfg.MaxSameUnitPerDay
	}
	baseFree := g.cfg.FreePeriodsPerDay
	if opts.FreePeriodsPerDay != nil {
		baseFree = *opts.FreePeriodsPerDay
		if baseFree < 0 {
			baseFree = 0
		}
	}
	byID := make(map[string]TeachableUnit, len(units))
	for _, u := range units {
		if _, dup := byID[u.ID]; !dup && u.ID != "" {
			byID[u.ID] = u
		}
	}
	return &generationRun{
		g:        g,
		rng:      rng,
		pool:     g.pools.Build(units),
		units:    byID,
		tracker:  NewWorkloadTracker(),
		maxSame:  maxSame,
		baseFree: baseFree,
		teachers: opts.RequiresTeacherAssignment,
	}
}

// seedKept counts kept teacher assignments into the run's load before any slot is balanced.
func (r *generationRun) seedKept(byDay map[Day][]GeneratedPeriod) {
	if !r.teachers {
		return
	}
	for _, day := range WorkingWeek {
		for _, p := range byDay[day] {
			if p.IsLesson() && p.IsAssigned() && p.TeacherID != "" {
				r.tracker.Add(p.TeacherID)
			}
		}
	}
}

// freeBudget adds a coin-flip bonus period to the base target, capped by MaxFreePeriodsPerDay.
func (r *generationRun) freeBudget() int {
	budget := r.baseFree
	if r.rng.Intn(2) == 0 && budget+1 <= r.g.cfg.MaxFreePeriodsPerDay {
		budget++
	}
	return budget
}

func (r *generationRun) fillDay(day Day, slots []PeriodSlotTemplate, existing []GeneratedPeriod) {
	periods := make(map[PeriodKey]*GeneratedPeriod, len(slots)+len(existing))
	keys := make([]PeriodKey, 0, len(slots)+len(existing))
	add := func(p GeneratedPeriod) {
		periods[p.Key()] = &p
		keys = append(keys, p.Key())
	}

	for _, p := range existing {
		add(p)
	}
	regenerating := len(existing) > 0
	for _, s := range slots {
		key := PeriodKey{Day: day, Start: s.StartTime, End: s.EndTime}
		if _, ok := periods[key]; ok {
			continue
		}
		if regenerating && (s.SlotType != SlotLesson || overlapsAny(existing, s)) {
			continue
		}
		add(GeneratedPeriod{DayOfWeek: day, StartTime: s.StartTime, EndTime: s.EndTime, SlotType: s.SlotType})
	}
	sortKeys(keys)

	counts := make(map[string]int)
	open := 0
	for _, k := range keys {
		p := periods[k]
		if !p.IsLesson() {
			continue
		}
		if p.IsAssigned() {
			counts[p.UnitID]++
		} else {
			open++
		}
	}

	budget := r.freeBudget()
	used := 0
	prev := ""
	for _, k := range keys {
		p := periods[k]
		if !p.IsLesson() {
			continue
		}
		if p.IsAssigned() {
			prev = p.UnitID
			continue
		}
		remaining := open
		open--
		if len(r.pool) == 0 {
			prev = ""
			continue
		}

		candidates := r.shuffledPool()
		if used < budget && r.rng.Float64() < float64(budget-used)/float64(remaining) {
			used++
			prev = ""
			continue
		}

		choice, ok := pickCandidate(candidates, prev, counts, r.maxSame)
		if !ok {
			r.fallbacks = append(r.fallbacks, k)
		}
		p.UnitID, p.UnitName = choice.ID, choice.Name
		p.TeacherID, p.TeacherName = "", ""
		counts[choice.ID]++
		prev = choice.ID
		if r.teachers {
			r.g.balancer.Assign(r.units[choice.ID], r.tracker).apply(p)
		}
	}

	for _, k := range keys {
		r.out = append(r.out, *periods[k])
	}
}

func (r *generationRun) shuffledPool() []PoolEntry {
	out := append([]PoolEntry(nil), r.pool...)
	r.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// pickCandidate returns the first entry that differs from prev and is under the daily cap.
// When none qualifies the first entry is returned with ok=false.
func pickCandidate(pool []PoolEntry, prev string, counts map[string]int, maxSame int) (PoolEntry, bool) {
	for _, c := range pool {
		if c.ID != prev && counts[c.ID] < maxSame {
			return c, true
		}
	}
	return pool[0], false
}

func sanitizeTemplate(template []PeriodSlotTemplate) []PeriodSlotTemplate {
	out := make([]PeriodSlotTemplate, 0, len(template))
	seen := make(map[[2]string]bool, len(template))
	for _, s := range template {
		if !s.SlotType.Valid() || !validRange(s.StartTime, s.EndTime) {
			continue
		}
		k := [2]string{s.StartTime, s.EndTime}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return clockBefore(out[i].StartTime, out[i].EndTime, out[j].StartTime, out[j].EndTime)
	})
	return out
}

// groupExisting drops malformed periods and keeps the first period per natural key.
func groupExisting(existing []GeneratedPeriod) map[Day][]GeneratedPeriod {
	out := make(map[Day][]GeneratedPeriod)
	seen := make(map[PeriodKey]bool, len(existing))
	for _, p := range existing {
		day, ok := ParseDay(string(p.DayOfWeek))
		if !ok || !validRange(p.StartTime, p.EndTime) {
			continue
		}
		if p.SlotType == "" {
			p.SlotType = SlotLesson
		}
		if !p.SlotType.Valid() {
			continue
		}
		p.DayOfWeek = day
		if seen[p.Key()] {
			continue
		}
		seen[p.Key()] = true
		out[day] = append(out[day], p)
	}
	return out
}

func overlapsAny(existing []GeneratedPeriod, s PeriodSlotTemplate) bool {
	for _, p := range existing {
		if Overlaps(p.StartTime, p.EndTime, s.StartTime, s.EndTime) {
			return true
		}
	}
	return false
}

func clockBefore(startA, endA, startB, endB string) bool {
	sa, _ := parseClock(startA)
	sb, _ := parseClock(startB)
	if !sa.Equal(sb) {
		return sa.Before(sb)
	}
	ea, _ := parseClock(endA)
	eb, _ := parseClock(endB)
	return ea.Before(eb)
}

func sortKeys(keys []PeriodKey) {
	sort.SliceStable(keys, func(i, j int) bool {
		if keys[i].Day != keys[j].Day {
			return keys[i].Day.Index() < keys[j].Day.Index()
		}
		return clockBefore(keys[i].Start, keys[i].End, keys[j].Start, keys[j].End)
	})
}

// SortPeriods orders periods by working-week day then start time, in place.
func SortPeriods(periods []GeneratedPeriod) {
	sort.SliceStable(periods, func(i, j int) bool {
		a, b := periods[i], periods[j]
		if a.DayOfWeek != b.DayOfWeek {
			return a.DayOfWeek.Index() < b.DayOfWeek.Index()
		}
		return clockBefore(a.StartTime, a.EndTime, b.StartTime, b.EndTime)
	})
}
