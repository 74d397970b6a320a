package timetable

import "strings"

// PoolEntry is one weighted copy of a unit in the candidate pool.
type PoolEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PoolBuilder expands units into a weighted candidate list.
type PoolBuilder struct {
	markers       []string
	coreWeight    int
	defaultWeight int
}

// NewPoolBuilder constructs a builder from the engine configuration.
func NewPoolBuilder(cfg Config) PoolBuilder {
	cfg = cfg.withDefaults()
	markers := make([]string, 0, len(cfg.CoreSubjectMarkers))
	for _, m := range cfg.CoreSubjectMarkers {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
			markers = append(markers, m)
		}
	}
	return PoolBuilder{markers: markers, coreWeight: cfg.CoreWeight, defaultWeight: cfg.DefaultWeight}
}

// IsCore reports whether a unit name contains a core-subject marker, case-insensitively.
func (b PoolBuilder) IsCore(name string) bool {
	lower := strings.ToLower(name)
	for _, m := range b.markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// Weight returns how many pool copies a unit contributes.
func (b PoolBuilder) Weight(unit TeachableUnit) int {
	if b.IsCore(unit.Name) {
		return b.coreWeight
	}
	return b.defaultWeight
}

// Build returns the weighted pool in input order. Units without an id are ignored.
func (b PoolBuilder) Build(units []TeachableUnit) []PoolEntry {
	pool := make([]PoolEntry, 0, len(units)*b.coreWeight)
	for _, unit := range units {
		if unit.ID == "" {
			continue
		}
		entry := PoolEntry{ID: unit.ID, Name: unit.Name}
		for i := 0; i < b.Weight(unit); i++ {
			pool = append(pool, entry)
		}
	}
	return pool
}
