package timetable

// WorkloadStatus is a coarse classification of a teacher's total period count.
type WorkloadStatus string

const (
	WorkloadLow        WorkloadStatus = "LOW"
	WorkloadNormal     WorkloadStatus = "NORMAL"
	WorkloadHigh       WorkloadStatus = "HIGH"
	WorkloadOverloaded WorkloadStatus = "OVERLOADED"
)

// WorkloadThresholds bound the workload bands: LOW < Low <= NORMAL <= Normal < HIGH <= High < OVERLOADED.
type WorkloadThresholds struct {
	Low    int
	Normal int
	High   int
}

// Classify maps a total load onto its workload band.
func (t WorkloadThresholds) Classify(load int) WorkloadStatus {
	switch {
	case load < t.Low:
		return WorkloadLow
	case load <= t.Normal:
		return WorkloadNormal
	case load <= t.High:
		return WorkloadHigh
	default:
		return WorkloadOverloaded
	}
}

// Config carries the institution-tunable constants of the engine.
type Config struct {
	CoreSubjectMarkers   []string
	CoreWeight           int
	DefaultWeight        int
	MaxSameUnitPerDay    int
	FreePeriodsPerDay    int
	MaxFreePeriodsPerDay int
	Thresholds           WorkloadThresholds
	DefaultCategory      Category
}

// DefaultConfig returns the stock engine configuration.
func DefaultConfig() Config {
	return Config{
		CoreSubjectMarkers:   []string{"english", "mathematics", "math", "basic science", "science"},
		CoreWeight:           3,
		DefaultWeight:        2,
		MaxSameUnitPerDay:    2,
		FreePeriodsPerDay:    1,
		MaxFreePeriodsPerDay: 2,
		Thresholds:           WorkloadThresholds{Low: 10, Normal: 25, High: 30},
		DefaultCategory:      CategoryPrimary,
	}
}

// withDefaults fills zero values from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if len(c.CoreSubjectMarkers) == 0 {
		c.CoreSubjectMarkers = def.CoreSubjectMarkers
	}
	if c.CoreWeight <= 0 {
		c.CoreWeight = def.CoreWeight
	}
	if c.DefaultWeight <= 0 {
		c.DefaultWeight = def.DefaultWeight
	}
	if c.MaxSameUnitPerDay <= 0 {
		c.MaxSameUnitPerDay = def.MaxSameUnitPerDay
	}
	if c.FreePeriodsPerDay < 0 {
		c.FreePeriodsPerDay = 0
	}
	if c.MaxFreePeriodsPerDay < c.FreePeriodsPerDay {
		c.MaxFreePeriodsPerDay = c.FreePeriodsPerDay
	}
	if c.Thresholds == (WorkloadThresholds{}) {
		c.Thresholds = def.Thresholds
	}
	if c.DefaultCategory == "" {
		c.DefaultCategory = def.DefaultCategory
	}
	return c
}
