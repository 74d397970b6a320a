package timetable

import "fmt"

// WorkloadTracker accumulates periods assigned per teacher during one generation run.
// It is not safe for concurrent use and must not outlive the run that created it.
type WorkloadTracker struct {
	assigned map[string]int
}

// NewWorkloadTracker returns an empty tracker.
func NewWorkloadTracker() *WorkloadTracker {
	return &WorkloadTracker{assigned: make(map[string]int)}
}

// Count returns the periods assigned to teacherID so far in this run.
func (w *WorkloadTracker) Count(teacherID string) int {
	return w.assigned[teacherID]
}

// Add records one more period for teacherID.
func (w *WorkloadTracker) Add(teacherID string) {
	w.assigned[teacherID]++
}

// Snapshot copies the current counts.
func (w *WorkloadTracker) Snapshot() map[string]int {
	out := make(map[string]int, len(w.assigned))
	for k, v := range w.assigned {
		out[k] = v
	}
	return out
}

// Balancer picks the least-loaded qualified teacher for a unit.
type Balancer struct {
	thresholds WorkloadThresholds
}

// NewBalancer constructs a balancer using cfg's workload thresholds for early warnings.
func NewBalancer(cfg Config) Balancer {
	return Balancer{thresholds: cfg.withDefaults().Thresholds}
}

// Assignment is the outcome of a balancing decision.
type Assignment struct {
	Teacher *TeacherLoad
	// Load is external + in-run count after the assignment.
	Load    int
	Warning string
}

// CurrentLoad is the teacher's external load plus what this run already assigned.
func CurrentLoad(t TeacherLoad, tracker *WorkloadTracker) int {
	return t.ExternalPeriodCount + tracker.Count(t.TeacherID)
}

// Assign selects a teacher for unit and records the assignment on tracker.
// Ties resolve to the first teacher in input order.
func (b Balancer) Assign(unit TeachableUnit, tracker *WorkloadTracker) Assignment {
	switch len(unit.QualifiedTeachers) {
	case 0:
		return Assignment{Warning: fmt.Sprintf("no teachers assigned to %s", unit.Name)}
	case 1:
		return b.commit(unit.QualifiedTeachers[0], tracker)
	}

	best := 0
	bestLoad := CurrentLoad(unit.QualifiedTeachers[0], tracker)
	for i := 1; i < len(unit.QualifiedTeachers); i++ {
		if load := CurrentLoad(unit.QualifiedTeachers[i], tracker); load < bestLoad {
			best, bestLoad = i, load
		}
	}
	return b.commit(unit.QualifiedTeachers[best], tracker)
}

func (b Balancer) commit(teacher TeacherLoad, tracker *WorkloadTracker) Assignment {
	tracker.Add(teacher.TeacherID)
	load := CurrentLoad(teacher, tracker)
	result := Assignment{Teacher: &teacher, Load: load}
	if load > b.thresholds.High {
		result.Warning = fmt.Sprintf("%s now carries %d periods (%s)", teacher.FullName(), load, b.thresholds.Classify(load))
	}
	return result
}

// apply decorates period with the assignment outcome.
func (a Assignment) apply(period *GeneratedPeriod) {
	if a.Teacher != nil {
		period.TeacherID = a.Teacher.TeacherID
		period.TeacherName = a.Teacher.FullName()
	}
	if a.Warning != "" {
		period.addWarning(a.Warning)
	}
}
