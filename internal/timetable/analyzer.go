package timetable

import (
	"fmt"
	"sort"
)

// TeacherUnitLoad is one teacher/unit line of the workload breakdown.
type TeacherUnitLoad struct {
	TeacherID   string         `json:"teacherId"`
	TeacherName string         `json:"teacherName"`
	UnitID      string         `json:"unitId"`
	UnitName    string         `json:"unitName"`
	PeriodCount int            `json:"periodCount"`
	TotalLoad   int            `json:"totalLoad"`
	Status      WorkloadStatus `json:"status"`
}

// UncoveredUnit is a scheduled unit that no teacher can take.
type UncoveredUnit struct {
	UnitID      string `json:"unitId"`
	UnitName    string `json:"unitName"`
	PeriodCount int    `json:"periodCount"`
}

// RepetitionOverflow records a unit scheduled past the daily limit.
type RepetitionOverflow struct {
	DayOfWeek Day    `json:"dayOfWeek"`
	UnitID    string `json:"unitId"`
	UnitName  string `json:"unitName"`
	Count     int    `json:"count"`
	Limit     int    `json:"limit"`
}

// GenerationAnalysis is a read-only summary of a period list. It is always recomputed, never stored.
type GenerationAnalysis struct {
	TotalLessonPeriods    int                  `json:"totalLessonPeriods"`
	PeriodsWithTeacher    int                  `json:"periodsWithTeacher"`
	PeriodsWithoutTeacher int                  `json:"periodsWithoutTeacher"`
	FreePeriods           int                  `json:"freePeriods"`
	UnitsUsed             int                  `json:"unitsUsed"`
	TeachersInvolved      int                  `json:"teachersInvolved"`
	TeacherLoads          []TeacherUnitLoad    `json:"teacherLoads"`
	UnitsWithoutTeacher   []UncoveredUnit      `json:"unitsWithoutTeacher"`
	RepetitionOverflows   []RepetitionOverflow `json:"repetitionOverflows"`
	ConfigurationGap      bool                 `json:"configurationGap"`
	Warnings              []string             `json:"warnings"`
}

// Analyzer summarises generated timetables.
type Analyzer struct {
	thresholds WorkloadThresholds
	maxSame    int
}

// NewAnalyzer constructs an analyzer for cfg.
func NewAnalyzer(cfg Config) Analyzer {
	cfg = cfg.withDefaults()
	return Analyzer{thresholds: cfg.Thresholds, maxSame: cfg.MaxSameUnitPerDay}
}

// Status classifies a total load.
func (a Analyzer) Status(load int) WorkloadStatus {
	return a.thresholds.Classify(load)
}

type teacherUnitKey struct {
	teacher string
	unit    string
}

type dayUnitKey struct {
	day  Day
	unit string
}

// Analyze reports on periods. roster supplies external teacher loads and qualified-teacher coverage;
// teacher statistics are only produced when requiresTeacherAssignment is set.
func (a Analyzer) Analyze(periods []GeneratedPeriod, roster []TeachableUnit, requiresTeacherAssignment bool) GenerationAnalysis {
	external := make(map[string]int)
	teacherNames := make(map[string]string)
	covered := make(map[string]bool)
	for _, unit := range roster {
		if len(unit.QualifiedTeachers) > 0 {
			covered[unit.ID] = true
		}
		for _, t := range unit.QualifiedTeachers {
			if _, ok := external[t.TeacherID]; !ok {
				external[t.TeacherID] = t.ExternalPeriodCount
				teacherNames[t.TeacherID] = t.FullName()
			}
		}
	}

	var result GenerationAnalysis
	unitNames := make(map[string]string)
	unitPeriods := make(map[string]int)
	teacherTotals := make(map[string]int)
	pairCounts := make(map[teacherUnitKey]int)
	dayCounts := make(map[dayUnitKey]int)
	var unitOrder []string

	for _, p := range periods {
		if !p.IsLesson() {
			continue
		}
		if p.IsFree() {
			result.FreePeriods++
			continue
		}
		result.TotalLessonPeriods++
		if _, seen := unitNames[p.UnitID]; !seen {
			unitOrder = append(unitOrder, p.UnitID)
			unitNames[p.UnitID] = p.UnitName
		}
		unitPeriods[p.UnitID]++
		dayCounts[dayUnitKey{day: p.DayOfWeek, unit: p.UnitID}]++

		if !requiresTeacherAssignment {
			continue
		}
		if p.TeacherID == "" {
			result.PeriodsWithoutTeacher++
			continue
		}
		result.PeriodsWithTeacher++
		covered[p.UnitID] = true
		teacherTotals[p.TeacherID]++
		pairCounts[teacherUnitKey{teacher: p.TeacherID, unit: p.UnitID}]++
		if p.TeacherName != "" {
			teacherNames[p.TeacherID] = p.TeacherName
		} else if _, ok := teacherNames[p.TeacherID]; !ok {
			teacherNames[p.TeacherID] = p.TeacherID
		}
	}

	result.UnitsUsed = len(unitNames)
	result.TeachersInvolved = len(teacherTotals)
	result.ConfigurationGap = result.TotalLessonPeriods == 0

	for key, count := range pairCounts {
		total := external[key.teacher] + teacherTotals[key.teacher]
		result.TeacherLoads = append(result.TeacherLoads, TeacherUnitLoad{
			TeacherID:   key.teacher,
			TeacherName: teacherNames[key.teacher],
			UnitID:      key.unit,
			UnitName:    unitNames[key.unit],
			PeriodCount: count,
			TotalLoad:   total,
			Status:      a.Status(total),
		})
	}
	sort.Slice(result.TeacherLoads, func(i, j int) bool {
		x, y := result.TeacherLoads[i], result.TeacherLoads[j]
		if x.TotalLoad != y.TotalLoad {
			return x.TotalLoad > y.TotalLoad
		}
		if x.TeacherID != y.TeacherID {
			return x.TeacherID < y.TeacherID
		}
		return x.UnitName < y.UnitName
	})

	if requiresTeacherAssignment {
		for _, id := range unitOrder {
			if !covered[id] {
				result.UnitsWithoutTeacher = append(result.UnitsWithoutTeacher, UncoveredUnit{
					UnitID:      id,
					UnitName:    unitNames[id],
					PeriodCount: unitPeriods[id],
				})
			}
		}
	}

	for _, day := range WorkingWeek {
		for _, id := range unitOrder {
			if n := dayCounts[dayUnitKey{day: day, unit: id}]; n > a.maxSame {
				result.RepetitionOverflows = append(result.RepetitionOverflows, RepetitionOverflow{
					DayOfWeek: day, UnitID: id, UnitName: unitNames[id], Count: n, Limit: a.maxSame,
				})
			}
		}
	}

	result.Warnings = a.warnings(result, teacherTotals, external, teacherNames)
	return result
}

func (a Analyzer) warnings(r GenerationAnalysis, totals, external map[string]int, names map[string]string) []string {
	warnings := make([]string, 0)
	if r.ConfigurationGap {
		warnings = append(warnings, "no subjects could be scheduled: add subjects/teachers first")
	}
	if r.PeriodsWithoutTeacher > 0 {
		warnings = append(warnings, fmt.Sprintf("%d lesson period(s) have no teacher assigned", r.PeriodsWithoutTeacher))
	}

	teachers := make([]string, 0, len(totals))
	for id := range totals {
		teachers = append(teachers, id)
	}
	sort.Strings(teachers)
	for _, id := range teachers {
		load := external[id] + totals[id]
		switch a.Status(load) {
		case WorkloadOverloaded:
			warnings = append(warnings, fmt.Sprintf("%s is overloaded with %d periods", names[id], load))
		case WorkloadHigh:
			warnings = append(warnings, fmt.Sprintf("%s has a high workload of %d periods", names[id], load))
		}
	}

	for _, u := range r.UnitsWithoutTeacher {
		warnings = append(warnings, fmt.Sprintf("%s has no qualified teacher (%d periods)", u.UnitName, u.PeriodCount))
	}
	for _, o := range r.RepetitionOverflows {
		warnings = append(warnings, fmt.Sprintf("%s is scheduled %d times on %s (limit %d)", o.UnitName, o.Count, o.DayOfWeek, o.Limit))
	}
	return warnings
}
