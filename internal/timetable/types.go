package timetable

import (
	"fmt"
	"strings"
	"time"
)

// SlotType classifies a cell of the daily period template.
type SlotType string

const (
	SlotLesson   SlotType = "LESSON"
	SlotBreak    SlotType = "BREAK"
	SlotLunch    SlotType = "LUNCH"
	SlotAssembly SlotType = "ASSEMBLY"
)

// Valid reports whether the slot type is one the engine understands.
func (t SlotType) Valid() bool {
	switch t {
	case SlotLesson, SlotBreak, SlotLunch, SlotAssembly:
		return true
	}
	return false
}

// Day is an upper-case weekday name, matching the persisted day_of_week column.
type Day string

const (
	Monday    Day = "MONDAY"
	Tuesday   Day = "TUESDAY"
	Wednesday Day = "WEDNESDAY"
	Thursday  Day = "THURSDAY"
	Friday    Day = "FRIDAY"
)

// WorkingWeek is the fixed Monday to Friday week the generator fills.
var WorkingWeek = []Day{Monday, Tuesday, Wednesday, Thursday, Friday}

// ParseDay normalises a weekday name. The second return is false for days outside the working week.
func ParseDay(raw string) (Day, bool) {
	day := Day(strings.ToUpper(strings.TrimSpace(raw)))
	for _, d := range WorkingWeek {
		if d == day {
			return day, true
		}
	}
	return "", false
}

// Index returns the 1-based position of the day in the working week, or 0.
func (d Day) Index() int {
	for i, w := range WorkingWeek {
		if w == d {
			return i + 1
		}
	}
	return 0
}

// Category is the institution tier a class belongs to.
type Category string

const (
	CategoryNursery         Category = "NURSERY"
	CategoryPrimary         Category = "PRIMARY"
	CategoryJuniorSecondary Category = "JUNIOR_SECONDARY"
	CategorySeniorSecondary Category = "SENIOR_SECONDARY"
	CategoryTertiary        Category = "TERTIARY"
)

// UnitKind distinguishes subjects from tertiary courses.
type UnitKind string

const (
	UnitSubject UnitKind = "SUBJECT"
	UnitCourse  UnitKind = "COURSE"
)

// PeriodSlotTemplate is one row of a category's daily template.
type PeriodSlotTemplate struct {
	StartTime string   `json:"startTime"`
	EndTime   string   `json:"endTime"`
	SlotType  SlotType `json:"slotType"`
}

// TeacherLoad is a qualified teacher together with the load already committed outside this run.
type TeacherLoad struct {
	TeacherID           string `json:"teacherId"`
	FirstName           string `json:"firstName"`
	LastName            string `json:"lastName"`
	ExternalPeriodCount int    `json:"externalPeriodCount"`
}

// FullName joins first and last name, falling back to the id.
func (t TeacherLoad) FullName() string {
	name := strings.TrimSpace(t.FirstName + " " + t.LastName)
	if name == "" {
		return t.TeacherID
	}
	return name
}

// TeachableUnit is a subject or course that can occupy a lesson slot.
type TeachableUnit struct {
	ID                string        `json:"id"`
	Name              string        `json:"name"`
	Code              string        `json:"code,omitempty"`
	QualifiedTeachers []TeacherLoad `json:"qualifiedTeachers"`
}

// GeneratedPeriod is a single cell of a class timetable. A LESSON period without a unit is a free period.
type GeneratedPeriod struct {
	DayOfWeek      Day      `json:"dayOfWeek"`
	StartTime      string   `json:"startTime"`
	EndTime        string   `json:"endTime"`
	SlotType       SlotType `json:"slotType"`
	UnitID         string   `json:"unitId,omitempty"`
	UnitName       string   `json:"unitName,omitempty"`
	TeacherID      string   `json:"teacherId,omitempty"`
	TeacherName    string   `json:"teacherName,omitempty"`
	Room           string   `json:"room,omitempty"`
	HasWarning     bool     `json:"hasWarning"`
	WarningMessage string   `json:"warningMessage,omitempty"`
}

// PeriodKey is the natural key of a period within one class timetable.
type PeriodKey struct {
	Day   Day
	Start string
	End   string
}

func (k PeriodKey) String() string {
	return fmt.Sprintf("%s %s-%s", k.Day, k.Start, k.End)
}

// Key returns the natural key of the period.
func (p GeneratedPeriod) Key() PeriodKey {
	return PeriodKey{Day: p.DayOfWeek, Start: p.StartTime, End: p.EndTime}
}

// IsLesson reports whether the period is a teachable slot.
func (p GeneratedPeriod) IsLesson() bool {
	return p.SlotType == SlotLesson
}

// IsFree reports whether the period is an explicit free lesson slot.
func (p GeneratedPeriod) IsFree() bool {
	return p.SlotType == SlotLesson && p.UnitID == ""
}

// IsAssigned reports whether a unit occupies the period.
func (p GeneratedPeriod) IsAssigned() bool {
	return p.UnitID != ""
}

func (p *GeneratedPeriod) addWarning(msg string) {
	p.HasWarning = true
	if p.WarningMessage == "" {
		p.WarningMessage = msg
		return
	}
	p.WarningMessage += "; " + msg
}

const clockLayout = "15:04"

// parseClock parses an HH:MM time of day.
func parseClock(raw string) (time.Time, bool) {
	t, err := time.Parse(clockLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// validRange reports whether start and end parse and start precedes end.
func validRange(start, end string) bool {
	s, ok := parseClock(start)
	if !ok {
		return false
	}
	e, ok := parseClock(end)
	if !ok {
		return false
	}
	return s.Before(e)
}

// Overlaps reports whether two HH:MM ranges intersect. Unparseable ranges never overlap.
func Overlaps(startA, endA, startB, endB string) bool {
	sa, ok1 := parseClock(startA)
	ea, ok2 := parseClock(endA)
	sb, ok3 := parseClock(startB)
	eb, ok4 := parseClock(endB)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return false
	}
	return sa.Before(eb) && sb.Before(ea)
}
