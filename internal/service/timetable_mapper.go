package service

import (
	"sort"
	"strings"

	"github.com/noah-isme/sma-adp-timetable/internal/models"
	"github.com/noah-isme/sma-adp-timetable/internal/timetable"
	"github.com/noah-isme/sma-adp-timetable/pkg/export"
)

// unitsFromRoster folds (unit, teacher) rows into units, keeping first-seen order of both.
func unitsFromRoster(rows []models.UnitRosterRow) []timetable.TeachableUnit {
	units := make([]timetable.TeachableUnit, 0, len(rows))
	index := make(map[string]int, len(rows))
	for _, row := range rows {
		i, ok := index[row.UnitID]
		if !ok {
			i = len(units)
			index[row.UnitID] = i
			units = append(units, timetable.TeachableUnit{ID: row.UnitID, Name: row.UnitName, Code: row.UnitCode})
		}
		if row.TeacherID == nil || *row.TeacherID == "" {
			continue
		}
		duplicate := false
		for _, t := range units[i].QualifiedTeachers {
			if t.TeacherID == *row.TeacherID {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		units[i].QualifiedTeachers = append(units[i].QualifiedTeachers, timetable.TeacherLoad{
			TeacherID:           *row.TeacherID,
			FirstName:           deref(row.TeacherFirst),
			LastName:            deref(row.TeacherLast),
			ExternalPeriodCount: row.ExternalPeriods,
		})
	}
	return units
}

func periodsFromModels(rows []models.TimetablePeriod) []timetable.GeneratedPeriod {
	periods := make([]timetable.GeneratedPeriod, 0, len(rows))
	for _, row := range rows {
		periods = append(periods, periodFromModel(row))
	}
	return periods
}

func periodFromModel(row models.TimetablePeriod) timetable.GeneratedPeriod {
	return timetable.GeneratedPeriod{
		DayOfWeek:   timetable.Day(row.DayOfWeek),
		StartTime:   row.StartTime,
		EndTime:     row.EndTime,
		SlotType:    timetable.SlotType(row.SlotType),
		UnitID:      deref(row.UnitID),
		UnitName:    deref(row.UnitName),
		TeacherID:   deref(row.TeacherID),
		TeacherName: deref(row.Teacher),
		Room:        deref(row.Room),
	}
}

// applyToModel copies the writable fields of p onto row.
func applyToModel(row *models.TimetablePeriod, p timetable.GeneratedPeriod) {
	row.DayOfWeek = string(p.DayOfWeek)
	row.StartTime = p.StartTime
	row.EndTime = p.EndTime
	row.SlotType = string(p.SlotType)
	row.UnitID = ref(p.UnitID)
	row.TeacherID = ref(p.TeacherID)
	row.Room = ref(p.Room)
	if !p.IsAssigned() {
		row.TeacherID = nil
	}
}

// timetableGrid lays periods out with one row per time range and one column per working day.
func timetableGrid(periods []timetable.GeneratedPeriod) export.Dataset {
	headers := []string{"Time"}
	for _, day := range timetable.WorkingWeek {
		headers = append(headers, string(day))
	}

	type span struct{ start, end string }
	cells := map[span]map[string]string{}
	var spans []span
	for _, p := range periods {
		key := span{p.StartTime, p.EndTime}
		row, ok := cells[key]
		if !ok {
			row = map[string]string{"Time": p.StartTime + "-" + p.EndTime}
			cells[key] = row
			spans = append(spans, key)
		}
		row[string(p.DayOfWeek)] = cellLabel(p)
	}
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end < spans[j].end
	})

	rows := make([]map[string]string, 0, len(spans))
	for _, key := range spans {
		rows = append(rows, cells[key])
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func cellLabel(p timetable.GeneratedPeriod) string {
	switch {
	case !p.IsLesson():
		return strings.ToUpper(string(p.SlotType))
	case p.IsFree():
		return "Free"
	}
	label := p.UnitName
	if label == "" {
		label = p.UnitID
	}
	if p.TeacherName != "" {
		label += " (" + p.TeacherName + ")"
	}
	if p.HasWarning {
		label += " !"
	}
	return label
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func ref(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
