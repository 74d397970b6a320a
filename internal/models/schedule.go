package models

import (
	"fmt"
	"time"
)

// ConflictDimension names the resource that is double booked.
type ConflictDimension string

const (
	ConflictTeacher ConflictDimension = "TEACHER"
	ConflictRoom    ConflictDimension = "ROOM"
)

// TimetablePeriod is a persisted period of a class timetable for a term.
type TimetablePeriod struct {
	ID        string    `db:"id" json:"id"`
	SchoolID  string    `db:"school_id" json:"school_id"`
	ClassID   string    `db:"class_id" json:"class_id"`
	TermID    string    `db:"term_id" json:"term_id"`
	DayOfWeek string    `db:"day_of_week" json:"day_of_week"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	SlotType  string    `db:"slot_type" json:"slot_type"`
	UnitID    *string   `db:"unit_id" json:"unit_id,omitempty"`
	UnitName  *string   `db:"unit_name" json:"unit_name,omitempty"`
	TeacherID *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	Teacher   *string   `db:"teacher_name" json:"teacher_name,omitempty"`
	Room      *string   `db:"room" json:"room,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ScheduleConflict describes an existing period that collides with a period being written.
type ScheduleConflict struct {
	Dimension         ConflictDimension `db:"-" json:"dimension"`
	ResourceID        string            `db:"-" json:"resource_id"`
	DayOfWeek         string            `db:"day_of_week" json:"day_of_week"`
	StartTime         string            `db:"start_time" json:"start_time"`
	EndTime           string            `db:"end_time" json:"end_time"`
	ConflictingPeriod string            `db:"id" json:"conflicting_period_id"`
	ConflictingClass  string            `db:"class_id" json:"conflicting_class_id"`
	TeacherID         *string           `db:"teacher_id" json:"-"`
	Room              *string           `db:"room" json:"-"`
}

// ScheduleConflictError is returned when applying periods would double book a teacher or room.
type ScheduleConflictError struct {
	Message   string             `json:"message"`
	Conflicts []ScheduleConflict `json:"conflicts"`
}

// Error implements the error interface for conflict errors.
func (e *ScheduleConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if len(e.Conflicts) == 0 {
		return e.Message
	}
	first := e.Conflicts[0]
	return fmt.Sprintf("%s: %s %s busy on %s %s-%s (class %s)", e.Message, first.Dimension, first.ResourceID, first.DayOfWeek, first.StartTime, first.EndTime, first.ConflictingClass)
}
