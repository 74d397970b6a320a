package models

import "time"

// Class represents a class or cohort that owns a timetable.
type Class struct {
	ID        string    `db:"id" json:"id"`
	SchoolID  string    `db:"school_id" json:"school_id"`
	Name      string    `db:"name" json:"name"`
	Category  string    `db:"category" json:"category"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// UnitRosterRow is one (unit, qualified teacher) pair for a class. Teacher columns are
// null for units nobody is assigned to.
type UnitRosterRow struct {
	UnitID          string  `db:"unit_id"`
	UnitName        string  `db:"unit_name"`
	UnitCode        string  `db:"unit_code"`
	TeacherID       *string `db:"teacher_id"`
	TeacherFirst    *string `db:"teacher_first_name"`
	TeacherLast     *string `db:"teacher_last_name"`
	ExternalPeriods int     `db:"external_periods"`
}
