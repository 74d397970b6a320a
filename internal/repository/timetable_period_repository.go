package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-adp-timetable/internal/models"
)

// TimetablePeriodRepository persists class timetable periods.
type TimetablePeriodRepository struct {
	db *sqlx.DB
}

// NewTimetablePeriodRepository builds repository.
func NewTimetablePeriodRepository(db *sqlx.DB) *TimetablePeriodRepository {
	return &TimetablePeriodRepository{db: db}
}

func (r *TimetablePeriodRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ListByClassTerm returns the persisted periods of a class for a term ordered by day and time.
func (r *TimetablePeriodRepository) ListByClassTerm(ctx context.Context, classID, termID string) ([]models.TimetablePeriod, error) {
	const query = `SELECT p.id, p.school_id, p.class_id, p.term_id, p.day_of_week, p.start_time, p.end_time, p.slot_type,
p.unit_id, u.name AS unit_name, p.teacher_id, NULLIF(TRIM(CONCAT(t.first_name, ' ', t.last_name)), '') AS teacher_name,
p.room, p.created_at, p.updated_at
FROM timetable_periods p
LEFT JOIN teachable_units u ON u.id = p.unit_id
LEFT JOIN teachers t ON t.id = p.teacher_id
WHERE p.class_id = $1 AND p.term_id = $2
ORDER BY p.day_of_week ASC, p.start_time ASC`
	var periods []models.TimetablePeriod
	if err := r.db.SelectContext(ctx, &periods, query, classID, termID); err != nil {
		return nil, fmt.Errorf("list timetable periods: %w", err)
	}
	return periods, nil
}

// Insert stores a new period, assigning id and timestamps when empty.
func (r *TimetablePeriodRepository) Insert(ctx context.Context, exec sqlx.ExtContext, period *models.TimetablePeriod) error {
	if period.ID == "" {
		period.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if period.CreatedAt.IsZero() {
		period.CreatedAt = now
	}
	period.UpdatedAt = now

	const query = `
INSERT INTO timetable_periods (id, school_id, class_id, term_id, day_of_week, start_time, end_time, slot_type, unit_id, teacher_id, room, created_at, updated_at)
VALUES (:id, :school_id, :class_id, :term_id, :day_of_week, :start_time, :end_time, :slot_type, :unit_id, :teacher_id, :room, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, period); err != nil {
		return fmt.Errorf("insert timetable period: %w", err)
	}
	return nil
}

// Update rewrites the slot type and occupancy of an existing period.
func (r *TimetablePeriodRepository) Update(ctx context.Context, exec sqlx.ExtContext, period *models.TimetablePeriod) error {
	period.UpdatedAt = time.Now().UTC()

	const query = `
UPDATE timetable_periods
SET slot_type = :slot_type, unit_id = :unit_id, teacher_id = :teacher_id, room = :room, updated_at = :updated_at
WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, period)
	if err != nil {
		return fmt.Errorf("update timetable period: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("update timetable period %s: no rows affected", period.ID)
	}
	return nil
}

// FindConflicts returns periods of other classes in the same term that overlap the given range
// and share its teacher or room. Empty teacher or room values never match.
func (r *TimetablePeriodRepository) FindConflicts(ctx context.Context, exec sqlx.ExtContext, termID, classID, day, start, end, teacherID, room string) ([]models.ScheduleConflict, error) {
	if teacherID == "" && room == "" {
		return nil, nil
	}
	const query = `SELECT id, class_id, day_of_week, start_time, end_time, teacher_id, room
FROM timetable_periods
WHERE term_id = $1 AND class_id <> $2 AND day_of_week = $3 AND start_time < $5 AND end_time > $4
AND ((teacher_id IS NOT NULL AND teacher_id = $6) OR (room IS NOT NULL AND room = $7))
ORDER BY start_time ASC`

	var rows []models.ScheduleConflict
	if err := sqlx.SelectContext(ctx, r.exec(exec), &rows, query, termID, classID, day, start, end, nullable(teacherID), nullable(room)); err != nil {
		return nil, fmt.Errorf("find timetable conflicts: %w", err)
	}
	for i := range rows {
		if teacherID != "" && rows[i].TeacherID != nil && *rows[i].TeacherID == teacherID {
			rows[i].Dimension = models.ConflictTeacher
			rows[i].ResourceID = teacherID
			continue
		}
		rows[i].Dimension = models.ConflictRoom
		rows[i].ResourceID = room
	}
	return rows, nil
}

func nullable(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}
