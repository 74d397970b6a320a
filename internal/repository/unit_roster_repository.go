package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-adp-timetable/internal/models"
)

// UnitRosterRepository reads the teachable units of a class with their qualified teachers.
type UnitRosterRepository struct {
	db *sqlx.DB
}

// NewUnitRosterRepository constructs the roster repository.
func NewUnitRosterRepository(db *sqlx.DB) *UnitRosterRepository {
	return &UnitRosterRepository{db: db}
}

// ListByClassTerm returns one row per (unit, teacher) pair in class order. external_periods counts
// the teacher's periods in other classes during the same term.
func (r *UnitRosterRepository) ListByClassTerm(ctx context.Context, classID, termID string) ([]models.UnitRosterRow, error) {
	const query = `
SELECT u.id AS unit_id, u.name AS unit_name, COALESCE(u.code, '') AS unit_code,
       t.id AS teacher_id, t.first_name AS teacher_first_name, t.last_name AS teacher_last_name,
       COALESCE(ext.periods, 0) AS external_periods
FROM class_units cu
JOIN teachable_units u ON u.id = cu.unit_id
LEFT JOIN unit_teachers ut ON ut.class_id = cu.class_id AND ut.unit_id = cu.unit_id AND ut.term_id = $2
LEFT JOIN teachers t ON t.id = ut.teacher_id
LEFT JOIN (
    SELECT teacher_id, COUNT(*) AS periods
    FROM timetable_periods
    WHERE term_id = $2 AND class_id <> $1 AND teacher_id IS NOT NULL
    GROUP BY teacher_id
) ext ON ext.teacher_id = t.id
WHERE cu.class_id = $1
ORDER BY cu.position ASC, u.name ASC, ut.created_at ASC, t.id ASC`

	var rows []models.UnitRosterRow
	if err := r.db.SelectContext(ctx, &rows, query, classID, termID); err != nil {
		return nil, fmt.Errorf("list unit roster: %w", err)
	}
	return rows, nil
}
