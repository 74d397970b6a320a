package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-adp-timetable/internal/models"
)

func TestTimetablePeriodRepositoryListByClassTerm(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewTimetablePeriodRepository(db)

	rows := sqlmock.NewRows([]string{"id", "school_id", "class_id", "term_id", "day_of_week", "start_time", "end_time", "slot_type", "unit_id", "unit_name", "teacher_id", "teacher_name", "room", "created_at", "updated_at"}).
		AddRow("p1", "school-1", "class-1", "term-1", "MONDAY", "08:00", "08:40", "LESSON", "math", "Mathematics", "t1", "Ada Obi", nil, time.Now(), time.Now()).
		AddRow("p2", "school-1", "class-1", "term-1", "MONDAY", "08:40", "09:20", "LESSON", nil, nil, nil, nil, "Lab 1", time.Now(), time.Now())
	mock.ExpectQuery(`FROM timetable_periods p\s+LEFT JOIN teachable_units u`).
		WithArgs("class-1", "term-1").
		WillReturnRows(rows)

	got, err := repo.ListByClassTerm(context.Background(), "class-1", "term-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Ada Obi", *got[0].Teacher)
	assert.Nil(t, got[1].UnitID)
	assert.Equal(t, "Lab 1", *got[1].Room)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetablePeriodRepositoryInsertAssignsID(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewTimetablePeriodRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_periods")).
		WithArgs(sqlmock.AnyArg(), "school-1", "class-1", "term-1", "MONDAY", "08:00", "08:40", "LESSON", "math", "t1", nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	period := &models.TimetablePeriod{
		SchoolID: "school-1", ClassID: "class-1", TermID: "term-1",
		DayOfWeek: "MONDAY", StartTime: "08:00", EndTime: "08:40", SlotType: "LESSON",
		UnitID: strPtr("math"), TeacherID: strPtr("t1"),
	}
	require.NoError(t, repo.Insert(context.Background(), nil, period))
	assert.NotEmpty(t, period.ID)
	assert.False(t, period.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetablePeriodRepositoryUpdateRequiresRow(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewTimetablePeriodRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE timetable_periods")).
		WithArgs("LESSON", "eng", "t2", nil, sqlmock.AnyArg(), "p-gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), nil, &models.TimetablePeriod{ID: "p-gone", SlotType: "LESSON", UnitID: strPtr("eng"), TeacherID: strPtr("t2")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no rows affected")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetablePeriodRepositoryFindConflictsLabelsDimension(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewTimetablePeriodRepository(db)

	rows := sqlmock.NewRows([]string{"id", "class_id", "day_of_week", "start_time", "end_time", "teacher_id", "room"}).
		AddRow("p9", "class-2", "MONDAY", "08:20", "09:00", "t1", nil).
		AddRow("p10", "class-3", "MONDAY", "08:30", "09:10", "t7", "Lab 1")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, class_id, day_of_week, start_time, end_time, teacher_id, room")).
		WithArgs("term-1", "class-1", "MONDAY", "08:00", "08:40", "t1", "Lab 1").
		WillReturnRows(rows)

	got, err := repo.FindConflicts(context.Background(), nil, "term-1", "class-1", "MONDAY", "08:00", "08:40", "t1", "Lab 1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, models.ConflictTeacher, got[0].Dimension)
	assert.Equal(t, "t1", got[0].ResourceID)
	assert.Equal(t, models.ConflictRoom, got[1].Dimension)
	assert.Equal(t, "Lab 1", got[1].ResourceID)
	assert.Equal(t, "class-3", got[1].ConflictingClass)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetablePeriodRepositoryFindConflictsSkipsUnassigned(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewTimetablePeriodRepository(db)

	got, err := repo.FindConflicts(context.Background(), nil, "term-1", "class-1", "MONDAY", "08:00", "08:40", "", "")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
