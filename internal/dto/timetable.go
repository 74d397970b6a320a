package dto

import (
	"time"

	"github.com/noah-isme/sma-adp-timetable/internal/timetable"
)

// GenerateTimetableRequest asks for a timetable preview for one class and term.
type GenerateTimetableRequest struct {
	SchoolID string `json:"schoolId" validate:"required"`
	ClassID  string `json:"classId" validate:"required"`
	TermID   string `json:"termId" validate:"required"`
	// Category overrides the class category when set. Unknown values fall back to the default category.
	Category          string `json:"category,omitempty" validate:"omitempty,max=32"`
	MaxSameUnitPerDay *int   `json:"maxSameUnitPerDay,omitempty" validate:"omitempty,min=1,max=10"`
	FreePeriodsPerDay *int   `json:"freePeriodsPerDay,omitempty" validate:"omitempty,min=0,max=5"`
	// Seed makes the run reproducible.
	Seed *int64 `json:"seed,omitempty"`
}

// TimetablePreview is a generated, not yet applied, timetable.
type TimetablePreview struct {
	PreviewID                 string                       `json:"previewId"`
	SchoolID                  string                       `json:"schoolId"`
	ClassID                   string                       `json:"classId"`
	ClassName                 string                       `json:"className,omitempty"`
	TermID                    string                       `json:"termId"`
	Category                  timetable.Category           `json:"category"`
	RequiresTeacherAssignment bool                         `json:"requiresTeacherAssignment"`
	Periods                   []timetable.GeneratedPeriod  `json:"periods"`
	Analysis                  timetable.GenerationAnalysis `json:"analysis"`
	Fallbacks                 []string                     `json:"fallbacks,omitempty"`
	GeneratedAt               time.Time                    `json:"generatedAt"`
	ExpiresAt                 time.Time                    `json:"expiresAt"`
}

// AnalyzeTimetableRequest re-analyses a caller supplied period list.
type AnalyzeTimetableRequest struct {
	ClassID string                      `json:"classId" validate:"required"`
	TermID  string                      `json:"termId" validate:"required"`
	Periods []timetable.GeneratedPeriod `json:"periods" validate:"required"`
	// RequiresTeacherAssignment defaults to the class category profile when omitted.
	RequiresTeacherAssignment *bool `json:"requiresTeacherAssignment,omitempty"`
}

// ApplyTimetableRequest persists either a stored preview or an explicit period list.
type ApplyTimetableRequest struct {
	PreviewID string                      `json:"previewId,omitempty" validate:"required_without=Periods"`
	SchoolID  string                      `json:"schoolId,omitempty" validate:"required_without=PreviewID"`
	ClassID   string                      `json:"classId,omitempty" validate:"required_without=PreviewID"`
	TermID    string                      `json:"termId,omitempty" validate:"required_without=PreviewID"`
	Periods   []timetable.GeneratedPeriod `json:"periods,omitempty" validate:"required_without=PreviewID"`
}

// ApplyTimetableResponse reports what the merge wrote.
type ApplyTimetableResponse struct {
	ClassID   string `json:"classId"`
	TermID    string `json:"termId"`
	Inserted  int    `json:"inserted"`
	Updated   int    `json:"updated"`
	Unchanged int    `json:"unchanged"`
	Skipped   int    `json:"skipped"`
}

// TimetableTemplateResponse describes the daily template of a category.
type TimetableTemplateResponse struct {
	Category                  timetable.Category             `json:"category"`
	Known                     bool                           `json:"known"`
	UnitKind                  timetable.UnitKind             `json:"unitKind"`
	RequiresTeacherAssignment bool                           `json:"requiresTeacherAssignment"`
	Slots                     []timetable.PeriodSlotTemplate `json:"slots"`
}

// ExportFormat selects the rendering of an exported preview.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportedFile is a rendered preview ready to download.
type ExportedFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}
