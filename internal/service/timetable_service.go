package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-timetable/internal/dto"
	"github.com/noah-isme/sma-adp-timetable/internal/models"
	"github.com/noah-isme/sma-adp-timetable/internal/timetable"
	appErrors "github.com/noah-isme/sma-adp-timetable/pkg/errors"
	"github.com/noah-isme/sma-adp-timetable/pkg/export"
)

type timetableClassReader interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

type unitRosterReader interface {
	ListByClassTerm(ctx context.Context, classID, termID string) ([]models.UnitRosterRow, error)
}

type timetablePeriodStore interface {
	ListByClassTerm(ctx context.Context, classID, termID string) ([]models.TimetablePeriod, error)
	Insert(ctx context.Context, exec sqlx.ExtContext, period *models.TimetablePeriod) error
	Update(ctx context.Context, exec sqlx.ExtContext, period *models.TimetablePeriod) error
	FindConflicts(ctx context.Context, exec sqlx.ExtContext, termID, classID, day, start, end, teacherID, room string) ([]models.ScheduleConflict, error)
}

type previewStore interface {
	Save(ctx context.Context, preview dto.TimetablePreview, ttl time.Duration) error
	Get(ctx context.Context, id string) (*dto.TimetablePreview, error)
	Delete(ctx context.Context, id string) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, opts export.PDFOptions) ([]byte, error)
}

// TimetableServiceConfig governs preview lifetime and engine tuning.
type TimetableServiceConfig struct {
	ProposalTTL time.Duration
	Engine      timetable.Config
}

// TimetableService generates timetable previews, analyses them and applies them to persisted periods.
type TimetableService struct {
	classes   timetableClassReader
	roster    unitRosterReader
	periods   timetablePeriodStore
	previews  previewStore
	tx        txProvider
	engine    *timetable.Engine
	metrics   *MetricsService
	csv       csvRenderer
	pdf       pdfRenderer
	validator *validator.Validate
	logger    *zap.Logger
	ttl       time.Duration
	now       func() time.Time
	newRand   func() *rand.Rand
}

// NewTimetableService wires timetable dependencies. A nil preview store keeps previews in memory.
func NewTimetableService(
	classes timetableClassReader,
	roster unitRosterReader,
	periods timetablePeriodStore,
	previews previewStore,
	tx txProvider,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg TimetableServiceConfig,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ProposalTTL <= 0 {
		cfg.ProposalTTL = 30 * time.Minute
	}
	if previews == nil {
		previews = newMemoryPreviewStore(time.Now)
	}
	return &TimetableService{
		classes:   classes,
		roster:    roster,
		periods:   periods,
		previews:  previews,
		tx:        tx,
		engine:    timetable.NewEngine(cfg.Engine),
		metrics:   metrics,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		validator: validate,
		logger:    logger,
		ttl:       cfg.ProposalTTL,
		now:       time.Now,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// Templates returns the daily template of category, substituting the default category for unknown values.
func (s *TimetableService) Templates(category string) dto.TimetableTemplateResponse {
	profile, known := s.engine.Templates().Profile(timetable.ParseCategory(category))
	return dto.TimetableTemplateResponse{
		Category:                  profile.Category,
		Known:                     known,
		UnitKind:                  profile.UnitKind,
		RequiresTeacherAssignment: profile.RequiresTeacherAssignment,
		Slots:                     profile.Slots,
	}
}

// Preview generates a timetable for a class and term and stores it for later apply.
func (s *TimetableService) Preview(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.TimetablePreview, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable generation payload")
	}
	started := s.now()

	class, err := s.loadClass(ctx, req.ClassID)
	if err != nil {
		return nil, err
	}
	category := req.Category
	if category == "" {
		category = class.Category
	}
	profile, known := s.engine.Templates().Profile(timetable.ParseCategory(category))
	if !known {
		s.logger.Warn("unknown class category, using default template",
			zap.String("class_id", class.ID), zap.String("category", category), zap.String("fallback", string(profile.Category)))
	}

	units, err := s.loadRoster(ctx, req.ClassID, req.TermID)
	if err != nil {
		return nil, err
	}
	rows, err := s.periods.ListByClassTerm(ctx, req.ClassID, req.TermID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing timetable")
	}

	opts := timetable.Options{
		FreePeriodsPerDay:         req.FreePeriodsPerDay,
		RequiresTeacherAssignment: profile.RequiresTeacherAssignment,
		Rand:                      s.newRand(),
	}
	if req.MaxSameUnitPerDay != nil {
		opts.MaxSameUnitPerDay = *req.MaxSameUnitPerDay
	}
	if req.Seed != nil {
		opts.Rand = rand.New(rand.NewSource(*req.Seed))
	}

	result := s.engine.GenerateTimetable(profile.Slots, units, periodsFromModels(rows), opts)
	analysis := s.analyzer(opts.MaxSameUnitPerDay).Analyze(result.Periods, units, profile.RequiresTeacherAssignment)

	now := s.now().UTC()
	preview := dto.TimetablePreview{
		PreviewID:                 uuid.NewString(),
		SchoolID:                  req.SchoolID,
		ClassID:                   class.ID,
		ClassName:                 class.Name,
		TermID:                    req.TermID,
		Category:                  profile.Category,
		RequiresTeacherAssignment: profile.RequiresTeacherAssignment,
		Periods:                   result.Periods,
		Analysis:                  analysis,
		GeneratedAt:               now,
		ExpiresAt:                 now.Add(s.ttl),
	}
	for _, key := range result.Fallbacks {
		preview.Fallbacks = append(preview.Fallbacks, key.String())
	}

	if err := s.previews.Save(ctx, preview, s.ttl); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store timetable preview")
	}

	stats := GenerationStats{Category: string(profile.Category), Warnings: len(analysis.Warnings), Duration: s.now().Sub(started)}
	for _, p := range result.Periods {
		switch {
		case p.IsFree():
			stats.Free++
		case p.IsLesson():
			stats.Lessons++
		default:
			stats.Other++
		}
	}
	s.metrics.ObserveGeneration(stats)
	s.logger.Info("timetable preview generated",
		zap.String("preview_id", preview.PreviewID),
		zap.String("class_id", class.ID),
		zap.String("term_id", req.TermID),
		zap.String("category", string(profile.Category)),
		zap.Int("periods", len(result.Periods)),
		zap.Int("fallbacks", len(result.Fallbacks)),
		zap.Int("warnings", len(analysis.Warnings)),
		zap.Bool("configuration_gap", analysis.ConfigurationGap),
	)

	return &preview, nil
}

// GetPreview returns a stored preview that has not expired.
func (s *TimetableService) GetPreview(ctx context.Context, id string) (*dto.TimetablePreview, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "preview id is required")
	}
	started := s.now()
	preview, err := s.previews.Get(ctx, id)
	if err != nil {
		if appErrors.Is(err, appErrors.ErrCacheMiss) {
			s.metrics.RecordCacheOperation(false, s.now().Sub(started))
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable preview not found or expired")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable preview")
	}
	s.metrics.RecordCacheOperation(true, s.now().Sub(started))
	return preview, nil
}

// Analyze recomputes the analysis of a caller supplied period list.
func (s *TimetableService) Analyze(ctx context.Context, req dto.AnalyzeTimetableRequest) (*timetable.GenerationAnalysis, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable analysis payload")
	}
	requires := false
	if req.RequiresTeacherAssignment != nil {
		requires = *req.RequiresTeacherAssignment
	} else {
		class, err := s.loadClass(ctx, req.ClassID)
		if err != nil {
			return nil, err
		}
		profile, _ := s.engine.Templates().Profile(timetable.ParseCategory(class.Category))
		requires = profile.RequiresTeacherAssignment
	}

	units, err := s.loadRoster(ctx, req.ClassID, req.TermID)
	if err != nil {
		return nil, err
	}
	analysis := s.engine.AnalyzeGeneration(req.Periods, units, requires)
	return &analysis, nil
}

// Apply merges a preview or an explicit period list into the persisted timetable of a class.
// Only empty slots are filled and slot types corrected; teacher and room double bookings abort the write.
func (s *TimetableService) Apply(ctx context.Context, req dto.ApplyTimetableRequest) (*dto.ApplyTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable apply payload")
	}
	schoolID, classID, termID, incoming := req.SchoolID, req.ClassID, req.TermID, req.Periods
	if req.PreviewID != "" {
		preview, err := s.GetPreview(ctx, req.PreviewID)
		if err != nil {
			return nil, err
		}
		schoolID, classID, termID, incoming = preview.SchoolID, preview.ClassID, preview.TermID, preview.Periods
	}
	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	rows, err := s.periods.ListByClassTerm(ctx, classID, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing timetable")
	}
	byKey := make(map[timetable.PeriodKey]models.TimetablePeriod, len(rows))
	for _, row := range rows {
		byKey[periodFromModel(row).Key()] = row
	}

	plan := timetable.PlanMerge(periodsFromModels(rows), incoming)
	resp := &dto.ApplyTimetableResponse{
		ClassID:   classID,
		TermID:    termID,
		Inserted:  len(plan.Inserts),
		Updated:   len(plan.Updates),
		Unchanged: plan.Unchanged,
		Skipped:   plan.Skipped,
	}
	if plan.Empty() {
		s.metrics.ObserveApply(ApplyResultNoop, 0, 0)
		s.forgetPreview(ctx, req.PreviewID)
		return resp, nil
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		s.metrics.ObserveApply(ApplyResultError, 0, 0)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	writes := make([]timetable.GeneratedPeriod, 0, len(plan.Inserts)+len(plan.Updates))
	writes = append(writes, plan.Inserts...)
	for _, u := range plan.Updates {
		writes = append(writes, u.Next)
	}
	if err = s.checkConflicts(ctx, tx, termID, classID, writes); err != nil {
		return nil, err
	}

	for _, p := range plan.Inserts {
		row := models.TimetablePeriod{SchoolID: schoolID, ClassID: classID, TermID: termID}
		applyToModel(&row, p)
		if err = s.periods.Insert(ctx, tx, &row); err != nil {
			s.metrics.ObserveApply(ApplyResultError, 0, 0)
			s.logger.Error("timetable insert failed", zap.String("class_id", classID), zap.String("period", p.Key().String()), zap.Error(err))
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to insert timetable period")
			return nil, err
		}
	}
	for _, u := range plan.Updates {
		row := byKey[u.Current.Key()]
		applyToModel(&row, u.Next)
		if err = s.periods.Update(ctx, tx, &row); err != nil {
			s.metrics.ObserveApply(ApplyResultError, 0, 0)
			s.logger.Error("timetable update failed", zap.String("class_id", classID), zap.String("period", u.Next.Key().String()), zap.Error(err))
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update timetable period")
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		s.metrics.ObserveApply(ApplyResultError, 0, 0)
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit timetable transaction")
		return nil, err
	}

	s.forgetPreview(ctx, req.PreviewID)
	s.metrics.ObserveApply(ApplyResultApplied, resp.Inserted, resp.Updated)
	s.logger.Info("timetable applied",
		zap.String("class_id", classID),
		zap.String("term_id", termID),
		zap.Int("inserted", resp.Inserted),
		zap.Int("updated", resp.Updated),
		zap.Int("unchanged", resp.Unchanged),
		zap.Int("skipped", resp.Skipped),
	)
	return resp, nil
}

// Export renders a stored preview as CSV or PDF.
func (s *TimetableService) Export(ctx context.Context, previewID string, format dto.ExportFormat) (*dto.ExportedFile, error) {
	preview, err := s.GetPreview(ctx, previewID)
	if err != nil {
		return nil, err
	}
	grid := timetableGrid(preview.Periods)
	base := fmt.Sprintf("timetable-%s-%s", preview.ClassID, shortID(preview.PreviewID))

	switch format {
	case dto.ExportFormatCSV, "":
		payload, err := s.csv.Render(grid)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &dto.ExportedFile{Filename: base + ".csv", ContentType: "text/csv", Payload: payload}, nil
	case dto.ExportFormatPDF:
		title := preview.ClassName
		if title == "" {
			title = preview.ClassID
		}
		payload, err := s.pdf.Render(grid, export.PDFOptions{
			Title:     title + " timetable",
			Subtitle:  fmt.Sprintf("Term %s, %s", preview.TermID, preview.Category),
			Landscape: true,
			Footer:    preview.Analysis.Warnings,
		})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &dto.ExportedFile{Filename: base + ".pdf", ContentType: "application/pdf", Payload: payload}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func (s *TimetableService) checkConflicts(ctx context.Context, exec sqlx.ExtContext, termID, classID string, writes []timetable.GeneratedPeriod) error {
	var conflicts []models.ScheduleConflict
	for _, p := range writes {
		if !p.IsAssigned() || (p.TeacherID == "" && p.Room == "") {
			continue
		}
		found, err := s.periods.FindConflicts(ctx, exec, termID, classID, string(p.DayOfWeek), p.StartTime, p.EndTime, p.TeacherID, p.Room)
		if err != nil {
			s.metrics.ObserveApply(ApplyResultError, 0, 0)
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check timetable conflicts")
		}
		conflicts = append(conflicts, found...)
	}
	if len(conflicts) == 0 {
		return nil
	}

	s.metrics.ObserveApply(ApplyResultConflict, 0, 0)
	first := conflicts[0]
	s.logger.Warn("timetable apply rejected",
		zap.String("class_id", classID),
		zap.String("term_id", termID),
		zap.Int("conflicts", len(conflicts)),
		zap.String("dimension", string(first.Dimension)),
		zap.String("resource_id", first.ResourceID),
		zap.String("conflicting_class_id", first.ConflictingClass),
	)
	conflictErr := &models.ScheduleConflictError{Message: "timetable would double book a resource", Conflicts: conflicts}
	return appErrors.Wrap(conflictErr, appErrors.ErrScheduleConflict.Code, appErrors.ErrScheduleConflict.Status,
		fmt.Sprintf("%s %s is already booked on %s %s-%s", first.Dimension, first.ResourceID, first.DayOfWeek, first.StartTime, first.EndTime))
}

func (s *TimetableService) loadClass(ctx context.Context, classID string) (*models.Class, error) {
	class, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}

func (s *TimetableService) loadRoster(ctx context.Context, classID, termID string) ([]timetable.TeachableUnit, error) {
	rows, err := s.roster.ListByClassTerm(ctx, classID, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class units")
	}
	return unitsFromRoster(rows), nil
}

// analyzer honours a per-request repetition limit so overflow warnings match the generation run.
func (s *TimetableService) analyzer(maxSameUnitPerDay int) timetable.Analyzer {
	cfg := s.engine.Config()
	if maxSameUnitPerDay > 0 {
		cfg.MaxSameUnitPerDay = maxSameUnitPerDay
	}
	return timetable.NewAnalyzer(cfg)
}

func (s *TimetableService) forgetPreview(ctx context.Context, id string) {
	if id == "" {
		return
	}
	if err := s.previews.Delete(ctx, id); err != nil {
		s.logger.Warn("failed to delete applied preview", zap.String("preview_id", id), zap.Error(err))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
