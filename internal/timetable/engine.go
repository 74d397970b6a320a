// Package timetable synthesises weekly class timetables and balances teacher workload.
//
// Everything in this package is pure, synchronous computation over in-memory snapshots.
// Persistence of generated periods is the caller's concern; see PlanMerge for the
// reconciliation rule the caller applies against stored data.
package timetable

// Engine bundles the template catalogue, generator and analyzer behind one configuration.
type Engine struct {
	templates *TemplateProvider
	generator *Generator
	analyzer  Analyzer
}

// NewEngine builds an engine for cfg. Zero fields in cfg take DefaultConfig values.
func NewEngine(cfg Config) *Engine {
	cfg = cfg.withDefaults()
	return &Engine{
		templates: NewTemplateProvider(cfg),
		generator: NewGenerator(cfg),
		analyzer:  NewAnalyzer(cfg),
	}
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.generator.Config()
}

// Templates exposes the template catalogue.
func (e *Engine) Templates() *TemplateProvider {
	return e.templates
}

// GenerateTimetable fills every working day of template, keeping assigned existing periods.
func (e *Engine) GenerateTimetable(template []PeriodSlotTemplate, units []TeachableUnit, existing []GeneratedPeriod, opts Options) Result {
	return e.generator.Run(template, units, existing, opts)
}

// AnalyzeGeneration summarises periods against roster.
func (e *Engine) AnalyzeGeneration(periods []GeneratedPeriod, roster []TeachableUnit, requiresTeacherAssignment bool) GenerationAnalysis {
	return e.analyzer.Analyze(periods, roster, requiresTeacherAssignment)
}
