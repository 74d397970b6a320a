package timetable

import (
	"sort"
	"strings"
)

// CategoryProfile describes how classes of one institution tier are timetabled.
type CategoryProfile struct {
	Category                  Category             `json:"category"`
	UnitKind                  UnitKind             `json:"unitKind"`
	RequiresTeacherAssignment bool                 `json:"requiresTeacherAssignment"`
	Slots                     []PeriodSlotTemplate `json:"slots"`
}

func lesson(start, end string) PeriodSlotTemplate {
	return PeriodSlotTemplate{StartTime: start, EndTime: end, SlotType: SlotLesson}
}

func slot(start, end string, t SlotType) PeriodSlotTemplate {
	return PeriodSlotTemplate{StartTime: start, EndTime: end, SlotType: t}
}

var secondaryDay = []PeriodSlotTemplate{
	slot("07:45", "08:00", SlotAssembly),
	lesson("08:00", "08:40"),
	lesson("08:40", "09:20"),
	lesson("09:20", "10:00"),
	slot("10:00", "10:20", SlotBreak),
	lesson("10:20", "11:00"),
	lesson("11:00", "11:40"),
	lesson("11:40", "12:20"),
	slot("12:20", "13:00", SlotLunch),
	lesson("13:00", "13:40"),
	lesson("13:40", "14:20"),
}

var builtinProfiles = []CategoryProfile{
	{
		Category: CategoryNursery,
		UnitKind: UnitSubject,
		Slots: []PeriodSlotTemplate{
			slot("08:00", "08:20", SlotAssembly),
			lesson("08:20", "08:50"),
			lesson("08:50", "09:20"),
			lesson("09:20", "09:50"),
			slot("09:50", "10:20", SlotBreak),
			lesson("10:20", "10:50"),
			lesson("10:50", "11:20"),
			slot("11:20", "12:00", SlotLunch),
			lesson("12:00", "12:30"),
		},
	},
	{
		Category: CategoryPrimary,
		UnitKind: UnitSubject,
		Slots: []PeriodSlotTemplate{
			slot("08:00", "08:20", SlotAssembly),
			lesson("08:20", "09:00"),
			lesson("09:00", "09:40"),
			lesson("09:40", "10:20"),
			slot("10:20", "10:40", SlotBreak),
			lesson("10:40", "11:20"),
			lesson("11:20", "12:00"),
			slot("12:00", "12:40", SlotLunch),
			lesson("12:40", "13:20"),
			lesson("13:20", "14:00"),
		},
	},
	{
		Category:                  CategoryJuniorSecondary,
		UnitKind:                  UnitSubject,
		RequiresTeacherAssignment: true,
		Slots:                     secondaryDay,
	},
	{
		Category:                  CategorySeniorSecondary,
		UnitKind:                  UnitSubject,
		RequiresTeacherAssignment: true,
		Slots:                     append(append([]PeriodSlotTemplate{}, secondaryDay...), lesson("14:20", "15:00")),
	},
	{
		Category:                  CategoryTertiary,
		UnitKind:                  UnitCourse,
		RequiresTeacherAssignment: true,
		Slots: []PeriodSlotTemplate{
			lesson("08:00", "10:00"),
			lesson("10:00", "12:00"),
			slot("12:00", "13:00", SlotLunch),
			lesson("13:00", "15:00"),
			lesson("15:00", "17:00"),
		},
	},
}

// TemplateProvider resolves the canonical daily template for an institution category.
type TemplateProvider struct {
	profiles map[Category]CategoryProfile
	fallback Category
}

// NewTemplateProvider builds a provider over the built-in catalogue.
// Unknown categories resolve to cfg.DefaultCategory.
func NewTemplateProvider(cfg Config) *TemplateProvider {
	cfg = cfg.withDefaults()
	profiles := make(map[Category]CategoryProfile, len(builtinProfiles))
	for _, p := range builtinProfiles {
		profiles[p.Category] = p
	}
	fallback := cfg.DefaultCategory
	if _, ok := profiles[fallback]; !ok {
		fallback = CategoryPrimary
	}
	return &TemplateProvider{profiles: profiles, fallback: fallback}
}

// ParseCategory normalises a category name; unknown values are returned as-is and resolved by the provider.
func ParseCategory(raw string) Category {
	return Category(strings.ToUpper(strings.TrimSpace(raw)))
}

// Profile returns the profile for category. known is false when the default category was substituted.
func (p *TemplateProvider) Profile(category Category) (profile CategoryProfile, known bool) {
	profile, known = p.profiles[category]
	if !known {
		profile = p.profiles[p.fallback]
	}
	profile.Slots = append([]PeriodSlotTemplate(nil), profile.Slots...)
	return profile, known
}

// TemplateFor returns the ordered daily slots for category.
func (p *TemplateProvider) TemplateFor(category Category) []PeriodSlotTemplate {
	profile, _ := p.Profile(category)
	return profile.Slots
}

// Categories lists the categories in the catalogue.
func (p *TemplateProvider) Categories() []Category {
	out := make([]Category, 0, len(p.profiles))
	for c := range p.profiles {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
