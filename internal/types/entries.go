package types

import (
	"fmt"
	"slices"
	"strings"
)

// Collection names one of the repeatable entry lists of step 2.
type Collection string

// Entry collections.
const (
	CollectionEducation  Collection = "education"
	CollectionWork       Collection = "work"
	CollectionInterests  Collection = "interests"
	CollectionReferences Collection = "references"
	CollectionSkills     Collection = "skills"
	CollectionLanguages  Collection = "languages"
	CollectionExtras     Collection = "extras"
)

// Collections lists every entry collection in step 2 display order.
var Collections = []Collection{
	CollectionEducation,
	CollectionWork,
	CollectionInterests,
	CollectionReferences,
	CollectionSkills,
	CollectionLanguages,
	CollectionExtras,
}

// ParseCollection validates a collection name.
func ParseCollection(name string) (Collection, error) {
	for _, c := range Collections {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown collection: %q", name)
}

// Entry is one record of a collection. Its id is the only identity used for
// update-in-place and deletion.
type Entry interface {
	EntryID() string
	// Fields returns the record's named fields, excluding the id.
	Fields() map[string]string
}

// Skill levels.
const (
	SkillBeginner     = "Beginner"
	SkillIntermediate = "Intermediate"
	SkillAdvanced     = "Advanced"
	SkillExpert       = "Expert"
)

// Language levels.
const (
	LanguageBasic        = "Basic"
	LanguageIntermediate = "Intermediate"
	LanguageFluent       = "Fluent"
	LanguageNative       = "Native"
)

// Levels returns the allowed levels of collection c, or nil when its records
// carry no level. An empty level is always allowed.
func Levels(c Collection) []string {
	switch c {
	case CollectionSkills:
		return []string{SkillBeginner, SkillIntermediate, SkillAdvanced, SkillExpert}
	case CollectionLanguages:
		return []string{LanguageBasic, LanguageIntermediate, LanguageFluent, LanguageNative}
	default:
		return nil
	}
}

// ValidLevel reports whether level may be stored on a record of c.
func ValidLevel(c Collection, level string) bool {
	return level == "" || slices.Contains(Levels(c), level)
}

// LevelError is returned for a level outside its collection's set.
type LevelError struct {
	Collection Collection
	Level      string
}

func (e *LevelError) Error() string {
	return fmt.Sprintf("invalid %s level %q: must be one of %s",
		e.Collection, e.Level, strings.Join(Levels(e.Collection), ", "))
}

// ExtraType tags an extras record with the section it belongs to.
type ExtraType string

// Known extra section types.
const (
	ExtraCertifications ExtraType = "certifications"
	ExtraProjects       ExtraType = "projects"
	ExtraAwards         ExtraType = "awards"
	ExtraVolunteer      ExtraType = "volunteer"
	ExtraCourses        ExtraType = "courses"
)

var extraLabels = map[ExtraType]string{
	ExtraCertifications: "Certifications",
	ExtraProjects:       "Projects",
	ExtraAwards:         "Awards",
	ExtraVolunteer:      "Volunteer Work",
	ExtraCourses:        "Courses",
}

// Label returns the section heading for the type. Unknown types use the raw
// type string.
func (t ExtraType) Label() string {
	if label, ok := extraLabels[t]; ok {
		return label
	}
	return string(t)
}

// DatedEntry carries the shared month/year range of education and work.
type DatedEntry struct {
	StartMonth string `json:"startMonth"`
	StartYear  string `json:"startYear"`
	EndMonth   string `json:"endMonth"`
	EndYear    string `json:"endYear"`
}

// EducationEntry is one school attended.
type EducationEntry struct {
	ID     string `json:"id"`
	Degree string `json:"degree"`
	School string `json:"school"`
	City   string `json:"city"`
	DatedEntry
	Description string `json:"description"`
}

// WorkEntry is one job held.
type WorkEntry struct {
	ID       string `json:"id"`
	JobTitle string `json:"jobTitle"`
	Employer string `json:"employer"`
	City     string `json:"city"`
	DatedEntry
	Description string `json:"description"`
}

// InterestEntry is one hobby.
type InterestEntry struct {
	ID    string `json:"id"`
	Hobby string `json:"hobby"`
}

// ReferenceEntry is one referee.
type ReferenceEntry struct {
	ID            string `json:"id"`
	CompanyName   string `json:"companyName"`
	ContactPerson string `json:"contactPerson"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
}

// SkillEntry is one skill with an optional level.
type SkillEntry struct {
	ID    string `json:"id"`
	Skill string `json:"skill"`
	Level string `json:"level"`
}

// LanguageEntry is one spoken language with an optional level.
type LanguageEntry struct {
	ID       string `json:"id"`
	Language string `json:"language"`
	Level    string `json:"level"`
}

// ExtraEntry is one item of a free-form supplementary section.
type ExtraEntry struct {
	ID          string    `json:"id"`
	Type        ExtraType `json:"type"`
	Description string    `json:"description"`
}

func (e EducationEntry) EntryID() string { return e.ID }
func (e WorkEntry) EntryID() string      { return e.ID }
func (e InterestEntry) EntryID() string  { return e.ID }
func (e ReferenceEntry) EntryID() string { return e.ID }
func (e SkillEntry) EntryID() string     { return e.ID }
func (e LanguageEntry) EntryID() string  { return e.ID }
func (e ExtraEntry) EntryID() string     { return e.ID }

func (d DatedEntry) fields(m map[string]string) map[string]string {
	m["startMonth"] = d.StartMonth
	m["startYear"] = d.StartYear
	m["endMonth"] = d.EndMonth
	m["endYear"] = d.EndYear
	return m
}

// Fields implements Entry.
func (e EducationEntry) Fields() map[string]string {
	return e.fields(map[string]string{
		"degree":      e.Degree,
		"school":      e.School,
		"city":        e.City,
		"description": e.Description,
	})
}

// Fields implements Entry.
func (e WorkEntry) Fields() map[string]string {
	return e.fields(map[string]string{
		"jobTitle":    e.JobTitle,
		"employer":    e.Employer,
		"city":        e.City,
		"description": e.Description,
	})
}

// Fields implements Entry.
func (e InterestEntry) Fields() map[string]string {
	return map[string]string{"hobby": e.Hobby}
}

// Fields implements Entry.
func (e ReferenceEntry) Fields() map[string]string {
	return map[string]string{
		"companyName":   e.CompanyName,
		"contactPerson": e.ContactPerson,
		"phone":         e.Phone,
		"email":         e.Email,
	}
}

// Fields implements Entry.
func (e SkillEntry) Fields() map[string]string {
	return map[string]string{"skill": e.Skill, "level": e.Level}
}

// Fields implements Entry.
func (e LanguageEntry) Fields() map[string]string {
	return map[string]string{"language": e.Language, "level": e.Level}
}

// Fields implements Entry.
func (e ExtraEntry) Fields() map[string]string {
	return map[string]string{"type": string(e.Type), "description": e.Description}
}

// FieldNames returns the named inputs of a collection's editable unit.
func FieldNames(c Collection) []string {
	switch c {
	case CollectionEducation:
		return []string{"degree", "city", "school", "startMonth", "startYear", "endMonth", "endYear", "description"}
	case CollectionWork:
		return []string{"jobTitle", "city", "employer", "startMonth", "startYear", "endMonth", "endYear", "description"}
	case CollectionInterests:
		return []string{"hobby"}
	case CollectionReferences:
		return []string{"companyName", "contactPerson", "phone", "email"}
	case CollectionSkills:
		return []string{"skill", "level"}
	case CollectionLanguages:
		return []string{"language", "level"}
	case CollectionExtras:
		return []string{"description"}
	default:
		return nil
	}
}

// NewEntry builds the typed record of collection c from named field values.
// Missing fields become empty strings; unknown names are ignored.
func NewEntry(c Collection, id string, f map[string]string) (Entry, error) {
	dated := func() DatedEntry {
		return DatedEntry{
			StartMonth: f["startMonth"],
			StartYear:  f["startYear"],
			EndMonth:   f["endMonth"],
			EndYear:    f["endYear"],
		}
	}

	if level := f["level"]; Levels(c) != nil && !ValidLevel(c, level) {
		return nil, &LevelError{Collection: c, Level: level}
	}

	switch c {
	case CollectionEducation:
		return EducationEntry{ID: id, Degree: f["degree"], School: f["school"], City: f["city"], DatedEntry: dated(), Description: f["description"]}, nil
	case CollectionWork:
		return WorkEntry{ID: id, JobTitle: f["jobTitle"], Employer: f["employer"], City: f["city"], DatedEntry: dated(), Description: f["description"]}, nil
	case CollectionInterests:
		return InterestEntry{ID: id, Hobby: f["hobby"]}, nil
	case CollectionReferences:
		return ReferenceEntry{ID: id, CompanyName: f["companyName"], ContactPerson: f["contactPerson"], Phone: f["phone"], Email: f["email"]}, nil
	case CollectionSkills:
		return SkillEntry{ID: id, Skill: f["skill"], Level: f["level"]}, nil
	case CollectionLanguages:
		return LanguageEntry{ID: id, Language: f["language"], Level: f["level"]}, nil
	case CollectionExtras:
		return ExtraEntry{ID: id, Type: ExtraType(f["type"]), Description: f["description"]}, nil
	default:
		return nil, fmt.Errorf("unknown collection: %q", c)
	}
}
