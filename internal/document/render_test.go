package document

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-wizard/internal/types"
)

func sampleState(template types.TemplateID) types.AppState {
	st := types.NewAppState()
	st.SelectedTemplate = template
	st.PersonalDetails = types.PersonalDetails{
		"firstName":      "Ada",
		"lastName":       "Lovelace",
		"jobTitle":       "Analyst",
		"email":          "ada@example.com",
		"city":           "London",
		"linkedin":       "https://linkedin.example/ada",
		"additionalInfo": "Driving licence",
	}
	st.Experiences.ResumeObjective = "Build engines"
	st.Experiences.Work = []types.WorkEntry{{
		ID: "1", JobTitle: "Analyst", Employer: "Babbage & Co", City: "London",
		DatedEntry: types.DatedEntry{StartMonth: "03", StartYear: "2019"},
	}}
	st.Experiences.Education = []types.EducationEntry{{
		ID: "2", Degree: "Mathematics", School: "Home",
		DatedEntry: types.DatedEntry{StartMonth: "09", StartYear: "1830", EndMonth: "06", EndYear: "1833"},
	}}
	st.Experiences.Skills = []types.SkillEntry{{ID: "3", Skill: "Calculus", Level: types.SkillExpert}}
	st.Experiences.Languages = []types.LanguageEntry{{ID: "4", Language: "French", Level: types.LanguageFluent}}
	st.Experiences.Interests = []types.InterestEntry{{ID: "5", Hobby: "Poetry"}, {ID: "6"}, {ID: "7", Hobby: "Music"}}
	st.Experiences.References = []types.ReferenceEntry{{ID: "8", ContactPerson: "Mary Somerville", CompanyName: "RS"}}
	return st
}

func TestMonthName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"01", "January"},
		{"3", "March"},
		{"12", "December"},
		{"13", "13"},
		{"00", "00"},
		{"Spring", "Spring"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, MonthName(tt.in))
		})
	}
}

func TestFormatDateRange(t *testing.T) {
	tests := []struct {
		name                 string
		sm, sy, em, ey, want string
		ok                   bool
	}{
		{name: "open ended", sm: "03", sy: "2019", want: "March 2019 - Present", ok: true},
		{name: "closed", sm: "01", sy: "2018", em: "12", ey: "2020", want: "January 2018 - December 2020", ok: true},
		{name: "end month only", sm: "01", sy: "2018", em: "12", want: "January 2018 - Present", ok: true},
		{name: "no start year", sm: "01", em: "12", ey: "2020"},
		{name: "nothing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FormatDateRange(tt.sm, tt.sy, tt.em, tt.ey)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRender_LayoutFamilies(t *testing.T) {
	tests := []struct {
		template types.TemplateID
		layout   types.Layout
		rootRole string
	}{
		{types.TemplateCambridge, types.LayoutSidebar, "layout-sidebar"},
		{types.TemplateOxford, types.LayoutSidebar, "layout-sidebar"},
		{types.TemplateEdinburgh, types.LayoutBanner, "single-column"},
		{types.TemplateClassic, types.LayoutDefault, "single-column"},
		{"", types.LayoutDefault, "single-column"},
	}
	for _, tt := range tests {
		t.Run(string(tt.template), func(t *testing.T) {
			doc := Render(sampleState(tt.template))
			assert.Equal(t, tt.layout, doc.Layout)
			assert.Equal(t, tt.template, doc.Template)
			assert.Equal(t, tt.rootRole, doc.Root.Role)
		})
	}
}

func TestRender_DefaultSectionOrder(t *testing.T) {
	st := sampleState(types.TemplateClassic)
	st.Experiences.Achievements = "Prize"
	st.Experiences.Publications = "Notes"
	st.Experiences.Extras = []types.ExtraEntry{{ID: "9", Type: types.ExtraCourses, Description: "Logic"}}

	doc := Render(st)
	assert.Equal(t, []string{
		TitleObjective, TitleEducation, TitleWork, TitleSkills, TitleLanguages,
		TitleInterests, TitleAchievements, TitlePublications, "Courses",
		TitleReferences, TitleAdditionalInfo,
	}, doc.SectionTitles())
}

func TestRender_BannerUsesDefaultOrderWithBand(t *testing.T) {
	doc := Render(sampleState(types.TemplateEdinburgh))

	require.NotEmpty(t, doc.Root.Children)
	band := doc.Root.Children[0]
	assert.Equal(t, "banner", band.Role)
	assert.Equal(t, Render(sampleState(types.TemplateClassic)).SectionTitles(), doc.SectionTitles())
}

func TestRender_SidebarSplitsColumns(t *testing.T) {
	st := sampleState(types.TemplateCambridge)
	st.PhotoData = "data:image/png;base64,AAAA"
	doc := Render(st)

	require.Len(t, doc.Root.Children, 2)
	side, main := doc.Root.Children[0], doc.Root.Children[1]
	assert.Equal(t, "sidebar", side.Role)
	assert.Equal(t, "main", main.Role)

	assert.Equal(t, KindImage, side.Children[0].Kind)
	assert.Equal(t, "Ada Lovelace", side.Children[1].Text)
	assert.Equal(t, "Analyst", side.Children[2].Text)

	var sideTitles, mainTitles []string
	for _, c := range side.Children {
		if c.Kind == KindSection {
			sideTitles = append(sideTitles, c.Title)
		}
	}
	for _, c := range main.Children {
		mainTitles = append(mainTitles, c.Title)
	}
	assert.Equal(t, []string{TitleContact, TitleSkills, TitleLanguages, TitleInterests}, sideTitles)
	assert.Equal(t, []string{TitleProfile, TitleWork, TitleEducation, TitleReferences, TitleAdditionalInfo}, mainTitles)
	assert.Equal(t, "timeline", main.Children[1].Children[0].Role)
}

func TestRender_PresentDateLine(t *testing.T) {
	doc := Render(sampleState(types.TemplateClassic))
	work := doc.Section(TitleWork)
	require.NotNil(t, work)
	assert.Contains(t, work.PlainText(), "March 2019 - Present")

	edu := doc.Section(TitleEducation)
	require.NotNil(t, edu)
	assert.Contains(t, edu.PlainText(), "September 1830 - June 1833")
}

func TestRender_NoDateLineWithoutStart(t *testing.T) {
	st := types.NewAppState()
	st.Experiences.Work = []types.WorkEntry{{ID: "1", JobTitle: "Clerk", Employer: "Mill"}}

	doc := Render(st)
	var dates int
	doc.Root.Walk(func(n *Node) bool {
		if n.Kind == KindDateRange {
			dates++
		}
		return true
	})
	assert.Zero(t, dates)
	assert.Contains(t, doc.Section(TitleWork).PlainText(), "Clerk")
}

func TestRender_ReferencesOnRequestWins(t *testing.T) {
	for _, tmpl := range []types.TemplateID{types.TemplateOxford, types.TemplateEdinburgh, types.TemplateClassic} {
		t.Run(string(tmpl), func(t *testing.T) {
			st := sampleState(tmpl)
			st.Experiences.ReferencesOnRequest = true

			refs := Render(st).Section(TitleReferences)
			require.NotNil(t, refs)
			text := refs.PlainText()
			assert.Contains(t, text, ReferencesOnRequestNotice)
			assert.NotContains(t, text, "Mary Somerville")
			assert.NotContains(t, Render(st).Root.PlainText(), "Mary Somerville")
		})
	}
}

func TestRender_ReferencesNoticeWithoutEntries(t *testing.T) {
	st := types.NewAppState()
	st.Experiences.ReferencesOnRequest = true
	assert.Equal(t, []string{TitleReferences}, Render(st).SectionTitles())
}

func TestRender_ExtrasGrouping(t *testing.T) {
	st := types.NewAppState()
	st.SelectedTemplate = types.TemplateClassic
	st.Experiences.Extras = []types.ExtraEntry{
		{ID: "1", Type: types.ExtraProjects, Description: "Engine"},
		{ID: "2", Type: types.ExtraAwards, Description: "Medal"},
		{ID: "3", Type: types.ExtraProjects, Description: "Loom"},
	}

	doc := Render(st)
	assert.Equal(t, []string{"Projects", "Awards"}, doc.SectionTitles())

	projects := doc.Section("Projects")
	require.Len(t, projects.Children, 2)
	assert.Equal(t, "Engine", projects.Children[0].Text)
	assert.Equal(t, "Loom", projects.Children[1].Text)
	assert.Len(t, doc.Section("Awards").Children, 1)
}

func TestRender_ExtrasUnknownTypeAndEmptyGroup(t *testing.T) {
	st := types.NewAppState()
	st.Experiences.Extras = []types.ExtraEntry{
		{ID: "1", Type: "patents", Description: "Gear"},
		{ID: "2", Type: types.ExtraVolunteer},
	}
	assert.Equal(t, []string{"patents"}, Render(st).SectionTitles())
}

func TestRender_EmptyStateHasNoSections(t *testing.T) {
	for _, tmpl := range []types.TemplateID{types.TemplateCambridge, types.TemplateEdinburgh, ""} {
		st := types.NewAppState()
		st.SelectedTemplate = tmpl
		assert.Empty(t, Render(st).Sections(), tmpl)
	}
}

func TestRender_EmptyFieldsSkipped(t *testing.T) {
	st := types.NewAppState()
	st.PersonalDetails = types.PersonalDetails{"address": "", "city": "Paris", "zipCode": "75001"}
	st.Experiences.Skills = []types.SkillEntry{{ID: "1"}, {ID: "2", Skill: "Go"}}
	st.Experiences.Languages = []types.LanguageEntry{{ID: "3", Language: "German"}}

	doc := Render(st)
	text := doc.Root.PlainText()
	assert.Contains(t, text, "Paris, 75001")
	assert.NotContains(t, text, ", Paris")

	skills := doc.Section(TitleSkills)
	require.NotNil(t, skills)
	require.Len(t, skills.Children[0].Children, 1)

	langs := doc.Section(TitleLanguages)
	require.Len(t, langs.Children, 1)
	assert.Equal(t, "German", langs.Children[0].Label)
	assert.Empty(t, langs.Children[0].Text)
}

func TestRender_SidebarDropsUnnamedLevels(t *testing.T) {
	st := sampleState(types.TemplateOxford)
	st.Experiences.Skills = append(st.Experiences.Skills, types.SkillEntry{ID: "10", Level: types.SkillAdvanced})
	st.Experiences.Languages = []types.LanguageEntry{{ID: "11", Level: types.LanguageNative}}

	doc := Render(st)
	skills := doc.Section(TitleSkills)
	require.NotNil(t, skills)
	require.Len(t, skills.Children[0].Children, 1)
	assert.NotContains(t, skills.PlainText(), types.SkillAdvanced)

	assert.Nil(t, doc.Section(TitleLanguages), "a section with only unnamed entries is omitted")

	// The single-column families still show the level.
	st.SelectedTemplate = types.TemplateClassic
	assert.Contains(t, Render(st).Section(TitleSkills).PlainText(), types.SkillAdvanced)
}

func TestRender_ContactOrder(t *testing.T) {
	st := sampleState(types.TemplateClassic)
	st.PersonalDetails["address"] = "1 Lane"

	icons := func(doc *Document, role string) []string {
		var out []string
		doc.Root.Walk(func(n *Node) bool {
			if n.Role == role {
				for _, c := range n.Children {
					out = append(out, c.Icon)
				}
				return false
			}
			return true
		})
		return out
	}

	assert.Equal(t, []string{IconEmail, IconLocation, IconLink}, icons(Render(st), "contact"))

	st.SelectedTemplate = types.TemplateEdinburgh
	assert.Equal(t, []string{IconEmail, IconLink, IconLocation}, icons(Render(st), "contact-row"))
}

func TestRender_RoundTripIsIdempotent(t *testing.T) {
	for _, tmpl := range []types.TemplateID{types.TemplateCambridge, types.TemplateEdinburgh, types.TemplateClassic} {
		t.Run(string(tmpl), func(t *testing.T) {
			st := sampleState(tmpl)
			st.Experiences.ReferencesOnRequest = true
			st.Experiences.Extras = []types.ExtraEntry{{ID: "9", Type: types.ExtraAwards, Description: "Medal"}}

			data, err := json.Marshal(st)
			require.NoError(t, err)
			var decoded types.AppState
			require.NoError(t, json.Unmarshal(data, &decoded))
			decoded.Normalize()

			assert.Equal(t, Render(st), Render(decoded))
		})
	}
}

func TestRender_DoesNotMutateState(t *testing.T) {
	st := sampleState(types.TemplateOxford)
	before := st.Clone()
	Render(st)
	assert.Equal(t, before, st)
}
