package rendering

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-wizard/internal/document"
	"github.com/jonathan/cv-wizard/internal/types"
)

func parseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func renderState(t *testing.T, st types.AppState) *goquery.Document {
	t.Helper()
	r, err := NewRenderer()
	require.NoError(t, err)
	html, err := r.RenderState(st)
	require.NoError(t, err)
	return parseHTML(t, html)
}

func testState(template types.TemplateID) types.AppState {
	st := types.NewAppState()
	st.SelectedTemplate = template
	st.PersonalDetails = types.PersonalDetails{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"email":     "ada@example.com",
		"website":   "https://ada.example",
	}
	st.Experiences.Work = []types.WorkEntry{{
		ID: "1", JobTitle: "Analyst", Employer: "Engines Ltd",
		DatedEntry: types.DatedEntry{StartMonth: "03", StartYear: "2019"},
	}}
	st.Experiences.Skills = []types.SkillEntry{{ID: "2", Skill: "Calculus", Level: types.SkillExpert}}
	st.Experiences.References = []types.ReferenceEntry{{ID: "3", ContactPerson: "Mary Somerville", Phone: "123"}}
	return st
}

func TestNewRenderer(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	assert.NotNil(t, r)
}

func TestRenderHTML_PageShell(t *testing.T) {
	doc := renderState(t, testState(types.TemplateOxford))

	root := doc.Find("#" + RootID)
	require.Equal(t, 1, root.Length())
	assert.True(t, root.HasClass("template-oxford"))
	assert.True(t, root.HasClass("layout-sidebar"))
	assert.Equal(t, "Ada Lovelace", doc.Find("title").Text())
	assert.Contains(t, doc.Find("style").Text(), ".sidebar")
	assert.Contains(t, doc.Find("script").Text(), MarkerAttr)
}

func TestRenderHTML_SidebarStructure(t *testing.T) {
	doc := renderState(t, testState(types.TemplateCambridge))

	assert.Equal(t, 1, doc.Find(".sidebar h1.name").Length())
	assert.Equal(t, "Calculus", doc.Find(".sidebar .resume-item span").First().Text())
	assert.Equal(t, "Expert", doc.Find(".sidebar .resume-item em").First().Text())
	assert.Equal(t, 1, doc.Find(".main ul.timeline li").Length())
	assert.Equal(t, "March 2019 - Present", doc.Find(".main .timeline .dates").Text())

	link := doc.Find(".sidebar a")
	href, ok := link.Attr("href")
	require.True(t, ok)
	assert.Equal(t, "https://ada.example", href)
	assert.Equal(t, "Website", link.Text())
}

func TestRenderHTML_SectionHeadings(t *testing.T) {
	doc := renderState(t, testState(types.TemplateClassic))

	var headings []string
	doc.Find("section h2").Each(func(_ int, s *goquery.Selection) {
		headings = append(headings, s.Text())
	})
	assert.Equal(t, []string{document.TitleWork, document.TitleSkills, document.TitleReferences}, headings)
	assert.Contains(t, doc.Find("section").Last().Text(), "Phone: 123")
}

func TestRenderHTML_ReferencesOnRequest(t *testing.T) {
	st := testState(types.TemplateEdinburgh)
	st.Experiences.ReferencesOnRequest = true
	doc := renderState(t, st)

	body := doc.Find("#" + RootID).Text()
	assert.Contains(t, body, document.ReferencesOnRequestNotice)
	assert.NotContains(t, body, "Mary Somerville")
	assert.Equal(t, 1, doc.Find(".banner").Length())
}

func TestRenderHTML_EscapesUserText(t *testing.T) {
	st := testState(types.TemplateClassic)
	st.PersonalDetails["firstName"] = `<script>alert("x")</script>`
	st.Experiences.Achievements = `<b>bold</b> & more`
	st.PersonalDetails["linkedin"] = "javascript:alert(1)"

	r, err := NewRenderer()
	require.NoError(t, err)
	html, err := r.RenderState(st)
	require.NoError(t, err)

	assert.NotContains(t, html, `<script>alert`)
	assert.NotContains(t, html, "<b>bold</b>")
	assert.NotContains(t, html, "javascript:alert")

	doc := parseHTML(t, html)
	assert.Equal(t, 1, doc.Find("script").Length())
	assert.Contains(t, doc.Find("h1").Text(), `<script>alert("x")</script>`)
}

func TestRenderHTML_Photo(t *testing.T) {
	st := testState(types.TemplateClassic)
	st.PhotoData = "data:image/png;base64,iVBORw0KGgo="
	doc := renderState(t, st)

	src, ok := doc.Find("img.photo").Attr("src")
	require.True(t, ok)
	assert.Equal(t, st.PhotoData, src)

	st.PhotoData = "https://tracker.example/pixel.png"
	doc = renderState(t, st)
	src, _ = doc.Find("img.photo").Attr("src")
	assert.Empty(t, src)
}

func TestRenderHTML_EmptyDocument(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	_, err = r.RenderHTML(nil, "x")
	var renderErr *RenderError
	assert.ErrorAs(t, err, &renderErr)
}

func TestRenderHTML_RoundTripIdentical(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	st := testState(types.TemplateCambridge)
	first, err := r.RenderState(st)
	require.NoError(t, err)
	second, err := r.RenderState(st.Clone())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLoadRenderer(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadRenderer("/nonexistent/page.html.tmpl")
		var templateErr *TemplateError
		require.ErrorAs(t, err, &templateErr)
		assert.Contains(t, err.Error(), "template file not found")
	})

	t.Run("invalid syntax", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.tmpl")
		require.NoError(t, os.WriteFile(path, []byte(`{{define "page"}}{{.Broken{{}}{{end}}`), 0644))
		_, err := LoadRenderer(path)
		var templateErr *TemplateError
		assert.ErrorAs(t, err, &templateErr)
	})

	t.Run("missing node template", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "page.tmpl")
		require.NoError(t, os.WriteFile(path, []byte(`{{define "page"}}<p>{{.Title}}</p>{{end}}`), 0644))
		_, err := LoadRenderer(path)
		assert.Error(t, err)
	})

	t.Run("custom template", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "page.tmpl")
		content := `{{define "page"}}<h1>{{.Title}}</h1>{{template "node" .Root}}{{end}}` +
			`{{define "node"}}{{range .Children}}[{{.Kind}}]{{end}}{{end}}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		r, err := LoadRenderer(path)
		require.NoError(t, err)
		html, err := r.RenderState(testState(types.TemplateClassic))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(html, "<h1>Ada Lovelace</h1>"))
		assert.Contains(t, html, "[section]")
	})
}

func TestFilename(t *testing.T) {
	tests := []struct {
		name string
		pd   types.PersonalDetails
		want string
	}{
		{"both names", types.PersonalDetails{"firstName": "Ada", "lastName": "Lovelace"}, "Ada_Lovelace.pdf"},
		{"no first name", types.PersonalDetails{"lastName": "Lovelace"}, "Resume_Lovelace.pdf"},
		{"no last name", types.PersonalDetails{"firstName": "Ada"}, "Ada_CV.pdf"},
		{"nothing", nil, "Resume_CV.pdf"},
		{"unsafe characters", types.PersonalDetails{"firstName": "../A/d:a", "lastName": "Lo*ve?"}, "Ada_Love.pdf"},
		{"only unsafe", types.PersonalDetails{"firstName": "//", "lastName": "\x00"}, "Resume_CV.pdf"},
		{"spaces kept", types.PersonalDetails{"firstName": "Mary Ann", "lastName": "Evans"}, "Mary Ann_Evans.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Filename(tt.pd))
		})
	}
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Ada", Title(types.PersonalDetails{"firstName": "Ada"}))
	assert.Equal(t, FallbackFirstName, Title(nil))
}
