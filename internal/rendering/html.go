package rendering

import (
	"embed"
	"fmt"
	"html/template"
	"os"
	"strings"

	"github.com/jonathan/cv-wizard/internal/document"
	"github.com/jonathan/cv-wizard/internal/types"
)

// RootID is the id of the element wrapping the rendered document. It is the
// capture target for rasterization.
const RootID = "resume"

// MarkerAttr is set to "true" on <body> once every image of the page has
// loaded or failed.
const MarkerAttr = "data-render-complete"

//go:embed assets/page.html.tmpl assets/styles.css
var assets embed.FS

var icons = map[string]string{
	document.IconEmail:    "\U0001F4E7",
	document.IconPhone:    "\U0001F4F1",
	document.IconLink:     "\U0001F517",
	document.IconWebsite:  "\U0001F310",
	document.IconLocation: "\U0001F4CD",
}

// pageData is what the page template is executed with.
type pageData struct {
	Title    string
	CSS      template.CSS
	Template types.TemplateID
	Layout   types.Layout
	Root     *document.Node
}

// Renderer executes a parsed page template.
type Renderer struct {
	tmpl *template.Template
	css  template.CSS
}

// NewRenderer returns a Renderer using the built-in page template and styles.
func NewRenderer() (*Renderer, error) {
	content, err := assets.ReadFile("assets/page.html.tmpl")
	if err != nil {
		return nil, &TemplateError{Message: "failed to read built-in template", Cause: err}
	}
	return newRenderer(string(content))
}

// LoadRenderer returns a Renderer using the page template at templatePath
// with the built-in styles. The file must define "page" and "node".
func LoadRenderer(templatePath string) (*Renderer, error) {
	content, err := os.ReadFile(templatePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &TemplateError{
				Message: fmt.Sprintf("template file not found: %s", templatePath),
				Cause:   err,
			}
		}
		return nil, &TemplateError{
			Message: fmt.Sprintf("failed to read template file: %s", templatePath),
			Cause:   err,
		}
	}
	return newRenderer(string(content))
}

func newRenderer(content string) (*Renderer, error) {
	css, err := assets.ReadFile("assets/styles.css")
	if err != nil {
		return nil, &TemplateError{Message: "failed to read built-in styles", Cause: err}
	}

	tmpl, err := template.New("resume").Funcs(template.FuncMap{
		"icon":     icon,
		"imageSrc": imageSrc,
	}).Parse(content)
	if err != nil {
		return nil, &TemplateError{
			Message: "failed to parse template",
			Cause:   err,
		}
	}
	if tmpl.Lookup("page") == nil || tmpl.Lookup("node") == nil {
		return nil, &TemplateError{Message: `template must define "page" and "node"`}
	}

	return &Renderer{tmpl: tmpl, css: template.CSS(css)}, nil
}

// RenderHTML renders doc as a complete HTML page. All user text is escaped.
func (r *Renderer) RenderHTML(doc *document.Document, title string) (string, error) {
	if doc == nil || doc.Root == nil {
		return "", &RenderError{Message: "empty document"}
	}

	data := pageData{
		Title:    title,
		CSS:      r.css,
		Template: doc.Template,
		Layout:   doc.Layout,
		Root:     doc.Root,
	}

	var result strings.Builder
	if err := r.tmpl.ExecuteTemplate(&result, "page", data); err != nil {
		return "", &TemplateError{
			Message: "failed to execute template",
			Cause:   err,
		}
	}
	return result.String(), nil
}

// RenderState renders the document of st as a page titled after the person.
func (r *Renderer) RenderState(st types.AppState) (string, error) {
	return r.RenderHTML(document.Render(st), Title(st.PersonalDetails))
}

func icon(name string) string {
	return icons[name]
}

// imageSrc passes inline image data URLs through and drops anything else.
func imageSrc(src string) template.URL {
	if strings.HasPrefix(src, "data:image/") && !strings.ContainsAny(src, "\"'<> ") {
		return template.URL(src) //nolint:gosec // restricted to inline image data
	}
	return ""
}
