package types

import "errors"

// TemplateID names a visual template. The empty value means no template
// has been selected yet.
type TemplateID string

// Known template ids.
const (
	TemplateCambridge TemplateID = "cambridge"
	TemplateOxford    TemplateID = "oxford"
	TemplateEdinburgh TemplateID = "edinburgh"
	TemplateClassic   TemplateID = "classic"
)

// Layout is the layout family a template belongs to.
type Layout string

// Layout families.
const (
	LayoutSidebar Layout = "sidebar"
	LayoutBanner  Layout = "banner"
	LayoutDefault Layout = "default"
)

// TemplateInfo describes a selectable template card.
type TemplateInfo struct {
	ID     TemplateID `json:"id"`
	Name   string     `json:"name"`
	Layout Layout     `json:"layout"`
}

// Templates lists the template cards offered in step 3, in display order.
var Templates = []TemplateInfo{
	{ID: TemplateClassic, Name: "Classic", Layout: LayoutDefault},
	{ID: TemplateCambridge, Name: "Cambridge", Layout: LayoutSidebar},
	{ID: TemplateOxford, Name: "Oxford", Layout: LayoutSidebar},
	{ID: TemplateEdinburgh, Name: "Edinburgh", Layout: LayoutBanner},
}

// Layout returns the layout family of the template. Unknown ids, and the
// empty id, fall back to the default family.
func (t TemplateID) Layout() Layout {
	switch t {
	case TemplateCambridge, TemplateOxford:
		return LayoutSidebar
	case TemplateEdinburgh:
		return LayoutBanner
	default:
		return LayoutDefault
	}
}

// NoTemplateNotice is the blocking notice shown when preview or export is
// attempted before a template is chosen.
const NoTemplateNotice = "Please select a template first"

// ErrNoTemplate is returned by preview and export when no template is
// selected. Nothing else has happened when it is returned.
var ErrNoTemplate = errors.New("no template selected")
