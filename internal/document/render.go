package document

import (
	"strings"

	"github.com/jonathan/cv-wizard/internal/types"
)

// Section titles.
const (
	TitleContact        = "Contact"
	TitleProfile        = "Profile"
	TitleObjective      = "Objective"
	TitleEducation      = "Education"
	TitleWork           = "Work Experience"
	TitleSkills         = "Skills"
	TitleLanguages      = "Languages"
	TitleInterests      = "Interests"
	TitleAchievements   = "Achievements"
	TitlePublications   = "Publications"
	TitleReferences     = "References"
	TitleAdditionalInfo = "Additional Information"
)

// ReferencesOnRequestNotice replaces the individual references when the
// "available on request" flag is set.
const ReferencesOnRequestNotice = "References available on request"

// Render builds the document for st.SelectedTemplate. It reads st only.
func Render(st types.AppState) *Document {
	layout := st.SelectedTemplate.Layout()
	doc := &Document{Template: st.SelectedTemplate, Layout: layout}

	switch layout {
	case types.LayoutSidebar:
		doc.Root = renderSidebar(st)
	case types.LayoutBanner:
		doc.Root = renderSingleColumn(st, "banner")
	default:
		doc.Root = renderSingleColumn(st, "header")
	}
	return doc
}

func renderSidebar(st types.AppState) *Node {
	pd := st.PersonalDetails
	exp := st.Experiences

	side := &Node{Kind: KindBlock, Role: "sidebar"}
	side.add(
		photo(st.PhotoData),
		nameHeading(pd),
		textNode(KindParagraph, "role", pd.Get(types.FieldJobTitle)),
		nonEmptySection(&Node{Kind: KindSection, Title: TitleContact, Role: "sidebar-section"}, contactFields(pd, false)...),
		listSection(TitleSkills, "sidebar-section", skillItems(exp.Skills, true)),
		listSection(TitleLanguages, "sidebar-section", languageItems(exp.Languages)),
		interestsSection(exp.Interests, "sidebar-section"),
	)

	main := &Node{Kind: KindBlock, Role: "main"}
	main.add(
		objectiveSection(TitleProfile, exp),
		datedSection(TitleWork, "timeline", workItems(exp.Work)),
		datedSection(TitleEducation, "", educationItems(exp.Education)),
		referencesSection(exp),
		textSection(TitleAchievements, exp.Achievements),
		textSection(TitlePublications, exp.Publications),
	)
	main.add(extrasSections(exp.Extras)...)
	main.add(textSection(TitleAdditionalInfo, pd.Get(types.FieldAdditionalInfo)))

	return (&Node{Kind: KindBlock, Role: "layout-sidebar"}).add(side, main)
}

// renderSingleColumn covers the banner and default families. They differ only
// in the header block.
func renderSingleColumn(st types.AppState, headerRole string) *Node {
	pd := st.PersonalDetails
	exp := st.Experiences

	contact := nonEmptyBlock("contact", contactFields(pd, true)...)
	if headerRole == "banner" {
		contact = nonEmptyBlock("contact-row", contactFields(pd, false)...)
	}

	root := &Node{Kind: KindBlock, Role: "single-column"}
	root.add(
		nonEmptyBlock(headerRole, photo(st.PhotoData), nameHeading(pd), contact),
		objectiveSection(TitleObjective, exp),
		datedSection(TitleEducation, "", educationItems(exp.Education)),
		datedSection(TitleWork, "", workItems(exp.Work)),
		listSection(TitleSkills, "skills", skillItems(exp.Skills, false)),
		languagesSection(exp.Languages),
		interestsSection(exp.Interests, ""),
		textSection(TitleAchievements, exp.Achievements),
		textSection(TitlePublications, exp.Publications),
	)
	root.add(extrasSections(exp.Extras)...)
	root.add(
		referencesSection(exp),
		textSection(TitleAdditionalInfo, pd.Get(types.FieldAdditionalInfo)),
	)
	return root
}

func photo(data string) *Node {
	if data == "" {
		return nil
	}
	return &Node{Kind: KindImage, Role: "photo", Src: data, Label: "Profile Photo"}
}

func nameHeading(pd types.PersonalDetails) *Node {
	name := joinNonEmpty(" ", pd.Get(types.FieldFirstName), pd.Get(types.FieldLastName))
	if name == "" {
		return nil
	}
	return &Node{Kind: KindHeading, Level: 1, Role: "name", Text: name}
}

// contactFields lists the contact lines. The default family puts the address
// before the links; the other families put it last.
func contactFields(pd types.PersonalDetails, addressFirst bool) []*Node {
	var out []*Node
	if v := pd.Get(types.FieldEmail); v != "" {
		out = append(out, &Node{Kind: KindField, Icon: IconEmail, Text: v})
	}
	if v := pd.Get(types.FieldPhone); v != "" {
		out = append(out, &Node{Kind: KindField, Icon: IconPhone, Text: v})
	}

	var address *Node
	if v := joinNonEmpty(", ", pd.Get(types.FieldAddress), pd.Get(types.FieldCity), pd.Get(types.FieldZipCode)); v != "" {
		address = &Node{Kind: KindField, Icon: IconLocation, Text: v}
	}
	if addressFirst && address != nil {
		out = append(out, address)
	}

	if v := pd.Get(types.FieldLinkedIn); v != "" {
		out = append(out, (&Node{Kind: KindField, Icon: IconLink}).add(&Node{Kind: KindLink, Href: v, Text: "LinkedIn"}))
	}
	if v := pd.Get(types.FieldWebsite); v != "" {
		out = append(out, (&Node{Kind: KindField, Icon: IconWebsite}).add(&Node{Kind: KindLink, Href: v, Text: "Website"}))
	}
	if !addressFirst && address != nil {
		out = append(out, address)
	}
	return out
}

func objectiveSection(title string, exp types.ExperienceState) *Node {
	s := &Node{Kind: KindSection, Title: title}
	if exp.ResumeObjective != "" {
		s.add(&Node{Kind: KindParagraph, Text: exp.ResumeObjective, Strong: true})
	}
	s.add(textNode(KindParagraph, "", exp.ObjectiveDescription))
	return nonEmptySection(s)
}

func datedItem(title, org, city string, d types.DatedEntry, description string) *Node {
	item := &Node{Kind: KindItem}
	item.add(
		headingNode(3, title),
		textNode(KindParagraph, "meta", joinNonEmpty(", ", org, city)),
	)
	if dates, ok := FormatDateRange(d.StartMonth, d.StartYear, d.EndMonth, d.EndYear); ok {
		item.add(&Node{Kind: KindDateRange, Role: "meta", Text: dates})
	}
	item.add(textNode(KindParagraph, "", description))
	if len(item.Children) == 0 {
		return nil
	}
	return item
}

func workItems(work []types.WorkEntry) []*Node {
	out := make([]*Node, 0, len(work))
	for _, w := range work {
		out = append(out, datedItem(w.JobTitle, w.Employer, w.City, w.DatedEntry, w.Description))
	}
	return out
}

func educationItems(edu []types.EducationEntry) []*Node {
	out := make([]*Node, 0, len(edu))
	for _, e := range edu {
		out = append(out, datedItem(e.Degree, e.School, e.City, e.DatedEntry, e.Description))
	}
	return out
}

func datedSection(title, role string, items []*Node) *Node {
	list := nonEmptyList(role, items)
	if list == nil {
		return nil
	}
	return (&Node{Kind: KindSection, Title: title}).add(list)
}

// skillItems lists skills. With named set, an entry without a skill name is
// dropped even when it has a level.
func skillItems(skills []types.SkillEntry, named bool) []*Node {
	out := make([]*Node, 0, len(skills))
	for _, s := range skills {
		out = append(out, labelledItem(s.Skill, s.Level, named))
	}
	return out
}

func labelledItem(name, level string, named bool) *Node {
	if named && name == "" {
		return nil
	}
	item := &Node{Kind: KindItem}
	item.add(textNode(KindText, "name", name), textNode(KindText, "level", level))
	if len(item.Children) == 0 {
		return nil
	}
	return item
}

// languageItems lists the sidebar languages. Entries without a name are
// dropped.
func languageItems(langs []types.LanguageEntry) []*Node {
	out := make([]*Node, 0, len(langs))
	for _, l := range langs {
		out = append(out, labelledItem(l.Language, l.Level, true))
	}
	return out
}

// languagesSection renders "Language: level" lines for the single-column
// families.
func languagesSection(langs []types.LanguageEntry) *Node {
	s := &Node{Kind: KindSection, Title: TitleLanguages}
	for _, l := range langs {
		if l.Language == "" && l.Level == "" {
			continue
		}
		s.add(&Node{Kind: KindField, Label: l.Language, Text: l.Level})
	}
	return nonEmptySection(s)
}

func listSection(title, role string, items []*Node) *Node {
	list := nonEmptyList("", items)
	if list == nil {
		return nil
	}
	return (&Node{Kind: KindSection, Title: title, Role: role}).add(list)
}

func interestsSection(interests []types.InterestEntry, role string) *Node {
	hobbies := make([]string, 0, len(interests))
	for _, i := range interests {
		hobbies = append(hobbies, i.Hobby)
	}
	text := joinNonEmpty(", ", hobbies...)
	if text == "" {
		return nil
	}
	return (&Node{Kind: KindSection, Title: TitleInterests, Role: role}).add(&Node{Kind: KindParagraph, Text: text})
}

// referencesSection shows the notice when the flag is set, whether or not
// references were entered.
func referencesSection(exp types.ExperienceState) *Node {
	s := &Node{Kind: KindSection, Title: TitleReferences}
	if exp.ReferencesOnRequest {
		return s.add(&Node{Kind: KindParagraph, Role: "notice", Text: ReferencesOnRequestNotice})
	}

	items := make([]*Node, 0, len(exp.References))
	for _, r := range exp.References {
		item := &Node{Kind: KindItem}
		if r.ContactPerson != "" {
			item.add(&Node{Kind: KindParagraph, Text: r.ContactPerson, Strong: true})
		}
		item.add(textNode(KindParagraph, "", r.CompanyName))
		if r.Phone != "" {
			item.add(&Node{Kind: KindField, Label: "Phone", Text: r.Phone})
		}
		if r.Email != "" {
			item.add(&Node{Kind: KindField, Label: "Email", Text: r.Email})
		}
		if len(item.Children) > 0 {
			items = append(items, item)
		}
	}
	list := nonEmptyList("refs", items)
	if list == nil {
		return nil
	}
	return s.add(list)
}

func textSection(title, text string) *Node {
	if text == "" {
		return nil
	}
	return (&Node{Kind: KindSection, Title: title}).add(&Node{Kind: KindParagraph, Text: text})
}

// extrasSections groups extras by type in first-seen order and keeps the
// insertion order inside each group.
func extrasSections(extras []types.ExtraEntry) []*Node {
	var order []types.ExtraType
	groups := make(map[types.ExtraType][]string)
	for _, e := range extras {
		if _, seen := groups[e.Type]; !seen {
			order = append(order, e.Type)
			groups[e.Type] = []string{}
		}
		if e.Description != "" {
			groups[e.Type] = append(groups[e.Type], e.Description)
		}
	}

	var out []*Node
	for _, t := range order {
		if len(groups[t]) == 0 {
			continue
		}
		s := &Node{Kind: KindSection, Title: t.Label(), Role: "extra-" + string(t)}
		for _, desc := range groups[t] {
			s.add(&Node{Kind: KindParagraph, Text: desc})
		}
		out = append(out, s)
	}
	return out
}

func textNode(kind Kind, role, text string) *Node {
	if text == "" {
		return nil
	}
	return &Node{Kind: kind, Role: role, Text: text}
}

func headingNode(level int, text string) *Node {
	if text == "" {
		return nil
	}
	return &Node{Kind: KindHeading, Level: level, Text: text}
}

func nonEmptySection(s *Node, children ...*Node) *Node {
	s.add(children...)
	if len(s.Children) == 0 {
		return nil
	}
	return s
}

func nonEmptyBlock(role string, children ...*Node) *Node {
	b := (&Node{Kind: KindBlock, Role: role}).add(children...)
	if len(b.Children) == 0 {
		return nil
	}
	return b
}

func nonEmptyList(role string, items []*Node) *Node {
	l := (&Node{Kind: KindList, Role: role}).add(items...)
	if len(l.Children) == 0 {
		return nil
	}
	return l
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
