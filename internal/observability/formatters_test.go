package observability

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/cv-wizard/internal/document"
	"github.com/jonathan/cv-wizard/internal/export"
	"github.com/jonathan/cv-wizard/internal/types"
)

func TestPrintState(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	st := types.NewAppState()
	st.PersonalDetails = types.PersonalDetails{"firstName": "Ada", "lastName": "Lovelace", "jobTitle": "Analyst"}
	st.SelectedTemplate = types.TemplateOxford
	st.CurrentStep = types.StepTemplate
	st.Experiences.Skills = []types.SkillEntry{{ID: "1", Skill: "Go"}, {ID: "2", Skill: "SQL"}}
	st.Experiences.ReferencesOnRequest = true

	p.PrintState(&st)
	output := buf.String()

	assert.Contains(t, output, "WIZARD STATE")
	assert.Contains(t, output, "Ada Lovelace")
	assert.Contains(t, output, "Analyst")
	assert.Contains(t, output, "3 (template)")
	assert.Contains(t, output, "oxford [sidebar]")
	assert.Contains(t, output, "skills")
	assert.Contains(t, output, "References available on request")
	assert.NotContains(t, output, "education", "empty collections are not listed")
}

func TestPrintState_Empty(t *testing.T) {
	var buf bytes.Buffer
	st := types.NewAppState()
	NewPrinter(&buf).PrintState(&st)

	assert.Contains(t, buf.String(), "(no name)")
	assert.Contains(t, buf.String(), "(none)")
}

func TestPrintState_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintState(nil)
	assert.Empty(t, buf.String())
}

func TestPrintDocument(t *testing.T) {
	var buf bytes.Buffer
	st := types.NewAppState()
	st.SelectedTemplate = types.TemplateClassic
	st.Experiences.ResumeObjective = "Build things"
	st.Experiences.Interests = []types.InterestEntry{{ID: "1", Hobby: "Chess"}}

	NewPrinter(&buf).PrintDocument(document.Render(st))
	output := buf.String()

	assert.Contains(t, output, "DOCUMENT OUTLINE")
	assert.Contains(t, output, "1. Objective")
	assert.Contains(t, output, "2. Interests")
}

func TestPrintExport(t *testing.T) {
	var buf bytes.Buffer
	file := &export.File{Name: "Ada_Lovelace.pdf", Data: make([]byte, 2048)}

	NewPrinter(&buf).PrintExport(file, "/tmp/out/Ada_Lovelace.pdf", 1500*time.Millisecond)
	output := buf.String()

	assert.Contains(t, output, "EXPORT COMPLETE")
	assert.Contains(t, output, "Ada_Lovelace.pdf")
	assert.Contains(t, output, "2.0 KiB")
	assert.Contains(t, output, "1.5s")
}

func TestPrintProgress(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintProgress(export.ProgressEvent{Stage: export.StageCapture, Message: "capturing page"})
	assert.Contains(t, buf.String(), "capture")
	assert.Contains(t, buf.String(), "capturing page")
}

func TestPrintValidationErrors(t *testing.T) {
	var buf bytes.Buffer
	problems := make([]string, 0, 7)
	for i := range 7 {
		problems = append(problems, fmt.Sprintf("problem %d", i))
	}

	NewPrinter(&buf).PrintValidationErrors("snap.json", problems)
	output := buf.String()
	assert.Contains(t, output, "problem 4")
	assert.NotContains(t, output, "problem 5")
	assert.Contains(t, output, "... and 2 more")

	buf.Reset()
	NewPrinter(&buf).PrintValidationErrors("snap.json", nil)
	assert.Contains(t, buf.String(), "Snapshot is valid")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'x'
	}
	NewPrinter(&buf).printBox("TITLE", string(long))
	assert.Contains(t, buf.String(), "...")
	assert.NotContains(t, buf.String(), string(long))
}
