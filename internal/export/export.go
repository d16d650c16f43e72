// Package export turns the current wizard state into a downloadable PDF.
package export

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/jonathan/cv-wizard/internal/browser"
	"github.com/jonathan/cv-wizard/internal/rendering"
	"github.com/jonathan/cv-wizard/internal/types"
)

// ErrExportInProgress is returned when an export is started while another
// one for the same pipeline is still running.
var ErrExportInProgress = errors.New("an export is already in progress")

// Stage names one step of an export.
type Stage string

// Export stages, in order.
const (
	StagePhoto    Stage = "photo"
	StageRender   Stage = "render"
	StageCapture  Stage = "capture"
	StageAssemble Stage = "assemble"
	StageDone     Stage = "done"
)

// ProgressEvent reports that an export entered a stage.
type ProgressEvent struct {
	Stage   Stage  `json:"stage"`
	Message string `json:"message"`
}

// ProgressCallback is called when an export enters a new stage
type ProgressCallback func(event ProgressEvent)

// Rasterizer captures a rendered page as a bitmap.
type Rasterizer interface {
	Capture(ctx context.Context, html string, co browser.CaptureOptions) (*types.Bitmap, error)
}

// Assembler wraps a bitmap into a document file.
type Assembler interface {
	Assemble(ctx context.Context, bmp *types.Bitmap) ([]byte, error)
}

// Source supplies the state to export. *state.Store satisfies it.
type Source interface {
	Snapshot() types.AppState
	WaitPhoto(ctx context.Context) error
}

// File is a finished export.
type File struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"-"`
}

// Options configures a Pipeline.
type Options struct {
	Capture browser.CaptureOptions
	Verbose bool
}

// Pipeline runs exports for one session, one at a time.
type Pipeline struct {
	source     Source
	renderer   *rendering.Renderer
	rasterizer Rasterizer
	assembler  Assembler
	opts       Options
	guard      *semaphore.Weighted
}

// New returns a Pipeline reading from source. A zero capture scale uses
// browser.DefaultCaptureOptions.
func New(source Source, renderer *rendering.Renderer, rasterizer Rasterizer, assembler Assembler, opts Options) *Pipeline {
	if opts.Capture.Scale <= 0 {
		opts.Capture = browser.DefaultCaptureOptions()
	}
	return &Pipeline{
		source:     source,
		renderer:   renderer,
		rasterizer: rasterizer,
		assembler:  assembler,
		opts:       opts,
		guard:      semaphore.NewWeighted(1),
	}
}

// Busy reports whether an export is running.
func (p *Pipeline) Busy() bool {
	if !p.guard.TryAcquire(1) {
		return true
	}
	p.guard.Release(1)
	return false
}

// Export waits for any pending photo read, then renders, captures and
// assembles the current state. Without a selected template it fails with
// types.ErrNoTemplate before any collaborator runs.
func (p *Pipeline) Export(ctx context.Context, onProgress ProgressCallback) (*File, error) {
	if !p.guard.TryAcquire(1) {
		return nil, ErrExportInProgress
	}
	defer p.guard.Release(1)

	if st := p.source.Snapshot(); !st.HasTemplate() {
		return nil, types.ErrNoTemplate
	}

	emit(onProgress, StagePhoto, "waiting for photo")
	if err := p.source.WaitPhoto(ctx); err != nil {
		return nil, &ExportError{Stage: StagePhoto, Cause: err}
	}

	return p.run(ctx, p.source.Snapshot(), onProgress)
}

// ExportState exports st directly, outside of any session. The guard still
// applies.
func (p *Pipeline) ExportState(ctx context.Context, st types.AppState, onProgress ProgressCallback) (*File, error) {
	if !p.guard.TryAcquire(1) {
		return nil, ErrExportInProgress
	}
	defer p.guard.Release(1)

	return p.run(ctx, st, onProgress)
}

func (p *Pipeline) run(ctx context.Context, st types.AppState, onProgress ProgressCallback) (*File, error) {
	start := time.Now()
	if !st.HasTemplate() {
		return nil, types.ErrNoTemplate
	}

	emit(onProgress, StageRender, "rendering "+string(st.SelectedTemplate))
	html, err := p.renderer.RenderState(st)
	if err != nil {
		return nil, &ExportError{Stage: StageRender, Cause: err}
	}

	emit(onProgress, StageCapture, "capturing page")
	bmp, err := p.rasterizer.Capture(ctx, html, p.opts.Capture)
	if err != nil {
		return nil, &ExportError{Stage: StageCapture, Cause: err}
	}
	if bmp.Empty() {
		return nil, &ExportError{Stage: StageCapture, Cause: errors.New("empty capture")}
	}

	emit(onProgress, StageAssemble, "building pdf")
	data, err := p.assembler.Assemble(ctx, bmp)
	if err != nil {
		return nil, &ExportError{Stage: StageAssemble, Cause: err}
	}

	file := &File{
		Name:        rendering.Filename(st.PersonalDetails),
		ContentType: "application/pdf",
		Data:        data,
	}
	emit(onProgress, StageDone, file.Name)

	if p.opts.Verbose {
		log.Printf("[EXPORT] %s: %d bytes in %s", file.Name, len(data), time.Since(start).Round(time.Millisecond))
	}
	return file, nil
}

// emit calls the progress callback if configured
func emit(cb ProgressCallback, stage Stage, message string) {
	if cb != nil {
		cb(ProgressEvent{Stage: stage, Message: message})
	}
}
