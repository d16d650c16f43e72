package export

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-wizard/internal/browser"
	"github.com/jonathan/cv-wizard/internal/rendering"
	"github.com/jonathan/cv-wizard/internal/state"
	"github.com/jonathan/cv-wizard/internal/storage"
	"github.com/jonathan/cv-wizard/internal/types"
)

type fakeRasterizer struct {
	mu      sync.Mutex
	calls   int
	html    string
	opts    browser.CaptureOptions
	err     error
	entered chan struct{}
	release chan struct{}
}

func (f *fakeRasterizer) Capture(ctx context.Context, html string, co browser.CaptureOptions) (*types.Bitmap, error) {
	f.mu.Lock()
	f.calls++
	f.html = html
	f.opts = co
	f.mu.Unlock()

	if f.entered != nil {
		close(f.entered)
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return &types.Bitmap{PNG: []byte("png"), Width: 1588, Height: 2246}, nil
}

func (f *fakeRasterizer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeAssembler struct {
	calls int
	got   *types.Bitmap
	err   error
}

func (f *fakeAssembler) Assemble(_ context.Context, bmp *types.Bitmap) ([]byte, error) {
	f.calls++
	f.got = bmp
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-fake"), nil
}

func newStore(t *testing.T) *state.Store {
	t.Helper()
	s := state.New(storage.NewMemory(0), "export-test")
	require.NoError(t, s.Start(context.Background()))
	return s
}

func newPipeline(t *testing.T, src Source, r Rasterizer, a Assembler) *Pipeline {
	t.Helper()
	renderer, err := rendering.NewRenderer()
	require.NoError(t, err)
	return New(src, renderer, r, a, Options{})
}

func TestExport_NoTemplateSkipsCollaborators(t *testing.T) {
	store := newStore(t)
	raster := &fakeRasterizer{}
	asm := &fakeAssembler{}
	p := newPipeline(t, store, raster, asm)

	var events []ProgressEvent
	_, err := p.Export(context.Background(), func(e ProgressEvent) { events = append(events, e) })

	require.ErrorIs(t, err, types.ErrNoTemplate)
	assert.Equal(t, 0, raster.Calls())
	assert.Equal(t, 0, asm.calls)
	assert.Empty(t, events)
}

func TestExport_Success(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.Apply(ctx, state.WithPersonalDetails(types.PersonalDetails{"firstName": "Ada", "lastName": "Lovelace"})))
	require.NoError(t, store.SelectTemplate(ctx, types.TemplateEdinburgh))

	raster := &fakeRasterizer{}
	asm := &fakeAssembler{}
	p := newPipeline(t, store, raster, asm)

	var stages []Stage
	file, err := p.Export(ctx, func(e ProgressEvent) { stages = append(stages, e.Stage) })
	require.NoError(t, err)

	assert.Equal(t, "Ada_Lovelace.pdf", file.Name)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Equal(t, []byte("%PDF-fake"), file.Data)
	assert.Equal(t, []Stage{StagePhoto, StageRender, StageCapture, StageAssemble, StageDone}, stages)

	assert.Equal(t, browser.DefaultCaptureOptions(), raster.opts)
	assert.Contains(t, raster.html, "template-edinburgh")
	assert.Contains(t, raster.html, "Ada")
	require.NotNil(t, asm.got)
	assert.Equal(t, 1588, asm.got.Width)
}

func TestExport_FallbackFilename(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.SelectTemplate(ctx, types.TemplateID("plain")))

	file, err := newPipeline(t, store, &fakeRasterizer{}, &fakeAssembler{}).Export(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "Resume_CV.pdf", file.Name)
}

func TestExport_CollaboratorFailures(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	t.Run("capture", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.SelectTemplate(ctx, types.TemplateCambridge))
		asm := &fakeAssembler{}

		file, err := newPipeline(t, store, &fakeRasterizer{err: boom}, asm).Export(ctx, nil)
		assert.Nil(t, file)
		var exportErr *ExportError
		require.ErrorAs(t, err, &exportErr)
		assert.Equal(t, StageCapture, exportErr.Stage)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 0, asm.calls)
	})

	t.Run("assemble", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.SelectTemplate(ctx, types.TemplateCambridge))

		file, err := newPipeline(t, store, &fakeRasterizer{}, &fakeAssembler{err: boom}).Export(ctx, nil)
		assert.Nil(t, file)
		var exportErr *ExportError
		require.ErrorAs(t, err, &exportErr)
		assert.Equal(t, StageAssemble, exportErr.Stage)
	})
}

func TestExport_WaitsForPhoto(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.SelectTemplate(ctx, types.TemplateOxford))

	done := store.BeginPhotoRead()
	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = store.SetPhoto(ctx, "data:image/png;base64,AAAA")
		done()
	}()

	raster := &fakeRasterizer{}
	_, err := newPipeline(t, store, raster, &fakeAssembler{}).Export(ctx, nil)
	require.NoError(t, err)
	assert.Contains(t, raster.html, "data:image/png;base64,AAAA")
}

func TestExport_PhotoWaitCancelled(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.SelectTemplate(context.Background(), types.TemplateOxford))
	done := store.BeginPhotoRead()
	defer done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	raster := &fakeRasterizer{}
	_, err := newPipeline(t, store, raster, &fakeAssembler{}).Export(ctx, nil)
	var exportErr *ExportError
	require.ErrorAs(t, err, &exportErr)
	assert.Equal(t, StagePhoto, exportErr.Stage)
	assert.Equal(t, 0, raster.Calls())
}

func TestExport_SecondConcurrentExportRefused(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.SelectTemplate(ctx, types.TemplateCambridge))

	raster := &fakeRasterizer{entered: make(chan struct{}), release: make(chan struct{})}
	p := newPipeline(t, store, raster, &fakeAssembler{})

	firstErr := make(chan error, 1)
	go func() {
		_, err := p.Export(ctx, nil)
		firstErr <- err
	}()

	<-raster.entered
	assert.True(t, p.Busy())
	_, err := p.Export(ctx, nil)
	assert.ErrorIs(t, err, ErrExportInProgress)

	close(raster.release)
	require.NoError(t, <-firstErr)
	assert.False(t, p.Busy())
	assert.Equal(t, 1, raster.Calls())
}

func TestExportState(t *testing.T) {
	st := types.NewAppState()
	p := newPipeline(t, newStore(t), &fakeRasterizer{}, &fakeAssembler{})

	_, err := p.ExportState(context.Background(), st, nil)
	assert.ErrorIs(t, err, types.ErrNoTemplate)

	st.SelectedTemplate = types.TemplateCambridge
	st.PersonalDetails = types.PersonalDetails{"lastName": "Hopper"}
	file, err := p.ExportState(context.Background(), st, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(file.Name, "_Hopper.pdf"))
}
