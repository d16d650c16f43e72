package pages

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-wizard/internal/types"
)

func testBitmap(t *testing.T, w, h int) *types.Bitmap {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &types.Bitmap{PNG: buf.Bytes(), Width: w, Height: h}
}

func TestFit(t *testing.T) {
	tests := []struct {
		name       string
		w, h       int
		page       PaperSize
		want       Placement
		widthBound bool
	}{
		{
			name: "tall image is height bound and centred",
			w:    1000, h: 2970, page: A4,
			want: Placement{X: 55, Y: 0, W: 100, H: 297},
		},
		{
			name: "wide image is width bound and top aligned",
			w:    2100, h: 1000, page: A4,
			want: Placement{X: 0, Y: 0, W: 210, H: 100},
		},
		{
			name: "exact aspect fills the page",
			w:    1588, h: 2246, page: A4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fit(tt.w, tt.h, tt.page)
			assert.LessOrEqual(t, got.W, tt.page.Width+1e-9)
			assert.LessOrEqual(t, got.H, tt.page.Height+1e-9)
			assert.Zero(t, got.Y)
			assert.InDelta(t, tt.page.Width, 2*got.X+got.W, 1e-9, "centred horizontally")
			assert.InDelta(t, float64(tt.w)/float64(tt.h), got.W/got.H, 1e-9, "aspect kept")
			if tt.want != (Placement{}) {
				assert.InDelta(t, tt.want.X, got.X, 1e-9)
				assert.InDelta(t, tt.want.W, got.W, 1e-9)
				assert.InDelta(t, tt.want.H, got.H, 1e-9)
			}
		})
	}
}

func TestFit_InvalidSize(t *testing.T) {
	assert.Equal(t, Placement{}, Fit(0, 100, A4))
	assert.Equal(t, Placement{}, Fit(100, -1, A4))
}

func TestParsePaperSize(t *testing.T) {
	p, err := ParsePaperSize("")
	require.NoError(t, err)
	assert.Equal(t, A4, p)

	p, err = ParsePaperSize(" LETTER ")
	require.NoError(t, err)
	assert.Equal(t, Letter, p)

	_, err = ParsePaperSize("A3")
	assert.Error(t, err)
}

func TestAssembler_Assemble(t *testing.T) {
	a := NewAssembler(A4)
	a.Title = "Ada Lovelace"
	a.Now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	data, err := a.Assemble(context.Background(), testBitmap(t, 120, 170))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Contains(t, string(data), "/Count 1")

	again, err := a.Assemble(context.Background(), testBitmap(t, 120, 170))
	require.NoError(t, err)
	assert.Equal(t, data, again, "output is stable for a fixed clock")
}

func TestAssembler_Letter(t *testing.T) {
	data, err := NewAssembler(Letter).Assemble(context.Background(), testBitmap(t, 50, 50))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestAssembler_Errors(t *testing.T) {
	a := NewAssembler(A4)

	var asmErr *AssembleError
	_, err := a.Assemble(context.Background(), nil)
	require.ErrorAs(t, err, &asmErr)

	_, err = a.Assemble(context.Background(), &types.Bitmap{PNG: []byte("not a png"), Width: 10, Height: 10})
	require.ErrorAs(t, err, &asmErr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = a.Assemble(ctx, testBitmap(t, 10, 10))
	assert.ErrorIs(t, err, context.Canceled)
}
