// Package pages wraps a rasterized document into a single-page PDF.
package pages

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/jonathan/cv-wizard/internal/types"
)

// PaperSize is a portrait page size in millimetres.
type PaperSize struct {
	Name   string  `json:"name"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Supported paper sizes.
var (
	A4     = PaperSize{Name: "A4", Width: 210, Height: 297}
	Letter = PaperSize{Name: "Letter", Width: 215.9, Height: 279.4}
)

// ParsePaperSize maps a case-insensitive name to a PaperSize.
func ParsePaperSize(name string) (PaperSize, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "a4":
		return A4, nil
	case "letter":
		return Letter, nil
	default:
		return PaperSize{}, fmt.Errorf("unknown paper size: %q", name)
	}
}

// Placement is where the image lands on the page, in millimetres.
type Placement struct {
	X, Y, W, H float64
}

// Fit scales an imgW x imgH pixel image to fit the page while keeping its
// aspect ratio, centres it horizontally and aligns it to the top edge.
func Fit(imgW, imgH int, page PaperSize) Placement {
	if imgW <= 0 || imgH <= 0 {
		return Placement{}
	}
	ratio := min(page.Width/float64(imgW), page.Height/float64(imgH))
	w := float64(imgW) * ratio
	h := float64(imgH) * ratio
	return Placement{
		X: (page.Width - w) / 2,
		Y: 0,
		W: w,
		H: h,
	}
}

// Assembler builds PDF files with fpdf.
type Assembler struct {
	Paper PaperSize
	// Title is written to the document info dictionary when set.
	Title string
	// Now stamps the creation date. A nil Now uses time.Now.
	Now func() time.Time
}

// NewAssembler returns an Assembler for paper.
func NewAssembler(paper PaperSize) *Assembler {
	return &Assembler{Paper: paper}
}

// Assemble embeds bmp as the sole content of a single page and returns the
// encoded PDF.
func (a *Assembler) Assemble(ctx context.Context, bmp *types.Bitmap) ([]byte, error) {
	if bmp.Empty() {
		return nil, &AssembleError{Message: "empty bitmap"}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	paper := a.Paper
	if paper.Width == 0 || paper.Height == 0 {
		paper = A4
	}
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: paper.Width, Ht: paper.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("cv-wizard", true)
	pdf.SetCatalogSort(true)
	stamp := now()
	pdf.SetCreationDate(stamp)
	pdf.SetModificationDate(stamp)
	if a.Title != "" {
		pdf.SetTitle(a.Title, true)
	}
	pdf.AddPage()

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("resume", opts, bytes.NewReader(bmp.PNG))
	place := Fit(bmp.Width, bmp.Height, paper)
	pdf.ImageOptions("resume", place.X, place.Y, place.W, place.H, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &AssembleError{Message: "failed to write pdf", Cause: err}
	}
	return buf.Bytes(), nil
}

// AssembleError reports a failure building the PDF.
type AssembleError struct {
	Message string
	Cause   error
}

func (e *AssembleError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("assemble error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("assemble error: %s", e.Message)
}

func (e *AssembleError) Unwrap() error {
	return e.Cause
}
