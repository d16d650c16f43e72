package types

// Bitmap is a rasterized document: PNG bytes plus their pixel size.
type Bitmap struct {
	PNG    []byte
	Width  int
	Height int
}

// Empty reports whether the bitmap has no pixels.
func (b *Bitmap) Empty() bool {
	return b == nil || len(b.PNG) == 0 || b.Width <= 0 || b.Height <= 0
}
