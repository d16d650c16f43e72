// Package photo turns an uploaded profile picture into the inline data URL
// kept in the wizard state.
package photo

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log"

	"github.com/gabriel-vasile/mimetype"

	"github.com/jonathan/cv-wizard/internal/state"
)

// DefaultMaxSize caps an upload at 5 MiB.
const DefaultMaxSize = 5 << 20

// AllowedTypes are the image types accepted as a photo.
var AllowedTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

// Encode sniffs data and returns it as a base64 data URL.
func Encode(data []byte, maxSize int64) (string, error) {
	if len(data) == 0 {
		return "", &UnsupportedTypeError{MIME: "empty"}
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return "", &TooLargeError{Max: maxSize}
	}
	mime := mimetype.Detect(data)
	if !mimetype.EqualsAny(mime.String(), AllowedTypes...) {
		return "", &UnsupportedTypeError{MIME: mime.String()}
	}
	return "data:" + mime.String() + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// ReadAll reads at most maxSize bytes from r. A longer input is refused.
func ReadAll(r io.Reader, maxSize int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read photo: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, &TooLargeError{Max: maxSize}
	}
	return data, nil
}

// Loader stores photos into a state store in the background. Export waits
// for pending loads through the store.
type Loader struct {
	store   *state.Store
	maxSize int64
	verbose bool
}

// NewLoader returns a Loader writing to store. maxSize <= 0 uses
// DefaultMaxSize.
func NewLoader(store *state.Store, maxSize int64, verbose bool) *Loader {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Loader{store: store, maxSize: maxSize, verbose: verbose}
}

// MaxSize returns the upload cap.
func (l *Loader) MaxSize() int64 {
	return l.maxSize
}

// Start encodes data and stores it as the photo without blocking the caller.
// The read is not cancelled with ctx. The returned channel receives the
// outcome once and is then closed. When several loads overlap, the last one
// to finish wins.
func (l *Loader) Start(ctx context.Context, data []byte) <-chan error {
	ctx = context.WithoutCancel(ctx)
	done := l.store.BeginPhotoRead()
	result := make(chan error, 1)

	go func() {
		defer close(result)
		defer done()

		dataURL, err := Encode(data, l.maxSize)
		if err == nil {
			err = l.store.SetPhoto(ctx, dataURL)
		}
		if err != nil {
			log.Printf("[PHOTO] failed to load photo for %s: %v", l.store.Key(), err)
		} else if l.verbose {
			log.Printf("[PHOTO] stored %d byte photo for %s", len(data), l.store.Key())
		}
		result <- err
	}()

	return result
}

// Load is Start followed by waiting for the outcome. When ctx ends first the
// read still completes in the background.
func (l *Loader) Load(ctx context.Context, data []byte) error {
	select {
	case err := <-l.Start(ctx, data):
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UnsupportedTypeError is returned for uploads that are not an allowed image.
type UnsupportedTypeError struct {
	MIME string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported photo type: %s", e.MIME)
}

// TooLargeError is returned for uploads above the size cap.
type TooLargeError struct {
	Max int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("photo exceeds %d bytes", e.Max)
}
