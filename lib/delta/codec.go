// Package delta computes and applies compressed binary deltas between two
// revisions of a text.
//
// A delta is a BSDIFF40 patch (control, diff and extra blocks built from a
// suffix sort of the base) wrapped in a zlib stream at the default
// compression level. Decoding reverses both steps and rejects output larger
// than the caller's bound or not valid UTF-8.
package delta

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/gabstv/go-bsdiff/pkg/bsdiff"
	"github.com/gabstv/go-bsdiff/pkg/bspatch"
	"github.com/klauspost/compress/zlib"
)

// ErrProcessing is wrapped by every failure of this package.
var ErrProcessing = errors.New("delta processing failed")

// EncodeDelta returns the compressed patch that turns baseText into newText.
func EncodeDelta(newText []byte, baseText []byte) ([]byte, error) {
	patch, err := bsdiff.Bytes(baseText, newText)
	if err != nil {
		return nil, fmt.Errorf("%w: diff: %w", ErrProcessing, err)
	}

	var compressed bytes.Buffer
	w, err := zlib.NewWriterLevel(&compressed, zlib.DefaultCompression)
	if err != nil {
		return nil, fmt.Errorf("%w: zlib writer: %w", ErrProcessing, err)
	}
	if _, err := w.Write(patch); err != nil {
		return nil, fmt.Errorf("%w: compress: %w", ErrProcessing, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: compress: %w", ErrProcessing, err)
	}

	return compressed.Bytes(), nil
}

// DecodePatch applies delta to baseText and returns the reconstructed text.
// A positive expectedLen bounds the size of the output; callers holding the
// exact length recorded at encode time compare it themselves.
func DecodePatch(delta []byte, baseText []byte, expectedLen int) (string, error) {
	r, err := zlib.NewReader(bytes.NewReader(delta))
	if err != nil {
		return "", fmt.Errorf("%w: zlib reader: %w", ErrProcessing, err)
	}
	defer r.Close()

	patch, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%w: decompress: %w", ErrProcessing, err)
	}

	out, err := bspatch.Bytes(baseText, patch)
	if err != nil {
		return "", fmt.Errorf("%w: patch: %w", ErrProcessing, err)
	}

	if expectedLen > 0 && len(out) > expectedLen {
		return "", fmt.Errorf("%w: patched length %d exceeds bound %d", ErrProcessing, len(out), expectedLen)
	}

	if !utf8.Valid(out) {
		return "", fmt.Errorf("%w: result is not valid UTF-8", ErrProcessing)
	}

	return string(out), nil
}
