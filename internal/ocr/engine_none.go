//go:build !tesseract

package ocr

// NewEngine reports ErrUnavailable; build with -tags tesseract to link
// libtesseract.
func NewEngine() (Engine, error) {
	return nil, ErrUnavailable
}
