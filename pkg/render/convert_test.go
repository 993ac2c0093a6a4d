package render

import (
	"context"
	"testing"

	"github.com/matzehuels/thoughttree/pkg/errors"
)

func TestConvertMissingBinary(t *testing.T) {
	old := rsvgBinary
	rsvgBinary = "rsvg-convert-not-installed"
	t.Cleanup(func() { rsvgBinary = old })

	_, err := ToPDF(context.Background(), []byte("<svg/>"))
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("ToPDF() error = %v, want %s", err, errors.ErrCodeUnsupported)
	}
	_, err = ToPNG(context.Background(), []byte("<svg/>"), 2)
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("ToPNG() error = %v, want %s", err, errors.ErrCodeUnsupported)
	}
}
