package pdfdoc

import (
	"image"
	"testing"
)

func TestFitWidth(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1000, 1400))

	t.Run("downscales preserving aspect ratio", func(t *testing.T) {
		got := FitWidth(src, 500)
		bounds := got.Bounds()
		if bounds.Dx() != 500 {
			t.Errorf("width = %d, want 500", bounds.Dx())
		}
		if bounds.Dy() != 700 {
			t.Errorf("height = %d, want 700", bounds.Dy())
		}
	})

	t.Run("never upscales", func(t *testing.T) {
		if got := FitWidth(src, 2000); got != src {
			t.Error("expected the original image back for a larger width")
		}
	})

	t.Run("zero width keeps native size", func(t *testing.T) {
		if got := FitWidth(src, 0); got != src {
			t.Error("expected the original image back for width 0")
		}
	})
}

func TestPathFromURL(t *testing.T) {
	if got := PathFromURL("file:///tmp/doc.pdf"); got != "/tmp/doc.pdf" {
		t.Errorf("PathFromURL = %s", got)
	}
	if got := PathFromURL("/tmp/doc.pdf"); got != "/tmp/doc.pdf" {
		t.Errorf("PathFromURL = %s", got)
	}
}
