package uploader

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	testImageSize   = 400
	testImageBorder = 10
)

// CreateTestImage writes a 400x400 PNG with a dark border and label into
// dir (the system temp dir when empty) and returns its path.
func CreateTestImage(dir, label string) (string, error) {
	f, err := os.CreateTemp(dir, "printkit-test-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create test image: %w", err)
	}
	path := f.Name()
	f.Close()

	canvas := imaging.New(testImageSize, testImageSize, color.NRGBA{R: 30, G: 30, B: 30, A: 255})
	inner := imaging.New(testImageSize-2*testImageBorder, testImageSize-2*testImageBorder, color.White)
	canvas = imaging.Paste(canvas, inner, image.Pt(testImageBorder, testImageBorder))

	if label == "" {
		label = "printkit test image"
	}
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.Black),
		Face: face,
	}
	width := d.MeasureString(label).Ceil()
	x := (testImageSize - width) / 2
	if x < testImageBorder*2 {
		x = testImageBorder * 2
	}
	d.Dot = fixed.P(x, testImageSize/2)
	d.DrawString(label)

	if err := imaging.Save(canvas, path); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to save test image: %w", err)
	}
	return path, nil
}
