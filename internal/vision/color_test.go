package vision

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	leafGreen = color.RGBA{0, 160, 0, 255}
	white     = color.RGBA{255, 255, 255, 255}
	black     = color.RGBA{0, 0, 0, 255}
	soilBrown = color.RGBA{139, 90, 43, 255}
	skyBlue   = color.RGBA{30, 90, 200, 255}
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestAnalyzeColors_SolidGreen(t *testing.T) {
	ca := analyzeColors(solid(20, 20, leafGreen), 0)

	assert.Equal(t, 20, ca.Width)
	assert.Equal(t, 400, ca.SampledPixelsCount)
	assert.Equal(t, 100.0, ca.GreenPercentage)
	assert.Equal(t, 100.0, ca.NaturePalette)
	require.Len(t, ca.DominantColors, 1)
	assert.Equal(t, "#10B010", ca.DominantColors[0].Hex)
	assert.Equal(t, 100.0, ca.DominantColors[0].Percentage)
}

func TestAnalyzeColors_White(t *testing.T) {
	ca := analyzeColors(solid(10, 10, white), 0)

	assert.Zero(t, ca.GreenPercentage)
	assert.Zero(t, ca.NaturePalette)
	assert.Equal(t, "#F0F0F0", ca.DominantColors[0].Hex)
}

func TestAnalyzeColors_Mixed(t *testing.T) {
	img := solid(10, 10, white)
	for y := 0; y < 10; y++ {
		for x := 0; x < 5; x++ {
			img.Set(x, y, leafGreen)
		}
		img.Set(5, y, soilBrown)
		img.Set(6, y, skyBlue)
	}

	ca := analyzeColors(img, 0)

	assert.Equal(t, 50.0, ca.GreenPercentage)
	assert.Equal(t, 10.0, ca.EarthPercentage)
	assert.Equal(t, 10.0, ca.BluePercentage)
	assert.Equal(t, 70.0, ca.NaturePalette)
	require.Len(t, ca.DominantColors, 4)
	assert.Equal(t, "#10B010", ca.DominantColors[0].Hex)
	assert.Equal(t, 50.0, ca.DominantColors[0].Percentage)
}

func TestAnalyzeColors_SkipsTransparent(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(0, 0, leafGreen)

	ca := analyzeColors(img, 0)

	assert.Equal(t, 1, ca.SampledPixelsCount)
	assert.Equal(t, 100.0, ca.GreenPercentage)
}

func TestAnalyzeColors_Empty(t *testing.T) {
	ca := analyzeColors(image.NewRGBA(image.Rect(0, 0, 0, 0)), 100)

	assert.Zero(t, ca.SampledPixelsCount)
	assert.NotNil(t, ca.DominantColors)
}

func TestSampleStep(t *testing.T) {
	assert.Equal(t, 1, sampleStep(10, 10, 0))
	assert.Equal(t, 1, sampleStep(10, 10, 100))
	assert.Equal(t, 2, sampleStep(1000, 1000, 250_000))
	assert.Equal(t, 3, sampleStep(1000, 1000, 200_000))

	ca := analyzeColors(solid(100, 100, leafGreen), 1000)
	assert.LessOrEqual(t, ca.SampledPixelsCount, 1000)
}

func TestHSV(t *testing.T) {
	tests := []struct {
		name  string
		c     color.RGBA
		green bool
		earth bool
		blue  bool
	}{
		{"leaf green", leafGreen, true, false, false},
		{"soil brown", soilBrown, false, true, false},
		{"sky blue", skyBlue, false, false, true},
		{"white", white, false, false, false},
		{"black", black, false, false, false},
		{"pure red", color.RGBA{255, 0, 0, 255}, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, s, v := hsv(tt.c.R, tt.c.G, tt.c.B)
			assert.Equal(t, tt.green, isGreen(h, s, v))
			assert.Equal(t, tt.earth, isEarth(h, s, v))
			assert.Equal(t, tt.blue, isBlue(h, s, v))
		})
	}
}

func TestDetectLabelRegions(t *testing.T) {
	flat := detectLabelRegions(solid(64, 64, white))
	assert.Empty(t, flat)
	assert.NotNil(t, flat)

	// 4px black/white stripes in the top-left cell only
	img := solid(64, 64, white)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if (x/4)%2 == 0 {
				img.Set(x, y, black)
			}
		}
	}

	regions := detectLabelRegions(img)
	require.Len(t, regions, 1)
	assert.Equal(t, 0, regions[0].X)
	assert.Equal(t, 0, regions[0].Y)
	assert.Equal(t, 16, regions[0].Width)
	assert.InDelta(t, 1.0, regions[0].Confidence, 0.01)
}
