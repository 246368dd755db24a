package vision

import (
	"image"
	"math"

	"github.com/ppiankov/greenlens/internal/model"
)

const (
	minCellSize        = 16
	gridDivisions      = 8
	textStdDevFloor    = 40.0
	regionStdDevCutoff = 128.0
)

// detectLabelRegions marks grid cells whose luminance spread looks like
// printed text. Flat areas and smooth gradients are skipped.
func detectLabelRegions(img image.Image) []model.LabelRegion {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	regions := []model.LabelRegion{}
	if w == 0 || h == 0 {
		return regions
	}

	cell := minCellSize
	if side := min(w, h) / gridDivisions; side > cell {
		cell = side
	}

	for y0 := 0; y0 < h; y0 += cell {
		for x0 := 0; x0 < w; x0 += cell {
			cw, ch := min(cell, w-x0), min(cell, h-y0)
			sd := luminanceStdDev(img, b.Min.X+x0, b.Min.Y+y0, cw, ch)
			if sd < textStdDevFloor {
				continue
			}
			regions = append(regions, model.LabelRegion{
				X:          x0,
				Y:          y0,
				Width:      cw,
				Height:     ch,
				Confidence: math.Min(1, math.Round(sd/regionStdDevCutoff*100)/100),
			})
		}
	}

	return regions
}

func luminanceStdDev(img image.Image, x0, y0, w, h int) float64 {
	var sum, sumSq float64
	n := 0
	for y := y0; y < y0+h; y += 2 {
		for x := x0; x < x0+w; x += 2 {
			r, g, b, _ := img.At(x, y).RGBA()
			l := (0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8))
			sum += l
			sumSq += l * l
			n++
		}
	}
	if n == 0 {
		return 0
	}
	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < 0 {
		return 0
	}
	return math.Sqrt(variance)
}
