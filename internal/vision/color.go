package vision

import (
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/ppiankov/greenlens/internal/model"
)

const dominantColorCount = 5

// hsv converts 8-bit RGB to hue in degrees and saturation/value in [0,1]
func hsv(r, g, b uint8) (h, s, v float64) {
	rf, gf, bf := float64(r)/255, float64(g)/255, float64(b)/255
	hi := math.Max(rf, math.Max(gf, bf))
	lo := math.Min(rf, math.Min(gf, bf))
	delta := hi - lo

	v = hi
	if hi > 0 {
		s = delta / hi
	}
	if delta == 0 {
		return 0, s, v
	}

	switch hi {
	case rf:
		h = 60 * math.Mod((gf-bf)/delta, 6)
	case gf:
		h = 60 * ((bf-rf)/delta + 2)
	default:
		h = 60 * ((rf-gf)/delta + 4)
	}
	if h < 0 {
		h += 360
	}
	return h, s, v
}

func isGreen(h, s, v float64) bool {
	return h >= 75 && h <= 165 && s >= 0.2 && v >= 0.15
}

func isEarth(h, s, v float64) bool {
	return h >= 15 && h <= 50 && s >= 0.2 && s <= 0.85 && v >= 0.15 && v <= 0.75
}

func isBlue(h, s, v float64) bool {
	return h >= 180 && h <= 250 && s >= 0.2 && v >= 0.25
}

// sampleStep returns the pixel stride that keeps a w×h scan within maxSamples
func sampleStep(w, h, maxSamples int) int {
	total := w * h
	if maxSamples <= 0 || total <= maxSamples {
		return 1
	}
	return int(math.Ceil(math.Sqrt(float64(total) / float64(maxSamples))))
}

// analyzeColors classifies a strided sample of opaque pixels by palette
func analyzeColors(img image.Image, maxSamples int) model.ColorAnalysis {
	b := img.Bounds()
	ca := model.ColorAnalysis{
		Width:          b.Dx(),
		Height:         b.Dy(),
		DominantColors: []model.ColorShare{},
	}

	step := sampleStep(b.Dx(), b.Dy(), maxSamples)
	buckets := make(map[uint32]int)
	var green, earth, blue, sampled int

	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r16, g16, b16, a16 := img.At(x, y).RGBA()
			if a16 == 0 {
				continue
			}
			r, g, bl := uint8(r16>>8), uint8(g16>>8), uint8(b16>>8)
			sampled++

			h, s, v := hsv(r, g, bl)
			switch {
			case isGreen(h, s, v):
				green++
			case isEarth(h, s, v):
				earth++
			case isBlue(h, s, v):
				blue++
			}

			buckets[uint32(r>>5)<<16|uint32(g>>5)<<8|uint32(bl>>5)]++
		}
	}

	ca.SampledPixelsCount = sampled
	if sampled == 0 {
		return ca
	}

	ca.GreenPercentage = percent(green, sampled)
	ca.EarthPercentage = percent(earth, sampled)
	ca.BluePercentage = percent(blue, sampled)
	ca.NaturePalette = percent(green+earth+blue, sampled)
	ca.DominantColors = dominantColors(buckets, sampled)

	return ca
}

func dominantColors(buckets map[uint32]int, sampled int) []model.ColorShare {
	keys := make([]uint32, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if buckets[keys[i]] != buckets[keys[j]] {
			return buckets[keys[i]] > buckets[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > dominantColorCount {
		keys = keys[:dominantColorCount]
	}

	shares := make([]model.ColorShare, 0, len(keys))
	for _, k := range keys {
		// bucket centre
		r := uint8(k>>16)<<5 | 16
		g := uint8(k>>8)<<5 | 16
		b := uint8(k)<<5 | 16
		shares = append(shares, model.ColorShare{
			Hex:        fmt.Sprintf("#%02X%02X%02X", r, g, b),
			Percentage: percent(buckets[k], sampled),
		})
	}
	return shares
}

func percent(n, total int) float64 {
	return math.Round(float64(n)/float64(total)*10000) / 100
}
