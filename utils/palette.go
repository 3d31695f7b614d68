package utils

import (
	"image"
	"image/color"
	"math"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"go.uber.org/zap"
)

type PaletteMethod int

const (
	PaletteMethodDominantColor PaletteMethod = iota
	PaletteMethodKMeans
)

func (m PaletteMethod) String() string {
	switch m {
	case PaletteMethodKMeans:
		return "kmeans"
	default:
		return "dominantcolor"
	}
}

type weightedColor struct {
	Col    colorful.Color
	Weight float64
}

// ExtractDominantPalette returns up to k colors, strongest first.
func ExtractDominantPalette(img image.Image, k int) []colorful.Color {
	if k <= 0 || img.Bounds().Empty() {
		return nil
	}

	candidates := dominantcolor.FindWeight(img, max(8, k*4))
	if len(candidates) == 0 {
		return nil
	}

	weighted := make([]weightedColor, 0, len(candidates))
	for _, c := range candidates {
		col, _ := colorful.MakeColor(color.RGBA{R: c.RGBA.R, G: c.RGBA.G, B: c.RGBA.B, A: 255})
		weighted = append(weighted, weightedColor{Col: col.Clamped(), Weight: max(c.Weight, 1e-6)})
	}
	return selectDiverse(weighted, k)
}

// ExtractKMeansPalette clusters a subsample of the opaque pixels of img and
// returns up to k cluster centers, most populated first.
func ExtractKMeansPalette(img image.Image, k int) []colorful.Color {
	if k <= 0 {
		return nil
	}
	b := img.Bounds()
	if b.Empty() {
		return nil
	}

	// Subsample so kmeans stays tractable on large paintings.
	const maxSamples = 12000
	step := 1
	if n := b.Dx() * b.Dy(); n > maxSamples {
		step = int(math.Sqrt(float64(n)/maxSamples)) + 1
	}

	dataset := make(clusters.Observations, 0, min(b.Dx()*b.Dy(), maxSamples))
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A == 0 {
				continue
			}
			dataset = append(dataset, clusters.Coordinates{
				float64(c.R) / 255,
				float64(c.G) / 255,
				float64(c.B) / 255,
			})
		}
	}
	if len(dataset) == 0 {
		return nil
	}

	cc, err := kmeans.New().Partition(dataset, min(k+2, len(dataset)))
	if err != nil || len(cc) == 0 {
		return nil
	}
	slices.SortStableFunc(cc, func(a, b clusters.Cluster) int {
		return len(b.Observations) - len(a.Observations)
	})

	weighted := make([]weightedColor, 0, len(cc))
	for _, c := range cc {
		if len(c.Center) < 3 || len(c.Observations) == 0 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		weighted = append(weighted, weightedColor{Col: col, Weight: float64(len(c.Observations))})
	}
	return selectDiverse(weighted, k)
}

// selectDiverse seeds with the heaviest color and then greedily adds the
// candidate farthest in Lab from everything picked so far, scaled by weight.
func selectDiverse(cands []weightedColor, k int) []colorful.Color {
	if k <= 0 || len(cands) == 0 {
		return nil
	}
	k = min(k, len(cands))

	maxW := 0.0
	seed := 0
	for i, c := range cands {
		if c.Weight > maxW {
			maxW = c.Weight
			seed = i
		}
	}

	picked := []int{seed}
	used := make([]bool, len(cands))
	used[seed] = true
	for len(picked) < k {
		best, bestScore := -1, -1.0
		for i, c := range cands {
			if used[i] {
				continue
			}
			nearest := math.MaxFloat64
			for _, p := range picked {
				nearest = min(nearest, c.Col.DistanceLab(cands[p].Col))
			}
			score := nearest * (0.55 + 0.45*math.Sqrt(c.Weight/maxW))
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 {
			break
		}
		used[best] = true
		picked = append(picked, best)
	}

	out := make([]colorful.Color, len(picked))
	for i, p := range picked {
		out[i] = cands[p].Col
	}
	return out
}

// ExtractPalette dispatches on method. An empty kmeans result falls back to
// dominantcolor.
func ExtractPalette(img image.Image, k int, method PaletteMethod, logger *zap.SugaredLogger) []colorful.Color {
	if method == PaletteMethodKMeans {
		if p := ExtractKMeansPalette(img, k); len(p) != 0 {
			return p
		}
		if logger != nil {
			logger.Warnw("kmeans returned empty palette, falling back", "fallback", PaletteMethodDominantColor)
		}
	}
	return ExtractDominantPalette(img, k)
}
