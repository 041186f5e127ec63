// Package cutout removes near-uniform photo backgrounds in process.
package cutout

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// ErrNoForeground is returned when the whole image matches the background.
var ErrNoForeground = errors.New("no foreground detected")

// Config tunes the flood fill. Distances are Euclidean RGB distances (0-441).
type Config struct {
	MaxDimension   int
	LowerThreshold float64
	UpperThreshold float64
	FeatherSigma   float64
}

// DefaultConfig suits studio style product photos.
func DefaultConfig() Config {
	return Config{MaxDimension: 1024, LowerThreshold: 30, UpperThreshold: 60, FeatherSigma: 1}
}

// Remover flood fills the background from the image border and makes it transparent.
type Remover struct {
	cfg Config
}

// NewRemover validates cfg and returns a Remover.
func NewRemover(cfg Config) (*Remover, error) {
	def := DefaultConfig()
	if cfg.MaxDimension <= 0 {
		cfg.MaxDimension = def.MaxDimension
	}
	if cfg.LowerThreshold == 0 && cfg.UpperThreshold == 0 {
		cfg.LowerThreshold, cfg.UpperThreshold = def.LowerThreshold, def.UpperThreshold
	}
	if cfg.LowerThreshold >= cfg.UpperThreshold {
		return nil, fmt.Errorf("lower threshold must be less than upper threshold")
	}
	if cfg.FeatherSigma < 0 {
		return nil, fmt.Errorf("feather sigma cannot be negative")
	}
	return &Remover{cfg: cfg}, nil
}

// Remove returns a PNG with the border-connected background made transparent.
func (r *Remover) Remove(ctx context.Context, data []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	b := src.Bounds()
	if b.Dx() > r.cfg.MaxDimension || b.Dy() > r.cfg.MaxDimension {
		src = imaging.Fit(src, r.cfg.MaxDimension, r.cfg.MaxDimension, imaging.Lanczos)
	}
	img := imaging.Clone(src)

	mask, kept := r.foregroundMask(img)
	if kept == 0 {
		return nil, ErrNoForeground
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var alpha image.Image = mask
	if r.cfg.FeatherSigma > 0 {
		alpha = imaging.Blur(mask, r.cfg.FeatherSigma)
	}
	applyMask(img, alpha)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// foregroundMask marks background pixels reachable from the border. Pixels whose distance
// to the background colour lies between the thresholds keep partial opacity.
func (r *Remover) foregroundMask(img *image.NRGBA) (*image.Gray, int) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	bg := borderColor(img)
	mask := image.NewGray(image.Rect(0, 0, w, h))
	for i := range mask.Pix {
		mask.Pix[i] = 255
	}

	visited := make([]bool, w*h)
	queue := make([]int, 0, 2*(w+h))
	push := func(x, y int) {
		idx := y*w + x
		if visited[idx] {
			return
		}
		visited[idx] = true
		d := distance(img.NRGBAAt(x, y), bg)
		if d >= r.cfg.UpperThreshold {
			return
		}
		mask.Pix[idx] = r.opacity(d)
		queue = append(queue, idx)
	}
	for x := 0; x < w; x++ {
		push(x, 0)
		push(x, h-1)
	}
	for y := 0; y < h; y++ {
		push(0, y)
		push(w-1, y)
	}
	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		x, y := idx%w, idx/w
		if x > 0 {
			push(x-1, y)
		}
		if x < w-1 {
			push(x+1, y)
		}
		if y > 0 {
			push(x, y-1)
		}
		if y < h-1 {
			push(x, y+1)
		}
	}

	kept := 0
	for _, v := range mask.Pix {
		if v == 255 {
			kept++
		}
	}
	return mask, kept
}

func (r *Remover) opacity(d float64) uint8 {
	if d <= r.cfg.LowerThreshold {
		return 0
	}
	ratio := (d - r.cfg.LowerThreshold) / (r.cfg.UpperThreshold - r.cfg.LowerThreshold)
	return uint8(math.Round(ratio * 255))
}

func borderColor(img *image.NRGBA) color.NRGBA {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	var sr, sg, sb, n float64
	add := func(x, y int) {
		c := img.NRGBAAt(x, y)
		sr += float64(c.R)
		sg += float64(c.G)
		sb += float64(c.B)
		n++
	}
	for x := 0; x < w; x++ {
		add(x, 0)
		add(x, h-1)
	}
	for y := 1; y < h-1; y++ {
		add(0, y)
		add(w-1, y)
	}
	return color.NRGBA{R: uint8(sr / n), G: uint8(sg / n), B: uint8(sb / n), A: 255}
}

func distance(c, bg color.NRGBA) float64 {
	dr := float64(c.R) - float64(bg.R)
	dg := float64(c.G) - float64(bg.G)
	db := float64(c.B) - float64(bg.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

func applyMask(img *image.NRGBA, mask image.Image) {
	b := img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			m, _, _, _ := mask.At(x, y).RGBA()
			c := img.NRGBAAt(x, y)
			c.A = uint8(uint32(c.A) * (m >> 8) / 255)
			img.SetNRGBA(x, y, c)
		}
	}
}
