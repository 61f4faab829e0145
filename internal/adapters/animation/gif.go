// Package animation composes rendered frames into a looping GIF.
package animation

import (
	"bytes"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"time"

	"github.com/samirrijal/ndfdanim/internal/core/domain"
	"github.com/samirrijal/ndfdanim/internal/core/ports"
)

// FrameDelay is how long each frame is shown.
const FrameDelay = time.Second

// GIF implements ports.AnimationEncoder.
type GIF struct{}

// NewGIF creates a GIF encoder.
func NewGIF() *GIF {
	return &GIF{}
}

// NewComposer returns an empty composer.
func (g *GIF) NewComposer() ports.AnimationComposer {
	return &Composer{}
}

// ContentType is the MIME type of encoded animations.
func (g *GIF) ContentType() string {
	return "image/gif"
}

// Encode writes the animation as an infinitely looping GIF.
func (g *GIF) Encode(anim *domain.Animation) ([]byte, error) {
	if anim == nil || len(anim.Frames) == 0 {
		return nil, domain.ErrEmptyAnimation
	}
	delay := int(anim.Delay / (10 * time.Millisecond))
	out := &gif.GIF{
		Image:     anim.Frames,
		Delay:     make([]int, len(anim.Frames)),
		LoopCount: anim.LoopCount,
	}
	for i := range out.Delay {
		out.Delay[i] = delay
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, out); err != nil {
		return nil, fmt.Errorf("encode gif: %w", err)
	}
	return buf.Bytes(), nil
}

// Composer collects frames in chronological order. Each frame is reduced to
// a paletted image as soon as it is added so only one full-color raster is
// alive at a time.
type Composer struct {
	frames    []*image.Paletted
	timesteps []string
	bounds    image.Rectangle
}

// Add appends a frame. Every frame must have the size of the first one.
func (c *Composer) Add(f domain.RenderedFrame) error {
	if f.Image == nil {
		return fmt.Errorf("frame %q has no image", f.Timestep)
	}
	b := f.Image.Bounds()
	if len(c.frames) == 0 {
		c.bounds = b
	} else if b.Dx() != c.bounds.Dx() || b.Dy() != c.bounds.Dy() {
		return fmt.Errorf("frame %q is %dx%d, expected %dx%d",
			f.Timestep, b.Dx(), b.Dy(), c.bounds.Dx(), c.bounds.Dy())
	}

	p := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), palette.Plan9)
	draw.FloydSteinberg.Draw(p, p.Bounds(), f.Image, b.Min)

	c.frames = append(c.frames, p)
	c.timesteps = append(c.timesteps, f.Timestep)
	return nil
}

// Compose returns the animation, or ErrEmptyAnimation if nothing was added.
func (c *Composer) Compose() (*domain.Animation, error) {
	if len(c.frames) == 0 {
		return nil, domain.ErrEmptyAnimation
	}
	return &domain.Animation{
		Frames:    c.frames,
		Timesteps: c.timesteps,
		Delay:     FrameDelay,
		LoopCount: 0,
	}, nil
}
