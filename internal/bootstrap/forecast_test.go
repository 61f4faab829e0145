package bootstrap

import (
	"testing"

	"gonum.org/v1/plot/vg"

	"github.com/samirrijal/ndfdanim/internal/adapters/render"
	"github.com/samirrijal/ndfdanim/internal/pkg/config"
)

func TestRenderOptions(t *testing.T) {
	opts := RenderOptions(config.RenderConfig{WidthInches: 8, HeightInches: 6, DPI: 100})
	w, h := opts.PixelSize()
	if w != 800 || h != 600 {
		t.Errorf("expected 800x600, got %dx%d", w, h)
	}
	if opts.LegendWidth != render.DefaultOptions().LegendWidth {
		t.Errorf("legend width changed: %v", opts.LegendWidth)
	}
}

func TestRenderOptions_ZeroKeepsDefaults(t *testing.T) {
	opts := RenderOptions(config.RenderConfig{})
	def := render.DefaultOptions()
	if opts != def {
		t.Errorf("expected defaults %+v, got %+v", def, opts)
	}
	if opts.Width != 6.4*vg.Inch {
		t.Errorf("unexpected width %v", opts.Width)
	}
}
