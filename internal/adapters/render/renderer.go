package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/samirrijal/ndfdanim/internal/core/domain"
	"github.com/samirrijal/ndfdanim/internal/core/ports"
	"github.com/samirrijal/ndfdanim/internal/pkg/contour"
	"github.com/samirrijal/ndfdanim/internal/pkg/geospatial"
)

const (
	// MarginMeters pads the dataset extent on every side.
	MarginMeters = 5000.0

	// BandAlpha is the opacity of the contour bands and legend.
	BandAlpha = 0.5

	// gridCells is the interpolation resolution along the longer side.
	gridCells = 200

	maxLegendTicks = 9
)

var (
	// Label font tiers.
	LargeLabelSize = vg.Points(8)
	SmallLabelSize = vg.Points(5)

	titleFont = font.Font{Typeface: "Liberation", Variant: "Mono", Size: vg.Points(9)}

	// Matplotlib's "spring" map runs from magenta to yellow.
	springStops = []color.Color{
		color.RGBA{R: 255, G: 0, B: 255, A: 255},
		color.RGBA{R: 255, G: 255, B: 0, A: 255},
	}
)

// Options fixes the canvas so every frame has the same pixel size.
type Options struct {
	Width  vg.Length
	Height vg.Length
	DPI    int
	// LegendWidth is carved off the right edge of the canvas.
	LegendWidth vg.Length
}

// DefaultOptions is a 6.4x4.8 inch canvas at 150 dpi.
func DefaultOptions() Options {
	return Options{Width: 6.4 * vg.Inch, Height: 4.8 * vg.Inch, DPI: 150, LegendWidth: 0.9 * vg.Inch}
}

// PixelSize returns the frame size in pixels.
func (o Options) PixelSize() (int, int) {
	return int(math.Round(float64(o.Width/vg.Inch) * float64(o.DPI))), int(math.Round(float64(o.Height/vg.Inch) * float64(o.DPI)))
}

func (o Options) validate() error {
	if o.Width <= o.LegendWidth || o.Height <= 0 || o.DPI <= 0 || o.LegendWidth <= 0 {
		return fmt.Errorf("invalid canvas %vx%v at %d dpi with %v legend", o.Width, o.Height, o.DPI, o.LegendWidth)
	}
	return nil
}

// Factory implements ports.FrameRendererFactory.
type Factory struct {
	basemap *Basemap
	proj    *geospatial.Lambert
	opts    Options
}

// NewFactory creates a renderer factory drawing over basemap.
func NewFactory(basemap *Basemap, opts Options) (*Factory, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if basemap == nil {
		basemap = &Basemap{}
	}
	return &Factory{basemap: basemap, proj: geospatial.NDFD, opts: opts}, nil
}

// NewRenderer binds a renderer to one dataset's levels and extent. The
// legend is drawn here, once.
func (f *Factory) NewRenderer(spec ports.RenderSpec) (ports.FrameRenderer, error) {
	if err := checkLevels(spec.Levels); err != nil {
		return nil, err
	}

	cmap, err := moreland.NewLuminance(springStops)
	if err != nil {
		return nil, fmt.Errorf("color map: %w", err)
	}
	cmap.SetMin(spec.Levels[0])
	cmap.SetMax(spec.Levels[len(spec.Levels)-1])
	cmap.SetAlpha(BandAlpha)

	legend := renderLegend(cmap, spec.Levels, f.opts)

	mapW := f.opts.Width - f.opts.LegendWidth
	window := fitAspect(f.window(spec.Extent), float64(mapW/f.opts.Height))
	cols, rows := gridSize(window)

	return &Renderer{
		opts:    f.opts,
		proj:    f.proj,
		levels:  append([]float64(nil), spec.Levels...),
		colors:  bandColors(cmap, spec.Levels),
		legend:  legend,
		window:  window,
		cols:    cols,
		rows:    rows,
		basemap: &basemapLayer{shapes: f.basemap.Clip(window)},
	}, nil
}

// window is the planar bounding box of the extent's corners plus margin.
func (f *Factory) window(e domain.Extent) contour.Window {
	corners := f.proj.Project([]domain.GeoPoint{
		{Lon: e.MinLon, Lat: e.MinLat},
		{Lon: e.MaxLon, Lat: e.MinLat},
		{Lon: e.MaxLon, Lat: e.MaxLat},
		{Lon: e.MinLon, Lat: e.MaxLat},
	})
	w := contour.Window{MinX: math.Inf(1), MaxX: math.Inf(-1), MinY: math.Inf(1), MaxY: math.Inf(-1)}
	for _, p := range corners {
		w.MinX = math.Min(w.MinX, p.X)
		w.MaxX = math.Max(w.MaxX, p.X)
		w.MinY = math.Min(w.MinY, p.Y)
		w.MaxY = math.Max(w.MaxY, p.Y)
	}
	w.MinX -= MarginMeters
	w.MaxX += MarginMeters
	w.MinY -= MarginMeters
	w.MaxY += MarginMeters
	return w
}

// fitAspect grows the shorter side of w so width/height equals aspect.
func fitAspect(w contour.Window, aspect float64) contour.Window {
	dx, dy := w.MaxX-w.MinX, w.MaxY-w.MinY
	if dx/dy < aspect {
		pad := (dy*aspect - dx) / 2
		w.MinX -= pad
		w.MaxX += pad
	} else {
		pad := (dx/aspect - dy) / 2
		w.MinY -= pad
		w.MaxY += pad
	}
	return w
}

func gridSize(w contour.Window) (int, int) {
	dx, dy := w.MaxX-w.MinX, w.MaxY-w.MinY
	if dx >= dy {
		return gridCells, max(1, int(math.Round(gridCells*dy/dx)))
	}
	return max(1, int(math.Round(gridCells*dx/dy))), gridCells
}

func checkLevels(levels []float64) error {
	if len(levels) < 2 {
		return fmt.Errorf("need at least 2 levels, got %d", len(levels))
	}
	for i := 1; i < len(levels); i++ {
		if !(levels[i] > levels[i-1]) {
			return fmt.Errorf("levels must be strictly increasing at %d", i)
		}
	}
	return nil
}

// LabelSize returns the label font tier.
func LabelSize(largeRegion bool) vg.Length {
	if largeRegion {
		return SmallLabelSize
	}
	return LargeLabelSize
}

// Renderer implements ports.FrameRenderer for one dataset.
type Renderer struct {
	opts    Options
	proj    *geospatial.Lambert
	levels  []float64
	colors  []color.Color
	legend  image.Image
	window  contour.Window
	cols    int
	rows    int
	basemap *basemapLayer
}

// Window returns the planar area every frame covers.
func (r *Renderer) Window() contour.Window {
	return r.window
}

// RenderFrame draws one timestep. A sample set that cannot be contoured is
// drawn with labels only and reported through ContourOmitted.
func (r *Renderer) RenderFrame(ctx context.Context, frame domain.Frame, spec ports.RenderSpec) (domain.RenderedFrame, error) {
	if err := ctx.Err(); err != nil {
		return domain.RenderedFrame{}, err
	}
	if !sameLevels(spec.Levels, r.levels) {
		return domain.RenderedFrame{}, fmt.Errorf("renderer is bound to a different scale")
	}

	points := make([]domain.PlanarPoint, len(frame.Samples))
	values := make([]float64, len(frame.Samples))
	for i, s := range frame.Samples {
		points[i] = r.proj.ToPlanar(s.Point)
		values[i] = s.Value
	}

	p := plot.New()
	p.Title.Text = spec.Description + " " + frame.Timestep
	p.Title.TextStyle.Font = titleFont
	p.BackgroundColor = landColor
	p.HideAxes()
	p.Add(r.basemap)

	omitted := false
	grid, err := contour.Interpolate(points, values, r.window, r.cols, r.rows)
	switch {
	case errors.Is(err, domain.ErrContourFailed):
		omitted = true
	case err != nil:
		return domain.RenderedFrame{}, fmt.Errorf("interpolate %q: %w", frame.Timestep, err)
	default:
		p.Add(&bandLayer{grid: grid, levels: r.levels, colors: r.colors})
	}

	labels, err := r.labels(points, values, LabelSize(spec.LargeRegion))
	if err != nil {
		return domain.RenderedFrame{}, fmt.Errorf("labels %q: %w", frame.Timestep, err)
	}
	p.Add(labels)

	p.X.Min, p.X.Max = r.window.MinX, r.window.MaxX
	p.Y.Min, p.Y.Max = r.window.MinY, r.window.MaxY

	c := vgimg.NewWith(vgimg.UseWH(r.opts.Width, r.opts.Height), vgimg.UseDPI(r.opts.DPI))
	dc := draw.New(c)
	p.Draw(draw.Crop(dc, 0, -r.opts.LegendWidth, 0, 0))
	dc.DrawImage(vg.Rectangle{
		Min: vg.Point{X: r.opts.Width - r.opts.LegendWidth, Y: 0},
		Max: vg.Point{X: r.opts.Width, Y: r.opts.Height},
	}, r.legend)

	return domain.RenderedFrame{
		Timestep:       frame.Timestep,
		Image:          c.Image(),
		Levels:         r.levels,
		ContourOmitted: omitted,
	}, nil
}

func (r *Renderer) labels(points []domain.PlanarPoint, values []float64, size vg.Length) (*plotter.Labels, error) {
	xyl := plotter.XYLabels{
		XYs:    make(plotter.XYs, len(points)),
		Labels: make([]string, len(points)),
	}
	for i, pt := range points {
		xyl.XYs[i] = plotter.XY{X: pt.X, Y: pt.Y}
		xyl.Labels[i] = strconv.FormatFloat(values[i], 'f', -1, 64)
	}
	l, err := plotter.NewLabels(xyl)
	if err != nil {
		return nil, err
	}
	for i := range l.TextStyle {
		l.TextStyle[i].Font.Size = size
		l.TextStyle[i].XAlign = draw.XCenter
		l.TextStyle[i].YAlign = draw.YCenter
	}
	return l, nil
}

func sameLevels(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// renderLegend draws the color bar with level ticks into its own raster.
func renderLegend(cmap palette.ColorMap, levels []float64, opts Options) image.Image {
	lp := plot.New()
	lp.HideX()
	lp.Y.Tick.Marker = levelTicks(levels)
	lp.Y.Tick.Label.Font.Size = vg.Points(6)
	lp.Add(&plotter.ColorBar{ColorMap: cmap, Vertical: true, Colors: len(levels) - 1})

	c := vgimg.NewWith(vgimg.UseWH(opts.LegendWidth, opts.Height), vgimg.UseDPI(opts.DPI))
	lp.Draw(draw.New(c))
	return c.Image()
}

// levelTicks labels a subset of the level boundaries with one decimal.
func levelTicks(levels []float64) plot.Ticker {
	return plot.TickerFunc(func(lo, hi float64) []plot.Tick {
		step := max(1, int(math.Ceil(float64(len(levels))/maxLegendTicks)))
		ticks := make([]plot.Tick, 0, len(levels))
		for i, v := range levels {
			t := plot.Tick{Value: v}
			if i%step == 0 || i == len(levels)-1 {
				t.Label = strconv.FormatFloat(v, 'f', 1, 64)
			}
			ticks = append(ticks, t)
		}
		return ticks
	})
}
