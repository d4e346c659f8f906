// Package export renders an ego graph outside the terminal: radial SVG and
// PNG snapshots, and the JSON report read by scripts and agents.
package export

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"git.sr.ht/~sbinet/gg"
	"github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/vanderheijden86/pantheon/pkg/debug"
	"github.com/vanderheijden86/pantheon/pkg/layout"
	"github.com/vanderheijden86/pantheon/pkg/metrics"
	"github.com/vanderheijden86/pantheon/pkg/model"
	"github.com/vanderheijden86/pantheon/pkg/rings"
)

// DefaultSnapshotSize is the canvas used when SnapshotOptions.Size is zero.
var DefaultSnapshotSize = layout.Size{W: 960, H: 900}

// ErrUnsupportedFormat is returned for snapshot paths that are neither SVG
// nor PNG.
var ErrUnsupportedFormat = errors.New("unsupported snapshot format")

const (
	nodeW    = 132.0
	nodeH    = 34.0
	centralW = 168.0
	centralH = 46.0
)

var (
	colorBackdrop = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	colorHeaderBG = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
	colorStroke   = color.RGBA{0x22, 0x22, 0x22, 0xff}
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
	colorCentral  = color.RGBA{0xd8, 0xcc, 0xfb, 0xff}
	colorPlain    = color.RGBA{0xe3, 0xec, 0xfb, 0xff}
	colorRelated  = color.RGBA{0xc9, 0xf2, 0xd4, 0xff}
	colorSibling  = color.RGBA{0xc8, 0xee, 0xf7, 0xff}
	colorMuted    = color.RGBA{0xee, 0xee, 0xee, 0xff}
)

// edge colours per ring
var sectionColors = map[model.Section]color.RGBA{
	model.SectionParents:  {0x6b, 0x80, 0xbf, 0xff},
	model.SectionSiblings: {0x8a, 0x9a, 0xa8, 0xff},
	model.SectionConsorts: {0xc0, 0x6b, 0x9a, 0xff},
	model.SectionChildren: {0x5a, 0xa0, 0x6e, 0xff},
}

// SnapshotOptions controls a snapshot export.
type SnapshotOptions struct {
	Path   string      // Output path; format inferred from extension when Format is empty
	Format string      // "svg" or "png", case-insensitive
	Title  string      // Optional heading; defaults to the central name
	Size   layout.Size // Canvas in pixels
}

type sceneNode struct {
	label   string
	role    string
	x, y    float64 // centre
	w, h    float64
	fill    color.RGBA
	edge    color.RGBA
	central bool
}

type scene struct {
	width, height int
	title         string
	subtitle      string
	nodes         []sceneNode // central first
}

// SnapshotFormat resolves the output format of opts.
func SnapshotFormat(opts SnapshotOptions) (string, error) {
	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		format = strings.ToLower(strings.TrimPrefix(filepath.Ext(opts.Path), "."))
	}
	switch format {
	case "svg", "png":
		return format, nil
	}
	return "", fmt.Errorf("%w %q (want svg or png)", ErrUnsupportedFormat, format)
}

// SaveSnapshot renders res radially into opts.Path.
func SaveSnapshot(res rings.Result, opts SnapshotOptions) error {
	defer metrics.Timer(metrics.SnapshotRender)()

	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}
	if res.Central.Slug == "" {
		return fmt.Errorf("no central entity to render")
	}
	format, err := SnapshotFormat(opts)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(opts.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create parent dir: %w", err)
		}
	}

	sc := buildScene(res, opts)
	f, err := os.Create(opts.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch format {
	case "svg":
		err = renderSVG(f, sc)
	default:
		err = renderPNG(f, sc)
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", opts.Path, err)
	}
	debug.Log("export: wrote %s snapshot of %s to %s", format, res.Central.Slug, opts.Path)
	return f.Close()
}

// SaveSnapshots renders res to every path concurrently. The first failure
// cancels the remaining renders.
func SaveSnapshots(ctx context.Context, res rings.Result, title string, paths []string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return SaveSnapshot(res, SnapshotOptions{Path: p, Title: title})
		})
	}
	return g.Wait()
}

func buildScene(res rings.Result, opts SnapshotOptions) scene {
	size := opts.Size
	if size.W <= 0 || size.H <= 0 {
		size = DefaultSnapshotSize
	}
	title := opts.Title
	if title == "" {
		title = res.Central.Name
	}
	sc := scene{
		width:  size.W,
		height: size.H,
		title:  title,
		subtitle: fmt.Sprintf("%s - %d parents, %d fratrie, %d consorts, %d enfants", res.Central.Culture,
			len(res.Parents), len(res.Siblings), len(res.Consorts), len(res.Children)),
	}
	for _, p := range layout.DefaultRadial().Place(res, size) {
		n := sceneNode{
			label: p.Node.Entity.Name,
			x:     float64(p.X),
			y:     float64(p.Y),
			w:     nodeW,
			h:     nodeH,
		}
		if p.Central() {
			n.central = true
			n.w, n.h = centralW, centralH
			n.fill = colorCentral
			n.role = "centre"
		} else {
			n.fill = highlightColor(p.Node.Highlight)
			n.edge = sectionColors[p.Section]
			n.role = p.Section.Role()
		}
		sc.nodes = append(sc.nodes, n)
	}
	return sc
}

func highlightColor(h rings.Highlight) color.RGBA {
	switch h {
	case rings.HighlightRelated:
		return colorRelated
	case rings.HighlightSibling:
		return colorSibling
	case rings.HighlightMuted:
		return colorMuted
	}
	return colorPlain
}

func renderSVG(w io.Writer, sc scene) error {
	canvas := svg.New(w)
	canvas.Start(sc.width, sc.height)
	canvas.Rect(0, 0, sc.width, sc.height, "fill:"+css(colorBackdrop))
	canvas.Roundrect(16, 16, sc.width-32, 56, 10, 10, "fill:"+css(colorHeaderBG))
	canvas.Text(32, 40, sc.title, fmt.Sprintf("fill:%s;font-size:16px;font-family:sans-serif;font-weight:bold", css(colorText)))
	canvas.Text(32, 60, sc.subtitle, fmt.Sprintf("fill:%s;font-size:12px;font-family:sans-serif", css(colorSubtle)))

	if len(sc.nodes) == 0 {
		canvas.End()
		return nil
	}
	c := sc.nodes[0]
	for _, n := range sc.nodes[1:] {
		canvas.Line(int(c.x), int(c.y), int(n.x), int(n.y), fmt.Sprintf("stroke:%s;stroke-width:1.5", css(n.edge)))
	}
	for _, n := range sc.nodes {
		x, y := int(n.x-n.w/2), int(n.y-n.h/2)
		canvas.Roundrect(x, y, int(n.w), int(n.h), 8, 8,
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1.2", css(n.fill), css(colorStroke)))
		weight := "normal"
		if n.central {
			weight = "bold"
		}
		canvas.Text(int(n.x), int(n.y)+1, truncate(n.label, 18),
			fmt.Sprintf("fill:%s;font-size:13px;font-family:sans-serif;font-weight:%s;text-anchor:middle", css(colorText), weight))
		canvas.Text(int(n.x), int(n.y)+13, n.role,
			fmt.Sprintf("fill:%s;font-size:9px;font-family:sans-serif;text-anchor:middle", css(colorSubtle)))
	}
	canvas.End()
	return nil
}

func renderPNG(w io.Writer, sc scene) error {
	dc := gg.NewContext(sc.width, sc.height)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(16, 16, float64(sc.width)-32, 56, 10)
	dc.Fill()

	// basicfont only covers ASCII, so labels lose their accents here.
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(colorText)
	dc.DrawStringAnchored(asciiLabel(sc.title), 32, 36, 0, 0.5)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(asciiLabel(sc.subtitle), 32, 56, 0, 0.5)

	if len(sc.nodes) > 0 {
		c := sc.nodes[0]
		dc.SetLineWidth(1.5)
		for _, n := range sc.nodes[1:] {
			dc.SetColor(n.edge)
			dc.DrawLine(c.x, c.y, n.x, n.y)
			dc.Stroke()
		}
	}
	for _, n := range sc.nodes {
		x, y := n.x-n.w/2, n.y-n.h/2
		dc.SetColor(n.fill)
		dc.DrawRoundedRectangle(x, y, n.w, n.h, 8)
		dc.Fill()
		dc.SetColor(colorStroke)
		dc.SetLineWidth(1.2)
		dc.DrawRoundedRectangle(x, y, n.w, n.h, 8)
		dc.Stroke()

		dc.SetColor(colorText)
		dc.DrawStringAnchored(asciiLabel(truncate(n.label, 18)), n.x, n.y-5, 0.5, 0.5)
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored(asciiLabel(n.role), n.x, n.y+9, 0.5, 0.5)
	}
	return dc.EncodePNG(w)
}

// asciiLabel strips combining marks so basicfont can draw the label.
func asciiLabel(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
