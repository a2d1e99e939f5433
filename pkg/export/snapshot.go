package export

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	"github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/oasftree/pkg/taxonomy"
)

// SnapshotOptions controls outline snapshot export.
type SnapshotOptions struct {
	Path    string                 // Output path; format inferred from extension when Format empty
	Format  string                 // "svg" or "png" (case-insensitive)
	Title   string                 // Rendered in the header block
	Rows    []taxonomy.VisibleNode // Rows to draw, already filtered and expanded
	Summary taxonomy.Summary
}

// SaveSnapshot renders the visible rows of a taxonomy as an indented outline.
func SaveSnapshot(opts SnapshotOptions) error {
	if len(opts.Rows) == 0 {
		return fmt.Errorf("no categories to export")
	}

	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(opts.Path)) {
		case ".png":
			format = "png"
		default:
			format = "svg"
			if opts.Path != "" && filepath.Ext(opts.Path) == "" {
				opts.Path += ".svg"
			}
		}
	}
	if format != "svg" && format != "png" {
		return fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	layout := buildOutline(opts)
	if format == "png" {
		return renderPNG(opts.Path, layout)
	}

	file, err := os.Create(opts.Path)
	if err != nil {
		return err
	}
	defer file.Close()
	return renderSVGToWriter(file, layout)
}

type outlineRow struct {
	taxonomy.VisibleNode
	X, Y float64
}

type outlineLayout struct {
	Rows   []outlineRow
	Width  int
	Height int
	Header float64
	Title  string
	Counts string
}

const (
	rowHeight    = 22.0
	indentWidth  = 22.0
	padding      = 24.0
	headerHeight = 76.0
	charWidth    = 7.5
	maxNameRunes = 60
)

func buildOutline(opts SnapshotOptions) outlineLayout {
	title := opts.Title
	if title == "" {
		title = fmt.Sprintf("OASF %s taxonomy", opts.Summary.Type)
	}
	counts := opts.Summary.String()
	if opts.Summary.Query != "" {
		counts += fmt.Sprintf(" matching %q", opts.Summary.Query)
	}

	l := outlineLayout{Header: headerHeight, Title: title, Counts: counts}
	widest := float64(len(title)) * charWidth
	for i, r := range opts.Rows {
		row := outlineRow{
			VisibleNode: r,
			X:           padding + float64(r.Depth)*indentWidth,
			Y:           headerHeight + padding + float64(i)*rowHeight,
		}
		row.Name = truncate(r.Name, maxNameRunes)
		if w := row.X + 16 + float64(len([]rune(row.Name)))*charWidth; w > widest {
			widest = w
		}
		l.Rows = append(l.Rows, row)
	}
	l.Width = int(widest + 2*padding)
	l.Height = int(headerHeight + 2*padding + float64(len(opts.Rows))*rowHeight)
	return l
}

var (
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
	colorMatch    = color.RGBA{0xff, 0xf3, 0xbf, 0xff}
	colorGuide    = color.RGBA{0xcf, 0xd8, 0xdc, 0xff}
	colorMarker   = color.RGBA{0x6b, 0x80, 0xbf, 0xff}
	colorBackdrop = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	colorHeaderBG = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
)

func marker(r taxonomy.VisibleNode) string {
	switch {
	case !r.HasChildren:
		return "•"
	case r.IsExpanded:
		return "▾"
	default:
		return "▸"
	}
}

func renderSVGToWriter(w io.Writer, l outlineLayout) error {
	canvas := svg.New(w)
	canvas.Start(l.Width, l.Height)
	canvas.Rect(0, 0, l.Width, l.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	canvas.Roundrect(16, 16, l.Width-32, int(l.Header-24), 10, 10, fmt.Sprintf("fill:%s", css(colorHeaderBG)))
	canvas.Text(32, 42, l.Title, fmt.Sprintf("fill:%s;font-size:16px;font-family:monospace;font-weight:bold", css(colorText)))
	canvas.Text(32, 62, l.Counts, fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))

	for _, r := range l.Rows {
		x, y := int(r.X), int(r.Y)
		if r.Depth > 0 {
			canvas.Line(x-int(indentWidth)+4, y-4, x-2, y-4, fmt.Sprintf("stroke:%s;stroke-width:1", css(colorGuide)))
		}
		if r.IsMatched {
			canvas.Rect(x+12, y-15, int(float64(len([]rune(r.Name)))*charWidth)+8, int(rowHeight)-4,
				fmt.Sprintf("fill:%s", css(colorMatch)))
		}
		canvas.Text(x, y, marker(r.VisibleNode), fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorMarker)))
		style := fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorText))
		if r.IsContext {
			style = fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle))
		}
		canvas.Text(x+16, y, r.Name, style)
	}

	canvas.End()
	return nil
}

func renderPNG(path string, l outlineLayout) error {
	dc := gg.NewContext(l.Width, l.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(16, 16, float64(l.Width)-32, l.Header-24, 10)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(colorText)
	dc.DrawStringAnchored(l.Title, 32, 38, 0, 0.5)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(l.Counts, 32, 58, 0, 0.5)

	for _, r := range l.Rows {
		if r.Depth > 0 {
			dc.SetColor(colorGuide)
			dc.SetLineWidth(1)
			dc.DrawLine(r.X-indentWidth+4, r.Y-4, r.X-2, r.Y-4)
			dc.Stroke()
		}
		if r.IsMatched {
			dc.SetColor(colorMatch)
			dc.DrawRectangle(r.X+12, r.Y-15, float64(len([]rune(r.Name)))*charWidth+8, rowHeight-4)
			dc.Fill()
		}
		// basicfont has no glyphs for the triangle markers.
		dc.SetColor(colorMarker)
		if r.HasChildren {
			if r.IsExpanded {
				dc.DrawString("-", r.X, r.Y)
			} else {
				dc.DrawString("+", r.X, r.Y)
			}
		} else {
			dc.DrawCircle(r.X+3, r.Y-4, 2)
			dc.Fill()
		}
		if r.IsContext {
			dc.SetColor(colorSubtle)
		} else {
			dc.SetColor(colorText)
		}
		dc.DrawString(r.Name, r.X+16, r.Y)
	}

	return dc.SavePNG(path)
}

// --- helpers ---------------------------------------------------------------

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
