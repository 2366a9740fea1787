package chart

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/benefits-data/marginal.report/internal/sweep"
)

// pngPalette mirrors the HTML palette for gonum/plot output.
var pngPalette = []color.RGBA{
	{R: 0x2C, G: 0x64, B: 0x96, A: 255},
	{R: 0x9E, G: 0xCA, B: 0xE1, A: 255},
	{R: 0x08, G: 0x51, B: 0x9C, A: 255},
	{R: 0x6B, G: 0xAE, B: 0xD6, A: 255},
	{R: 0x21, G: 0x71, B: 0xB5, A: 255},
	{R: 0xC6, G: 0xDB, B: 0xEF, A: 255},
	{R: 0x08, G: 0x30, B: 0x6B, A: 255},
	{R: 0x42, G: 0x92, B: 0xC6, A: 255},
	{R: 0xD1, G: 0xE5, B: 0xF0, A: 255},
}

// MarginalPNG saves the normalized rows as a PNG line plot, one line per
// child-count group.
func MarginalPNG(path, title string, rows []sweep.MarginalRow) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Employment income ($)"
	p.Y.Label.Text = "Marginal benefit ($)"

	for i, g := range sweep.GroupMarginal(rows) {
		pts := make(plotter.XYs, len(g.Rows))
		for j, row := range g.Rows {
			pts[j] = plotter.XY{X: row.Income, Y: row.MarginalBenefit}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("group %d: %w", g.NumChildren, err)
		}
		line.Color = pngPalette[i%len(pngPalette)]
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(seriesName(g.NumChildren), line)
	}

	p.Legend.Top = true
	return p.Save(12*vg.Inch, 6*vg.Inch, path)
}
