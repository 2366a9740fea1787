// Package chart renders sweep output as line charts: go-echarts HTML pages
// for the API chart endpoints and gonum/plot PNGs for offline reports.
package chart

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/benefits-data/marginal.report/internal/money"
	"github.com/benefits-data/marginal.report/internal/sweep"
)

// Series palette, light-to-dark blues with the primary brand blue leading.
// Adjacent entries alternate light and dark so neighbouring series stay
// distinguishable.
var palette = []string{
	"#2C6496", "#9ECAE1", "#08519C", "#6BAED6", "#2171B5",
	"#C6DBEF", "#08306B", "#4292C6", "#D1E5F0",
}

func seriesColor(i int) string { return palette[i%len(palette)] }

func seriesName(children int) string {
	if children == 1 {
		return "1 child"
	}
	return fmt.Sprintf("%d children", children)
}

// MarginalHTML writes an HTML line chart of the marginal benefit per
// additional child, one series per child count over the shared income axis.
func MarginalHTML(w io.Writer, subtitle string, rows []sweep.MarginalRow) error {
	groups := sweep.GroupMarginal(rows)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Marginal Child Benefit", Width: "1100px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Marginal benefit of an additional child", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Employment income ($)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Marginal benefit ($)"}),
	)

	if len(groups) > 0 {
		line.SetXAxis(incomeLabels(len(groups[0].Rows), func(i int) float64 {
			return groups[0].Rows[i].Income
		}))
	}
	for i, g := range groups {
		data := make([]opts.LineData, len(g.Rows))
		for j, row := range g.Rows {
			data[j] = opts.LineData{Value: row.MarginalBenefit}
		}
		line.AddSeries(seriesName(g.NumChildren), data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: seriesColor(i)}),
		)
	}
	return line.Render(w)
}

// CliffHTML writes an HTML chart of per-program benefits across the income
// axis, stacked so the cliff in total support is visible.
func CliffHTML(w io.Writer, subtitle string, rows []sweep.CliffRow) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Benefit Cliff", Width: "1100px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Benefits by program", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Employment income ($)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Annual benefit ($)"}),
	)

	line.SetXAxis(incomeLabels(len(rows), func(i int) float64 {
		return rows[i].Income
	}))
	for i, col := range cliffPrograms() {
		data := make([]opts.LineData, len(rows))
		for j, row := range rows {
			data[j] = opts.LineData{Value: col.value(row)}
		}
		line.AddSeries(col.label, data,
			charts.WithLineChartOpts(opts.LineChart{Stack: "benefits"}),
			charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: 0.6}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: seriesColor(i)}),
		)
	}
	return line.Render(w)
}

func incomeLabels(n int, income func(int) float64) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = money.FormatUSD(income(i))
	}
	return labels
}

type programColumn struct {
	label string
	value func(sweep.CliffRow) float64
}

func cliffPrograms() []programColumn {
	return []programColumn{
		{"SNAP", func(r sweep.CliffRow) float64 { return r.SNAP }},
		{"WIC", func(r sweep.CliffRow) float64 { return r.WIC }},
		{"Medicaid", func(r sweep.CliffRow) float64 { return r.Medicaid }},
		{"CHIP", func(r sweep.CliffRow) float64 { return r.CHIP }},
		{"Premium tax credit", func(r sweep.CliffRow) float64 { return r.PremiumTaxCredit }},
		{"EITC", func(r sweep.CliffRow) float64 { return r.EITC }},
		{"CTC", func(r sweep.CliffRow) float64 { return r.CTC }},
		{"CDCC", func(r sweep.CliffRow) float64 { return r.CDCC }},
		{"Housing subsidy", func(r sweep.CliffRow) float64 { return r.HousingSubsidy }},
	}
}
