// Package render writes comparison results as terminal tables.
package render

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/MikeSquared-Agency/Quotes/internal/catalog"
	"github.com/MikeSquared-Agency/Quotes/internal/scoring"
	"github.com/MikeSquared-Agency/Quotes/internal/session"
)

type Options struct {
	UseColors bool
}

var printer = message.NewPrinter(language.English)

// Money formats a price with thousands separators, e.g. "$12,500.00".
func Money(v float64) string {
	sign := ""
	if v < 0 {
		sign, v = "-", -v
	}
	cents := int64(math.Round(v * 100))
	return sign + printer.Sprintf("$%d", cents/100) + fmt.Sprintf(".%02d", cents%100)
}

type palette struct {
	good, bad, dim func(...any) string
}

func (o Options) palette() palette {
	if !o.UseColors {
		return palette{good: fmt.Sprint, bad: fmt.Sprint, dim: fmt.Sprint}
	}
	return palette{
		good: color.New(color.FgGreen, color.Bold).SprintFunc(),
		bad:  color.New(color.FgRed, color.Bold).SprintFunc(),
		dim:  color.New(color.FgHiBlack).SprintFunc(),
	}
}

func newTable(w io.Writer, headers []string, align tw.Align) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = align
	})
	return table
}

func flush(table *tablewriter.Table, rows [][]string) error {
	defer func() { _ = table.Close() }()
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

// Summary writes the selection rows, totals and vendor columns.
func Summary(w io.Writer, s session.Summary, opts Options) error {
	p := opts.palette()

	var rows [][]string
	for _, r := range s.Rows {
		if !r.Selected {
			rows = append(rows, []string{r.EquipmentName, strconv.Itoa(r.Quantity), p.dim("-"), "", "", "", ""})
			continue
		}
		rows = append(rows, []string{
			r.EquipmentName,
			strconv.Itoa(r.Quantity),
			r.VendorName,
			r.Brand + " " + r.Model,
			fmt.Sprintf("%.2f", r.Score),
			Money(r.UnitPrice),
			Money(r.Cost),
		})
	}
	table := newTable(w, []string{"Equipment", "Qty", "Vendor", "Product", s.Criterion.Label(), "Unit Price", "Cost"}, tw.AlignLeft)
	if err := flush(table, rows); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Scenario: %s  Selected: %d/%d  Average score: %.2f  Total cost: %s\n",
		s.Scenario, s.SelectedCount, len(s.Rows), s.AverageScore, Money(s.TotalCost)); err != nil {
		return err
	}
	if s.CustomWeights {
		if _, err := fmt.Fprintln(w, "Custom weights applied"); err != nil {
			return err
		}
	}

	if len(s.Vendors) == 0 {
		return nil
	}
	return vendorTable(w, s.Vendors, opts)
}

func vendorTable(w io.Writer, vendors []session.VendorColumn, opts Options) error {
	p := opts.palette()
	var rows [][]string
	for _, v := range vendors {
		name, avg := v.Name, fmt.Sprintf("%.2f", v.AverageScore)
		if v.Highest {
			name, avg = p.good(name+" *"), p.good(avg)
		}
		rows = append(rows, []string{name, avg, Money(v.TotalCost)})
	}
	return flush(newTable(w, []string{"Vendor", "Avg Score", "Total Cost"}, tw.AlignRight), rows)
}

// Vendors writes per-vendor averages on c and total costs against plan.
func Vendors(w io.Writer, cat *catalog.Catalog, c catalog.Criterion, weights *scoring.Weights, plan scoring.QuantityPlan, opts Options) error {
	best, averages := scoring.BestVendorFor(cat, c, weights)
	var cols []session.VendorColumn
	for _, v := range cat.Vendors() {
		cols = append(cols, session.VendorColumn{
			VendorID:     v.ID,
			Name:         v.Name,
			AverageScore: averages[v.ID],
			TotalCost:    scoring.VendorTotalCost(cat, v.ID, plan, nil),
			Highest:      v.ID == best,
		})
	}
	return vendorTable(w, cols, opts)
}

// Weights writes a weight vector with its running total. An unusable total
// is flagged with how much is missing or over.
func Weights(w io.Writer, labels [catalog.NumWeighted]string, v scoring.WeightVector, opts Options) error {
	p := opts.palette()
	var rows [][]string
	for i, c := range catalog.WeightedCriteria() {
		rows = append(rows, []string{c.Code(), labels[i], strconv.Itoa(v.Get(c)) + "%"})
	}
	if err := flush(newTable(w, []string{"Code", "Criterion", "Weight"}, tw.AlignLeft), rows); err != nil {
		return err
	}

	check := v.Check()
	var line string
	switch {
	case check.Valid:
		line = p.good(fmt.Sprintf("Total: %d%% (ready to apply)", check.Total))
	case check.Deficit > 0:
		line = p.bad(fmt.Sprintf("Total: %d%% (%d%% remaining)", check.Total, check.Deficit))
	case check.Deficit < 0:
		line = p.bad(fmt.Sprintf("Total: %d%% (%d%% over)", check.Total, -check.Deficit))
	default:
		line = p.bad(fmt.Sprintf("Total: %d%% (negative entries)", check.Total))
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

// Scenarios lists the selectable scenarios.
func Scenarios(w io.Writer, scenarios []scoring.Scenario) error {
	var rows [][]string
	for _, s := range scenarios {
		crit := ""
		if s.Kind == scoring.CriterionBest || s.Kind == scoring.BestVendor {
			crit = s.Criterion.Code()
		}
		rows = append(rows, []string{string(s.ID), s.Label, s.Kind.String(), crit, s.Description})
	}
	return flush(newTable(w, []string{"ID", "Label", "Kind", "Criterion", "Description"}, tw.AlignLeft), rows)
}

// Breakdown writes the factors behind one product's overall score.
func Breakdown(w io.Writer, r scoring.ScoringResult, opts Options) error {
	p := opts.palette()
	var rows [][]string
	for _, f := range r.Factors {
		rows = append(rows, []string{
			f.Name,
			fmt.Sprintf("%.2f", f.Score),
			fmt.Sprintf("%.0f%%", f.Weight*100),
			fmt.Sprintf("%.3f", f.Weighted),
		})
	}
	if err := flush(newTable(w, []string{"Criterion", "Score", "Weight", "Weighted"}, tw.AlignRight), rows); err != nil {
		return err
	}
	note := ""
	if r.Precomputed {
		note = p.dim(" (catalog overall score)")
	}
	_, err := fmt.Fprintf(w, "%s/%s overall: %.2f%s\n", r.EquipmentID, r.VendorID, r.TotalScore, note)
	return err
}

// Frontier lists the products on the price/score frontier.
func Frontier(w io.Writer, points []scoring.FrontierPoint) error {
	var rows [][]string
	for _, pt := range points {
		rows = append(rows, []string{pt.VendorName, pt.Brand + " " + pt.Model, fmt.Sprintf("%.2f", pt.Score), Money(pt.Cost)})
	}
	return flush(newTable(w, []string{"Vendor", "Product", "Score", "All-in Price"}, tw.AlignLeft), rows)
}
