package cmd

import (
	"fmt"
	"io"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/lukman83/ammo-bundler/internal/bundle"
	"github.com/lukman83/ammo-bundler/internal/models"
)

// printResultTable prints the winning bundle as a table.
func printResultTable(w io.Writer, res *models.OptimizationResult) {
	fmt.Fprintf(w, "Cheapest bundle: %s  (%s, anchored on %s)\n", formatPrice(res.TotalCost), res.Strategy, res.Retailer)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Caliber", "Retailer", "Mfg", "Gr", "Qty", "$/rd", "Line", "Ship"})
	for i, it := range res.Items {
		t.AppendRow(table.Row{
			i + 1,
			it.Caliber,
			truncate(it.Retailer, 24),
			truncate(deref(it.Manufacturer), 16),
			intOrDash(it.BulletWeight),
			it.Quantity,
			formatUnit(it.UnitPrice),
			formatPrice(it.TotalPrice),
			formatShipping(it.ShippingRating),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "", "Total", formatPrice(res.TotalCost), ""})
	t.SetStyle(table.StyleRounded)
	t.Render()

	for i, it := range res.Items {
		if it.ProductURL != nil {
			fmt.Fprintf(w, " %d. %s\n", i+1, cleanURL(*it.ProductURL))
		}
	}
}

// printListingsTable prints normalized listings in a card layout.
func printListingsTable(w io.Writer, listings []models.Listing) {
	for i, l := range listings {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, " %d. %s\n", i+1, truncate(l.Title, 80))

		line := "    Price: "
		if l.PricePerRound != nil {
			line += formatUnit(*l.PricePerRound) + "/rd"
		} else {
			line += "-"
		}
		line += "  |  Retailer: " + l.Retailer
		line += "  |  Shipping: " + formatShipping(l.ShippingRating)
		fmt.Fprintln(w, line)

		var attrs []string
		if l.Manufacturer != nil {
			attrs = append(attrs, *l.Manufacturer)
		}
		if l.BulletWeight != nil {
			attrs = append(attrs, fmt.Sprintf("%dgr", *l.BulletWeight))
		}
		if l.CaseMaterial != nil {
			attrs = append(attrs, *l.CaseMaterial)
		}
		if l.Condition != nil {
			attrs = append(attrs, *l.Condition)
		}
		if len(attrs) > 0 {
			fmt.Fprintf(w, "    [%s]\n", strings.Join(attrs, "] ["))
		}
		if l.ProductURL != nil {
			fmt.Fprintf(w, "    %s\n", cleanURL(*l.ProductURL))
		}
	}
}

// printPlans lists every feasible plan in evaluation order, cheapest marked.
func printPlans(w io.Writer, plans []bundle.Plan) {
	best, ok := bundle.Best(plans)
	if !ok {
		fmt.Fprintln(w, "No feasible plans.")
		return
	}
	fmt.Fprintf(w, "Feasible plans (%d):\n", len(plans))

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"", "Retailer", "Strategy", "Cost"})
	for _, p := range plans {
		mark := ""
		if p.Retailer == best.Retailer && p.Strategy == best.Strategy {
			mark = "*"
		}
		t.AppendRow(table.Row{mark, p.Retailer, p.Strategy, formatPrice(bundle.Round2(p.Cost))})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

// formatPrice formats dollars as "$1,234.56".
func formatPrice(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	whole, frac, _ := strings.Cut(s, ".")
	neg := strings.HasPrefix(whole, "-")
	whole = strings.TrimPrefix(whole, "-")

	var parts []string
	for len(whole) > 3 {
		parts = append([]string{whole[len(whole)-3:]}, parts...)
		whole = whole[:len(whole)-3]
	}
	parts = append([]string{whole}, parts...)

	out := "$" + strings.Join(parts, ",") + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}

// formatUnit formats a per-round price in cents below a dollar, "$1.05" above.
func formatUnit(v float64) string {
	if v < 1 {
		return strconv.FormatFloat(math.Round(v*10000)/100, 'f', -1, 64) + "¢"
	}
	return fmt.Sprintf("$%.2f", v)
}

func formatShipping(r *int) string {
	switch {
	case r == nil:
		return "-"
	case *r == models.FreeShipping:
		return "free"
	default:
		return fmt.Sprintf("%d/10", *r)
	}
}

func intOrDash(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// cleanURL strips tracking query params and returns just the product page URL.
func cleanURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.RawQuery = ""
	return u.String()
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
