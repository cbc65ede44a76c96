package ammoseek

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/lukman83/ammo-bundler/internal/models"
)

type column int

const (
	colUnknown column = iota
	colRetailer
	colTitle
	colManufacturer
	colGrains
	colCase
	colCondition
	colPricePerRound
	colTotalPrice
	colCount
	colShipping
)

// positionalColumns is the compact layout: retailer, description, per-round
// price, shipping score. Used when the table has no recognizable header.
var positionalColumns = []column{colRetailer, colTitle, colPricePerRound, colShipping}

func classifyHeader(h string) column {
	h = strings.ToLower(strings.Join(strings.Fields(h), " "))
	switch {
	case h == "":
		return colUnknown
	case strings.Contains(h, "retailer"), strings.Contains(h, "seller"), strings.Contains(h, "store"):
		return colRetailer
	case strings.Contains(h, "descr"), strings.Contains(h, "title"), strings.Contains(h, "product"):
		return colTitle
	case strings.Contains(h, "mfg"), strings.Contains(h, "manufacturer"), strings.Contains(h, "brand"):
		return colManufacturer
	case strings.Contains(h, "grain"), h == "gr", h == "wt", strings.Contains(h, "weight"):
		return colGrains
	case strings.Contains(h, "cas"):
		return colCase
	case strings.HasPrefix(h, "cond"):
		return colCondition
	case strings.Contains(h, "/rd"), strings.Contains(h, "per round"), h == "cpr", strings.Contains(h, "¢"):
		return colPricePerRound
	case strings.Contains(h, "price"):
		return colTotalPrice
	case strings.Contains(h, "rounds"), strings.Contains(h, "count"), strings.Contains(h, "qty"):
		return colCount
	case strings.Contains(h, "ship"):
		return colShipping
	}
	return colUnknown
}

// ParseTable extracts raw rows from an AmmoSeek results page. Relative
// product links are resolved against base.
func ParseTable(html string, base *url.URL, strategy string) ([]models.RawRow, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	table := doc.Find("div#ammo_wrapper table").First()
	if table.Length() == 0 {
		table = doc.Find("table#ammo").First()
	}
	if table.Length() == 0 {
		return nil, fmt.Errorf("no results table found")
	}

	layout := headerLayout(table)

	var rows []models.RawRow
	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.ChildrenFiltered("td")
		if cells.Length() < 2 {
			// "No data available" placeholder or a group separator
			return
		}
		row := models.RawRow{Strategy: strategy}
		cells.Each(func(i int, td *goquery.Selection) {
			if i < len(layout) {
				fillCell(&row, layout[i], td, base)
			}
		})
		rows = append(rows, row)
	})
	return rows, nil
}

func headerLayout(table *goquery.Selection) []column {
	var layout []column
	recognized := 0
	table.Find("thead th").Each(func(_ int, th *goquery.Selection) {
		c := classifyHeader(th.Text())
		if c != colUnknown {
			recognized++
		}
		layout = append(layout, c)
	})
	if recognized < 2 {
		return positionalColumns
	}
	return layout
}

func fillCell(row *models.RawRow, c column, td *goquery.Selection, base *url.URL) {
	text := strings.TrimSpace(td.Text())
	switch c {
	case colRetailer:
		row.Retailer = text
		if row.Retailer == "" {
			// some retailers are shown as a logo only
			row.Retailer, _ = td.Find("img").First().Attr("alt")
		}
	case colTitle:
		link := td.Find("a").First()
		if link.Length() > 0 {
			row.Title, _ = link.Html()
			if href, ok := link.Attr("href"); ok {
				row.ProductURL = resolve(base, href)
			}
		} else {
			row.Title, _ = td.Html()
		}
	case colManufacturer:
		row.Manufacturer = text
	case colGrains:
		row.BulletWeight = text
	case colCase:
		row.CaseMaterial = text
	case colCondition:
		row.Condition = text
	case colPricePerRound:
		row.PricePerRound = text
	case colTotalPrice:
		row.TotalPrice = text
	case colCount:
		row.Count = text
	case colShipping:
		if score := td.Find(".displayScore").First(); score.Length() > 0 {
			row.Shipping = strings.TrimSpace(score.Text())
		} else {
			row.Shipping = text
		}
		if row.Shipping == "" {
			row.Shipping, _ = td.Find("[title]").First().Attr("title")
		}
	}
}

func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}
