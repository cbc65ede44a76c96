package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/lukman83/ammo-bundler/internal/models"
	"golang.org/x/net/html"
)

var (
	amountRe = regexp.MustCompile(`(\d[\d,]*(?:\.\d+)?|\.\d+)\s*(¢|cents?\b|c\b)?`)
	intRe    = regexp.MustCompile(`\d[\d,]*`)
)

// PricePerRound derives the per-round price in dollars: the direct per-round
// text wins, otherwise total price divided by round count.
func PricePerRound(row models.RawRow) (float64, bool) {
	if v, ok := ParseAmount(row.PricePerRound); ok {
		return v, true
	}
	total, ok := ParseAmount(row.TotalPrice)
	if !ok {
		return 0, false
	}
	count, ok := firstInt(StripMarkup(row.Count))
	if !ok || count <= 0 {
		return 0, false
	}
	return total / float64(count), true
}

// ParseAmount parses a price string in dollars. A number directly followed by
// "¢", "c" or "cents" is read as cents ("28.5c/rd", "28.5 cents"); "$0.285"
// and bare numbers are dollars.
func ParseAmount(s string) (float64, bool) {
	s = strings.ToLower(StripMarkup(s))
	if s == "" {
		return 0, false
	}
	m := amountRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil || v < 0 {
		return 0, false
	}
	if m[2] != "" {
		v /= 100
	}
	return v, true
}

// ParseShipping maps shipping text to a rating. Any "free" marker is the
// free shipping sentinel; otherwise the first integer in 0..10 is used.
func ParseShipping(s string) *int {
	s = StripMarkup(s)
	if strings.Contains(strings.ToLower(s), "free") {
		v := models.FreeShipping
		return &v
	}
	v, ok := firstInt(s)
	if !ok || v > models.MaxShippingRating {
		return nil
	}
	return &v
}

// StripMarkup returns the visible text of an HTML fragment with entities
// decoded and whitespace collapsed.
func StripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			tt := z.Token()
			switch {
			case tt.Data == "script" || tt.Data == "style":
				if tt.Type == html.StartTagToken {
					skip++
				} else if tt.Type == html.EndTagToken && skip > 0 {
					skip--
				}
			case !inlineTags[tt.Data]:
				// block boundaries separate words
				b.WriteByte(' ')
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

var inlineTags = map[string]bool{
	"a": true, "b": true, "i": true, "em": true, "strong": true,
	"span": true, "small": true, "sub": true, "sup": true, "u": true,
}

func firstInt(s string) (int, bool) {
	m := intRe.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m, ",", ""))
	if err != nil {
		return 0, false
	}
	return n, true
}
