package filter

import (
	"testing"

	"github.com/lukman83/ammo-bundler/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listing(retailer, title string, shipping *int) models.Listing {
	price := 0.30
	return models.Listing{Retailer: retailer, Title: title, PricePerRound: &price, ShippingRating: shipping}
}

func TestMeetsShippingThreshold(t *testing.T) {
	for threshold := 0; threshold <= models.MaxShippingRating; threshold++ {
		assert.True(t, MeetsShippingThreshold(listing("A", "", intp(10)), threshold), "free shipping at threshold %d", threshold)
	}
	assert.True(t, MeetsShippingThreshold(listing("A", "", intp(10)), 11))

	assert.True(t, MeetsShippingThreshold(listing("A", "", intp(6)), 6))
	assert.False(t, MeetsShippingThreshold(listing("A", "", intp(5)), 6))
	assert.True(t, MeetsShippingThreshold(listing("A", "", nil), 0))
	assert.False(t, MeetsShippingThreshold(listing("A", "", nil), 1))
}

func TestSearchTerms(t *testing.T) {
	item := models.ItemRequest{Caliber: "9mm", MinQty: 50, MaxQty: 50, SearchTerms: []string{"jhp"}}
	listings := []models.Listing{
		listing("A", "115gr JHP Self Defense", nil),
		listing("A", "115gr FMJ Range", nil),
	}
	got := Apply(item, listings, 0)
	require.Len(t, got, 1)
	assert.Equal(t, "115gr JHP Self Defense", got[0].Title)

	item.SearchTerms = []string{"115GR", "range"}
	got = Apply(item, listings, 0)
	require.Len(t, got, 1)
	assert.Equal(t, "115gr FMJ Range", got[0].Title)

	item.SearchTerms = nil
	assert.Len(t, Apply(item, listings, 0), 2)
}

func TestAttributeFilters(t *testing.T) {
	brass, steel, newC := "brass", "steel", "new"
	w115, w124 := 115, 124
	mfg := "Federal"

	a := listing("A", "a", intp(8))
	a.CaseMaterial, a.Condition, a.BulletWeight, a.Manufacturer = &brass, &newC, &w115, &mfg
	b := listing("B", "b", intp(8))
	b.CaseMaterial, b.BulletWeight = &steel, &w124

	listings := []models.Listing{a, b}

	tests := []struct {
		name string
		item models.ItemRequest
		want []string
	}{
		{"no constraints", models.ItemRequest{}, []string{"A", "B"}},
		{"weight", models.ItemRequest{BulletWeight: &w124}, []string{"B"}},
		{"case", models.ItemRequest{CaseMaterial: strp("Brass")}, []string{"A"}},
		{"blank case", models.ItemRequest{CaseMaterial: strp(" ")}, []string{"A", "B"}},
		{"condition excludes missing", models.ItemRequest{Condition: strp("new")}, []string{"A"}},
		{"manufacturer case-insensitive", models.ItemRequest{Manufacturers: []string{"FEDERAL", "cci"}}, []string{"A"}},
		{"manufacturer miss", models.ItemRequest{Manufacturers: []string{"Tula"}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, l := range Apply(tt.item, listings, 0) {
				got = append(got, l.Retailer)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShippingThresholdApplied(t *testing.T) {
	listings := []models.Listing{
		listing("low", "x", intp(3)),
		listing("none", "x", nil),
		listing("ok", "x", intp(7)),
		listing("free", "x", intp(10)),
	}
	var got []string
	for _, l := range Apply(models.ItemRequest{}, listings, 6) {
		got = append(got, l.Retailer)
	}
	assert.Equal(t, []string{"ok", "free"}, got)

	assert.Len(t, Apply(models.ItemRequest{}, listings, 0), 4)
}

func intp(v int) *int       { return &v }
func strp(s string) *string { return &s }
