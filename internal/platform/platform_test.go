package platform

import (
	"context"
	"testing"

	"github.com/lukman83/ammo-bundler/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct{}

func (stubSource) Listings(ctx context.Context, q Query) ([]models.RawRow, error) {
	return nil, nil
}

func TestQueryFor(t *testing.T) {
	w := 115
	item := models.ItemRequest{Caliber: "9mm", MinQty: 500, MaxQty: 1000, BulletWeight: &w, SearchTerms: []string{"jhp"}}

	q := QueryFor(item, 6)
	assert.Equal(t, "9mm", q.Caliber)
	require.NotNil(t, q.MinShippingRating)
	assert.Equal(t, 6, *q.MinShippingRating)
	require.NotNil(t, q.MinQty)
	require.NotNil(t, q.MaxQty)
	assert.Equal(t, 500, *q.MinQty)
	assert.Equal(t, 1000, *q.MaxQty)
	assert.Equal(t, []string{"jhp"}, q.SearchTerms)

	q = QueryFor(item, 0)
	assert.Nil(t, q.MinShippingRating)
}

func TestRegistry(t *testing.T) {
	Register("stub-b", stubSource{})
	Register("stub-a", stubSource{})

	_, err := Get("stub-a")
	require.NoError(t, err)

	_, err = Get("missing")
	require.Error(t, err)

	names := List()
	assert.Subset(t, names, []string{"stub-a", "stub-b"})
}

func TestReportProgress(t *testing.T) {
	var got []string
	ctx := WithProgress(context.Background(), func(msg string) { got = append(got, msg) })
	ReportProgress(ctx, "one")
	ReportProgress(context.Background(), "ignored")
	ReportFound(ctx, 12, "9mm", "json")
	assert.Equal(t, []string{"one", "Found 12 listings for 9mm via json"}, got)
}
