package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lukman83/ammo-bundler/internal/models"
	"github.com/lukman83/ammo-bundler/internal/platform"
	"github.com/lukman83/ammo-bundler/internal/ui"
	"github.com/spf13/cobra"
)

var listingsCmd = &cobra.Command{
	Use:   "listings [caliber]",
	Short: "Show normalized, filtered listings for one caliber",
	Args:  cobra.ExactArgs(1),
	RunE:  runListings,
}

func init() {
	addItemFilterFlags(listingsCmd)
	listingsCmd.Flags().Int("limit", 20, "Listings to show, cheapest first (0 for all)")
	listingsCmd.Flags().String("format", "json", "Output format: json, table")
	rootCmd.AddCommand(listingsCmd)
}

// addItemFilterFlags registers the per-item filters shared by listings and
// retailers.
func addItemFilterFlags(cmd *cobra.Command) {
	cmd.Flags().Int("qty", 1, "Rounds wanted")
	cmd.Flags().Int("max-qty", 0, "Upper bound on box size (default: --qty)")
	cmd.Flags().Int("grains", 0, "Exact bullet weight")
	cmd.Flags().StringSlice("term", nil, "Search term the title must contain (repeatable)")
	cmd.Flags().String("case", "", "Case material")
	cmd.Flags().String("condition", "", "Condition")
	cmd.Flags().StringSlice("mfg", nil, "Allowed manufacturers (repeatable)")
	cmd.Flags().Int("min-shipping", 0, "Minimum shipping rating 0-10")
}

// itemFromFlags builds the item query for caliber from the shared filter flags.
func itemFromFlags(cmd *cobra.Command, caliber string) (models.ItemRequest, int, error) {
	item := models.ItemRequest{Caliber: caliber}
	item.MinQty, _ = cmd.Flags().GetInt("qty")
	item.MaxQty, _ = cmd.Flags().GetInt("max-qty")
	if item.MaxQty == 0 {
		item.MaxQty = item.MinQty
	}
	if w, _ := cmd.Flags().GetInt("grains"); w > 0 {
		item.BulletWeight = &w
	}
	item.SearchTerms, _ = cmd.Flags().GetStringSlice("term")
	if v, _ := cmd.Flags().GetString("case"); v != "" {
		item.CaseMaterial = &v
	}
	if v, _ := cmd.Flags().GetString("condition"); v != "" {
		item.Condition = &v
	}
	item.Manufacturers, _ = cmd.Flags().GetStringSlice("mfg")
	minShipping, _ := cmd.Flags().GetInt("min-shipping")

	if err := item.Validate(); err != nil {
		return item, 0, err
	}
	if minShipping < 0 || minShipping > models.MaxShippingRating {
		return item, 0, &models.ValidationError{Field: "min_shipping_rating", Reason: fmt.Sprintf("must be between 0 and %d", models.MaxShippingRating)}
	}
	return item, minShipping, nil
}

// fetchListings runs one item through the orchestrator with a spinner.
func fetchListings(cmd *cobra.Command, caliber string) ([]models.Listing, error) {
	item, minShipping, err := itemFromFlags(cmd, caliber)
	if err != nil {
		return nil, err
	}
	orch, err := newOrchestrator()
	if err != nil {
		return nil, err
	}

	spin := ui.NewSpinner()
	spin.Start(fmt.Sprintf("Fetching %s listings...", caliber))
	ctx := platform.WithProgress(context.Background(), spin.Update)
	listings, err := orch.Listings(ctx, item, minShipping)
	spin.Stop()
	if err != nil {
		return nil, err
	}
	return listings, nil
}

func runListings(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	format, _ := cmd.Flags().GetString("format")

	listings, err := fetchListings(cmd, args[0])
	if err != nil {
		return fmt.Errorf("listings failed: %w", err)
	}

	sortByPrice(listings)
	if limit > 0 && len(listings) > limit {
		listings = listings[:limit]
	}

	switch format {
	case "table":
		if len(listings) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No listings matched.")
			return nil
		}
		printListingsTable(cmd.OutOrStdout(), listings)
	default:
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(listings)
	}
	return nil
}
