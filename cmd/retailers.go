package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/lukman83/ammo-bundler/internal/models"
	"github.com/spf13/cobra"
)

var retailersCmd = &cobra.Command{
	Use:   "retailers [caliber]",
	Short: "Show which retailers carry a caliber and their cheapest price",
	Args:  cobra.ExactArgs(1),
	RunE:  runRetailers,
}

func init() {
	addItemFilterFlags(retailersCmd)
	rootCmd.AddCommand(retailersCmd)
}

type retailerSummary struct {
	retailer string
	count    int
	cheapest float64
	free     bool
}

func runRetailers(cmd *cobra.Command, args []string) error {
	listings, err := fetchListings(cmd, args[0])
	if err != nil {
		return fmt.Errorf("retailers failed: %w", err)
	}

	summaries := summarizeRetailers(listings)
	if len(summaries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No retailers found.")
		return nil
	}
	printRetailers(cmd.OutOrStdout(), args[0], len(listings), summaries)
	return nil
}

// summarizeRetailers groups listings by retailer, cheapest retailer first.
// Ties keep retailer name order.
func summarizeRetailers(listings []models.Listing) []retailerSummary {
	byName := make(map[string]*retailerSummary)
	for _, l := range listings {
		if l.PricePerRound == nil {
			continue
		}
		s, ok := byName[l.Retailer]
		if !ok {
			s = &retailerSummary{retailer: l.Retailer, cheapest: *l.PricePerRound}
			byName[l.Retailer] = s
		}
		s.count++
		if *l.PricePerRound < s.cheapest {
			s.cheapest = *l.PricePerRound
		}
		if l.HasFreeShipping() {
			s.free = true
		}
	}

	out := make([]retailerSummary, 0, len(byName))
	for _, s := range byName {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].cheapest != out[j].cheapest {
			return out[i].cheapest < out[j].cheapest
		}
		return out[i].retailer < out[j].retailer
	})
	return out
}

func printRetailers(w io.Writer, caliber string, sampled int, summaries []retailerSummary) {
	fmt.Fprintf(w, "Retailers for \"%s\" (%d listings matched):\n\n", caliber, sampled)
	for i, s := range summaries {
		free := ""
		if s.free {
			free = "  [free shipping]"
		}
		fmt.Fprintf(w, " %2d. %-32s from %-8s (%d listings)%s\n", i+1, truncate(s.retailer, 32), formatUnit(s.cheapest), s.count, free)
	}
}

// sortByPrice orders listings cheapest first, keeping source order on ties.
func sortByPrice(listings []models.Listing) {
	sort.SliceStable(listings, func(i, j int) bool {
		pi, pj := listings[i].PricePerRound, listings[j].PricePerRound
		if pi == nil || pj == nil {
			return pi != nil && pj == nil
		}
		return *pi < *pj
	})
}
