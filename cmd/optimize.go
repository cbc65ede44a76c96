package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lukman83/ammo-bundler/internal/bundle"
	"github.com/lukman83/ammo-bundler/internal/models"
	"github.com/lukman83/ammo-bundler/internal/platform"
	"github.com/lukman83/ammo-bundler/internal/ui"
	"github.com/spf13/cobra"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Find the cheapest bundle for a shopping list",
	Long: "Find the cheapest bundle for a shopping list.\n\n" +
		"The list comes from a JSON request file (--file, \"-\" for stdin) or from repeated\n" +
		"--item flags of the form caliber:min_qty[:max_qty], e.g. --item 9mm:500:1000.",
	Example: "  ammobundle optimize --item 9mm:500 --item 5.56:200 --min-shipping 6\n" +
		"  ammobundle optimize --file request.json --format table",
	RunE: runOptimize,
}

func init() {
	optimizeCmd.Flags().StringP("file", "f", "", "JSON bundle request file, - for stdin")
	optimizeCmd.Flags().StringArray("item", nil, "Item as caliber:min_qty[:max_qty] (repeatable)")
	optimizeCmd.Flags().Int("min-shipping", 0, "Minimum shipping rating 0-10")
	optimizeCmd.Flags().String("format", "json", "Output format: json, table")
	optimizeCmd.Flags().Bool("explain", false, "Also list every feasible plan")
	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")
	itemFlags, _ := cmd.Flags().GetStringArray("item")
	format, _ := cmd.Flags().GetString("format")
	explain, _ := cmd.Flags().GetBool("explain")

	req, err := loadRequest(file, cmd.InOrStdin(), itemFlags)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("min-shipping") {
		req.MinShippingRating, _ = cmd.Flags().GetInt("min-shipping")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	orch, err := newOrchestrator()
	if err != nil {
		return err
	}

	spin := ui.NewSpinner()
	spin.Start(fmt.Sprintf("Fetching listings for %d item(s)...", len(req.Items)))
	ctx := platform.WithProgress(context.Background(), spin.Update)
	var (
		res   *models.OptimizationResult
		plans []bundle.Plan
	)
	if explain {
		plans, err = orch.Explain(ctx, req)
		if err == nil {
			best, ok := bundle.Best(plans)
			if !ok {
				err = bundle.ErrNoFeasibleBundle
			} else {
				res = bundle.Result(req.Items, best)
			}
		}
	} else {
		res, err = orch.Optimize(ctx, req)
	}
	spin.Stop()
	if err != nil {
		return fmt.Errorf("optimize failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if explain {
		printPlans(cmd.ErrOrStderr(), plans)
	}

	switch format {
	case "table":
		printResultTable(out, res)
	default:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	return nil
}

// loadRequest reads a BundleRequest from file (stdin for "-") and appends any
// --item flags.
func loadRequest(file string, stdin io.Reader, itemFlags []string) (models.BundleRequest, error) {
	var req models.BundleRequest
	if file != "" {
		var r io.Reader = stdin
		if file != "-" {
			f, err := os.Open(file)
			if err != nil {
				return req, err
			}
			defer f.Close()
			r = f
		}
		if err := json.NewDecoder(r).Decode(&req); err != nil {
			return req, fmt.Errorf("decode request: %w", err)
		}
	}
	for _, s := range itemFlags {
		item, err := parseItemFlag(s)
		if err != nil {
			return req, err
		}
		req.Items = append(req.Items, item)
	}
	if len(req.Items) == 0 {
		return req, fmt.Errorf("no items: use --file or --item")
	}
	return req, nil
}

// parseItemFlag parses caliber:min_qty[:max_qty]. max_qty defaults to min_qty.
func parseItemFlag(s string) (models.ItemRequest, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 || strings.TrimSpace(parts[0]) == "" {
		return models.ItemRequest{}, fmt.Errorf("invalid --item %q: want caliber:min_qty[:max_qty]", s)
	}
	item := models.ItemRequest{Caliber: strings.TrimSpace(parts[0])}
	minQty, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return models.ItemRequest{}, fmt.Errorf("invalid --item %q: min_qty: %w", s, err)
	}
	item.MinQty, item.MaxQty = minQty, minQty
	if len(parts) == 3 {
		maxQty, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			return models.ItemRequest{}, fmt.Errorf("invalid --item %q: max_qty: %w", s, err)
		}
		item.MaxQty = maxQty
	}
	return item, nil
}
