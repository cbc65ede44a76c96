package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lukman83/ammo-bundler/internal/ammoseek"
	"github.com/lukman83/ammo-bundler/internal/models"
	"github.com/lukman83/ammo-bundler/internal/optimizer"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// Service is what the tools call into. *optimizer.Orchestrator satisfies it.
type Service interface {
	Optimize(ctx context.Context, req models.BundleRequest) (*models.OptimizationResult, error)
	Listings(ctx context.Context, item models.ItemRequest, minShipping int) ([]models.Listing, error)
}

var _ Service = (*optimizer.Orchestrator)(nil)

type tools struct {
	svc    Service
	logger *zap.Logger
}

var itemSchema = map[string]any{
	"type":     "object",
	"required": []string{"caliber", "min_qty", "max_qty"},
	"properties": map[string]any{
		"caliber":       map[string]any{"type": "string", "description": "Caliber name or AmmoSeek slug, e.g. 9mm, 5.56"},
		"min_qty":       map[string]any{"type": "integer", "minimum": 1, "description": "Rounds to buy"},
		"max_qty":       map[string]any{"type": "integer", "description": "Upper bound on box size searched"},
		"bullet_weight": map[string]any{"type": "integer", "description": "Exact grain weight"},
		"search_terms":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"case_material": map[string]any{"type": "string", "description": "brass, steel, aluminum, ..."},
		"condition":     map[string]any{"type": "string", "description": "new, remanufactured, ..."},
		"manufacturers": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	},
}

func registerTools(s *server.MCPServer, svc Service, logger *zap.Logger) {
	t := &tools{svc: svc, logger: logger}

	// optimize_bundle
	optimizeTool := mcp.NewTool("optimize_bundle",
		mcp.WithDescription("Find the cheapest way to buy a list of ammunition items, from one retailer or one retailer plus free-shipping listings elsewhere"),
		mcp.WithArray("items",
			mcp.Required(),
			mcp.Description("Shopping list, one entry per caliber line"),
			mcp.Items(itemSchema),
		),
		mcp.WithNumber("min_shipping_rating",
			mcp.Description("Minimum shipping rating 0-10 (default: 0). Free shipping always qualifies."),
		),
	)
	s.AddTool(optimizeTool, t.handleOptimizeBundle)

	// search_listings
	searchTool := mcp.NewTool("search_listings",
		mcp.WithDescription("List normalized, filtered listings for one caliber"),
		mcp.WithString("caliber",
			mcp.Required(),
			mcp.Description("Caliber name or AmmoSeek slug"),
		),
		mcp.WithNumber("min_qty",
			mcp.Description("Rounds wanted (default: 1)"),
		),
		mcp.WithNumber("max_qty",
			mcp.Description("Upper bound on box size (default: min_qty)"),
		),
		mcp.WithNumber("bullet_weight",
			mcp.Description("Exact grain weight"),
		),
		mcp.WithString("case_material",
			mcp.Description("Case material filter"),
		),
		mcp.WithString("condition",
			mcp.Description("Condition filter"),
		),
		mcp.WithNumber("min_shipping_rating",
			mcp.Description("Minimum shipping rating 0-10 (default: 0)"),
		),
	)
	s.AddTool(searchTool, t.handleSearchListings)

	// list_calibers
	calibersTool := mcp.NewTool("list_calibers",
		mcp.WithDescription("List the caliber names this server maps to AmmoSeek slugs"),
	)
	s.AddTool(calibersTool, t.handleListCalibers)
}

func (t *tools) handleOptimizeBundle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("arguments error: %v", err)), nil
	}
	var req models.BundleRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("arguments error: %v", err)), nil
	}

	res, err := t.svc.Optimize(ctx, req)
	if err != nil {
		t.logger.Info("optimize_bundle failed", zap.Error(err))
		return mcp.NewToolResultError(describe(err)), nil
	}

	data, _ := json.MarshalIndent(res, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

func (t *tools) handleSearchListings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	caliber := request.GetString("caliber", "")
	if caliber == "" {
		return mcp.NewToolResultError("caliber is required"), nil
	}

	item := models.ItemRequest{
		Caliber: caliber,
		MinQty:  request.GetInt("min_qty", 1),
	}
	item.MaxQty = request.GetInt("max_qty", item.MinQty)
	if w := request.GetInt("bullet_weight", 0); w > 0 {
		item.BulletWeight = &w
	}
	if v := request.GetString("case_material", ""); v != "" {
		item.CaseMaterial = &v
	}
	if v := request.GetString("condition", ""); v != "" {
		item.Condition = &v
	}
	if err := item.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	listings, err := t.svc.Listings(ctx, item, request.GetInt("min_shipping_rating", 0))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search error: %v", err)), nil
	}

	data, _ := json.MarshalIndent(listings, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

func (t *tools) handleListCalibers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, _ := json.MarshalIndent(ammoseek.Calibers(), "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

// describe turns optimizer errors into a message an assistant can act on.
func describe(err error) string {
	var noListings *optimizer.NoListingsForItemError
	if errors.As(err, &noListings) {
		return fmt.Sprintf("no listings for item %d (%s) matched the filters; relax them or drop the item", noListings.Index, noListings.Caliber)
	}
	return err.Error()
}
