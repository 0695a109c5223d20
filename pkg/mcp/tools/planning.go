// Package tools provides the MCP tools of the planning engine.
package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/manpower-engine/pkg/models"
	"github.com/ekaya-inc/manpower-engine/pkg/services"
)

// PlanningToolDeps contains dependencies for the planning tools.
type PlanningToolDeps struct {
	Warehouses   services.WarehouseService
	Categories   services.CategoryService
	Demand       services.DemandService
	Productivity services.ProductivityService
	Results      services.ResultService
	Registry     services.CategoryRegistry
	Logger       *zap.Logger
}

// RegisterPlanningTools registers the read-only planning tools.
func RegisterPlanningTools(s *server.MCPServer, deps *PlanningToolDeps) {
	registerListWarehousesTool(s, deps)
	registerListCategoriesTool(s, deps)
	registerGetDemandSummaryTool(s, deps)
	registerGetBenchmarkProductivityTool(s, deps)
	registerGetPlanningResultsTool(s, deps)
}

// readOnly are the annotations shared by every planning tool.
func readOnly() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	}
}

func registerListWarehousesTool(s *server.MCPServer, deps *PlanningToolDeps) {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("List all warehouses with their IDs, names and descriptions."),
	}, readOnly()...)
	tool := mcp.NewTool("list_warehouses", opts...)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		warehouses, err := deps.Warehouses.List(ctx)
		if err != nil {
			return nil, err
		}
		return jsonResult(struct {
			Warehouses []*models.Warehouse `json:"warehouses"`
			Count      int                 `json:"count"`
		}{warehouses, len(warehouses)})
	})
}

func registerListCategoriesTool(s *server.MCPServer, deps *PlanningToolDeps) {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("List all labour categories (e.g. Picking, Packing) that demand and productivity are recorded for."),
	}, readOnly()...)
	tool := mcp.NewTool("list_categories", opts...)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		categories, err := deps.Categories.List(ctx)
		if err != nil {
			return nil, err
		}
		return jsonResult(struct {
			Categories []*models.Category `json:"categories"`
			Count      int                `json:"count"`
		}{categories, len(categories)})
	})
}

func registerGetDemandSummaryTool(s *server.MCPServer, deps *PlanningToolDeps) {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription(
			"Get the expected demand of a warehouse between two dates, nested by date then category, " +
				"with per-date totals and a \"total\" entry holding per-category and grand totals.",
		),
		mcp.WithNumber("warehouse_id", mcp.Required(), mcp.Description("Warehouse ID")),
		mcp.WithString("start_date", mcp.Required(), mcp.Description("First date, YYYY-MM-DD")),
		mcp.WithString("end_date", mcp.Required(), mcp.Description("Last date, YYYY-MM-DD (inclusive)")),
	}, readOnly()...)
	tool := mcp.NewTool("get_demand_summary", opts...)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		warehouseID, errResult := requireID(req, "warehouse_id")
		if errResult != nil {
			return errResult, nil
		}
		start, errResult := requireDate(req, "start_date")
		if errResult != nil {
			return errResult, nil
		}
		end, errResult := requireDate(req, "end_date")
		if errResult != nil {
			return errResult, nil
		}

		if _, err := deps.Warehouses.Get(ctx, warehouseID); err != nil {
			if res := userError(err); res != nil {
				return res, nil
			}
			return nil, err
		}
		summary, err := deps.Demand.Summary(ctx, warehouseID, start, end)
		if err != nil {
			if res := userError(err); res != nil {
				return res, nil
			}
			return nil, err
		}
		return jsonResult(summary)
	})
}

func registerGetBenchmarkProductivityTool(s *server.MCPServer, deps *PlanningToolDeps) {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription(
			"Get the benchmark productivity (units per hour) of experienced and new employees " +
				"for each category of a warehouse. Optionally filter to one category by exact name.",
		),
		mcp.WithNumber("warehouse_id", mcp.Required(), mcp.Description("Warehouse ID")),
		mcp.WithString("category", mcp.Description("Exact category name to filter by")),
	}, readOnly()...)
	tool := mcp.NewTool("get_benchmark_productivity", opts...)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		warehouseID, errResult := requireID(req, "warehouse_id")
		if errResult != nil {
			return errResult, nil
		}

		var categoryID int64
		if name := getOptionalString(req, "category"); name != "" {
			id, err := deps.Registry.Resolve(ctx, name)
			if err != nil {
				if res := userError(err); res != nil {
					return res, nil
				}
				return nil, err
			}
			categoryID = id
		}

		records, err := deps.Productivity.ListByWarehouse(ctx, warehouseID)
		if err != nil {
			return nil, err
		}
		if categoryID != 0 {
			filtered := make([]*models.BenchmarkProductivity, 0, 1)
			for _, p := range records {
				if p.CategoryID == categoryID {
					filtered = append(filtered, p)
				}
			}
			records = filtered
		}
		return jsonResult(struct {
			WarehouseID  int64                           `json:"warehouse_id"`
			Productivity []*models.BenchmarkProductivity `json:"productivity"`
		}{warehouseID, records})
	})
}

func registerGetPlanningResultsTool(s *server.MCPServer, deps *PlanningToolDeps) {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Get the stored staffing plan of a planning requirement: existing and new employees to deploy per date and category."),
		mcp.WithNumber("requirement_id", mcp.Required(), mcp.Description("Requirement ID returned by a calculation")),
	}, readOnly()...)
	tool := mcp.NewTool("get_planning_results", opts...)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		requirementID, errResult := requireID(req, "requirement_id")
		if errResult != nil {
			return errResult, nil
		}

		results, err := deps.Results.ListByRequirement(ctx, requirementID)
		if err != nil {
			if res := userError(err); res != nil {
				return res, nil
			}
			deps.Logger.Error("Failed to list planning results",
				zap.Int64("requirement_id", requirementID),
				zap.Error(err))
			return nil, err
		}
		return jsonResult(struct {
			RequirementID int64                    `json:"requirement_id"`
			Results       []*models.PlanningResult `json:"results"`
		}{requirementID, results})
	})
}
