package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/bayti-store/server/internal/catalog"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
)

const (
	ToolSearchProducts    = "search_products"
	ToolGetProductDetails = "get_product_details"
)

// ===================================
// Search Products Tool
// ===================================

type SearchProductsInput struct {
	Query      string  `json:"query"`
	Category   string  `json:"category,omitempty"`
	MaxPrice   float64 `json:"max_price,omitempty"`
	MaxResults int     `json:"max_results,omitempty"`
}

type SearchProductsOutput struct {
	Products []ProductSummary `json:"products"`
	Total    int              `json:"total"`
}

// ProductSummary is the compact product shape handed to the model.
type ProductSummary struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Price    float64  `json:"price"`
	Rating   float64  `json:"rating"`
	Colors   []string `json:"colors,omitempty"`
}

func newSearchProductsTool(store catalog.Store) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolSearchProducts,
			Desc: "Search the shop's live home-goods catalog. Matches product name, category, and description keywords. Returns structured product data with ID, name, category, price, and rating. Use this tool whenever the customer mentions any product or budget.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type:     "string",
					Desc:     "Search keywords. Examples: cookware, blender, air fryer, vase, dinner set. Can include brand names or product types.",
					Required: true,
				},
				"category": {
					Type: "string",
					Desc: "Optional exact category filter, e.g. Kitchen, Appliances, Decor, Serveware.",
				},
				"max_price": {
					Type: "number",
					Desc: "Optional budget cap. Only products at or below this price are returned.",
				},
				"max_results": {
					Type: "number",
					Desc: "Maximum number of products to return (default: 10, max: 20)",
				},
			}),
		},
		func(ctx context.Context, in *SearchProductsInput) (*SearchProductsOutput, error) {
			if in.Query == "" {
				return nil, fmt.Errorf("query is required")
			}
			if in.MaxResults <= 0 {
				in.MaxResults = 10
			}
			if in.MaxResults > 20 {
				in.MaxResults = 20
			}

			products, err := store.ListVisible(ctx)
			if err != nil {
				return nil, err
			}

			matched := catalog.Filter{
				Category: in.Category,
				MaxPrice: in.MaxPrice,
				Search:   in.Query,
			}.Apply(products)
			if len(matched) > in.MaxResults {
				matched = matched[:in.MaxResults]
			}

			out := &SearchProductsOutput{Total: len(matched)}
			for _, p := range matched {
				out.Products = append(out.Products, ProductSummary{
					ID:       p.ID,
					Name:     p.Name,
					Category: p.Category,
					Price:    p.Price,
					Rating:   p.Rating,
					Colors:   p.Colors,
				})
			}
			return out, nil
		},
	)
}

// ===================================
// Product Details Tool
// ===================================

type GetProductDetailsInput struct {
	ProductID string `json:"product_id"`
}

type GetProductDetailsOutput struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Rating      float64  `json:"rating"`
	Reviews     int      `json:"reviews"`
	Colors      []string `json:"colors,omitempty"`
}

func newGetProductDetailsTool(store catalog.Store) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolGetProductDetails,
			Desc: "Get the full description, rating, review count and available colors for one product. Use this when the customer asks for details or a comparison.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"product_id": {
					Type:     "string",
					Desc:     "Product ID obtained from search_products results. Must be the exact ID.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *GetProductDetailsInput) (*GetProductDetailsOutput, error) {
			if strings.TrimSpace(in.ProductID) == "" {
				return nil, fmt.Errorf("product_id is required")
			}

			p, err := store.Get(ctx, in.ProductID)
			if err != nil {
				return nil, fmt.Errorf("product not found: %s", in.ProductID)
			}
			return &GetProductDetailsOutput{
				ID:          p.ID,
				Name:        p.Name,
				Category:    p.Category,
				Description: p.Description,
				Price:       p.Price,
				Rating:      p.Rating,
				Reviews:     p.Reviews,
				Colors:      p.Colors,
			}, nil
		},
	)
}
