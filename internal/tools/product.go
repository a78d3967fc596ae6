package tools

import (
	"context"
	"errors"

	"github.com/tjfontaine/toolchat/internal/domain"
	"github.com/tjfontaine/toolchat/internal/storage"
)

// ProductInfoTool is the product lookup tool name.
const ProductInfoTool = "getProductInfo"

// ProductNotFound is the soft error returned for unknown product identifiers.
const ProductNotFound = "Product not found"

var productInfoDeclaration = domain.ToolDeclaration{
	Name:        ProductInfoTool,
	Description: "Gets information about a product, including its price and stock, given a product ID.",
	Parameters: []domain.Parameter{
		{
			Name:        "productId",
			Type:        domain.ParamTypeString,
			Description: "The unique identifier of the product.",
			Required:    true,
		},
	},
}

type productArgs struct {
	ProductID string `json:"productId"`
}

// ProductInfo returns an executor backed by lookup. Unknown products are a
// soft error, storage failures are returned as errors.
func ProductInfo(lookup storage.ProductLookup) Executor {
	return func(ctx context.Context, args map[string]any) (domain.ToolResult, error) {
		in, err := decodeArgs[productArgs](args)
		if err != nil {
			return nil, err
		}

		p, err := lookup.LookupProduct(ctx, in.ProductID)
		if errors.Is(err, storage.ErrProductNotFound) {
			return domain.SoftError(ProductNotFound), nil
		}
		if err != nil {
			return nil, err
		}

		return domain.ToolResult{
			"name":  p.Name,
			"price": p.Price,
			"stock": p.Stock,
		}, nil
	}
}
