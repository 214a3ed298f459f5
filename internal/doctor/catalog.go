package doctor

import (
	"context"
	"fmt"

	"github.com/rileyhilliard/storelens/internal/chat"
	"github.com/rileyhilliard/storelens/internal/util"
)

// Searcher runs a catalog search.
type Searcher interface {
	Search(ctx context.Context, q string) ([]chat.Product, error)
}

// CatalogCheck verifies the shopper catalog endpoint answers. The shopper
// surface is separate from the dashboard, so failures are warnings.
type CatalogCheck struct {
	Searcher Searcher
	Query    string
}

func (c *CatalogCheck) Name() string     { return "catalog_search" }
func (c *CatalogCheck) Category() string { return "SHOPPER" }

func (c *CatalogCheck) Run(ctx context.Context) CheckResult {
	q := c.Query
	if q == "" {
		q = "shoes"
	}

	products, err := c.Searcher.Search(ctx, q)
	if err != nil {
		return CheckResult{
			Status:     StatusWarn,
			Message:    "Catalog search unavailable: " + firstLine(err.Error()),
			Suggestion: "storelens chat and search need the catalog endpoint",
		}
	}
	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("Catalog search answered (%s for %q)", util.Count(len(products), "result", "results"), q),
	}
}
