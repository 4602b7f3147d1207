package catalog

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_provider.go -package=catalog

// Provider supplies catalog pages. Implementations must honour the same
// search, filter, sort and pagination semantics as Query.
type Provider interface {
	FetchCatalog(ctx context.Context, spec QuerySpec) (ResultPage, error)
	GetByID(ctx context.Context, id string) (Book, error)
	Categories(ctx context.Context) ([]string, error)
}
