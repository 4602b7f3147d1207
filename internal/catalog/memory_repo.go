package catalog

import (
	"context"
	"slices"
)

// MemoryProvider serves a fixed snapshot of books.
type MemoryProvider struct {
	books []Book
}

func NewMemoryProvider(books []Book) *MemoryProvider {
	return &MemoryProvider{books: slices.Clone(books)}
}

func (p *MemoryProvider) FetchCatalog(ctx context.Context, spec QuerySpec) (ResultPage, error) {
	if err := ctx.Err(); err != nil {
		return ResultPage{}, err
	}
	return Query(p.books, spec), nil
}

func (p *MemoryProvider) GetByID(ctx context.Context, id string) (Book, error) {
	for _, b := range p.books {
		if b.ID == id {
			return b, nil
		}
	}
	return Book{}, ErrNotFound
}

func (p *MemoryProvider) Categories(ctx context.Context) ([]string, error) {
	return Categories(p.books), nil
}
