package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresProvider runs catalog queries in SQL. Ordering uses byte-wise
// lower-cased keys and breaks ties by insertion sequence, matching Query.
type PostgresProvider struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresProvider(db *pgxpool.Pool, timeout time.Duration) *PostgresProvider {
	return &PostgresProvider{db: db, timeout: timeout}
}

func (r *PostgresProvider) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// Ping checks the database connection.
func (r *PostgresProvider) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

const bookColumns = `id, title, author, isbn, category, description, cover_url, published_year, total_copies, available_copies`

func (r *PostgresProvider) FetchCatalog(ctx context.Context, spec QuerySpec) (ResultPage, error) {
	where, args := buildWhere(spec)

	pageSize := spec.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM catalog_books %s", where)
	var total int
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := r.db.QueryRow(timeoutCtx, countSQL, args...).Scan(&total); err != nil {
		return ResultPage{}, fmt.Errorf("count catalog: %w", err)
	}

	result := ResultPage{Books: []Book{}, Total: total, TotalPages: totalPages(total, pageSize)}
	if spec.Page < 1 || total == 0 {
		return result, nil
	}

	argn := len(args) + 1
	dataSQL := fmt.Sprintf(`
		SELECT %s
		FROM catalog_books
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		bookColumns, where, orderBy(spec.Sort), argn, argn+1)

	argsWithPage := append([]any{}, args...)
	argsWithPage = append(argsWithPage, pageSize, (spec.Page-1)*pageSize)
	timeoutCtx2, cancel2 := r.withTimeout(ctx)
	defer cancel2()
	rows, err := r.db.Query(timeoutCtx2, dataSQL, argsWithPage...)
	if err != nil {
		return ResultPage{}, fmt.Errorf("list catalog: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return ResultPage{}, err
		}
		result.Books = append(result.Books, b)
	}
	return result, rows.Err()
}

func (r *PostgresProvider) GetByID(ctx context.Context, id string) (Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM catalog_books WHERE id = $1`, bookColumns)

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	b, err := scanBook(r.db.QueryRow(timeoutCtx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresProvider) Categories(ctx context.Context) ([]string, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, `SELECT DISTINCT category FROM catalog_books WHERE category <> '' ORDER BY category COLLATE "C"`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// UpsertBooks inserts or replaces books, keeping the insertion sequence of
// rows that already exist.
func (r *PostgresProvider) UpsertBooks(ctx context.Context, books []Book) error {
	const sql = `
		INSERT INTO catalog_books (id, title, author, isbn, category, description, cover_url,
		                           published_year, total_copies, available_copies, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			author = EXCLUDED.author,
			isbn = EXCLUDED.isbn,
			category = EXCLUDED.category,
			description = EXCLUDED.description,
			cover_url = EXCLUDED.cover_url,
			published_year = EXCLUDED.published_year,
			total_copies = EXCLUDED.total_copies,
			available_copies = EXCLUDED.available_copies,
			updated_at = NOW()`

	batch := &pgx.Batch{}
	for _, b := range books {
		batch.Queue(sql, b.ID, b.Title, b.Author, b.ISBN, b.Category, b.Description, b.CoverURL,
			b.PublishedYear, b.TotalCopies, b.AvailableCopies)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert books: %w", err)
	}
	return tx.Commit(ctx)
}

func buildWhere(spec QuerySpec) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}
	argn := 1

	if spec.Search != "" {
		clauses = append(clauses, fmt.Sprintf("(title ILIKE $%d OR author ILIKE $%d OR isbn ILIKE $%d)", argn, argn, argn))
		args = append(args, likePattern(spec.Search))
		argn++
	}

	f := spec.Filters
	if f.Category != "" {
		clauses = append(clauses, fmt.Sprintf("category = $%d", argn))
		args = append(args, f.Category)
		argn++
	}

	if f.Author != "" {
		clauses = append(clauses, fmt.Sprintf("author ILIKE $%d", argn))
		args = append(args, likePattern(f.Author))
		argn++
	}

	switch f.Availability {
	case AvailabilityAvailable:
		clauses = append(clauses, "available_copies > 0")
	case AvailabilityUnavailable:
		clauses = append(clauses, "available_copies <= 0")
	}

	if f.PublishedYear.Min != nil {
		clauses = append(clauses, fmt.Sprintf("published_year >= $%d", argn))
		args = append(args, *f.PublishedYear.Min)
		argn++
	}

	if f.PublishedYear.Max != nil {
		clauses = append(clauses, fmt.Sprintf("published_year <= $%d", argn))
		args = append(args, *f.PublishedYear.Max)
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

func orderBy(s Sort) string {
	col := `lower(title) COLLATE "C"`
	switch s.Field {
	case SortByAuthor:
		col = `lower(author) COLLATE "C"`
	case SortByCategory:
		col = `lower(category) COLLATE "C"`
	case SortByPublishedYear:
		col = "published_year"
	}

	dir := "ASC"
	if s.Direction == Desc {
		dir = "DESC"
	}
	return fmt.Sprintf("%s %s, seq ASC", col, dir)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func scanBook(row pgx.Row) (Book, error) {
	var b Book
	err := row.Scan(
		&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Category, &b.Description, &b.CoverURL,
		&b.PublishedYear, &b.TotalCopies, &b.AvailableCopies,
	)
	return b, err
}
