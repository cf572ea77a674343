package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"PaperTracker/internal/domain"
	"PaperTracker/internal/ports"
)

const dateLayout = "2006-01-02"

const schema = `
CREATE TABLE IF NOT EXISTS papers (
    id              TEXT PRIMARY KEY,
    title           TEXT NOT NULL,
    authors         TEXT,
    abstract        TEXT,
    url             TEXT,
    pdf_url         TEXT,
    published_date  TEXT,
    fetched_date    TEXT,
    summary         TEXT,
    key_points      TEXT,
    relevance_score REAL,
    status          TEXT NOT NULL DEFAULT 'pending'
);
CREATE INDEX IF NOT EXISTS idx_papers_published_date ON papers (published_date);
CREATE INDEX IF NOT EXISTS idx_papers_status ON papers (status);
`

// SQLiteRepository persists paper records into a single-file SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

var _ ports.PaperRepository = (*SQLiteRepository)(nil)

// NewSQLiteRepository wires a sql.DB implementation.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Init creates the schema when it does not exist yet. Safe to call on every
// start.
func (r *SQLiteRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Insert adds a paper row. An existing id is left untouched and reported as
// false; duplicates are expected during re-fetches, never errors.
func (r *SQLiteRepository) Insert(ctx context.Context, paper domain.StoredPaper) (bool, error) {
	query, args, err := sq.Insert("papers").
		Columns("id", "title", "authors", "abstract", "url", "pdf_url",
			"published_date", "fetched_date", "summary", "key_points",
			"relevance_score", "status").
		Values(paper.ID, paper.Title, paper.Authors, paper.Abstract, paper.URL,
			paper.PDFURL, paper.PublishedDate.Format(dateLayout),
			paper.FetchedDate.Format(dateLayout), paper.Summary, paper.KeyPoints,
			paper.RelevanceScore, string(paper.Status)).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build insert: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert paper: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert paper rows: %w", err)
	}
	return affected > 0, nil
}

// GetByID returns a single paper or nil when absent.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*domain.StoredPaper, error) {
	query, args, err := selectPapers().Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	row := r.db.QueryRowContext(ctx, query, args...)
	paper, err := scanPaper(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get paper: %w", err)
	}
	return &paper, nil
}

// ListPending returns pending papers, newest published first. limit <= 0
// disables the cap.
func (r *SQLiteRepository) ListPending(ctx context.Context, limit int) ([]domain.StoredPaper, error) {
	builder := selectPapers().
		Where(sq.Eq{"status": string(domain.StatusPending)}).
		OrderBy("published_date DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	return r.queryPapers(ctx, query, args)
}

// ListByDate returns the papers published on exactly the given day, best
// relevance first. SQLite sorts NULL relevance scores last under DESC, so
// unsummarized papers trail the summarized ones. An empty status matches
// any lifecycle state.
func (r *SQLiteRepository) ListByDate(ctx context.Context, day time.Time, status domain.Status) ([]domain.StoredPaper, error) {
	builder := selectPapers().
		Where(sq.Eq{"published_date": day.Format(dateLayout)}).
		OrderBy("relevance_score DESC")
	if status != "" {
		builder = builder.Where(sq.Eq{"status": string(status)})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	return r.queryPapers(ctx, query, args)
}

// ApplySummary writes the summary fields together and flips the paper to
// summarized. Returns false when the id is unknown.
func (r *SQLiteRepository) ApplySummary(ctx context.Context, id, summary, keyPoints string, relevanceScore float64) (bool, error) {
	query, args, err := sq.Update("papers").
		Set("summary", summary).
		Set("key_points", keyPoints).
		Set("relevance_score", relevanceScore).
		Set("status", string(domain.StatusSummarized)).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build update: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("apply summary: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("apply summary rows: %w", err)
	}
	return affected > 0, nil
}

// MarkReported flips the given papers to reported and returns the number of
// rows actually updated. Unknown ids are ignored; an empty list is a no-op.
func (r *SQLiteRepository) MarkReported(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query, args, err := sq.Update("papers").
		Set("status", string(domain.StatusReported)).
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build update: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("mark reported: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark reported rows: %w", err)
	}
	return affected, nil
}

// LatestPublishedDate reports the newest published date in the store.
func (r *SQLiteRepository) LatestPublishedDate(ctx context.Context) (time.Time, bool, error) {
	var latest sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT MAX(published_date) FROM papers`).Scan(&latest)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("latest published date: %w", err)
	}
	if !latest.Valid || latest.String == "" {
		return time.Time{}, false, nil
	}

	day, err := time.Parse(dateLayout, latest.String)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse latest date %q: %w", latest.String, err)
	}
	return day, true, nil
}

func selectPapers() sq.SelectBuilder {
	return sq.Select("id", "title", "authors", "abstract", "url", "pdf_url",
		"published_date", "fetched_date", "summary", "key_points",
		"relevance_score", "status").
		From("papers")
}

func (r *SQLiteRepository) queryPapers(ctx context.Context, query string, args []interface{}) ([]domain.StoredPaper, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query papers: %w", err)
	}
	defer rows.Close()

	papers := make([]domain.StoredPaper, 0)
	for rows.Next() {
		paper, err := scanPaper(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan paper: %w", err)
		}
		papers = append(papers, paper)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return papers, nil
}

func scanPaper(scan func(dest ...interface{}) error) (domain.StoredPaper, error) {
	var (
		paper     domain.StoredPaper
		published string
		fetched   string
		score     sql.NullFloat64
		status    string
	)

	err := scan(&paper.ID, &paper.Title, &paper.Authors, &paper.Abstract,
		&paper.URL, &paper.PDFURL, &published, &fetched, &paper.Summary,
		&paper.KeyPoints, &score, &status)
	if err != nil {
		return domain.StoredPaper{}, err
	}

	if published != "" {
		if paper.PublishedDate, err = time.Parse(dateLayout, published); err != nil {
			return domain.StoredPaper{}, fmt.Errorf("parse published date %q: %w", published, err)
		}
	}
	if fetched != "" {
		if paper.FetchedDate, err = time.Parse(dateLayout, fetched); err != nil {
			return domain.StoredPaper{}, fmt.Errorf("parse fetched date %q: %w", fetched, err)
		}
	}
	if score.Valid {
		paper.RelevanceScore = &score.Float64
	}
	paper.Status = domain.Status(status)
	return paper, nil
}
