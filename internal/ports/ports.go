package ports

import (
	"context"
	"time"

	"PaperTracker/internal/domain"
)

// PaperSource pulls fresh paper metadata from upstream catalogs.
type PaperSource interface {
	FetchDay(ctx context.Context, day time.Time) ([]domain.Paper, error)
}

// PaperRepository is the durable store for paper records and their lifecycle.
type PaperRepository interface {
	// Insert adds a paper, returning true when a new row was created and
	// false when the id already existed. Duplicates are never errors.
	Insert(ctx context.Context, paper domain.StoredPaper) (bool, error)
	GetByID(ctx context.Context, id string) (*domain.StoredPaper, error)
	// ListPending returns pending papers ordered by published date
	// descending; limit <= 0 means no cap.
	ListPending(ctx context.Context, limit int) ([]domain.StoredPaper, error)
	// ListByDate returns papers published on exactly the given date,
	// optionally filtered by status (empty = any), ordered by relevance
	// score descending with unsummarized papers last.
	ListByDate(ctx context.Context, day time.Time, status domain.Status) ([]domain.StoredPaper, error)
	// ApplySummary sets summary, key points, and the 0-10 relevance score
	// together and flips status to summarized. Returns false for an
	// unknown id.
	ApplySummary(ctx context.Context, id, summary, keyPoints string, relevanceScore float64) (bool, error)
	// MarkReported flips the given papers to reported, returning how many
	// rows were actually updated; unknown ids are ignored.
	MarkReported(ctx context.Context, ids []string) (int64, error)
	// LatestPublishedDate reports the newest published date in the store;
	// ok is false when the store is empty.
	LatestPublishedDate(ctx context.Context) (day time.Time, ok bool, err error)
}

// ChatModel is the opaque text-in/text-out AI boundary.
type ChatModel interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Notifier publishes rendered reports to an outbound channel.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Clock provides the current date, possibly corrected for clock skew.
type Clock interface {
	Now(ctx context.Context) time.Time
	Today(ctx context.Context) time.Time
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
