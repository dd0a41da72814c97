// Package store implements the relational data access for builds, catalog
// parts and the build scaffold (categories, groups, slots, build parts).
//
// Queries are written with '?' placeholders and rebound for the connected
// dialect, so the same store runs on PostgreSQL and SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"bikebuild/db"
	"bikebuild/models"
)

// Repository is the data access contract used by the services. Every
// build-scoped lookup takes the build id so rows of other builds are
// indistinguishable from missing rows.
type Repository interface {
	// WithTx runs fn against a transactional view of the repository. Calls
	// made on the view commit or roll back together; nested calls join the
	// outer transaction.
	WithTx(ctx context.Context, fn func(tx Repository) error) error

	CreateBuild(ctx context.Context, b *models.Build) error
	GetBuild(ctx context.Context, id string) (*models.Build, error)
	ListBuilds(ctx context.Context, userID *string) ([]*models.Build, error)
	UpdateBuild(ctx context.Context, id string, name, bikeType *string) (*models.Build, error)
	DeleteBuild(ctx context.Context, id string) (bool, error)

	CreatePart(ctx context.Context, p *models.Part) error
	GetPart(ctx context.Context, id string) (*models.Part, error)
	GetPartsByIDs(ctx context.Context, ids []string) (map[string]*models.Part, error)
	ListParts(ctx context.Context, component string) ([]*models.Part, error)
	UpdatePart(ctx context.Context, p *models.Part) error
	DeletePart(ctx context.Context, id string) (bool, error)

	HasCategories(ctx context.Context, buildID string) (bool, error)
	CreateCategory(ctx context.Context, c *models.Category) error
	GetCategory(ctx context.Context, buildID, id string) (*models.Category, error)
	ListCategories(ctx context.Context, buildID string) ([]models.Category, error)

	CreateGroup(ctx context.Context, g *models.Group) error
	ListGroups(ctx context.Context, buildID string) ([]models.Group, error)
	NextGroupSortOrder(ctx context.Context, buildID string) (int, error)

	CreateSlot(ctx context.Context, s *models.Slot) error
	GetSlot(ctx context.Context, buildID, id string) (*models.Slot, error)
	ListSlots(ctx context.Context, buildID string) ([]models.Slot, error)
	ListSlotsByIDs(ctx context.Context, buildID string, ids []string) ([]models.Slot, error)
	ListCategorySlots(ctx context.Context, buildID, categoryID string) ([]models.Slot, error)
	FindSlotByComponent(ctx context.Context, buildID, componentKey string) (*models.Slot, error)
	NextSlotSortOrder(ctx context.Context, buildID, categoryID string) (int, error)
	SetSlotSortOrder(ctx context.Context, buildID, id string, sortOrder int) error
	SetSlotsGroup(ctx context.Context, buildID string, ids []string, groupID string) error
	DeleteSlot(ctx context.Context, buildID, id string) (bool, error)

	CreateBuildPart(ctx context.Context, bp *models.BuildPart) error
	GetBuildPart(ctx context.Context, buildID, id string) (*models.BuildPart, error)
	ListBuildParts(ctx context.Context, buildID string) ([]models.BuildPart, error)
	ListSlotlessBuildParts(ctx context.Context, buildID string) ([]models.BuildPart, error)
	SetBuildPartSlot(ctx context.Context, buildID, id, slotID string) error
	UpdateBuildPart(ctx context.Context, buildID, id string, patch models.BuildPartPatch) (*models.BuildPart, error)
	DeleteBuildPart(ctx context.Context, buildID, id string) (bool, error)
	DeleteSlotBuildParts(ctx context.Context, buildID, slotID string) (int64, error)
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

// Store is the SQL Repository.
type Store struct {
	conn  *db.DB
	q     querier
	inTx  bool
	now   func() time.Time
	newID func() string
}

var _ Repository = (*Store)(nil)

// New returns a Store over an open, migrated connection.
func New(conn *db.DB) *Store {
	return &Store{
		conn:  conn,
		q:     conn.DB,
		now:   time.Now,
		newID: newID,
	}
}

// newID returns a time-ordered UUID so rows created later sort later.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// WithTx implements Repository.
func (s *Store) WithTx(ctx context.Context, fn func(tx Repository) error) error {
	return s.inTransaction(ctx, func(tx *Store) error { return fn(tx) })
}

func (s *Store) inTransaction(ctx context.Context, fn func(tx *Store) error) error {
	if s.inTx {
		return fn(s)
	}
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	txStore := &Store{conn: s.conn, q: tx, inTx: true, now: s.now, newID: s.newID}
	if err := fn(txStore); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.q.ExecContext(ctx, s.conn.Dialect.Rebind(query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.q.QueryContext(ctx, s.conn.Dialect.Rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.q.QueryRowContext(ctx, s.conn.Dialect.Rebind(query), args...)
}

func (s *Store) nowMillis() int64 {
	return s.now().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// placeholders returns "?, ?, ..." for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// stringArgs converts ids for use as variadic query arguments.
func stringArgs(prefix []any, ids []string) []any {
	args := make([]any, 0, len(prefix)+len(ids))
	args = append(args, prefix...)
	for _, id := range ids {
		args = append(args, id)
	}
	return args
}

func affected(res sql.Result, what string) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error getting rows affected for %s: %w", what, err)
	}
	return n, nil
}
