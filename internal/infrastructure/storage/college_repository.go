package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"RankingsScanner/internal/domain"
	"RankingsScanner/internal/ports"
)

const maxIDLength = 120

var idSeparators = regexp.MustCompile(`[^a-z0-9]+`)

// CollegeRepository persists canonical records into SQLite or Postgres.
type CollegeRepository struct {
	db  *sql.DB
	sb  sq.StatementBuilderType
	now func() time.Time
}

var _ ports.CollegeRepository = (*CollegeRepository)(nil)

// NewCollegeRepository wires a sql.DB opened with the given driver.
func NewCollegeRepository(db *sql.DB, driver string) *CollegeRepository {
	return &CollegeRepository{db: db, sb: builderFor(driver), now: time.Now}
}

// CollegeID derives the record identifier from the institution name.
func CollegeID(name string) string {
	id := idSeparators.ReplaceAllString(strings.ToLower(name), "_")
	if len(id) > maxIDLength {
		id = id[:maxIDLength]
	}
	return id
}

// Upsert inserts new colleges and updates existing ones in a single transaction,
// then records an import summary keyed by a fresh run identifier.
func (r *CollegeRepository) Upsert(ctx context.Context, dataset domain.Dataset) (domain.ImportSummary, error) {
	summary := domain.ImportSummary{
		RunID:       uuid.NewString(),
		Total:       len(dataset.Colleges),
		DataVersion: dataset.DataVersion,
	}
	if r.db == nil {
		return summary, fmt.Errorf("college repository has no database")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return summary, fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stamp := r.now().UTC().Format(time.RFC3339)
	for _, college := range dataset.Colleges {
		id := CollegeID(college.Name)
		payload, err := json.Marshal(college)
		if err != nil {
			return summary, fmt.Errorf("encode college %s: %w", id, err)
		}

		exists, err := r.exists(ctx, tx, id)
		if err != nil {
			return summary, err
		}

		if exists {
			err = exec(ctx, tx, r.sb.Update("colleges").
				Set("name", college.Name).
				Set("state", college.State).
				Set("overall_rank", college.OverallRank).
				Set("fees", college.Fees).
				Set("payload", string(payload)).
				Set("data_version", dataset.DataVersion).
				Set("updated_at", stamp).
				Where(sq.Eq{"id": id}))
			summary.Updated++
		} else {
			err = exec(ctx, tx, r.sb.Insert("colleges").
				Columns("id", "name", "state", "overall_rank", "fees", "payload", "data_version", "updated_at").
				Values(id, college.Name, college.State, college.OverallRank, college.Fees, string(payload), dataset.DataVersion, stamp))
			summary.Created++
		}
		if err != nil {
			return summary, fmt.Errorf("upsert college %s: %w", id, err)
		}
	}

	err = exec(ctx, tx, r.sb.Insert("college_imports").
		Columns("run_id", "total", "created", "updated", "data_version", "imported_at").
		Values(summary.RunID, summary.Total, summary.Created, summary.Updated, summary.DataVersion, stamp))
	if err != nil {
		return summary, fmt.Errorf("record import: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("commit import: %w", err)
	}
	return summary, nil
}

func (r *CollegeRepository) exists(ctx context.Context, tx *sql.Tx, id string) (bool, error) {
	query, args, err := r.sb.Select("1").From("colleges").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return false, fmt.Errorf("build lookup: %w", err)
	}
	var one int
	err = tx.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup college %s: %w", id, err)
	}
	return true, nil
}

// Query filters by state and fee range in SQL, orders by overall rank, then
// applies the substring search and the offset/limit window in memory.
func (r *CollegeRepository) Query(ctx context.Context, filter domain.CollegeFilter) ([]domain.College, error) {
	if r.db == nil {
		return nil, nil
	}

	b := r.sb.Select("payload").From("colleges").OrderBy("overall_rank ASC", "id ASC")
	if filter.State != "" {
		b = b.Where(sq.Eq{"state": filter.State})
	}
	if filter.MinFees != nil || filter.MaxFees != nil {
		b = b.Where(sq.NotEq{"fees": nil})
	}
	if filter.MinFees != nil {
		b = b.Where(sq.GtOrEq{"fees": *filter.MinFees})
	}
	if filter.MaxFees != nil {
		b = b.Where(sq.LtOrEq{"fees": *filter.MaxFees})
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query colleges: %w", err)
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var result []domain.College
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan college: %w", err)
		}
		var college domain.College
		if err := json.Unmarshal([]byte(payload), &college); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("decode college: %w", err)
		}
		if search != "" && !matches(college, search) {
			continue
		}
		result = append(result, college)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}
	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return window(result, filter.Offset, filter.Limit), nil
}

func matches(c domain.College, search string) bool {
	for _, field := range []string{c.Name, c.ShortName, c.Location} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

func window(colleges []domain.College, offset, limit int) []domain.College {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(colleges) {
		return nil
	}
	colleges = colleges[offset:]
	if limit > 0 && limit < len(colleges) {
		colleges = colleges[:limit]
	}
	return colleges
}
