package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"blogcast/internal/domain"
)

const DefaultHistoryLimit = 20

func (d *Database) InsertGeneration(ctx context.Context, g domain.Generation) error {
	g.URL = strings.TrimSpace(g.URL)
	if g.Status == "" {
		return errors.New("generation status is empty")
	}

	createdAt := g.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `insert into generations
	(url, mode, status, summary_len, file_name, size_bytes, error, requested_by, created_at)
	values (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	if _, err := d.db.ExecContext(ctx, query,
		g.URL,
		string(g.Mode),
		string(g.Status),
		g.SummaryLen,
		g.FileName,
		g.SizeBytes,
		g.Error,
		g.RequestedBy,
		createdAt.UTC(),
	); err != nil {
		return fmt.Errorf("execute query: %w", err)
	}

	return nil
}

// ListRecentGenerations returns the newest generations first.
func (d *Database) ListRecentGenerations(ctx context.Context, limit int) ([]domain.Generation, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	query := `select id, url, mode, status, summary_len, file_name, size_bytes, error, requested_by, created_at
	from generations
	order by created_at desc, id desc
	limit ?`

	rows, err := d.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer func() {
		if err = rows.Close(); err != nil {
			d.log.ErrorContext(ctx, "Failed to close rows",
				"error", err,
				"operation", "ListRecentGenerations")
		}
	}()

	var generations []domain.Generation
	for rows.Next() {
		var (
			g      domain.Generation
			mode   string
			status string
		)

		if err = rows.Scan(
			&g.ID,
			&g.URL,
			&mode,
			&status,
			&g.SummaryLen,
			&g.FileName,
			&g.SizeBytes,
			&g.Error,
			&g.RequestedBy,
			&g.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		g.Mode = domain.Mode(mode)
		g.Status = domain.Status(status)
		generations = append(generations, g)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return generations, nil
}

// CountByStatus reports how many generations ended in each status.
func (d *Database) CountByStatus(ctx context.Context) (map[domain.Status]int, error) {
	query := "select status, count(*) from generations group by status"

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer func() {
		if err = rows.Close(); err != nil {
			d.log.ErrorContext(ctx, "Failed to close rows",
				"error", err,
				"operation", "CountByStatus")
		}
	}()

	counts := make(map[domain.Status]int)
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err = rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		counts[domain.Status(status)] = count
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return counts, nil
}
