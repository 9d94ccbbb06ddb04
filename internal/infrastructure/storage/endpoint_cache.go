package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"RankingsScanner/internal/domain"
	"RankingsScanner/internal/ports"
)

// EndpointCache keeps the discovered endpoint set in the record store database.
type EndpointCache struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var _ ports.DiscoveryCache = (*EndpointCache)(nil)

// NewEndpointCache wires a sql.DB opened with the given driver.
func NewEndpointCache(db *sql.DB, driver string) *EndpointCache {
	return &EndpointCache{db: db, sb: builderFor(driver)}
}

// Load returns the stored endpoints in their saved order. An empty table or a
// row missing its category or URL reports ok=false.
func (c *EndpointCache) Load(ctx context.Context) ([]domain.DiscoveredEndpoint, bool, error) {
	query, args, err := c.sb.Select("category", "url").From("discovered_endpoints").OrderBy("position ASC").ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("build query: %w", err)
	}
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("query endpoints: %w", err)
	}
	defer rows.Close()

	var endpoints []domain.DiscoveredEndpoint
	for rows.Next() {
		var ep domain.DiscoveredEndpoint
		if err := rows.Scan(&ep.Category, &ep.URL); err != nil {
			return nil, false, fmt.Errorf("scan endpoint: %w", err)
		}
		if ep.Category == "" || ep.URL == "" {
			return nil, false, nil
		}
		endpoints = append(endpoints, ep)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("rows iteration: %w", err)
	}
	return endpoints, len(endpoints) > 0, nil
}

// Save replaces the stored set.
func (c *EndpointCache) Save(ctx context.Context, endpoints []domain.DiscoveredEndpoint) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := exec(ctx, tx, c.sb.Delete("discovered_endpoints")); err != nil {
		return fmt.Errorf("clear endpoints: %w", err)
	}
	if len(endpoints) > 0 {
		insert := c.sb.Insert("discovered_endpoints").Columns("position", "category", "url")
		for i, ep := range endpoints {
			insert = insert.Values(i, ep.Category, ep.URL)
		}
		if err := exec(ctx, tx, insert); err != nil {
			return fmt.Errorf("insert endpoints: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit endpoints: %w", err)
	}
	return nil
}
