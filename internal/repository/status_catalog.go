package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-analytics/internal/domain"
)

// StatusCatalogSource supplies the configured status catalog for a tenant,
// including globally shared entries.
type StatusCatalogSource interface {
	FetchCatalog(ctx context.Context, tenantID string) (domain.StatusCatalog, error)
}

type statusCatalogRepository struct {
	pool *pgxpool.Pool
}

// NewStatusCatalogRepository builds the Postgres-backed catalog source.
func NewStatusCatalogRepository(pool *pgxpool.Pool) StatusCatalogSource {
	return &statusCatalogRepository{pool: pool}
}

func (r *statusCatalogRepository) FetchCatalog(ctx context.Context, tenantID string) (domain.StatusCatalog, error) {
	const query = `
        SELECT id, tenant_id, name, slug, color, order_index, is_terminal, is_open
        FROM statuses WHERE tenant_id=$1 OR tenant_id IS NULL
        ORDER BY order_index ASC, name ASC`
	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return domain.StatusCatalog{}, err
	}
	defer rows.Close()

	var defs []domain.StatusDefinition
	for rows.Next() {
		var def domain.StatusDefinition
		if err := rows.Scan(
			&def.ID,
			&def.TenantID,
			&def.Name,
			&def.Slug,
			&def.Color,
			&def.OrderIndex,
			&def.IsTerminal,
			&def.IsOpen,
		); err != nil {
			return domain.StatusCatalog{}, err
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return domain.StatusCatalog{}, err
	}
	return domain.NewStatusCatalog(defs), nil
}

const catalogKeyPrefix = "status-catalog:"

type cachedStatusCatalog struct {
	source StatusCatalogSource
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedStatusCatalog wraps a catalog source with a redis read-through
// cache. Cache failures degrade to the underlying source, never to an error.
func NewCachedStatusCatalog(source StatusCatalogSource, client *redis.Client, ttl time.Duration, logger *zap.Logger) StatusCatalogSource {
	if client == nil || ttl <= 0 {
		return source
	}
	return &cachedStatusCatalog{source: source, client: client, ttl: ttl, logger: logger}
}

func (c *cachedStatusCatalog) FetchCatalog(ctx context.Context, tenantID string) (domain.StatusCatalog, error) {
	key := catalogKeyPrefix + tenantID

	if payload, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var defs []domain.StatusDefinition
		if err := json.Unmarshal(payload, &defs); err == nil {
			return domain.NewStatusCatalog(defs), nil
		}
		c.logger.Warn("discarding corrupt catalog cache entry", zap.String("tenant_id", tenantID))
	} else if err != redis.Nil {
		c.logger.Warn("catalog cache read failed", zap.Error(err))
	}

	catalog, err := c.source.FetchCatalog(ctx, tenantID)
	if err != nil {
		return domain.StatusCatalog{}, err
	}

	if payload, err := json.Marshal(catalog.Definitions()); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.Warn("catalog cache write failed", zap.Error(err))
		}
	}
	return catalog, nil
}
