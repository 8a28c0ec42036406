package postgres

import (
	"context"

	"github.com/openbase-hq/openbase-engine/pkg/adapters/datasource"
	"github.com/openbase-hq/openbase-engine/pkg/models"
)

func init() {
	datasource.Register(datasource.Registration{
		Info: datasource.AdapterInfo{
			Type:        models.DataSourceTypePostgres,
			DisplayName: "PostgreSQL",
			Description: "PostgreSQL 12+, Aurora PostgreSQL, Supabase",
		},
		Factory: func(ctx context.Context, connection map[string]any, opts datasource.Options) (datasource.Adapter, error) {
			cfg, err := FromMap(connection)
			if err != nil {
				return nil, err
			}
			cfg.MaxConns = opts.PoolMaxConns
			return NewAdapter(ctx, cfg)
		},
	})
}
