package sqlite

import (
	"context"

	"github.com/openbase-hq/openbase-engine/pkg/adapters/datasource"
	"github.com/openbase-hq/openbase-engine/pkg/config"
	"github.com/openbase-hq/openbase-engine/pkg/models"
)

func init() {
	datasource.Register(datasource.Registration{
		Info: datasource.AdapterInfo{
			Type:        models.DataSourceTypeSQLite,
			DisplayName: "SQLite",
			Description: "SQLite database files inside the engine's data directory",
		},
		Factory: func(ctx context.Context, connection map[string]any, opts datasource.Options) (datasource.Adapter, error) {
			cfg, err := FromMap(connection)
			if err != nil {
				return nil, err
			}
			path, err := config.ResolveDataPath(opts.DataDir, cfg.Path)
			if err != nil {
				return nil, err
			}
			return NewAdapter(ctx, path)
		},
	})
}
