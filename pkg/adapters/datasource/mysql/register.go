package mysql

import (
	"context"

	"github.com/openbase-hq/openbase-engine/pkg/adapters/datasource"
	"github.com/openbase-hq/openbase-engine/pkg/models"
)

func init() {
	datasource.Register(datasource.Registration{
		Info: datasource.AdapterInfo{
			Type:        models.DataSourceTypeMySQL,
			DisplayName: "MySQL",
			Description: "MySQL 5.7+, MariaDB, Aurora MySQL",
		},
		Factory: func(ctx context.Context, connection map[string]any, _ datasource.Options) (datasource.Adapter, error) {
			cfg, err := FromMap(connection)
			if err != nil {
				return nil, err
			}
			return NewAdapter(ctx, cfg)
		},
	})
}
