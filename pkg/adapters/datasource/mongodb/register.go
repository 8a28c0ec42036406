package mongodb

import (
	"context"

	"github.com/openbase-hq/openbase-engine/pkg/adapters/datasource"
	"github.com/openbase-hq/openbase-engine/pkg/models"
)

func init() {
	datasource.Register(datasource.Registration{
		Info: datasource.AdapterInfo{
			Type:        models.DataSourceTypeMongoDB,
			DisplayName: "MongoDB",
			Description: "MongoDB 4.4+ replica sets and standalone servers",
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
