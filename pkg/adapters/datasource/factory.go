package datasource

import (
	"context"

	"github.com/openbase-hq/openbase-engine/pkg/apperrors"
	"github.com/openbase-hq/openbase-engine/pkg/models"
)

// Factory opens per-call adapters from the registry.
type Factory interface {
	// Open creates an adapter for one operation against a data source. The
	// connection map must already be decrypted.
	Open(ctx context.Context, dsType string, connection map[string]any) (Adapter, error)

	// ListTypes returns info for all registered backend types.
	ListTypes() []AdapterInfo
}

type registryFactory struct {
	opts Options
}

// NewFactory returns a Factory backed by the global registry.
func NewFactory(opts Options) Factory {
	return &registryFactory{opts: opts}
}

func (f *registryFactory) Open(ctx context.Context, dsType string, connection map[string]any) (Adapter, error) {
	// Legacy rows store the short spelling.
	if models.IsPostgresType(dsType) {
		dsType = models.DataSourceTypePostgres
	}

	factory := GetFactory(dsType)
	if factory == nil {
		return nil, apperrors.BadRequestf("unsupported data source type: %s", dsType)
	}

	// The timeout covers connecting only; per-call deadlines on the opened
	// adapter come from the caller's context.
	if f.opts.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.opts.ConnectTimeout)
		defer cancel()
	}
	return factory(ctx, connection, f.opts)
}

func (f *registryFactory) ListTypes() []AdapterInfo {
	return RegisteredAdapters()
}

var _ Factory = (*registryFactory)(nil)
