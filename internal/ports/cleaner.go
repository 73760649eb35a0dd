package ports

import "context"

// CacheCleaner removes cached transport state left behind by a previous
// run. Invoked at startup when the clean-on-restart flag is set.
type CacheCleaner interface {
	CleanTransportCache(ctx context.Context) error
}

// CacheCleanerFunc adapts a plain function to the cleaner interface.
type CacheCleanerFunc func(ctx context.Context) error

func (f CacheCleanerFunc) CleanTransportCache(ctx context.Context) error {
	return f(ctx)
}
