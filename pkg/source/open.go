package source

import (
	"context"
	"fmt"
	"io"

	"github.com/dd0wney/cluso-netplan/pkg/logging"
)

// Options selects and configures a source
type Options struct {
	Kind        string
	DataDir     string
	DatabaseURL string
	Pool        PoolConfig
}

// Open creates the source named by opts.Kind. An empty kind opens the
// embedded seeds.
func Open(ctx context.Context, opts Options, logger logging.Logger) (Source, error) {
	switch opts.Kind {
	case "", KindSeeds:
		return NewSeeds()
	case KindDir:
		return NewDir(opts.DataDir, logger)
	case KindPostgres:
		return NewPostgres(ctx, opts.DatabaseURL, opts.Pool, logger)
	default:
		return nil, fmt.Errorf("unknown source kind %q", opts.Kind)
	}
}

// Close releases the resources held by s, if any
func Close(s Source) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
