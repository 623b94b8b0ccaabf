package capfs

import (
	"github.com/mwantia/capfs/log"
	"github.com/mwantia/capfs/store"
	"github.com/mwantia/capfs/store/direct"
)

type Options struct {
	Store  store.ObjectStore
	Logger *log.Logger
}

type Option func(*Options) error

func newDefaultOptions() *Options {
	return &Options{
		Store:  direct.NewDirectStore(""),
		Logger: log.Discard(),
	}
}

// WithStore backs the sandbox tree with the given object store instead of
// the local filesystem.
func WithStore(st store.ObjectStore) Option {
	return func(opts *Options) error {
		opts.Store = st
		return nil
	}
}

// WithLogger attaches a logger to the sandbox tree. Navigation is logged
// at debug level, rejected segments at warn.
func WithLogger(logger *log.Logger) Option {
	return func(opts *Options) error {
		opts.Logger = logger.Named("capfs")
		return nil
	}
}

// WithLogLevel adjusts the level of the attached logger.
func WithLogLevel(level log.LogLevel) Option {
	return func(opts *Options) error {
		opts.Logger.Level = level
		return nil
	}
}

func buildOptions(opts ...Option) (*Options, error) {
	options := newDefaultOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	return options, nil
}
