package main

import (
	"io"

	"go.uber.org/dig"

	"github.com/roboware/serialkit/ierrors"
	"github.com/roboware/serialkit/kvstore"
	"github.com/roboware/serialkit/kvstore/badger"
	"github.com/roboware/serialkit/kvstore/mapdb"
	"github.com/roboware/serialkit/logger"
	"github.com/roboware/serialkit/obs"
	"github.com/roboware/serialkit/runtime/options"
	"github.com/roboware/serialkit/runtime/workerpool"
	"github.com/roboware/serialkit/scene"
	"github.com/roboware/serialkit/serializer/archive"
	"github.com/roboware/serialkit/serializer/extstore"
	"github.com/roboware/serialkit/serializer/stream"
)

// storeBackend is the configured side file backend and the key-value store behind it, if any.
type storeBackend struct {
	extstore.Backend

	store kvstore.KVStore
}

func (b *storeBackend) Close() error {
	if b.store == nil {
		return nil
	}

	return b.store.Close()
}

func buildContainer(params *Params, out io.Writer) (*dig.Container, error) {
	container := dig.New()

	for _, provider := range []any{
		func() *Params { return params },
		func() io.Writer { return out },
		provideLogger,
		provideRegistry,
		provideBackend,
		provideController,
		provideWorkerPool,
		newTool,
	} {
		if err := container.Provide(provider); err != nil {
			return nil, ierrors.Wrap(err, "failed to provide component")
		}
	}

	return container, nil
}

func provideLogger(params *Params) (*logger.Logger, error) {
	return logger.NewRootLogger(params.Logger)
}

func provideRegistry(log *logger.Logger) (*archive.Registry, error) {
	registry := archive.NewRegistry(archive.WithRegistryLogger(log.Named("registry")))

	if err := obs.RegisterClasses(registry); err != nil {
		return nil, err
	}
	if err := scene.RegisterClasses(registry); err != nil {
		return nil, err
	}

	return registry, nil
}

func provideBackend(params *Params, log *logger.Logger) (*storeBackend, error) {
	switch params.Store.Backend {
	case extstore.BackendFile, "":
		return &storeBackend{Backend: extstore.NewFileBackend()}, nil

	case extstore.BackendMemory:
		log.Warn("side files of the memory backend are lost when the tool exits")
		store := mapdb.NewMapDB()

		return &storeBackend{Backend: extstore.NewKVBackend(store), store: store}, nil

	case extstore.BackendBadger:
		if params.Store.BadgerDir == "" {
			return nil, ierrors.New("the badger backend needs store.badgerdir")
		}

		db, err := badger.CreateDB(params.Store.BadgerDir)
		if err != nil {
			return nil, err
		}
		store := badger.New(db)
		log.Infow("opened side file database", "directory", params.Store.BadgerDir)

		return &storeBackend{Backend: extstore.NewKVBackend(store), store: store}, nil

	default:
		return nil, ierrors.Errorf("unknown backend %q", params.Store.Backend)
	}
}

func provideController(params *Params, backend *storeBackend, registry *archive.Registry, log *logger.Logger) (*extstore.Controller, error) {
	compression, err := stream.ParseCompression(params.Store.Compression)
	if err != nil {
		return nil, err
	}

	return extstore.NewController(
		extstore.WithBaseDirectory(params.Store.BaseDir),
		extstore.WithBackend(backend.Backend),
		extstore.WithCompression(compression),
		extstore.WithRegistry(registry),
		extstore.WithControllerLogger(log.Named("extstore")),
	), nil
}

func provideWorkerPool(params *Params) (*workerpool.WorkerPool, error) {
	var opts []options.Option[workerpool.WorkerPool]
	if params.Store.Workers > 0 {
		opts = append(opts, workerpool.WithWorkerCount(params.Store.Workers))
	}

	return workerpool.New("archivetool", opts...)
}
