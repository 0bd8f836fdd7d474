package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/dig"

	"github.com/roboware/serialkit/ierrors"
	"github.com/roboware/serialkit/logger"
	"github.com/roboware/serialkit/runtime/workerpool"
	"github.com/roboware/serialkit/serializer/archive"
	"github.com/roboware/serialkit/serializer/extstore"
	"github.com/roboware/serialkit/serializer/stream"
)

type toolDeps struct {
	dig.In

	Params     *Params
	Logger     *logger.Logger
	Registry   *archive.Registry
	Controller *extstore.Controller
	Pool       *workerpool.WorkerPool
	Out        io.Writer
}

type tool struct {
	params     *Params
	log        *logger.Logger
	registry   *archive.Registry
	controller *extstore.Controller
	pool       *workerpool.WorkerPool
	out        io.Writer
}

func newTool(deps toolDeps) *tool {
	return &tool{
		params:     deps.Params,
		log:        deps.Logger,
		registry:   deps.Registry,
		controller: deps.Controller,
		pool:       deps.Pool,
		out:        deps.Out,
	}
}

func (t *tool) execute(ctx context.Context, cmd *command) error {
	switch cmd.name {
	case commandDump:
		return t.dump(cmd.archive)
	case commandSpill:
		return t.spill(ctx, cmd.archive, cmd.out)
	case commandVerify:
		return t.verify(ctx, cmd.archive)
	default:
		return ierrors.Wrapf(errUsage, "unknown command %q", cmd.name)
	}
}

// controllerFor returns the controller for side files next to the archive at path,
// unless a base directory is configured.
func (t *tool) controllerFor(path string) *extstore.Controller {
	if t.params.Store.BaseDir != "" {
		return t.controller
	}

	return t.controller.WithBaseDir(filepath.Dir(path))
}

func (t *tool) readRecords(path string) (records []archive.Serializable, err error) {
	file, err := stream.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = ierrors.Join(err, file.Close())
	}()

	a := archive.New(file, t.registry, archive.WithLogger(t.log))
	if err := a.ForEachObject(func(obj archive.Serializable) error {
		records = append(records, obj)

		return nil
	}); err != nil {
		return nil, ierrors.Wrapf(err, "failed to read record %d of %s", len(records), path)
	}

	t.log.Debugw("read archive", "path", path, "records", len(records))

	return records, nil
}

func (t *tool) writeRecords(path string, records []archive.Serializable) error {
	file, err := stream.CreateFile(path, 0o644)
	if err != nil {
		return err
	}

	a := archive.New(file, t.registry, archive.WithLogger(t.log))
	for i, record := range records {
		if err := a.WriteObject(record); err != nil {
			return ierrors.Join(ierrors.Wrapf(err, "failed to write record %d", i), file.Close())
		}
	}

	return file.Close()
}

// externalizable returns the records owning payloads that can be stored externally and their indices.
func externalizable(records []archive.Serializable) ([]extstore.Externalizable, []int) {
	var (
		objects []extstore.Externalizable
		indices []int
	)
	for i, record := range records {
		if obj, ok := record.(extstore.Externalizable); ok {
			objects = append(objects, obj)
			indices = append(indices, i)
		}
	}

	return objects, indices
}

func (t *tool) dump(path string) error {
	records, err := t.readRecords(path)
	if err != nil {
		return err
	}

	for i, record := range records {
		name, err := t.registry.NameOf(record)
		if err != nil {
			return err
		}

		mode := "-"
		if obj, ok := record.(extstore.Externalizable); ok {
			mode = "embedded"
			if paths := obj.ExternalPaths(); len(paths) > 0 {
				mode = "external:" + strings.Join(paths, ",")
			}
		}

		if _, err := fmt.Fprintf(t.out, "%d\t%s\tv%d\t%s\n", i, name, record.SerializeVersion(), mode); err != nil {
			return err
		}
	}

	return nil
}

func (t *tool) spill(ctx context.Context, path string, out string) error {
	records, err := t.readRecords(path)
	if err != nil {
		return err
	}

	controller := t.controllerFor(out)
	stem := strings.TrimSuffix(filepath.Base(out), filepath.Ext(out))
	objects, indices := externalizable(records)

	if err := extstore.ConvertAll(ctx, t.pool, controller, objects, func(i int) string {
		return fmt.Sprintf("%s_%d", stem, indices[i])
	}); err != nil {
		return ierrors.Wrap(err, "failed to store payloads externally")
	}

	if err := t.writeRecords(out, records); err != nil {
		return err
	}

	stats := controller.Stats()
	t.log.Infow("spilled archive", "path", out, "records", len(records), "sideFiles", stats.Spilled.Load(), "bytes", stats.BytesWritten.Load())
	_, err = fmt.Fprintf(t.out, "spilled %d records to %s\n", len(objects), out)

	return err
}

func (t *tool) verify(ctx context.Context, path string) error {
	records, err := t.readRecords(path)
	if err != nil {
		return err
	}

	controller := t.controllerFor(path)
	objects, indices := externalizable(records)

	var (
		missing   []error
		sideFiles int
	)
	for i, obj := range objects {
		for _, sideFile := range obj.ExternalPaths() {
			sideFiles++

			exists, err := controller.Exists(sideFile)
			if err != nil {
				return err
			}
			if !exists {
				missing = append(missing, ierrors.Wrapf(extstore.ErrMissingExternalFile, "record %d: %s", indices[i], sideFile))
			}
		}
	}

	if len(missing) > 0 {
		for _, err := range missing {
			fmt.Fprintln(t.out, err)
		}

		return ierrors.Join(missing...)
	}

	if err := extstore.LoadAll(ctx, t.pool, controller, objects); err != nil {
		return ierrors.Wrap(err, "failed to load payloads")
	}
	extstore.UnloadAll(controller, objects)

	_, err = fmt.Fprintf(t.out, "ok: %d records, %d side files\n", len(records), sideFiles)

	return err
}
