package organizer

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/arthur-debert/shelf/pkg/errors"
	"github.com/arthur-debert/shelf/pkg/filesystem"
	"github.com/arthur-debert/shelf/pkg/logging"
	"github.com/arthur-debert/shelf/pkg/rules"
	"github.com/arthur-debert/synthfs/pkg/synthfs"
	synthcore "github.com/arthur-debert/synthfs/pkg/synthfs/core"
	synthfsfs "github.com/arthur-debert/synthfs/pkg/synthfs/filesystem"
	"github.com/arthur-debert/synthfs/pkg/synthfs/operations"
	"github.com/rs/zerolog"
)

// Executor runs a plan against the real filesystem through a synthfs
// pipeline. Moves are expressed as copy then delete so a failed copy leaves
// the source untouched.
type Executor struct {
	dryRun  bool
	fs      filesystem.FS
	synthfs synthfs.FileSystem
	logger  zerolog.Logger
}

// NewExecutor creates an executor. With dryRun set, Execute only logs what
// each step would do.
func NewExecutor(fsys filesystem.FS, dryRun bool) *Executor {
	return &Executor{
		dryRun:  dryRun,
		fs:      fsys,
		synthfs: synthfsfs.NewOSFileSystem("/"),
		logger:  logging.GetLogger("organizer.executor"),
	}
}

// Execute performs every step of the plan. The whole plan runs as one
// pipeline; synthfs validates the operation set before touching anything.
func (e *Executor) Execute(ctx context.Context, plan *Plan) error {
	if plan.IsEmpty() {
		e.logger.Info().Msg("nothing to do")
		return nil
	}

	if e.dryRun {
		for _, step := range plan.Steps {
			e.logger.Info().
				Str("rule", step.RuleName).
				Str("source", step.File.Path).
				Str("target", step.Target).
				Msgf("would %s", step.Action)
		}
		return nil
	}

	ops, err := e.buildOperations(plan)
	if err != nil {
		return err
	}

	pipeline := synthfs.NewMemPipeline()
	for _, op := range ops {
		if err := pipeline.Add(op); err != nil {
			return errors.Wrap(err, errors.ErrPlanInvalid,
				"failed to assemble execution pipeline")
		}
	}

	e.logger.Info().
		Int("steps", len(plan.Steps)).
		Int("operations", len(ops)).
		Msg("executing plan")

	result := synthfs.NewExecutor().Run(ctx, pipeline, e.synthfs)
	if result.GetError() != nil {
		return errors.Wrap(result.GetError(), errors.ErrPlanExecute,
			"plan execution failed")
	}

	e.logger.Info().Msg("plan executed")
	return nil
}

// buildOperations lowers plan steps into synthfs operations, creating any
// missing target directories first.
func (e *Executor) buildOperations(plan *Plan) ([]synthfs.Operation, error) {
	var ops []synthfs.Operation

	seenDirs := make(map[string]bool)
	for _, step := range plan.Steps {
		dir := filepath.Dir(step.Target)
		if seenDirs[dir] {
			continue
		}
		seenDirs[dir] = true

		dirOps, err := e.ensureDirOperations(dir)
		if err != nil {
			return nil, err
		}
		ops = append(ops, dirOps...)
	}

	for _, step := range plan.Steps {
		stepOps, err := e.stepOperations(step)
		if err != nil {
			return nil, err
		}
		ops = append(ops, stepOps...)
	}
	return ops, nil
}

// ensureDirOperations emits create-directory operations for every missing
// ancestor of dir, shallowest first.
func (e *Executor) ensureDirOperations(dir string) ([]synthfs.Operation, error) {
	var missing []string
	for d := filepath.Clean(dir); d != "/" && d != "."; d = filepath.Dir(d) {
		if _, err := e.fs.Stat(d); err == nil {
			break
		}
		missing = append([]string{d}, missing...)
	}

	ops := make([]synthfs.Operation, 0, len(missing))
	for _, d := range missing {
		relPath, err := filepath.Rel("/", d)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrPlanInvalid,
				"cannot express path %s", d)
		}

		opID := synthcore.OperationID(fmt.Sprintf("mkdir-%s", d))
		createOp := operations.NewCreateDirectoryOperation(opID, relPath)
		createOp.SetItem(&directoryItem{path: relPath, mode: 0755})
		ops = append(ops, synthfs.NewOperationsPackageAdapter(createOp))
	}
	return ops, nil
}

// stepOperations lowers one plan step
func (e *Executor) stepOperations(step Step) ([]synthfs.Operation, error) {
	relSource, err := filepath.Rel("/", step.File.Path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrPlanInvalid,
			"cannot express path %s", step.File.Path)
	}
	relTarget, err := filepath.Rel("/", step.Target)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrPlanInvalid,
			"cannot express path %s", step.Target)
	}

	copyID := synthcore.OperationID(fmt.Sprintf("copy-%s-to-%s", step.File.Name, step.Target))
	copyOp := operations.NewCopyOperation(copyID, relTarget)
	copyOp.SetPaths(relSource, relTarget)

	switch step.Action {
	case rules.ActionCopy:
		return []synthfs.Operation{synthfs.NewOperationsPackageAdapter(copyOp)}, nil
	default:
		// Move and delete both relocate the file, delete just targets the
		// trash. Copy first, then remove the source.
		deleteID := synthcore.OperationID(fmt.Sprintf("remove-%s", step.File.Path))
		deleteOp := operations.NewDeleteOperation(deleteID, relSource)
		return []synthfs.Operation{
			synthfs.NewOperationsPackageAdapter(copyOp),
			synthfs.NewOperationsPackageAdapter(deleteOp),
		}, nil
	}
}

// directoryItem satisfies the item interface synthfs needs for directory
// creation.
type directoryItem struct {
	path string
	mode fs.FileMode
}

func (d *directoryItem) Path() string       { return d.path }
func (d *directoryItem) Type() string       { return "directory" }
func (d *directoryItem) Mode() fs.FileMode  { return d.mode }
func (d *directoryItem) IsDir() bool        { return true }
func (d *directoryItem) ModTime() time.Time { return time.Now() }
func (d *directoryItem) Size() int64        { return 0 }
