// Package deploy packages a dashboard app with the shared dashboard library
// and hands it to the deployment CLI.
//
// A deploy builds a wheel of the library into the app directory, exports the
// app's locked dependencies to requirements.txt, appends a "./<wheel>" line
// for every wheel in the app directory, and runs the deploy command. Wheels
// created by the run are removed afterwards whether the later steps succeeded
// or not.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"nerisdash/pkg/logger"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// RequirementsFile is written into the app directory.
const RequirementsFile = "requirements.txt"

// Command placeholders, expanded in every argument.
const (
	AppPlaceholder     = "{app}"
	LibraryPlaceholder = "{lib}"
	NamePlaceholder    = "{name}"
)

// Options configures a deploy. Commands are argv lists and may use the
// placeholders; they run in the app directory.
type Options struct {
	// LibraryPath is the shared library package built into a wheel.
	LibraryPath   string
	BuildCommand  []string
	ExportCommand []string
	DeployCommand []string
}

// DefaultOptions builds with uv and deploys with the de CLI.
func DefaultOptions(libraryPath string) Options {
	return Options{
		LibraryPath:   libraryPath,
		BuildCommand:  []string{"uv", "build", "--wheel", "--out-dir", AppPlaceholder, LibraryPlaceholder},
		ExportCommand: []string{"uv", "export", "--no-hashes", "--no-emit-workspace", "--output-file", RequirementsFile},
		DeployCommand: []string{"de", "deploy", NamePlaceholder},
	}
}

// Deployer runs deploys.
type Deployer struct {
	runner Runner
	opts   Options
}

// New builds a Deployer.
func New(runner Runner, opts Options) *Deployer {
	return &Deployer{runner: runner, opts: opts}
}

func wheels(dir string) (map[string]bool, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.whl"))
	if err != nil {
		return nil, fmt.Errorf("could not list wheels: %w", err)
	}
	out := make(map[string]bool, len(matches))
	for _, m := range matches {
		out[filepath.Base(m)] = true
	}

	return out, nil
}

func (d *Deployer) run(ctx context.Context, dir string, argv []string, expand *strings.Replacer) error {
	if len(argv) == 0 {
		return errors.New("empty command")
	}
	args := make([]string, len(argv))
	for i, a := range argv {
		args[i] = expand.Replace(a)
	}

	return d.runner.Run(ctx, dir, args[0], args[1:]...) //nolint: wrapcheck
}

// Deploy deploys the app at appPath as name. Any failing step aborts the
// remaining ones.
func (d *Deployer) Deploy(ctx context.Context, appPath, name string) (err error) {
	appPath, err = filepath.Abs(appPath)
	if err != nil {
		return fmt.Errorf("could not resolve app path: %w", err)
	}
	lib, err := filepath.Abs(d.opts.LibraryPath)
	if err != nil {
		return fmt.Errorf("could not resolve library path: %w", err)
	}
	expand := strings.NewReplacer(AppPlaceholder, appPath, LibraryPlaceholder, lib, NamePlaceholder, name)

	before, err := wheels(appPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := cleanup(ctx, appPath, before); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	if err := d.run(ctx, appPath, d.opts.BuildCommand, expand); err != nil {
		return fmt.Errorf("could not build library wheel: %w", err)
	}
	if err := d.run(ctx, appPath, d.opts.ExportCommand, expand); err != nil {
		return fmt.Errorf("could not export requirements: %w", err)
	}
	if err := appendWheels(appPath); err != nil {
		return err
	}
	if err := d.run(ctx, appPath, d.opts.DeployCommand, expand); err != nil {
		return fmt.Errorf("could not deploy %s: %w", name, err)
	}
	logger.Info(ctx, "deployed", zap.String("app", name))

	return nil
}

// appendWheels adds a "./<wheel>" requirement per wheel in dir.
func appendWheels(dir string) error {
	found, err := wheels(dir)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(found))
	for name := range found {
		names = append(names, name)
	}
	slices.Sort(names)

	f, err := os.OpenFile(filepath.Join(dir, RequirementsFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint: gosec
	if err != nil {
		return fmt.Errorf("could not open requirements: %w", err)
	}
	defer f.Close()

	for _, name := range names {
		if _, err := fmt.Fprintf(f, "./%s\n", name); err != nil {
			return fmt.Errorf("could not append wheel requirement: %w", err)
		}
	}

	return nil
}

// cleanup removes the wheels of dir that were not there before the deploy.
func cleanup(ctx context.Context, dir string, before map[string]bool) error {
	after, err := wheels(dir)
	if err != nil {
		return err
	}

	var errs []error
	for name := range after {
		if before[name] {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			errs = append(errs, fmt.Errorf("could not remove %s: %w", name, err))

			continue
		}
		logger.Debug(ctx, "removed wheel", zap.String("wheel", name))
	}

	return errors.Join(errs...)
}
