// Package commands implements the entitymeta CLI.
package commands

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/entitymeta/internal/cache"
	"github.com/conduit-lang/entitymeta/internal/cli/config"
	"github.com/conduit-lang/entitymeta/internal/cli/ui"
	"github.com/conduit-lang/entitymeta/internal/logging"
	"github.com/conduit-lang/entitymeta/internal/orm/introspect"
	"github.com/conduit-lang/entitymeta/internal/orm/metadata"
)

// skipSetup marks commands that run without config, logger or cache
const skipSetup = "entitymeta/skip-setup"

type globalOptions struct {
	configPath string
	format     string
	noColor    bool
	verbose    bool
}

// app is the state shared by the subcommands. setup fills it before any
// subcommand runs.
type app struct {
	registry *introspect.Registry
	opts     globalOptions

	config  *config.Config
	format  ui.Format
	logger  *zap.Logger
	cache   cache.Cache
	factory *metadata.CachingFactory
}

func (a *app) setup(cmd *cobra.Command) error {
	format, err := ui.ParseFormat(a.opts.format)
	if err != nil {
		return err
	}
	a.format = format

	if a.opts.noColor {
		color.NoColor = true
	}

	cfg, err := config.Load(a.opts.configPath)
	if err != nil {
		return err
	}
	a.config = cfg

	logger, err := logging.New(cfg.LogOptions(a.opts.verbose))
	if err != nil {
		return err
	}
	a.logger = logger

	if err := cfg.ApplyDiscriminators(a.registry); err != nil {
		return err
	}

	c, err := cache.New(cmd.Context(), cfg.CacheOptions(), logger)
	if err != nil {
		return err
	}
	a.cache = c

	inner := metadata.NewFactory(a.registry, metadata.WithLogger(logger))
	a.factory = metadata.NewCachingFactory(inner, c, logger)

	logger.Debug("cli ready",
		zap.String("command", cmd.CommandPath()),
		zap.Int("entities", a.registry.Count()),
		zap.String("cache", cfg.Cache.Backend))
	return nil
}

func (a *app) teardown() error {
	var errs []error
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	if a.logger != nil {
		// stderr cannot always be synced; the error is not actionable
		_ = a.logger.Sync()
	}
	return errors.Join(errs...)
}

// find resolves an entity name, suggesting close short names when it is
// unknown
func (a *app) find(name string) (*introspect.Class, error) {
	class, err := a.registry.Find(name)
	if errors.Is(err, introspect.ErrUnknownClass) {
		suggestions := ui.FindSimilar(name, a.shortNames(), 3)
		return nil, errors.New(ui.EntityNotFoundError(name, suggestions, a.opts.noColor))
	}
	return class, err
}

// classes resolves the given names, or every registered entity when none
// is given
func (a *app) classes(names []string) ([]*introspect.Class, error) {
	if len(names) == 0 {
		names = a.registry.Names()
	}

	classes := make([]*introspect.Class, 0, len(names))
	for _, name := range names {
		class, err := a.find(name)
		if err != nil {
			return nil, err
		}
		classes = append(classes, class)
	}
	return classes, nil
}

// metadata builds the metadata of each class in order
func (a *app) metadata(ctx context.Context, classes []*introspect.Class) ([]*metadata.EntityMetadata, error) {
	metas := make([]*metadata.EntityMetadata, 0, len(classes))
	for _, class := range classes {
		meta, err := a.factory.CreateMetadataContext(ctx, class.Name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", class.ShortName(), err)
		}
		metas = append(metas, meta)
	}
	return metas, nil
}

func (a *app) shortNames() []string {
	var names []string
	for _, name := range a.registry.Names() {
		_, short := introspect.SplitQualifiedName(name)
		names = append(names, short)
	}
	sort.Strings(names)
	return names
}
