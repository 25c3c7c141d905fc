package cli

import (
	"context"
	"flag"
	"io"
	"strings"

	"github.com/thebtf/docfind/internal/config"
	"github.com/thebtf/docfind/internal/indexbuild"
)

// BuildIndexUsage is printed with every build-index usage error.
const BuildIndexUsage = "Usage: build-index [-watch] [profile]"

// BuildIndexInvocation is a parsed build-index command line.
type BuildIndexInvocation struct {
	// Profile selects the document collection; empty selects the default.
	Profile string
	Watch   bool
}

// ParseBuildIndexArgs parses the build-index command line: optional flags
// and at most one profile name.
func ParseBuildIndexArgs(args []string) (BuildIndexInvocation, error) {
	fs := flag.NewFlagSet("build-index", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var inv BuildIndexInvocation
	fs.BoolVar(&inv.Watch, "watch", false, "Rebuild whenever the document collection changes")

	if err := fs.Parse(args); err != nil {
		return BuildIndexInvocation{}, usageErrorf(BuildIndexUsage, "%v", err)
	}
	rest := fs.Args()
	if len(rest) > 1 {
		return BuildIndexInvocation{}, usageErrorf(BuildIndexUsage, "unexpected arguments: %q", strings.Join(rest[1:], " "))
	}
	if len(rest) == 1 {
		inv.Profile = rest[0]
	}
	return inv, nil
}

// NewCommandBuilder returns the external builder described by cfg.
func NewCommandBuilder(cfg *config.Config) *indexbuild.CommandBuilder {
	return &indexbuild.CommandBuilder{
		Path: cfg.Index.Builder,
		Args: cfg.Index.BuilderArgs,
	}
}

// RunBuildIndex parses args and builds the index once, or keeps rebuilding
// it with -watch until ctx is done.
func RunBuildIndex(ctx context.Context, args []string, cfg *config.Config, builder indexbuild.Builder) (*indexbuild.Result, error) {
	inv, err := ParseBuildIndexArgs(args)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if builder == nil {
		builder = NewCommandBuilder(cfg)
	}

	demo, err := indexbuild.NewDemo(indexbuild.Options{
		Builder:      builder,
		DefaultInput: cfg.Index.DefaultInput,
		Profiles:     cfg.Index.Profiles,
		Output:       cfg.Index.Output,
	})
	if err != nil {
		return nil, err
	}

	if inv.Watch {
		return nil, demo.Watch(ctx, inv.Profile)
	}
	return demo.Run(ctx, inv.Profile)
}
