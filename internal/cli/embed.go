package cli

import (
	"context"
	"flag"
	"io"
	"strings"

	"github.com/thebtf/docfind/internal/config"
	"github.com/thebtf/docfind/internal/embed"
)

// EmbedUsage is printed with every embed usage error.
const EmbedUsage = "Usage: embed [-on-no-match warn|fail] <wasmFile> <jsFile>"

// EmbedInvocation is a parsed embed command line.
type EmbedInvocation struct {
	BinaryPath string
	ScriptPath string
	// OnNoMatch overrides the configured policy when set.
	OnNoMatch string
}

// ParseEmbedArgs parses the embed command line. Both paths are required.
func ParseEmbedArgs(args []string) (EmbedInvocation, error) {
	fs := flag.NewFlagSet("embed", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var inv EmbedInvocation
	fs.StringVar(&inv.OnNoMatch, "on-no-match", "", "Policy when the loader has no load statement: warn|fail")

	if err := fs.Parse(args); err != nil {
		return EmbedInvocation{}, usageErrorf(EmbedUsage, "%v", err)
	}

	rest := fs.Args()
	if len(rest) > 0 {
		inv.BinaryPath = strings.TrimSpace(rest[0])
	}
	if len(rest) > 1 {
		inv.ScriptPath = strings.TrimSpace(rest[1])
	}
	switch {
	case inv.BinaryPath == "" && inv.ScriptPath == "":
		return EmbedInvocation{}, &UsageError{Usage: EmbedUsage}
	case inv.BinaryPath == "":
		return EmbedInvocation{}, usageErrorf(EmbedUsage, "missing <wasmFile>")
	case inv.ScriptPath == "":
		return EmbedInvocation{}, usageErrorf(EmbedUsage, "missing <jsFile>")
	case len(rest) > 2:
		return EmbedInvocation{}, usageErrorf(EmbedUsage, "unexpected arguments: %q", strings.Join(rest[2:], " "))
	}
	if inv.OnNoMatch != "" {
		if _, err := embed.ParseNoMatchPolicy(inv.OnNoMatch); err != nil {
			return EmbedInvocation{}, usageErrorf(EmbedUsage, "%v", err)
		}
	}
	return inv, nil
}

// RunEmbed parses args and embeds the artifact into the loader script.
func RunEmbed(ctx context.Context, args []string, cfg *config.Config) (*embed.Report, error) {
	inv, err := ParseEmbedArgs(args)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.Default()
	}

	policy := cfg.Embed.OnNoMatch
	if inv.OnNoMatch != "" {
		policy = inv.OnNoMatch
	}

	e, err := embed.New(embed.Options{
		Pattern: embed.Pattern{
			Keywords:    cfg.Embed.Keywords,
			Variable:    cfg.Embed.Variable,
			ReadCall:    cfg.Embed.ReadCall,
			Replacement: cfg.Embed.Replacement,
		},
		OnNoMatch: embed.NoMatchPolicy(policy),
	})
	if err != nil {
		return nil, err
	}
	return e.Run(ctx, inv.BinaryPath, inv.ScriptPath)
}
