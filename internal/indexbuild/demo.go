package indexbuild

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/thebtf/docfind/internal/fsutil"
)

const (
	// DefaultInput is the collection used when no profile is selected.
	DefaultInput = "demo/build_index/documents.json"

	// DefaultOutput is where the demo writes the index.
	DefaultOutput = "demo/build_index/index.bin"

	// ProfileSize selects the large collection used for index size checks.
	ProfileSize = "size"
)

// DefaultProfiles maps profile names to document collections.
func DefaultProfiles() map[string]string {
	return map[string]string{
		ProfileSize: "demo/build_index/size.json",
	}
}

// Options configures a Demo. Empty paths fall back to the defaults above.
type Options struct {
	Builder      Builder
	DefaultInput string
	Profiles     map[string]string
	Output       string
	Logger       *zerolog.Logger
}

// Result describes one build.
type Result struct {
	Profile    string
	Input      string
	Output     string
	InputBytes int
	IndexBytes int
}

// Demo reads a document collection, builds its index and writes it out.
type Demo struct {
	builder      Builder
	defaultInput string
	profiles     map[string]string
	output       string
	log          zerolog.Logger
}

// NewDemo creates a Demo.
func NewDemo(opts Options) (*Demo, error) {
	if opts.Builder == nil {
		return nil, errors.New("index builder is required")
	}

	d := &Demo{
		builder:      opts.Builder,
		defaultInput: opts.DefaultInput,
		profiles:     opts.Profiles,
		output:       opts.Output,
		log:          log.Logger,
	}
	if opts.Logger != nil {
		d.log = *opts.Logger
	}
	if d.defaultInput == "" {
		d.defaultInput = DefaultInput
	}
	if d.profiles == nil {
		d.profiles = DefaultProfiles()
	}
	if d.output == "" {
		d.output = DefaultOutput
	}
	d.log = d.log.With().Str("component", "indexbuild").Logger()
	return d, nil
}

// InputFor returns the collection selected by profile. Unknown and empty
// profiles select the default collection.
func (d *Demo) InputFor(profile string) string {
	if path, ok := d.profiles[profile]; ok && path != "" {
		return path
	}
	return d.defaultInput
}

// Run builds the index for profile and overwrites the output file with it.
// Read and builder errors are returned as they are.
func (d *Demo) Run(ctx context.Context, profile string) (*Result, error) {
	input := d.InputFor(profile)
	res := &Result{Profile: profile, Input: input, Output: d.output}

	raw, err := os.ReadFile(input) // #nosec G304 -- input comes from the profile table
	if err != nil {
		return res, err
	}
	res.InputBytes = len(raw)

	index, err := d.builder.Build(ctx, strings.ToValidUTF8(string(raw), "\uFFFD"))
	if err != nil {
		return res, err
	}
	res.IndexBytes = len(index)

	if err := fsutil.WriteFileAtomic(d.output, index, 0644); err != nil {
		return res, err
	}

	d.log.Info().
		Str("input", input).
		Str("output", d.output).
		Int("documents_bytes", res.InputBytes).
		Int("index_bytes", res.IndexBytes).
		Msg("Index built")
	return res, nil
}
