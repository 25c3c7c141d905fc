package embed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/thebtf/docfind/internal/fsutil"
)

// Options configures an Embedder.
type Options struct {
	Pattern   Pattern
	OnNoMatch NoMatchPolicy
	// Logger defaults to the global zerolog logger.
	Logger *zerolog.Logger
}

// Report describes a finished run.
type Report struct {
	RunID          string  `json:"run_id"`
	Outcome        Outcome `json:"outcome"`
	BinaryPath     string  `json:"binary_path"`
	ScriptPath     string  `json:"script_path"`
	ArtifactSize   int     `json:"artifact_size"`
	ArtifactSHA256 string  `json:"artifact_sha256,omitempty"`
	EncodedLen     int     `json:"encoded_len"`
	Match          Match   `json:"match"`
	BinaryRemoved  bool    `json:"binary_removed"`
}

// Embedder inlines a binary artifact into a loader script.
type Embedder struct {
	pattern   Pattern
	onNoMatch NoMatchPolicy
	log       zerolog.Logger
}

// New creates an Embedder. A zero Pattern means DefaultPattern.
func New(opts Options) (*Embedder, error) {
	pattern := opts.Pattern
	if len(pattern.Keywords) == 0 && pattern.Variable == "" && pattern.ReadCall == "" && pattern.Replacement == "" {
		pattern = DefaultPattern()
	}
	if err := pattern.Validate(); err != nil {
		return nil, err
	}

	policy, err := ParseNoMatchPolicy(string(opts.OnNoMatch))
	if err != nil {
		return nil, err
	}

	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Embedder{
		pattern:   pattern,
		onNoMatch: policy,
		log:       logger.With().Str("component", "embed").Logger(),
	}, nil
}

// Run embeds the artifact at binaryPath into the script at scriptPath, then
// deletes binaryPath.
//
// The script is replaced atomically. If removing the artifact fails after
// that, the error is returned and the script stays rewritten.
func (e *Embedder) Run(ctx context.Context, binaryPath, scriptPath string) (*Report, error) {
	report := &Report{
		RunID:      uuid.NewString(),
		BinaryPath: binaryPath,
		ScriptPath: scriptPath,
	}
	logger := e.log.With().
		Str("run_id", report.RunID).
		Str("binary", binaryPath).
		Str("script", scriptPath).
		Logger()

	artifact, err := os.ReadFile(binaryPath) // #nosec G304 -- path is a build input
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return e.checkAlreadyEmbedded(report, logger, err)
		}
		return report, fmt.Errorf("read artifact %s: %w", binaryPath, err)
	}
	encoded := Encode(artifact)
	report.ArtifactSize = len(artifact)
	report.ArtifactSHA256 = fsutil.SHA256Hex(artifact)
	report.EncodedLen = len(encoded)

	info, err := os.Stat(scriptPath)
	if err != nil {
		return report, fmt.Errorf("stat script %s: %w", scriptPath, err)
	}
	script, err := os.ReadFile(scriptPath) // #nosec G304 -- path is a build input
	if err != nil {
		return report, fmt.Errorf("read script %s: %w", scriptPath, err)
	}

	result := Rewrite(string(script), encoded, e.pattern)
	report.Outcome = result.Outcome
	report.Match = result.Match

	if result.Outcome == OutcomeNoMatch {
		if e.onNoMatch == NoMatchFail {
			return report, fmt.Errorf("%s: %w", scriptPath, ErrPatternNotFound)
		}
		logger.Warn().
			Str("variable", e.pattern.Variable).
			Str("read_call", e.pattern.ReadCall).
			Msg("No load statement found, script left unchanged and artifact kept")
		return report, nil
	}

	// Earlier embedded statements may precede the match; check only ours.
	payload, ok := ExtractPayload(result.Source[result.Match.Start:], e.pattern)
	if !ok || !bytes.Equal(payload, artifact) {
		return report, fmt.Errorf("%s: %w", scriptPath, ErrVerifyFailed)
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}

	if err := fsutil.WriteFileAtomic(scriptPath, []byte(result.Source), info.Mode().Perm()); err != nil {
		return report, fmt.Errorf("write script %s: %w", scriptPath, err)
	}
	logger.Debug().
		Int("match_start", result.Match.Start).
		Int("match_end", result.Match.End).
		Int("match_bytes", result.Match.Len()).
		Msg("Script rewritten")

	removed, err := fsutil.RemoveIfExists(binaryPath)
	if err != nil {
		return report, fmt.Errorf("remove artifact %s (script already rewritten): %w", binaryPath, err)
	}
	report.BinaryRemoved = removed

	logger.Info().
		Int("artifact_bytes", report.ArtifactSize).
		Int("encoded_bytes", report.EncodedLen).
		Str("sha256", report.ArtifactSHA256).
		Msg("Artifact embedded")
	return report, nil
}

// checkAlreadyEmbedded handles a missing artifact. A script embedded by an
// earlier run makes the re-run a no-op; anything else is an error.
func (e *Embedder) checkAlreadyEmbedded(report *Report, logger zerolog.Logger, readErr error) (*Report, error) {
	script, err := os.ReadFile(report.ScriptPath) // #nosec G304 -- path is a build input
	if err == nil && IsEmbedded(string(script), e.pattern) {
		report.Outcome = OutcomeAlreadyEmbedded
		logger.Info().Msg("Artifact already embedded, nothing to do")
		return report, nil
	}
	return report, fmt.Errorf("read artifact %s: %w: %w", report.BinaryPath, ErrArtifactMissing, readErr)
}
