package embed

// Outcome is what a rewrite or an embed run did to the loader script.
type Outcome string

const (
	// OutcomeRewritten means the load statement was replaced.
	OutcomeRewritten Outcome = "rewritten"
	// OutcomeNoMatch means no load statement was found; the script is untouched.
	OutcomeNoMatch Outcome = "no_match"
	// OutcomeAlreadyEmbedded means an earlier run already embedded the
	// artifact and removed it.
	OutcomeAlreadyEmbedded Outcome = "already_embedded"
)

// Result is the outcome of Rewrite.
type Result struct {
	Outcome Outcome
	// Source is the rewritten script, or the input unchanged on no match.
	Source string
	// Match is the replaced span of the input. Zero on no match.
	Match Match
}

// Rewrite replaces the first load statement in src with a statement that
// decodes encoded. Policy for a missing statement is left to the caller.
func Rewrite(src, encoded string, p Pattern) Result {
	m, ok := FindLoadStatement(src, p)
	if !ok {
		return Result{Outcome: OutcomeNoMatch, Source: src}
	}
	return Result{
		Outcome: OutcomeRewritten,
		Source:  src[:m.Start] + p.Statement(encoded) + src[m.End:],
		Match:   m,
	}
}
