// Package diff classifies the difference between two page signatures.
package diff

import (
	"sort"

	"pagewatch/internal/extract"
)

type Kind string

const (
	// Bootstrap marks the first observation of a target; it establishes
	// the baseline and is not treated as a change.
	Bootstrap Kind = "bootstrap"
	Unchanged Kind = "unchanged"
	Changed   Kind = "changed"
)

// Report describes a detected change. It is derived only for the
// notification text and never persisted.
type Report struct {
	AddedLinks   []string
	RemovedLinks []string
	NewKeywords  []string

	// HashOnly is set when the combined hash differs but no link or
	// keyword difference was captured: the prose changed. A Changed
	// report is never empty.
	HashOnly bool
}

type Result struct {
	Kind   Kind
	Report Report
}

// Classify compares the previously persisted signature (nil before the
// first successful run) with the freshly extracted one. It is pure and
// idempotent: the same pair always yields the same result.
func Classify(old *extract.Signature, cur extract.Signature) Result {
	if old == nil {
		return Result{Kind: Bootstrap}
	}
	if old.CombinedHash == cur.CombinedHash {
		return Result{Kind: Unchanged}
	}

	rep := Report{
		AddedLinks:   setDiff(cur.Links, old.Links),
		RemovedLinks: setDiff(old.Links, cur.Links),
		NewKeywords:  setDiff(cur.Keywords, old.Keywords),
	}
	rep.HashOnly = len(rep.AddedLinks) == 0 && len(rep.RemovedLinks) == 0 && len(rep.NewKeywords) == 0
	return Result{Kind: Changed, Report: rep}
}

// setDiff returns a−b, sorted.
func setDiff(a, b []string) []string {
	if len(a) == 0 {
		return nil
	}
	in := make(map[string]bool, len(b))
	for _, s := range b {
		in[s] = true
	}
	var out []string
	for _, s := range a {
		if !in[s] {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
