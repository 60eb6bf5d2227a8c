package monitor

import (
	"fmt"
	"strings"

	"pagewatch/internal/diff"
	"pagewatch/internal/extract"
	"pagewatch/internal/state"
)

// Caps keep a single notification readable and under the transport's
// message size limit; the overflow is summarized as "+N more".
const (
	maxAddedLinks   = 10
	maxRemovedLinks = 5
)

// RenderChange builds the notification text for a changed target.
func RenderChange(t state.Target, rep diff.Report) string {
	var b strings.Builder
	b.WriteString("🔔 Change detected\n")
	b.WriteString(t.URL)

	if rep.HashOnly {
		b.WriteString("\n\nPage content changed (no new documents detected).")
		return b.String()
	}

	if len(rep.AddedLinks) > 0 {
		fmt.Fprintf(&b, "\n\nNew documents (%d):\n", len(rep.AddedLinks))
		writeCapped(&b, "+ ", rep.AddedLinks, maxAddedLinks)
	}
	if len(rep.RemovedLinks) > 0 {
		fmt.Fprintf(&b, "\n\nRemoved documents (%d):\n", len(rep.RemovedLinks))
		writeCapped(&b, "- ", rep.RemovedLinks, maxRemovedLinks)
	}
	if len(rep.NewKeywords) > 0 {
		b.WriteString("\n\nNew keywords: ")
		b.WriteString(strings.Join(rep.NewKeywords, ", "))
	}
	return b.String()
}

// RenderActivation acknowledges that a target's baseline was recorded.
func RenderActivation(t state.Target, sig extract.Signature) string {
	var b strings.Builder
	b.WriteString("✅ Now monitoring\n")
	b.WriteString(t.URL)
	fmt.Fprintf(&b, "\n\nBaseline captured: %d document link(s)", len(sig.Links))
	if len(sig.Keywords) > 0 {
		b.WriteString("\nKeywords present: ")
		b.WriteString(strings.Join(sig.Keywords, ", "))
	}
	return b.String()
}

// RenderFetchWarning reports a fetch failure for one target.
func RenderFetchWarning(t state.Target, err error) string {
	return fmt.Sprintf("⚠️ Fetch failed\n%s\n\n%v\n\nLast known state kept; will retry next run.", t.URL, err)
}

func writeCapped(b *strings.Builder, prefix string, items []string, limit int) {
	n := len(items)
	if n > limit {
		n = limit
	}
	for i := 0; i < n; i++ {
		b.WriteString(prefix)
		b.WriteString(items[i])
		if i < n-1 {
			b.WriteByte('\n')
		}
	}
	if rest := len(items) - n; rest > 0 {
		fmt.Fprintf(b, "\n(+%d more)", rest)
	}
}
