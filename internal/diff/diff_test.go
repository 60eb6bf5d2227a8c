package diff

import (
	"reflect"
	"testing"

	"pagewatch/internal/extract"
)

func sig(combined string, links, keywords []string) extract.Signature {
	return extract.Signature{
		CombinedHash: combined,
		Links:        links,
		Keywords:     keywords,
	}
}

func TestClassifyBootstrap(t *testing.T) {
	t.Parallel()
	res := Classify(nil, sig("h1", nil, nil))
	if res.Kind != Bootstrap {
		t.Fatalf("Kind = %v, want %v", res.Kind, Bootstrap)
	}
}

func TestClassifyUnchanged(t *testing.T) {
	t.Parallel()
	old := sig("same", []string{"a"}, nil)
	res := Classify(&old, sig("same", []string{"a"}, nil))
	if res.Kind != Unchanged {
		t.Fatalf("Kind = %v, want %v", res.Kind, Unchanged)
	}
}

func TestClassifyChanged(t *testing.T) {
	t.Parallel()
	old := sig("h1", []string{"A", "B"}, []string{"interview"})
	cur := sig("h2", []string{"B", "C"}, []string{"interview", "results"})

	res := Classify(&old, cur)
	if res.Kind != Changed {
		t.Fatalf("Kind = %v, want %v", res.Kind, Changed)
	}
	if want := []string{"C"}; !reflect.DeepEqual(res.Report.AddedLinks, want) {
		t.Fatalf("AddedLinks = %v, want %v", res.Report.AddedLinks, want)
	}
	if want := []string{"A"}; !reflect.DeepEqual(res.Report.RemovedLinks, want) {
		t.Fatalf("RemovedLinks = %v, want %v", res.Report.RemovedLinks, want)
	}
	if want := []string{"results"}; !reflect.DeepEqual(res.Report.NewKeywords, want) {
		t.Fatalf("NewKeywords = %v, want %v", res.Report.NewKeywords, want)
	}
	if res.Report.HashOnly {
		t.Fatal("HashOnly set despite concrete differences")
	}
}

func TestClassifyHashOnlyFallback(t *testing.T) {
	t.Parallel()
	// Prose changed; links and keywords did not. The report must never be
	// empty when hashes differ.
	old := sig("h1", []string{"A"}, []string{"results"})
	cur := sig("h2", []string{"A"}, []string{"results"})

	res := Classify(&old, cur)
	if res.Kind != Changed {
		t.Fatalf("Kind = %v, want %v", res.Kind, Changed)
	}
	if !res.Report.HashOnly {
		t.Fatal("expected HashOnly fallback for prose-only change")
	}
}

func TestClassifyIdempotent(t *testing.T) {
	t.Parallel()
	old := sig("h1", []string{"A", "B"}, nil)
	cur := sig("h2", []string{"B", "C"}, []string{"shortlist"})

	first := Classify(&old, cur)
	second := Classify(&old, cur)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("classification not idempotent: %+v vs %+v", first, second)
	}
}

func TestClassifyRemovedOnly(t *testing.T) {
	t.Parallel()
	old := sig("h1", []string{"A", "B"}, nil)
	cur := sig("h2", []string{"B"}, nil)

	res := Classify(&old, cur)
	if want := []string{"A"}; !reflect.DeepEqual(res.Report.RemovedLinks, want) {
		t.Fatalf("RemovedLinks = %v, want %v", res.Report.RemovedLinks, want)
	}
	if res.Report.AddedLinks != nil {
		t.Fatalf("AddedLinks = %v, want none", res.Report.AddedLinks)
	}
	if res.Report.HashOnly {
		t.Fatal("HashOnly set despite removed link")
	}
}
