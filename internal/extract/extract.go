// Package extract computes a deterministic content signature from raw
// page markup: a hash of the visible text, the set of linked PDF
// documents, and the status keywords present on the page.
package extract

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// Signature is the persisted fingerprint of one fetched page.
//
// CombinedHash depends only on ContentHash and LinkHash; incidental
// fields (CapturedAt) never affect signature equality.
type Signature struct {
	URL          string    `yaml:"url"`
	ContentHash  string    `yaml:"content_hash"`
	LinkHash     string    `yaml:"link_hash"`
	CombinedHash string    `yaml:"combined_hash"`
	Links        []string  `yaml:"links,omitempty"`
	Keywords     []string  `yaml:"keywords,omitempty"`
	CapturedAt   time.Time `yaml:"captured_at,omitempty"`
}

// DefaultVocabulary holds the status-change terms scanned for when the
// config does not override them.
var DefaultVocabulary = []string{
	"admit card",
	"answer key",
	"call letter",
	"call-up",
	"cancelled",
	"corrigendum",
	"declared",
	"interview",
	"merit list",
	"postponed",
	"published",
	"result",
	"results",
	"schedule",
	"shortlist",
}

// skipElements are never rendered; their text must not influence the
// content hash.
var skipElements = map[string]bool{
	"head":     true,
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"iframe":   true,
}

// Extract is a pure function of its inputs: byte-identical markup and
// canonical URL always yield identical hashes. It performs no I/O and
// leaves CapturedAt zero; the caller stamps it before persisting.
//
// Malformed HTML never fails: the parser consumes what it can.
func Extract(body []byte, canonicalURL string, vocab []string) Signature {
	if len(vocab) == 0 {
		vocab = DefaultVocabulary
	}

	text, links := parsePage(body, canonicalURL)

	contentHash := hashString(text)
	linkHash := hashString(strings.Join(links, "\n"))

	return Signature{
		URL:          canonicalURL,
		ContentHash:  contentHash,
		LinkHash:     linkHash,
		CombinedHash: hashString(contentHash + "|" + linkHash),
		Links:        links,
		Keywords:     matchKeywords(text, vocab),
	}
}

func parsePage(body []byte, canonicalURL string) (text string, links []string) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		// html.Parse only fails on reader errors; a bytes.Reader has none.
		return "", nil
	}

	base, err := url.Parse(canonicalURL)
	if err != nil {
		base = nil
	}

	var b strings.Builder
	seen := map[string]bool{}
	walk(doc, base, &b, seen, &links)

	sort.Strings(links)
	return normalizeSpace(b.String()), links
}

func walk(n *html.Node, base *url.URL, text *strings.Builder, seen map[string]bool, links *[]string) {
	switch n.Type {
	case html.ElementNode:
		if skipElements[n.Data] {
			return
		}
		if n.Data == "a" {
			if link, ok := documentLink(n, base); ok && !seen[link] {
				seen[link] = true
				*links = append(*links, link)
			}
		}
	case html.TextNode:
		text.WriteString(n.Data)
		text.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, base, text, seen, links)
	}
}

// documentLink resolves an anchor's href against the canonical URL and
// keeps it only when it points at a PDF document.
func documentLink(n *html.Node, base *url.URL) (string, bool) {
	var href string
	for _, a := range n.Attr {
		if a.Key == "href" {
			href = strings.TrimSpace(a.Val)
			break
		}
	}
	if href == "" {
		return "", false
	}

	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	// Suffix test on the path only: query strings and fragments do not
	// change what document the link points at.
	if !strings.HasSuffix(strings.ToLower(u.Path), ".pdf") {
		return "", false
	}
	return u.String(), true
}

// normalizeSpace collapses whitespace runs to single spaces and trims,
// so formatting-only churn never changes the content hash.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func matchKeywords(text string, vocab []string) []string {
	lower := strings.ToLower(text)
	seen := map[string]bool{}
	var out []string
	for _, term := range vocab {
		t := strings.ToLower(strings.TrimSpace(term))
		if t == "" || seen[t] {
			continue
		}
		if strings.Contains(lower, t) {
			seen[t] = true
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

func hashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
