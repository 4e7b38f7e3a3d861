// Package format provides output formatting utilities for CLI display.
//
// Command implementations stay focused on calling the service while this
// package handles presentation: column alignment, grouping and the markdown
// that terminals render with glamour.
package format

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jpl-au/smartbar/internal/indexer"
	"github.com/jpl-au/smartbar/internal/search"
	"github.com/jpl-au/smartbar/internal/service"
)

// HumanSize formats a byte count as human-readable (e.g., "1.2K", "3.4M").
func HumanSize(bytes int64) string {
	const (
		_        = iota
		KB int64 = 1 << (10 * iota)
		MB
		GB
	)
	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1fG", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1fM", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1fK", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%dB", bytes)
	}
}

// Hits prints hits one per line: kind, title, status and edit URL, with the
// title column aligned.
func Hits(w io.Writer, hits []search.Hit) error {
	if len(hits) == 0 {
		return nil
	}
	maxTitle := 5 // minimum "TITLE"
	for _, h := range hits {
		maxTitle = max(maxTitle, len(h.Title))
	}
	maxTitle = min(maxTitle, 60)

	fmt.Fprintf(w, "%-7s  %-*s  %-20s  %s\n", "TYPE", maxTitle, "TITLE", "STATUS", "URL")
	for _, h := range hits {
		fmt.Fprintf(w, "%-7s  %-*s  %-20s  %s\n", h.Kind, maxTitle, truncate(h.Title, maxTitle), truncate(h.Status, 20), h.URL)
	}
	return nil
}

// HitsMarkdown renders hits as markdown grouped under a heading per kind,
// keeping the palette order.
func HitsMarkdown(w io.Writer, query string, hits []search.Hit) error {
	fmt.Fprintf(w, "# Results for \"%s\"\n\n", query)
	if len(hits) == 0 {
		fmt.Fprintln(w, "_No results._")
		return nil
	}
	kind := ""
	for _, h := range hits {
		if h.Kind != kind {
			kind = h.Kind
			fmt.Fprintf(w, "\n## %s\n\n", kind)
		}
		fmt.Fprintf(w, "- [%s](%s) `%s`", escape(h.Title), h.URL, h.Status)
		if h.ViewURL != "" {
			fmt.Fprintf(w, " ([view](%s))", h.ViewURL)
		}
		fmt.Fprintln(w)
	}
	return nil
}

// Stats prints index statistics with per-kind counts sorted by kind.
func Stats(w io.Writer, st service.Stats) error {
	fmt.Fprintf(w, "Documents:    %d\n", st.Documents)
	fmt.Fprintf(w, "Index size:   %s\n", HumanSize(st.SizeBytes))
	fmt.Fprintf(w, "Search types: %s\n", strings.Join(st.SearchTypes, ", "))
	kinds := make([]string, 0, len(st.ByKind))
	for k := range st.ByKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(w, "  %-12s %d\n", k, st.ByKind[k])
	}
	return nil
}

// Rebuild prints a reindex summary.
func Rebuild(w io.Writer, r indexer.RebuildResult) error {
	fmt.Fprintf(w, "Indexed %d documents in %.2fs", r.Count, r.Seconds)
	if r.Failed > 0 {
		fmt.Fprintf(w, " (%d failed)", r.Failed)
	}
	fmt.Fprintln(w)
	if r.OptimizeErr != nil {
		fmt.Fprintf(w, "warning: optimise failed: %v\n", r.OptimizeErr)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

var mdEscaper = strings.NewReplacer("[", `\[`, "]", `\]`, "*", `\*`, "_", `\_`)

func escape(s string) string {
	return mdEscaper.Replace(s)
}
