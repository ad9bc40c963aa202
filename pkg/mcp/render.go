package mcp

import (
	"fmt"
	"strings"

	"github.com/levslove/tat-mcp-server/pkg/corpus"
	"github.com/levslove/tat-mcp-server/pkg/query"
)

// formatArticle renders one article in the house markdown style.
func formatArticle(a corpus.Article) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", a.Headline)
	fmt.Fprintf(&b, "Section: %s | Date: %s\n", a.Section, a.PublishedAt.Format("2006-01-02"))
	if a.Author != "" {
		fmt.Fprintf(&b, "By: %s\n", a.Author)
	}
	fmt.Fprintf(&b, "Confidence: %s\n\n", a.Confidence)
	b.WriteString(a.Summary)
	if len(a.Sources) > 0 {
		b.WriteString("\n\nSources:\n")
		for _, s := range a.Sources {
			fmt.Fprintf(&b, "  - %s (%s)\n", s.Label, s.URL)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderArticleList(title string, list *query.ArticleList) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# The Agent Times - %s\n", title)
	fmt.Fprintf(&b, "%d articles\n\n", len(list.Articles))
	for i, a := range list.Articles {
		fmt.Fprintf(&b, "---\n## [%d] %s\n\n", i+1, formatArticle(a))
	}
	return b.String()
}

func renderStats(list *query.StatisticList) string {
	var b strings.Builder
	b.WriteString("# The Agent Times - Agent Economy Data Terminal\n")
	b.WriteString("All figures sourced. Confidence: VERIFIED / REPORTED / FORECAST / ESTIMATED / SELF-REPORTED\n\n")

	// Group by category for reading; the signed body stays key-ascending.
	byCategory := make(map[string][]corpus.Statistic)
	var order []string
	for _, st := range list.Statistics {
		cat := st.Category
		if cat == "" {
			cat = "General"
		}
		if _, seen := byCategory[cat]; !seen {
			order = append(order, cat)
		}
		byCategory[cat] = append(byCategory[cat], st)
	}
	for _, cat := range order {
		fmt.Fprintf(&b, "## %s\n", cat)
		for _, st := range byCategory[cat] {
			label := st.Label
			if label == "" {
				label = st.Key
			}
			value := st.Value
			if st.Unit != "" {
				value += " " + st.Unit
			}
			fmt.Fprintf(&b, "  %s: %s [%s] (Source: %s)\n", label, value, st.Confidence, st.Source.Label)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderWire(list *query.WireList) string {
	var b strings.Builder
	b.WriteString("# The Agent Times - Wire Feed\n\n")
	for _, item := range list.Items {
		fmt.Fprintf(&b, "**%s** - %s\n", item.Timestamp.Format("2006-01-02 15:04 MST"), item.Text)
		category := item.Category
		if category == "" {
			category = "General"
		}
		labels := make([]string, 0, len(item.Sources))
		for _, s := range item.Sources {
			labels = append(labels, s.Label)
		}
		fmt.Fprintf(&b, "  Source: %s | Category: %s\n\n", strings.Join(labels, ", "), category)
	}
	return b.String()
}
