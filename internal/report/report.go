package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"panelsim/domain/results"
	"panelsim/domain/survey"
)

// Generator renders study statistics as a markdown summary, with optional
// HTML output for the report endpoint.
type Generator struct{}

// NewGenerator creates a report generator
func NewGenerator() *Generator {
	return &Generator{}
}

// Markdown produces a human-readable study summary
func (g *Generator) Markdown(studyName string, stats []results.QuestionStats) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Study Report: %s\n\n", studyName)

	for _, qs := range stats {
		fmt.Fprintf(&b, "## %s\n\n", qs.QuestionText)
		fmt.Fprintf(&b, "- Responses: %d (%d with valid ratings)\n", qs.TotalResponses, qs.ValidRatings)
		fmt.Fprintf(&b, "- Average confidence: %d%%\n", qs.AvgConfidence)

		if qs.Type == survey.TypeOpenEnded {
			if len(qs.Samples) > 0 {
				b.WriteString("\nSampled answers:\n\n")
				for _, s := range qs.Samples {
					fmt.Fprintf(&b, "> %s\n\n", s.Explanation)
				}
			}
			continue
		}

		if qs.ValidRatings > 0 {
			fmt.Fprintf(&b, "- Mean %.2f, median %.2f, std dev %.2f\n", qs.Mean, qs.Median, qs.StdDev)
		}
		if qs.NPS != nil {
			fmt.Fprintf(&b, "- NPS %d (promoters %d%%, passives %d%%, detractors %d%%)\n",
				qs.NPS.Score, qs.NPS.Promoters, qs.NPS.Passives, qs.NPS.Detractors)
		}
		if len(qs.Distribution) > 0 {
			b.WriteString("- Distribution: ")
			parts := make([]string, len(qs.Distribution))
			for i, pct := range qs.Distribution {
				parts[i] = fmt.Sprintf("%d%%", pct)
			}
			b.WriteString(strings.Join(parts, " / "))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ComparisonMarkdown summarizes cross-study trends as a table
func (g *Generator) ComparisonMarkdown(cmp *results.Comparison) string {
	var b strings.Builder

	b.WriteString("# Study Comparison\n\n")
	if len(cmp.Trends) == 0 {
		b.WriteString("No common questions across the supplied studies.\n")
		return b.String()
	}

	b.WriteString("| Question | Change | Trend |\n")
	b.WriteString("|---|---|---|\n")
	for _, t := range cmp.Trends {
		fmt.Fprintf(&b, "| %s | %+d%% | %s |\n", t.QuestionText, t.ChangePercent, t.Direction)
	}
	return b.String()
}

// RenderHTML converts a markdown report to HTML
func (g *Generator) RenderHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer)
}
