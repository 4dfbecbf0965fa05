package report

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter writes the summary as a Markdown document.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(s *Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, s)
	w.writeStatus(md, s)
	w.writeDistribution(md, s)
	w.writeContents(md, s)
	w.writeSteps(md, s)

	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Generated by [docepub](https://github.com/nao1215/docepub)*")

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, s *Summary) {
	md.H1(s.Title)
	md.PlainText("")

	rows := [][]string{
		{"Source", s.BaseURL},
		{"Started", s.StartedAt.Format("2006-01-02 15:04:05 MST")},
		{"Duration", s.Duration.Round(time.Millisecond).String()},
		{"Pages", strconv.Itoa(s.Pages)},
		{"Images", strconv.Itoa(s.Images)},
		{"Sections", strconv.Itoa(s.Sections)},
	}
	if s.OutputFile != "" {
		rows = append(rows, []string{"Output", "`" + s.OutputFile + "`"})
	}
	if s.Format != "" {
		rows = append(rows, []string{"Format", s.Format})
	}
	if s.Digest != "" {
		rows = append(rows, []string{"SHA3-256", "`" + s.Digest + "`"})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeStatus(md *markdown.Markdown, s *Summary) {
	if s.Succeeded() {
		md.Tip("Build complete.")
	} else {
		md.Cautionf("Build failed: %s", s.Error)
	}
	md.PlainText("")
}

// writeDistribution charts how many sections each top-level chapter holds.
func (w *MarkdownWriter) writeDistribution(md *markdown.Markdown, s *Summary) {
	order, counts := s.TopLevel()
	if len(order) < 2 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Sections per chapter"),
		piechart.WithShowData(true),
	)
	for _, label := range order {
		chart.LabelAndIntValue(label, uint64(counts[label]))
	}

	md.H2("Chapters")
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeContents(md *markdown.Markdown, s *Summary) {
	if len(s.Contents) == 0 {
		return
	}

	md.H2("Contents")
	md.PlainText("")

	rows := make([][]string, 0, len(s.Contents))
	for _, e := range s.Contents {
		label := strings.Repeat("&nbsp;&nbsp;", max(e.Depth-1, 0)) + e.Label
		rows = append(rows, []string{strconv.Itoa(e.Depth), label, "`" + e.Ref + "`"})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Depth", "Title", "Page"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeSteps(md *markdown.Markdown, s *Summary) {
	md.H2("Steps")
	md.PlainText("")
	if len(s.Steps) == 0 {
		md.PlainText("No step completed.")
		md.PlainText("")
		return
	}
	md.BulletList(s.Steps...)
	md.PlainText("")
}
