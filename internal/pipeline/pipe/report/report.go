// Package report renders the per file visibility report.
package report

import (
	"bytes"

	"github.com/apex/log"
	"github.com/blacktop/intrinsics/internal/pipeline/context"
	"github.com/blacktop/intrinsics/pkg/intrinsics"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Pipe for the report.
type Pipe struct{}

func (Pipe) String() string { return "rendering report" }

// Run renders the report from the exported symbols only, before any patching.
func (Pipe) Run(ctx *context.Context) error {
	var buf bytes.Buffer
	if err := intrinsics.WriteReport(&buf, ctx.Files); err != nil {
		return err
	}
	ctx.Artifacts.Add(ctx.Config.Artifacts.Report, buf.Bytes())

	if name := ctx.Config.Artifacts.ReportHTML; name != "" {
		ctx.Artifacts.Add(name, ToHTML(buf.Bytes()))
		log.WithField("file", name).Debug("rendered html report")
	}
	return nil
}

// ToHTML renders a markdown report as a standalone page.
func ToHTML(md []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	r := html.NewRenderer(html.RendererOptions{
		Title: "Intrinsics by file",
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.ToHTML(md, p, r)
}
