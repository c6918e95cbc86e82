package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/conneroisu/tsvalidate/internal/diagnostics"
)

const htmlStyle = `body{font-family:system-ui,sans-serif;margin:2rem;color:#1f2328}
.set{border:1px solid #d0d7de;border-radius:6px;margin-bottom:1.5rem;padding:1rem}
.valid h2{color:#1a7f37}.invalid h2{color:#cf222e}
table{border-collapse:collapse;width:100%}td,th{text-align:left;padding:.25rem .5rem;border-top:1px solid #d0d7de}
.error{color:#cf222e}.warning{color:#9a6700}code{font-family:ui-monospace,monospace}`

// HTML returns a standalone HTML page listing every entry.
func HTML(entries []Entry, opts Options) templ.Component {
	title := opts.Title
	if title == "" {
		title = "TypeScript validation report"
	}

	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<!DOCTYPE html>\n<html lang=\"en\"><head><meta charset=\"utf-8\">")
		fmt.Fprintf(&b, "<title>%s</title><style>%s</style></head><body>", templ.EscapeString(title), htmlStyle)
		fmt.Fprintf(&b, "<h1>%s</h1>", templ.EscapeString(title))

		for _, e := range entries {
			if err := ctx.Err(); err != nil {
				return err
			}
			writeEntry(&b, e)
		}

		b.WriteString("</body></html>\n")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeEntry(b *strings.Builder, e Entry) {
	doc := NewDocument(e)
	name := doc.Name
	if name == "" {
		name = "file set"
	}

	class, verdict := "valid", "valid"
	if !doc.IsValid {
		class, verdict = "invalid", "invalid"
	}
	if e.Err != nil {
		verdict = "rejected"
	}

	fmt.Fprintf(b, `<section class="set %s" data-valid="%t">`, class, doc.IsValid)
	fmt.Fprintf(b, "<h2>%s: %s</h2>", templ.EscapeString(name), verdict)

	if e.Err != nil {
		fmt.Fprintf(b, `<p class="error">%s</p></section>`, templ.EscapeString(doc.Error))
		return
	}

	fmt.Fprintf(b, "<p>%d errors, %d warnings in %d files</p>", doc.Summary.Errors, doc.Summary.Warnings, doc.Summary.Files)
	if len(doc.Errors) == 0 {
		b.WriteString("</section>")
		return
	}

	b.WriteString("<table><thead><tr><th>File</th><th>Line</th><th>Column</th><th>Severity</th><th>Code</th><th>Message</th></tr></thead><tbody>")
	paths, groups := diagnostics.ByFile(doc.Errors)
	for _, p := range paths {
		file := p
		if file == "" {
			file = "(file set)"
		}
		for _, d := range groups[p] {
			fmt.Fprintf(b, `<tr class="%s"><td><code>%s</code></td><td>%d</td><td>%d</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
				templ.EscapeString(string(d.Severity)),
				templ.EscapeString(file),
				d.Line, d.Column,
				templ.EscapeString(string(d.Severity)),
				templ.EscapeString(d.Code),
				templ.EscapeString(d.Message),
			)
		}
	}
	b.WriteString("</tbody></table></section>")
}
