package export

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

//go:embed templates/document.html.tmpl
var documentTemplate string

var documentTmpl = template.Must(template.New("document").Funcs(template.FuncMap{
	"join": joinList,
	"blank": func(s string) bool {
		return strings.TrimSpace(s) == ""
	},
}).Parse(documentTemplate))

// DocumentTitle heads the printable document.
const DocumentTitle = "Custody Documentation"

type documentView struct {
	Title   string
	Start   string
	End     string
	Entries []entryView
}

type entryView struct {
	LongDate         string
	Activities       []string
	CustomActivities []string
	SpecialEvents    []string
	Meals            int
	Notes            string
	Photos           int
}

func newDocumentView(doc *Document) documentView {
	v := documentView{
		Title:   DocumentTitle,
		Start:   doc.Range.Start.String(),
		End:     doc.Range.End.String(),
		Entries: make([]entryView, 0, len(doc.Entries)),
	}
	for _, e := range doc.Entries {
		v.Entries = append(v.Entries, entryView{
			LongDate:         e.Date.Long(),
			Activities:       e.Activities,
			CustomActivities: e.CustomActivities,
			SpecialEvents:    e.SpecialEvents,
			Meals:            e.Meals,
			Notes:            e.Notes,
			Photos:           e.PhotoCount(),
		})
	}
	return v
}

// RenderHTML writes the printable document: title, period subtitle, then one
// section per entry. Optional sections are left out when they have no content.
func RenderHTML(w io.Writer, doc *Document) error {
	if err := documentTmpl.Execute(w, newDocumentView(doc)); err != nil {
		return fmt.Errorf("render document: %w", err)
	}
	return nil
}

// RenderMarkdown writes the printable document converted to Markdown.
func RenderMarkdown(w io.Writer, doc *Document) error {
	var buf bytes.Buffer
	if err := RenderHTML(&buf, doc); err != nil {
		return err
	}

	markdown, err := htmltomarkdown.ConvertString(buf.String())
	if err != nil {
		return fmt.Errorf("convert document to markdown: %w", err)
	}

	_, err = io.WriteString(w, strings.TrimSpace(markdown)+"\n")
	return err
}
