package manifest

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"studiodrop/internal/finding"
)

//go:embed report.html.tmpl
var reportTemplate string

var reportTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"bytes": func(n int64) string {
		if n < 0 {
			n = 0
		}
		return humanize.IBytes(uint64(n))
	},
	"when": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.UTC().Format(time.RFC3339)
	},
	"short": func(hash string) string {
		if len(hash) > 12 {
			return hash[:12]
		}
		return hash
	},
	"lower": func(v any) string { return strings.ToLower(fmt.Sprint(v)) },
}).Parse(reportTemplate))

type severityGroup struct {
	Label    string
	Findings []finding.Finding
}

type categoryCount struct {
	Category string
	Files    int
	Bytes    int64
}

type planRow struct {
	PlanItem
	Result *ResultItem
}

type reportView struct {
	*Manifest
	Elapsed    string
	Groups     []severityGroup
	Categories []categoryCount
	Rows       []planRow
}

// RenderReport writes the HTML report for m.
func RenderReport(w io.Writer, m *Manifest) error {
	return reportTmpl.Execute(w, buildView(m))
}

func buildView(m *Manifest) reportView {
	view := reportView{Manifest: m}
	if !m.Run.Timestamp.IsZero() && !m.Run.Finished.IsZero() {
		view.Elapsed = m.Run.Finished.Sub(m.Run.Timestamp).Round(time.Millisecond).String()
	}

	for _, severity := range []finding.Severity{finding.Error, finding.Warning, finding.Info} {
		group := severityGroup{Label: severity.String()}
		for _, f := range m.Findings {
			if f.Severity == severity {
				group.Findings = append(group.Findings, f)
			}
		}
		if len(group.Findings) > 0 {
			view.Groups = append(view.Groups, group)
		}
	}

	byCategory := map[string]*categoryCount{}
	for _, item := range m.Plan {
		c, ok := byCategory[item.Category]
		if !ok {
			c = &categoryCount{Category: item.Category}
			byCategory[item.Category] = c
		}
		c.Files++
		c.Bytes += item.Size
	}
	for _, c := range byCategory {
		view.Categories = append(view.Categories, *c)
	}
	sort.Slice(view.Categories, func(i, j int) bool { return view.Categories[i].Category < view.Categories[j].Category })

	// Results cover a prefix of the plan, in plan order.
	for i, item := range m.Plan {
		row := planRow{PlanItem: item}
		if i < len(m.Results) {
			row.Result = &m.Results[i]
		}
		view.Rows = append(view.Rows, row)
	}
	return view
}
