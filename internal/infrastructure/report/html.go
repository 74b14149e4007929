package report

import (
	"html/template"
	"io"
	"time"

	"github.com/felixgeelhaar/covergate/internal/domain"
)

var htmlFuncs = template.FuncMap{
	"statusClass": func(s domain.Status) string {
		switch s {
		case domain.StatusPass:
			return "pass"
		case domain.StatusFail:
			return "fail"
		default:
			return "override"
		}
	},
	"barWidth": func(p float64) float64 {
		if p > 100 {
			return 100
		}
		if p < 0 {
			return 0
		}
		return p
	},
	"delta": func(d *float64) string {
		return formatDelta(d)
	},
}

var htmlReport = template.Must(template.New("report").Funcs(htmlFuncs).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Coverage Gate</title>
  <style>
    :root { --pass: #16A34A; --fail: #DC2626; --override: #CA8A04; --muted: #64748b; --border: #e2e8f0; }
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; margin: 2rem auto; max-width: 960px; color: #0f172a; }
    .meta { color: var(--muted); font-size: 0.875rem; }
    .cards { display: flex; gap: 1rem; margin: 1.5rem 0; }
    .card { border: 1px solid var(--border); border-radius: 0.5rem; padding: 0.75rem 1.25rem; }
    .card .label { font-size: 0.75rem; text-transform: uppercase; color: var(--muted); }
    .card .value { font-size: 1.5rem; font-weight: 600; }
    table { width: 100%; border-collapse: collapse; margin-bottom: 1.5rem; }
    th, td { padding: 0.5rem 0.75rem; text-align: left; border-bottom: 1px solid var(--border); }
    th { font-size: 0.75rem; text-transform: uppercase; color: var(--muted); }
    .bar { width: 120px; height: 6px; background: var(--border); border-radius: 3px; display: inline-block; vertical-align: middle; margin-left: 0.5rem; }
    .bar span { display: block; height: 100%; border-radius: 3px; }
    .pass { color: var(--pass); } .bar .pass { background: var(--pass); }
    .fail { color: var(--fail); } .bar .fail { background: var(--fail); }
    .override { color: var(--override); } .bar .override { background: var(--override); }
    .warnings { border: 1px solid var(--override); border-radius: 0.5rem; padding: 0.75rem 1.25rem; }
  </style>
</head>
<body>
  <h1>Coverage Gate</h1>
  <p class="meta">Generated {{.Timestamp}}</p>

  <div class="cards">
    <div class="card"><div class="label">Status</div><div class="value {{if .Passed}}pass{{else}}fail{{end}}">{{if .Passed}}PASS{{else}}FAIL{{end}}</div></div>
    <div class="card"><div class="label">Target</div><div class="value">{{printf "%.1f" .Target}}%</div></div>
    <div class="card"><div class="label">Mean</div><div class="value">{{printf "%.1f" .MeanPercent}}%</div></div>
    <div class="card"><div class="label">Units passing</div><div class="value">{{.PassingCount}}/{{len .Units}}</div></div>
  </div>

  <table>
    <thead><tr><th>Unit</th><th>Coverage</th>{{if .HasDeltas}}<th>Delta</th>{{end}}<th>Status</th></tr></thead>
    <tbody>
    {{- range .Units}}
      <tr>
        <td>{{.Name}}</td>
        <td>{{printf "%.1f" .Percent}}%<span class="bar"><span class="{{statusClass .Status}}" style="width: {{printf "%.0f" (barWidth .Percent)}}%"></span></span></td>
        {{if $.HasDeltas}}<td>{{delta .Delta}}</td>{{end}}
        <td class="{{statusClass .Status}}">{{.Status}}</td>
      </tr>
    {{- end}}
    </tbody>
  </table>

  {{with .Failing}}
  <h2>Failing units</h2>
  <ul>{{range .}}<li>{{.}}</li>{{end}}</ul>
  {{end}}

  {{with .Warnings}}
  <div class="warnings">
    <h3>Warnings</h3>
    <ul>{{range .}}<li>{{.}}</li>{{end}}</ul>
  </div>
  {{end}}

  <p>{{.Summary}}</p>
</body>
</html>
`))

type htmlData struct {
	domain.Result
	Timestamp string
	HasDeltas bool
}

func writeHTML(w io.Writer, result domain.Result, now time.Time) error {
	return htmlReport.Execute(w, htmlData{
		Result:    result,
		Timestamp: now.Format("2006-01-02 15:04:05"),
		HasDeltas: hasDeltas(result),
	})
}
