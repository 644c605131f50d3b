package report

import (
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/Banumathkovinda/web-app-security-tester/internal/model"
)

// HTMLWriter outputs reports as self-contained HTML documents.
// The output embeds its styling so the file can be opened or emailed
// without any supporting assets.
//
// Design decision: We use html/template rather than string concatenation
// because it escapes finding values automatically. Findings contain
// attacker-influenced strings (header values, payloads, URLs), so the
// report itself must not become an XSS vector.
type HTMLWriter struct {
	baseWriter

	tmpl *template.Template
}

// severityGroup is a severity bucket prepared for template rendering.
type severityGroup struct {
	Name     string
	Class    string
	Findings []model.Finding
}

// htmlReportData is the root template context.
type htmlReportData struct {
	Report   *model.ScanReport
	Groups   []severityGroup
	Status   string
	Duration string
}

const htmlReportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Security Report - {{.Report.TargetURL}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2rem auto; max-width: 60rem; color: #1e293b; }
h1 { border-bottom: 2px solid #1e293b; padding-bottom: 0.3rem; }
table { border-collapse: collapse; margin: 1rem 0; width: 100%; }
th, td { border: 1px solid #cbd5e1; padding: 0.4rem 0.7rem; text-align: left; }
th { background: #1e293b; color: #fff; }
.critical { color: #dc2626; }
.high { color: #ea580c; }
.medium { color: #ca8a04; }
.low { color: #2563eb; }
.info { color: #6b7280; }
.finding { border: 1px solid #cbd5e1; border-radius: 4px; padding: 0.7rem 1rem; margin: 0.6rem 0; }
.finding h4 { margin: 0 0 0.4rem; }
.meta { color: #64748b; font-size: 0.9rem; }
.note { background: #fef9c3; border: 1px solid #ca8a04; padding: 0.5rem 1rem; border-radius: 4px; }
</style>
</head>
<body>
<h1>Web Application Security Report</h1>
<table>
<tr><th>Property</th><th>Value</th></tr>
<tr><td>Target</td><td>{{.Report.TargetURL}}</td></tr>
<tr><td>Scan ID</td><td>{{.Report.ScanID}}</td></tr>
<tr><td>Scan date</td><td>{{.Report.StartTime.Format "2006-01-02 15:04:05 MST"}}</td></tr>
<tr><td>Duration</td><td>{{.Duration}}</td></tr>
<tr><td>Status</td><td>{{.Status}}</td></tr>
</table>
{{if .Report.BrowserScanSkipped}}<p class="note">Browser-automation checks were skipped because this environment cannot launch a browser. Run the scan on a full host for complete coverage.</p>{{end}}
<h2>Severity Summary</h2>
<table>
<tr><th>Severity</th><th>Count</th></tr>
<tr><td class="critical">Critical</td><td>{{.Report.Stats.CriticalCount}}</td></tr>
<tr><td class="high">High</td><td>{{.Report.Stats.HighCount}}</td></tr>
<tr><td class="medium">Medium</td><td>{{.Report.Stats.MediumCount}}</td></tr>
<tr><td class="low">Low</td><td>{{.Report.Stats.LowCount}}</td></tr>
<tr><td class="info">Info</td><td>{{.Report.Stats.InfoCount}}</td></tr>
</table>
<h2>Findings</h2>
{{if not .Report.HasFindings}}<p>No security findings detected.</p>{{end}}
{{range .Groups}}
<h3 class="{{.Class}}">{{.Name}} ({{len .Findings}})</h3>
{{range .Findings}}
<div class="finding">
<h4>{{.Title}}</h4>
{{if .Description}}<p>{{.Description}}</p>{{end}}
{{if .Value}}<p class="meta">Value: <code>{{.Value}}</code></p>{{end}}
{{if .Location}}<p class="meta">Location: {{.Location}}</p>{{end}}
{{if .Remediation}}<p class="meta">Remediation: {{.Remediation}}</p>{{end}}
</div>
{{end}}
{{end}}
<hr>
<p class="meta">Report generated by webscan</p>
</body>
</html>
`

// NewHTMLWriter creates an HTMLWriter that outputs to the given writer.
func NewHTMLWriter(output io.Writer) *HTMLWriter {
	return &HTMLWriter{
		baseWriter: newBaseWriter(output),
		tmpl:       template.Must(template.New("report").Parse(htmlReportTemplate)),
	}
}

// Write outputs the full report as an HTML document.
// The returned byte count is always zero because the template streams
// directly to the output writer.
func (w *HTMLWriter) Write(report *model.ScanReport) (int, error) {
	groups := make([]severityGroup, 0, len(severityOrder))
	for _, severity := range severityOrder {
		findings := report.FindingsBySeverity(severity)
		if len(findings) == 0 {
			continue
		}
		groups = append(groups, severityGroup{
			Name:     titleCase(severity.String()),
			Class:    severity.String(),
			Findings: findings,
		})
	}

	status := strings.ToUpper(string(report.Status))
	switch {
	case report.TimedOut:
		status = "TIMED OUT (partial results)"
	case report.Status == model.StatusFailed && report.ErrorMessage != "":
		status += " - " + report.ErrorMessage
	}

	data := htmlReportData{
		Report:   report,
		Groups:   groups,
		Status:   status,
		Duration: report.Duration().Round(10 * time.Millisecond).String(),
	}

	return 0, w.tmpl.Execute(w.output, data)
}

// WriteSummary outputs the summary as a minimal HTML fragment.
func (w *HTMLWriter) WriteSummary(summary model.Summary) (int, error) {
	tmpl := template.Must(template.New("summary").Parse(`<table>
<tr><th>Target</th><td>{{.TargetURL}}</td></tr>
<tr><th>Scan ID</th><td>{{.ScanID}}</td></tr>
<tr><th>Status</th><td>{{.Status}}</td></tr>
<tr><th>Critical</th><td>{{.Stats.CriticalCount}}</td></tr>
<tr><th>High</th><td>{{.Stats.HighCount}}</td></tr>
<tr><th>Medium</th><td>{{.Stats.MediumCount}}</td></tr>
<tr><th>Low</th><td>{{.Stats.LowCount}}</td></tr>
<tr><th>Info</th><td>{{.Stats.InfoCount}}</td></tr>
</table>
`))
	return 0, tmpl.Execute(w.output, summary)
}
