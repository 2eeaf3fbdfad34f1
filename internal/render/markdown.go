package render

import (
	"bytes"
	"strings"
	"text/template"
)

var markdownFuncs = template.FuncMap{
	"check": func(done bool) string {
		if done {
			return "x"
		}
		return " "
	},
	"cell": func(s string) string {
		return strings.ReplaceAll(strings.TrimSpace(s), "|", `\|`)
	},
}

var markdown = template.Must(template.New("md").Funcs(markdownFuncs).Parse(`
{{- define "tasks" -}}
# Tasks for {{.Date}}
{{if .Error}}
**{{.Error}}**
{{else if .Placeholder}}
_{{.Placeholder}}_
{{else}}
{{range .Items}}- [{{check .Completed}}] {{.Title}} ` + "`{{.ID}}`" + `
{{end}}{{end}}
{{- end}}

{{- define "expenses" -}}
# Expenses for {{.Date}}
{{if .Error}}
**{{.Error}}**
{{else if .Placeholder}}
_{{.Placeholder}}_
{{else}}
| Amount | Description | ID |
|-------:|-------------|----|
{{range .Items}}| {{.Amount}} | {{cell .Description}} | ` + "`{{.ID}}`" + ` |
{{end}}
**Total:** {{.Total}}
{{end}}
{{- end}}

{{- define "daily" -}}
# {{.Heading}}
{{if .Message}}
_{{.Message}}_
{{else}}
| Metric | Value |
|--------|------:|
| Tasks Created | {{.TasksCreated}} |
| Tasks Completed | {{.TasksCompleted}} |
| Productivity Rating | {{.Rating}} {{.Stars}} |
| Day's Spend | {{.DaySpend}} |
{{end}}
{{- end}}

{{- define "activity" -}}
# Activity
{{if .Placeholder}}
_{{.Placeholder}}_
{{else}}
| When | Kind | Email | Item | Day |
|------|------|-------|------|-----|
{{range .Items}}| {{.At}} | {{.Kind}} | {{cell .Identity}} | {{.EntityID}} | {{.Date}} |
{{end}}{{end}}
{{- end}}

{{- define "monthly" -}}
# {{.Heading}}
{{if .Message}}
_{{.Message}}_
{{else}}
| Metric | Value |
|--------|------:|
| Total Monthly Spend | {{.TotalSpend}} |
| Average Daily Spend | {{.AverageSpend}} |
| Total Completed Tasks | {{.TotalCompletedTasks}} |
| Average Productivity | {{.AverageProductivity}} |
| Total Tasks Created | {{.TotalTasksCreated}} |
| Days with Data | {{.DaysWithData}} |
{{end}}
{{- end}}
`))

func executeMarkdown(name string, data any) string {
	var buf bytes.Buffer
	if err := markdown.ExecuteTemplate(&buf, name, data); err != nil {
		return "**render error:** " + err.Error() + "\n"
	}
	return buf.String()
}

// Markdown renders the list as a GitHub-flavoured task list.
func (v TaskList) Markdown() string { return executeMarkdown("tasks", v) }

// Markdown renders the list as a table followed by its total.
func (v ExpenseList) Markdown() string { return executeMarkdown("expenses", v) }

func (v DailyReport) Markdown() string { return executeMarkdown("daily", v) }

func (v MonthlyReport) Markdown() string { return executeMarkdown("monthly", v) }

// Markdown renders the log as a table, newest first.
func (v ActivityLog) Markdown() string { return executeMarkdown("activity", v) }
