package claude

import (
	"bytes"
	"os"
	"text/template"
)

const defaultProposalTemplate = `You are an experienced construction planner. Build a schedule for the project below.

## Project
Name: {{.ProjectName}}
Start date: {{.StartDate}}
{{- if .Deadline}}
Deadline: {{.Deadline}}
{{- end}}
Work days: {{.ScheduleType}}

## Scope
{{range .Scope}}- {{.ID}}: {{.Name}}{{if .DurationDays}} ({{.DurationDays}} working days){{end}}
{{end}}
{{- if .Crews}}
## Available crews
{{range .Crews}}- {{.}}
{{end}}
{{- end}}
## Rules
1. Use only the activity ids listed in the scope.
2. "durationDays" is a non-negative integer number of working days.
3. "predecessorIds" is always present, an empty array when there are none.
4. "relationType" is one of "FS", "SS", "FF" or "SF"; omit it for FS.
5. Do not create dependency cycles.
6. Do not compute dates, float or the critical path; they are recalculated.

Return ONLY a JSON object of this shape, with no commentary:
{
  "activities": [
    {"id": "<id>", "name": "<name>", "durationDays": 0, "predecessorIds": [], "relationType": "FS", "lagDays": 0, "responsible": "<crew>"}
  ],
  "alerts": ["<risk worth flagging>"]
}
`

// ScopeItem is one activity the proposal must cover.
type ScopeItem struct {
	ID           string
	Name         string
	DurationDays int
}

// ProposalRequest holds the data used to render the proposal prompt.
type ProposalRequest struct {
	ProjectName  string
	StartDate    string
	Deadline     string
	ScheduleType string
	Scope        []ScopeItem
	Crews        []string
}

// RenderPrompt renders a proposal prompt using either a custom template file or the default.
func RenderPrompt(req ProposalRequest, templatePath string) (string, error) {
	tmplStr := defaultProposalTemplate
	if templatePath != "" {
		content, err := os.ReadFile(templatePath)
		if err != nil {
			return "", err
		}
		tmplStr = string(content)
	}

	tmpl, err := template.New("proposal").Parse(tmplStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, req); err != nil {
		return "", err
	}
	return buf.String(), nil
}
