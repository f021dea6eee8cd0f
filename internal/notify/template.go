package notify

import (
	"bytes"
	"errors"
	"text/template"
)

const DefaultTemplate = `[Daily Digest] {{.Date}}
Good morning{{if .Name}}, {{.Name}}{{end}}.
Tasks due today: {{.TasksDueToday}}
Deliveries pending: {{.DeliveriesPending}}
Recurring revenue this month: {{.RecurringTotal}}`

// TemplateData provides fields for rendering digest content.
type TemplateData struct {
	Date              string
	Name              string
	TasksDueToday     int
	DeliveriesPending int
	RecurringTotal    string
}

// Template renders digest content.
type Template struct {
	tpl *template.Template
}

// NewTemplate parses a digest template, falling back to DefaultTemplate.
func NewTemplate(tpl string) (*Template, error) {
	if tpl == "" {
		tpl = DefaultTemplate
	}
	parsed, err := template.New("digest").Parse(tpl)
	if err != nil {
		return nil, err
	}
	return &Template{tpl: parsed}, nil
}

// Render applies the template to data.
func (t *Template) Render(data TemplateData) (string, error) {
	if t == nil || t.tpl == nil {
		return "", errors.New("digest template: nil")
	}
	var buf bytes.Buffer
	if err := t.tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
