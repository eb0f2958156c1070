package tasks

import (
	"bytes"
	"fmt"
	"text/template"
)

// Built-in email templates, one per adoption event.
const (
	TemplateAdoptionRequested = "adoption_requested"
	TemplateAdoptionAccepted  = "adoption_accepted"
	TemplateAdoptionRejected  = "adoption_rejected"
	TemplateAdoptionWithdrawn = "adoption_withdrawn"
)

type emailTemplate struct {
	subject *template.Template
	body    *template.Template
}

func mustTemplate(name, subject, body string) emailTemplate {
	return emailTemplate{
		subject: template.Must(template.New(name + ".subject").Option("missingkey=zero").Parse(subject)),
		body:    template.Must(template.New(name + ".body").Option("missingkey=zero").Parse(body)),
	}
}

var emailTemplates = map[string]emailTemplate{
	TemplateAdoptionRequested: mustTemplate(TemplateAdoptionRequested,
		"New adoption request for {{.petName}}",
		"Hi {{.recipientName}},\n\n{{.requesterName}} would like to adopt {{.petName}}.\n"+
			"{{if .message}}\nTheir message:\n{{.message}}\n{{end}}"+
			"\nReview your received requests on {{.appName}}.\n"),
	TemplateAdoptionAccepted: mustTemplate(TemplateAdoptionAccepted,
		"Your request to adopt {{.petName}} was accepted",
		"Hi {{.recipientName}},\n\nGood news! {{.ownerName}} accepted your request to adopt {{.petName}}.\n"+
			"They will be in touch to arrange the next steps.\n\nThe {{.appName}} team\n"),
	TemplateAdoptionRejected: mustTemplate(TemplateAdoptionRejected,
		"Update on your request to adopt {{.petName}}",
		"Hi {{.recipientName}},\n\n{{.ownerName}} has decided not to go ahead with your request to adopt {{.petName}}.\n"+
			"There are plenty of other pets nearby looking for a home.\n\nThe {{.appName}} team\n"),
	TemplateAdoptionWithdrawn: mustTemplate(TemplateAdoptionWithdrawn,
		"Adoption request for {{.petName}} withdrawn",
		"Hi {{.recipientName}},\n\n{{.requesterName}} has withdrawn their request to adopt {{.petName}}.\n\nThe {{.appName}} team\n"),
}

// KnownTemplate reports whether name is a built-in template.
func KnownTemplate(name string) bool {
	_, ok := emailTemplates[name]
	return ok
}

func render(name string, data map[string]string) (subject, body string, err error) {
	tmpl, ok := emailTemplates[name]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", name)
	}
	var sb, bb bytes.Buffer
	if err := tmpl.subject.Execute(&sb, data); err != nil {
		return "", "", fmt.Errorf("failed to render subject of %s: %w", name, err)
	}
	if err := tmpl.body.Execute(&bb, data); err != nil {
		return "", "", fmt.Errorf("failed to render body of %s: %w", name, err)
	}
	return sb.String(), bb.String(), nil
}
