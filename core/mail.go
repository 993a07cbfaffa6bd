package core

import (
	"bytes"
	htmltmpl "html/template"
	"net/mail"
	texttmpl "text/template"

	"github.com/pkg/errors"
)

type (
	EmailMessage struct {
		To      []mail.Address
		Cc      []mail.Address
		Bcc     []mail.Address
		Subject string
		BodyStr string // simple text/plain, non-templated content

		// templated contents
		TemplateName string
		TemplateData interface{}
		TextContent  string
		HTMLContent  string
	}

	ContextData struct {
		AppName         string
		FrontendBaseURL string
		Data            interface{}
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}

	emailTemplate struct {
		text *texttmpl.Template
		html *htmltmpl.Template
	}
)

var emailTemplates = map[string]emailTemplate{
	"welcome": {
		text: texttmpl.Must(texttmpl.New("welcome.txt").Option("missingkey=error").Parse(
			"Hi {{.Data.Name}},\n\n" +
				"Your {{.AppName}} account is ready. Sign in at {{.FrontendBaseURL}}/login with {{.Data.Email}}.\n")),
		html: htmltmpl.Must(htmltmpl.New("welcome.gohtml").Option("missingkey=error").Parse(
			`<p>Hi {{.Data.Name}},</p>` +
				`<p>Your {{.AppName}} account is ready. <a href="{{.FrontendBaseURL}}/login">Sign in</a> with {{.Data.Email}}.</p>`)),
	},
	"enrolled": {
		text: texttmpl.Must(texttmpl.New("enrolled.txt").Option("missingkey=error").Parse(
			"Hi {{.Data.Name}},\n\n" +
				"You are now enrolled in \"{{.Data.CourseTitle}}\". Track your progress at {{.FrontendBaseURL}}/my-courses.\n")),
		html: htmltmpl.Must(htmltmpl.New("enrolled.gohtml").Option("missingkey=error").Parse(
			`<p>Hi {{.Data.Name}},</p>` +
				`<p>You are now enrolled in <strong>{{.Data.CourseTitle}}</strong>. ` +
				`<a href="{{.FrontendBaseURL}}/my-courses">Track your progress</a>.</p>`)),
	},
}

// Render fills TextContent and HTMLContent from BodyStr or the named template.
func (m *EmailMessage) Render(conf *Config) error {
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
		return nil
	}
	if m.TemplateName == "" {
		return nil
	}

	tmpl, ok := emailTemplates[m.TemplateName]
	if !ok {
		return errors.Errorf("unknown email template %q", m.TemplateName)
	}
	data := ContextData{
		AppName:         conf.AppName,
		FrontendBaseURL: conf.FrontendBaseURL,
		Data:            m.TemplateData,
	}

	var buff bytes.Buffer
	if err := tmpl.text.Execute(&buff, data); err != nil {
		return errors.Wrap(err, "rendering text template")
	}
	m.TextContent = buff.String()

	buff.Reset()
	if err := tmpl.html.Execute(&buff, data); err != nil {
		return errors.Wrap(err, "rendering html template")
	}
	m.HTMLContent = buff.String()
	return nil
}

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return (m.TextContent != "") || (m.HTMLContent != "") }
