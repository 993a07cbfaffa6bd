package emailsvc

import (
	"net/http"
	"net/mail"

	"github.com/pkg/errors"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/labtrack/backend/core"
)

// sendgridService delivers the messages through the SendGrid v3 API, one goroutine per message.
type sendgridService struct {
	conf       *core.Config
	client     *sendgrid.Client
	from       *sgmail.Email
	subjPrefix string
	logger     core.Logger
}

var _ core.EmailService = (*sendgridService)(nil)

func NewSendgridService(conf *core.Config, logger core.Logger) core.EmailService {
	from := conf.DefaultFromEmail()
	return &sendgridService{
		conf:       conf,
		client:     sendgrid.NewSendClient(conf.SendgridApiKey),
		from:       toSGEmail(from),
		subjPrefix: "[" + conf.AppName + "] ",
		logger:     logger,
	}
}

func (svc *sendgridService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		go func(msg *core.EmailMessage) {
			if err := svc.deliver(msg); err != nil {
				svc.logger.Error("sending email", err, map[string]interface{}{
					"subject":  msg.Subject,
					"template": msg.TemplateName,
				})
			}
		}(msg)
	}
}

func (svc *sendgridService) deliver(msg *core.EmailMessage) error {
	if err := msg.Render(svc.conf); err != nil {
		return errors.Wrap(err, "rendering email")
	}
	if !msg.HasRecipients() || !msg.HasContent() {
		return nil
	}

	res, err := svc.client.Send(svc.build(*msg))
	if err != nil {
		return errors.Wrap(err, "calling sendgrid")
	}
	if res.StatusCode >= http.StatusBadRequest {
		return errors.Errorf("sendgrid responded %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

// build maps a rendered message to a single-personalization SendGrid mail.
func (svc *sendgridService) build(msg core.EmailMessage) *sgmail.SGMailV3 {
	recipients := sgmail.NewPersonalization()
	recipients.Subject = svc.subjPrefix + msg.Subject
	recipients.AddTos(toSGEmails(msg.To)...)
	recipients.AddCCs(toSGEmails(msg.Cc)...)
	recipients.AddBCCs(toSGEmails(msg.Bcc)...)

	contents := []*sgmail.Content{sgmail.NewContent("text/plain", msg.TextContent)}
	if msg.HTMLContent != "" {
		contents = append(contents, sgmail.NewContent("text/html", msg.HTMLContent))
	}

	return sgmail.NewV3Mail().
		SetFrom(svc.from).
		AddPersonalizations(recipients).
		AddContent(contents...)
}

func toSGEmail(addr mail.Address) *sgmail.Email {
	return sgmail.NewEmail(addr.Name, addr.Address)
}

func toSGEmails(addrs []mail.Address) []*sgmail.Email {
	emails := make([]*sgmail.Email, 0, len(addrs))
	for _, a := range addrs {
		emails = append(emails, toSGEmail(a))
	}
	return emails
}
