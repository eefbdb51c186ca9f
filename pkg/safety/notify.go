package safety

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/japap-media/server/pkg/config"
	"github.com/japap-media/server/pkg/logging"
	"github.com/sirupsen/logrus"
	gomail "gopkg.in/mail.v2"
)

var reportTmpl = template.Must(template.New("report").Parse(`A new {{.Type}} report is waiting for review.

Report:   {{.Id}}
Post:     {{.PostId}}
Content:  {{.ContentId}}
Reason:   {{.Reason}}
{{- if .Comment}}
Comment:  {{.Comment}}
{{- end}}
Snapshot: {{.SnapshotHash}}
`))

type Notifier interface {
	NotifyReport(r Report)
}

type NopNotifier struct{}

func (NopNotifier) NotifyReport(Report) {}

// MailNotifier e-mails moderators about new reports.
type MailNotifier struct {
	cfg    config.SMTPConfig
	dialer *gomail.Dialer
}

// NewNotifier returns a MailNotifier when SMTP is configured.
func NewNotifier(cfg config.SMTPConfig) Notifier {
	if cfg.Host == "" || cfg.ModerationEmail == "" {
		return NopNotifier{}
	}
	return &MailNotifier{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (n *MailNotifier) Message(r Report) (*gomail.Message, error) {
	var body bytes.Buffer
	if err := reportTmpl.Execute(&body, &r); err != nil {
		return nil, err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", n.cfg.FromName, n.cfg.FromAddress))
	m.SetHeader("To", n.cfg.ModerationEmail)
	m.SetHeader("Subject", fmt.Sprintf("New %s report: %s", r.Type, r.Reason))
	m.SetBody("text/plain", body.String())
	return m, nil
}

func (n *MailNotifier) NotifyReport(r Report) {
	go func() {
		m, err := n.Message(r)
		if err != nil {
			logging.Capture(err, "failed rendering report e-mail", logrus.Fields{"report": r.Id})
			return
		}
		if err := n.dialer.DialAndSend(m); err != nil {
			logging.Capture(err, "failed sending report e-mail", logrus.Fields{"report": r.Id})
		}
	}()
}
