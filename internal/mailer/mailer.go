package mailer

import (
	"encoding/json"
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

type kind struct {
	file    string
	subject string
	data    func() any
}

var kinds = map[string]kind{
	domain.MailTypeJobAlert: {
		file:    "job_alert.html",
		subject: "Workshop Labour - Job Alert",
		data:    func() any { return &domain.JobAlertMailData{} },
	},
	domain.MailTypeArchiveCreated: {
		file:    "archive_created.html",
		subject: "Workshop Labour - Monthly Archive",
		data:    func() any { return &domain.ArchiveCreatedMailData{} },
	},
	domain.MailTypeJobReassignment: {
		file:    "job_reassignment.html",
		subject: "Workshop Labour - Job Reassigned",
		data:    func() any { return &domain.JobReassignmentMailData{} },
	},
}

// message 与 domain.MailMessage 相同，只是延迟解析 Data
type message struct {
	Type string          `json:"type"`
	To   string          `json:"to"`
	Data json.RawMessage `json:"data"`
}

// Composer 根据队列中的消息生成邮件，模板在创建时一次性解析
type Composer struct {
	from      string
	templates map[string]*template.Template
}

func NewComposer(dir, from string) (*Composer, error) {
	c := &Composer{
		from:      from,
		templates: make(map[string]*template.Template, len(kinds)),
	}
	for t, k := range kinds {
		tmpl, err := template.ParseFiles(filepath.Join(dir, k.file))
		if err != nil {
			return nil, err
		}
		c.templates[t] = tmpl
	}
	return c, nil
}

func (c *Composer) Compose(body []byte) (*mail.Msg, error) {
	var m message
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, err
	}

	k, ok := kinds[m.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported mail type %q", m.Type)
	}
	data := k.data()
	if err := json.Unmarshal(m.Data, data); err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if err := msg.From(c.from); err != nil {
		return nil, err
	}
	if err := msg.To(m.To); err != nil {
		return nil, err
	}
	msg.Subject(k.subject)
	if err := msg.SetBodyHTMLTemplate(c.templates[m.Type], data); err != nil {
		return nil, err
	}

	return msg, nil
}
