package email

import (
	"io"
	"strings"

	"gopkg.in/gomail.v2"
)

// 主题与正文的缺省值。
const (
	DefaultSubject = "Your certificate"
	DefaultBody    = "Please find your certificate attached."
)

// Attachment is a single PDF attached to a message.
type Attachment struct {
	Filename string
	Data     []byte
}

// Message is one certificate email. Subject and Body are already filled in.
type Message struct {
	To         []string
	Cc         []string
	Bcc        []string
	Subject    string
	Body       string
	Attachment *Attachment
}

// build 组装 gomail 消息：纯文本正文，附件类型固定为 application/pdf。
func (m Message) build(from string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", m.To...)
	if len(m.Cc) > 0 {
		msg.SetHeader("Cc", m.Cc...)
	}
	if len(m.Bcc) > 0 {
		msg.SetHeader("Bcc", m.Bcc...)
	}

	subject := m.Subject
	if strings.TrimSpace(subject) == "" {
		subject = DefaultSubject
	}
	body := m.Body
	if strings.TrimSpace(body) == "" {
		body = DefaultBody
	}
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if att := m.Attachment; att != nil {
		data := att.Data
		msg.Attach(att.Filename,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {"application/pdf"}}),
		)
	}
	return msg
}
