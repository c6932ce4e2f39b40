package email

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
	"gopkg.in/gomail.v2"
)

func TestParseRecipients(t *testing.T) {
	got := ParseRecipients(" a@x.com ; b@y.org,, ,c@z.io ")
	want := []string{"a@x.com", "b@y.org", "c@z.io"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if n := len(ParseRecipients("  ;, ")); n != 0 {
		t.Fatalf("expected no recipients, got %d", n)
	}
}

func TestValidAddress(t *testing.T) {
	cases := map[string]bool{
		"a@x.com":         true,
		"first.last@x.co": true,
		"a@x":             false,
		"a b@x.com":       false,
		"@x.com":          false,
		"a@@x.com":        false,
		"":                false,
	}
	for in, want := range cases {
		if got := ValidAddress(in); got != want {
			t.Errorf("ValidAddress(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestValidateRecipients(t *testing.T) {
	if err := ValidateRecipients([]string{"a@x.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := ValidateRecipients([]string{"bad", "a@x.com", "also bad@x.com"})
	if !errors.Is(err, ErrAddress) {
		t.Fatalf("expected ErrAddress, got %v", err)
	}
	if want := "Invalid email(s): bad, also bad@x.com"; err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}
}

type captured struct {
	from string
	to   []string
	raw  string
}

func capture(fail int) (*[]captured, gomail.SendFunc) {
	var got []captured
	calls := 0
	return &got, func(from string, to []string, msg io.WriterTo) error {
		calls++
		if calls <= fail {
			return errors.New("421 try again later")
		}
		var buf bytes.Buffer
		if _, err := msg.WriteTo(&buf); err != nil {
			return err
		}
		got = append(got, captured{from: from, to: to, raw: buf.String()})
		return nil
	}
}

func TestSMTPSenderBuildsMessage(t *testing.T) {
	sent, fn := capture(0)
	s := NewSenderWithTransport(SMTPConfig{From: "certs@example.com"}, fn, zaptest.NewLogger(t))

	err := s.Send(context.Background(), Message{
		To:         []string{"a@x.com", "b@x.com"},
		Cc:         []string{"cc@x.com"},
		Bcc:        []string{"hidden@x.com"},
		Attachment: &Attachment{Filename: "Ada.pdf", Data: []byte("%PDF-1.7 fake")},
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(*sent) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(*sent))
	}
	got := (*sent)[0]
	if got.from != "certs@example.com" {
		t.Fatalf("from = %q", got.from)
	}
	if len(got.to) != 4 {
		t.Fatalf("envelope recipients = %v", got.to)
	}
	for _, want := range []string{
		"Subject: " + DefaultSubject,
		DefaultBody,
		`filename="Ada.pdf"`,
		"application/pdf",
	} {
		if !strings.Contains(got.raw, want) {
			t.Errorf("message missing %q", want)
		}
	}
	if strings.Contains(got.raw, "hidden@x.com") {
		t.Errorf("bcc address leaked into headers")
	}
}

func TestSMTPSenderRetries(t *testing.T) {
	sent, fn := capture(2)
	s := NewSenderWithTransport(SMTPConfig{From: "f@x.com", RetryAttempts: 3, RetryInterval: time.Millisecond}, fn, zaptest.NewLogger(t))
	if err := s.Send(context.Background(), Message{To: []string{"a@x.com"}, Subject: "Hi"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(*sent) != 1 {
		t.Fatalf("expected delivery after retries")
	}
}

func TestSMTPSenderGivesUp(t *testing.T) {
	_, fn := capture(10)
	s := NewSenderWithTransport(SMTPConfig{From: "f@x.com", RetryAttempts: 1, RetryInterval: time.Millisecond}, fn, nil)
	err := s.Send(context.Background(), Message{To: []string{"a@x.com"}})
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	if !strings.Contains(err.Error(), "421") {
		t.Fatalf("transport message lost: %v", err)
	}
}

func TestSMTPSenderRequiresRecipients(t *testing.T) {
	_, fn := capture(0)
	s := NewSenderWithTransport(SMTPConfig{}, fn, nil)
	if err := s.Send(context.Background(), Message{}); !errors.Is(err, ErrAddress) {
		t.Fatalf("expected ErrAddress, got %v", err)
	}
}
