package services

import (
	"bytes"
	"context"
	"log/slog"
	"mime"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/alpnix/HackAtDavidson/config"
)

func TestSMTPMessageHeaders(t *testing.T) {
	m := &SMTPMailer{From: "team@hackatdavidson.com"}
	now := time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC)
	msg, err := m.message(Mail{
		To:      "ada@davidson.edu",
		Subject: "Votre code: café\r\nBcc: evil@example.com",
		Body:    "Code 123456",
	}, now)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	parsed, err := mail.ReadMessage(&buf)
	if err != nil {
		t.Fatalf("parse written message: %v", err)
	}

	raw := parsed.Header.Get("Subject")
	if !strings.HasPrefix(raw, "=?") {
		t.Errorf("non-ASCII subject not encoded: %q", raw)
	}
	subject, err := new(mime.WordDecoder).DecodeHeader(raw)
	if err != nil {
		t.Fatal(err)
	}
	if subject != "Votre code: café  Bcc: evil@example.com" {
		t.Errorf("subject = %q", subject)
	}
	if got := parsed.Header.Get("Bcc"); got != "" {
		t.Errorf("header injected through subject: Bcc %q", got)
	}
	if id := parsed.Header.Get("Message-ID"); !strings.HasPrefix(id, "<") || !strings.HasSuffix(id, ">") {
		t.Errorf("Message-ID = %q", id)
	}
	date, err := parsed.Header.Date()
	if err != nil || !date.Equal(now) {
		t.Errorf("Date = %v, %v; want %v", date, err, now)
	}
}

func TestSMTPMessageRejectsBadRecipient(t *testing.T) {
	m := &SMTPMailer{From: "team@hackatdavidson.com"}
	if _, err := m.message(Mail{To: "not an address", Subject: "s"}, time.Now()); err == nil {
		t.Fatal("expected error for malformed recipient")
	}
}

func TestNewMailer(t *testing.T) {
	if got, err := NewMailer(&config.Config{}); err != nil {
		t.Fatal(err)
	} else if _, ok := got.(LogMailer); !ok {
		t.Errorf("no SMTP host: got %T, want LogMailer", got)
	}

	got, err := NewMailer(&config.Config{SMTPHost: "smtp.example.com", SMTPPort: "2525", MailFrom: "a@b.c"})
	if err != nil {
		t.Fatal(err)
	}
	if s, ok := got.(*SMTPMailer); !ok || s.Port != 2525 {
		t.Errorf("got %#v, want SMTPMailer on 2525", got)
	}

	if _, err := NewMailer(&config.Config{SMTPHost: "smtp.example.com", SMTPPort: "smtp"}); err == nil {
		t.Error("expected error for non-numeric port")
	}
}

func TestLogMailerOmitsBody(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	if err := (LogMailer{}).Send(context.Background(), Mail{
		To:      "ada@davidson.edu",
		Subject: "Your code",
		Body:    "Your one-time code is 482913",
	}); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.Contains(out, "ada@davidson.edu") {
		t.Errorf("recipient missing from log: %s", out)
	}
	if strings.Contains(out, "482913") {
		t.Errorf("mail body leaked into log: %s", out)
	}
}
