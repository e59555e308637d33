package notification

import (
	"DumpSpectra/internal/config"
	"net/smtp"
	"reflect"
	"strings"
	"testing"
)

func TestNewEmailNotifierWithoutHost(t *testing.T) {
	if n := NewEmailNotifier(config.SMTPConfig{}); n != nil {
		t.Errorf("NewEmailNotifier() = %v, want nil without a host", n)
	}
}

func TestSend(t *testing.T) {
	n := NewEmailNotifier(config.SMTPConfig{
		Host: "smtp.example.com",
		Port: 587,
		From: "spectra@example.com",
		To:   "a@example.com, b@example.com",
	}).(*EmailNotifier)

	var gotAddr string
	var gotTo []string
	var gotMsg []byte
	n.send = func(addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, msg
		return nil
	}

	if err := n.Send("Alert", "<p>hi</p>"); err != nil {
		t.Fatalf("Send() failed: %v", err)
	}
	if gotAddr != "smtp.example.com:587" {
		t.Errorf("addr = %q", gotAddr)
	}
	if want := []string{"a@example.com", "b@example.com"}; !reflect.DeepEqual(gotTo, want) {
		t.Errorf("recipients = %v, want %v", gotTo, want)
	}
	if !strings.Contains(string(gotMsg), "Subject: Alert\r\n") || !strings.HasSuffix(string(gotMsg), "<p>hi</p>") {
		t.Errorf("Unexpected message:\n%s", gotMsg)
	}
}

func TestSendWithoutRecipients(t *testing.T) {
	n := NewEmailNotifier(config.SMTPConfig{Host: "smtp.example.com", Port: 25}).(*EmailNotifier)
	if err := n.Send("Alert", "body"); err == nil {
		t.Error("Send() without recipients should fail")
	}
}
