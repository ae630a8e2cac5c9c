package contact

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"glownexa-backend/internal/mail"
	"glownexa-backend/internal/shared/telemetry"
)

type verifyingSender struct {
	mail.Recorder
	verifyErr error
}

func (v *verifyingSender) Verify(context.Context) error { return v.verifyErr }

func TestVerifyTransportLogsOutcome(t *testing.T) {
	var buf bytes.Buffer
	telemetry.SetOutput(&buf)
	t.Cleanup(func() { telemetry.SetOutput(os.Stdout) })

	ok := &Service{Sender: &verifyingSender{}}
	ok.VerifyTransport(context.Background())
	if !strings.Contains(buf.String(), `"msg":"mail.verify.ok"`) {
		t.Fatalf("expected mail.verify.ok log, got %q", buf.String())
	}

	buf.Reset()
	failing := &Service{Sender: &verifyingSender{verifyErr: errors.New("connection refused")}}
	failing.VerifyTransport(context.Background())
	out := buf.String()
	if !strings.Contains(out, `"msg":"mail.verify.failed"`) || !strings.Contains(out, "connection refused") {
		t.Fatalf("expected mail.verify.failed log, got %q", out)
	}
}

func TestVerifyTransportSkipsNonVerifiers(t *testing.T) {
	var buf bytes.Buffer
	telemetry.SetOutput(&buf)
	t.Cleanup(func() { telemetry.SetOutput(os.Stdout) })

	(&Service{Sender: &mail.Recorder{}}).VerifyTransport(context.Background())
	if buf.Len() != 0 {
		t.Fatalf("expected no log output, got %q", buf.String())
	}
}

func TestSubmitWrapsSenderError(t *testing.T) {
	boom := errors.New("boom")
	svc := &Service{Sender: &mail.Recorder{Err: boom}, To: "support@glownexa.app"}
	err := svc.Submit(context.Background(), Request{Name: "a", Email: "b@example.com", Message: "m"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped sender error, got %v", err)
	}
}
