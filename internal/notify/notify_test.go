package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	logx "pagewatch/pkg/logx"
)

func TestSplitTextShort(t *testing.T) {
	t.Parallel()
	got := splitText("hello", 100)
	if len(got) != 1 || got[0] != "hello" {
		t.Fatalf("splitText = %q", got)
	}
}

func TestSplitTextPrefersNewlines(t *testing.T) {
	t.Parallel()
	lines := strings.Repeat("0123456789\n", 20)
	chunks := splitText(lines, 55)

	for i, c := range chunks {
		if len(c) > 55 {
			t.Fatalf("chunk %d over limit: %d chars", i, len(c))
		}
		// Each chunk should end on a whole line, not mid-entry.
		if strings.Contains(c, "\n") && !strings.HasSuffix(c, "0123456789") {
			t.Fatalf("chunk %d split mid-line: %q", i, c)
		}
	}

	joined := strings.Join(chunks, "\n") + "\n"
	if joined != lines {
		t.Fatalf("content lost across chunks:\n%q\nvs\n%q", joined, lines)
	}
}

func TestSplitTextNoEmptyChunks(t *testing.T) {
	t.Parallel()
	chunks := splitText(strings.Repeat("a\n\n\n", 50), 20)
	for i, c := range chunks {
		if c == "" {
			t.Fatalf("chunk %d is empty", i)
		}
	}
}

type stubSender struct {
	sent []string
	err  error
}

func (s *stubSender) Notify(_ context.Context, text string) error {
	s.sent = append(s.sent, text)
	return s.err
}

func TestServiceWrapsDeliveryError(t *testing.T) {
	t.Parallel()
	sender := &stubSender{err: errors.New("boom")}
	svc := NewService(sender, 10, logx.Nop())

	err := svc.Notify(context.Background(), "hi")
	var derr *DeliveryError
	if !errors.As(err, &derr) {
		t.Fatalf("err = %v, want *DeliveryError", err)
	}
	if derr.Unwrap() == nil {
		t.Fatal("DeliveryError must carry its cause")
	}
}

func TestServicePassesText(t *testing.T) {
	t.Parallel()
	sender := &stubSender{}
	svc := NewService(sender, 10, logx.Nop())

	if err := svc.Notify(context.Background(), "report"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(sender.sent) != 1 || sender.sent[0] != "report" {
		t.Fatalf("sent = %q", sender.sent)
	}
}

func TestNewTelegramRequiresCredentials(t *testing.T) {
	t.Parallel()
	if _, err := NewTelegram(TelegramConfig{ChatID: 1}); err == nil {
		t.Fatal("expected error for empty token")
	}
	if _, err := NewTelegram(TelegramConfig{Token: "123:abc"}); err == nil {
		t.Fatal("expected error for empty chat id")
	}
}
