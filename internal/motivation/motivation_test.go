package motivation

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/notexe/studydash/internal/api"
	"github.com/notexe/studydash/internal/config"
)

type fakeProvider struct {
	reply string
	err   error
	got   api.MessageRequest
}

func (f *fakeProvider) SendMessage(_ context.Context, req api.MessageRequest) (*api.MessageResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &api.MessageResponse{Content: f.reply}, nil
}

func (f *fakeProvider) Name() string { return "fake" }
func (f *fakeProvider) Close() error { return nil }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestQuoteNeverRepeatsBackToBack(t *testing.T) {
	t.Parallel()

	g := New(WithSeed(3))
	prev := ""
	for i := 0; i < 200; i++ {
		q := g.Quote()
		if !slices.Contains(Quotes, q) {
			t.Fatalf("Quote() = %q is not a built-in quote", q)
		}
		if q == prev {
			t.Fatalf("quote repeated at %d: %q", i, q)
		}
		prev = q
	}
}

func TestMessageWithoutProvider(t *testing.T) {
	t.Parallel()

	msg := New(WithSeed(1)).Message(context.Background(), 5)
	if msg.FromAI || !slices.Contains(Quotes, msg.Text) {
		t.Fatalf("Message() = %+v", msg)
	}
}

func TestMessageFromProvider(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{reply: ` "Four days strong, keep the chain alive." `}
	g := New(WithProvider(p, config.ModelConfig{Name: "deepseek-chat", MaxTokens: 60}), WithLogger(quietLogger()))

	msg := g.Message(context.Background(), 4)
	if !msg.FromAI || msg.Text != "Four days strong, keep the chain alive." {
		t.Fatalf("Message() = %+v", msg)
	}
	if p.got.Model != "deepseek-chat" || !strings.Contains(p.got.Messages[0].Content, "4-day") {
		t.Fatalf("request = %+v", p.got)
	}
}

func TestMessageFallsBackOnError(t *testing.T) {
	t.Parallel()

	for _, p := range []*fakeProvider{
		{err: errors.New("boom")},
		{reply: "   "},
	} {
		g := New(WithProvider(p, config.ModelConfig{}), WithLogger(quietLogger()), WithSeed(9))
		msg := g.Message(context.Background(), 0)
		if msg.FromAI || !slices.Contains(Quotes, msg.Text) {
			t.Fatalf("Message() = %+v, want a quote", msg)
		}
	}
}

func TestPrompt(t *testing.T) {
	t.Parallel()

	if !strings.Contains(prompt(0), "no study streak") {
		t.Fatalf("prompt(0) = %q", prompt(0))
	}
	if !strings.Contains(prompt(1), "1-day") {
		t.Fatalf("prompt(1) = %q", prompt(1))
	}
	if !strings.Contains(prompt(12), "12-day") {
		t.Fatalf("prompt(12) = %q", prompt(12))
	}
}
