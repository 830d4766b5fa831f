package motivation

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/notexe/studydash/internal/api"
	"github.com/notexe/studydash/internal/config"
)

const systemPrompt = "You write one-sentence study motivation for a student dashboard. " +
	"Reply with the sentence only: no quotes, no emoji, at most 30 words."

// Message is one line for the motivation widget.
type Message struct {
	Text   string `json:"text"`
	FromAI bool   `json:"from_ai"`
}

// Generator picks quotes and, when a provider is set, asks it for a
// personalised line first.
type Generator struct {
	provider api.Provider
	model    config.ModelConfig
	timeout  time.Duration
	logger   *slog.Logger

	mu   sync.Mutex
	rand *rand.Rand
	last int
}

// Option configures a Generator.
type Option func(*Generator)

// WithProvider enables AI-generated messages.
func WithProvider(p api.Provider, model config.ModelConfig) Option {
	return func(g *Generator) {
		g.provider = p
		g.model = model
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// WithSeed makes quote selection deterministic.
func WithSeed(seed int64) Option {
	return func(g *Generator) { g.rand = rand.New(rand.NewSource(seed)) }
}

func New(opts ...Option) *Generator {
	g := &Generator{
		timeout: 15 * time.Second,
		logger:  slog.Default(),
		rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
		last:    -1,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("component", "motivation")
	return g
}

// Quote returns a random built-in quote, never the same one twice in a row.
func (g *Generator) Quote() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	i := g.rand.Intn(len(Quotes))
	if i == g.last {
		i = (i + 1) % len(Quotes)
	}
	g.last = i
	return Quotes[i]
}

// Message returns an AI line mentioning the streak when possible, otherwise
// a quote. Provider failures are logged and never returned.
func (g *Generator) Message(ctx context.Context, streak int) Message {
	if g.provider == nil {
		return Message{Text: g.Quote()}
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.provider.SendMessage(ctx, api.MessageRequest{
		System:      systemPrompt,
		Messages:    []api.Message{{Role: "user", Content: prompt(streak)}},
		Model:       g.model.Name,
		MaxTokens:   g.model.MaxTokens,
		Temperature: g.model.Temperature,
	})
	if err != nil {
		g.logger.Warn("AI motivation failed, using quote", "provider", g.provider.Name(), "error", err)
		return Message{Text: g.Quote()}
	}

	text := strings.Trim(strings.TrimSpace(resp.Content), `"`)
	if text == "" {
		return Message{Text: g.Quote()}
	}
	return Message{Text: text, FromAI: true}
}

func prompt(streak int) string {
	switch {
	case streak <= 0:
		return "The student has no study streak yet today. Encourage them to start one."
	case streak == 1:
		return "The student studied today, starting a 1-day streak. Encourage them to keep it up tomorrow."
	default:
		return fmt.Sprintf("The student is on a %d-day study streak. Celebrate it and push them to continue.", streak)
	}
}
