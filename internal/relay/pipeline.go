// Package relay orchestrates one inbound webhook update end to end:
// cooldown gate, history update, generation, history update, delivery.
package relay

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/mpetrov/gptrelay/internal/genai"
	"github.com/mpetrov/gptrelay/internal/history"
	"github.com/mpetrov/gptrelay/internal/observability"
	"github.com/mpetrov/gptrelay/internal/prompt"
	"github.com/mpetrov/gptrelay/internal/ratelimit"
	"github.com/mpetrov/gptrelay/internal/reliability"
	"github.com/mpetrov/gptrelay/internal/telegram"
)

// Outcome is the terminal state of processing one update. Exposed so tests
// and metrics can tell failure categories apart without scraping logs.
type Outcome string

const (
	OutcomeIgnored         Outcome = "ignored"
	OutcomeConfigError     Outcome = "config_error"
	OutcomeRateLimited     Outcome = "rate_limited"
	OutcomeStoreError      Outcome = "store_error"
	OutcomeGenerationError Outcome = "generation_error"
	OutcomeEmptyReply      Outcome = "empty_reply"
	OutcomeInternalError   Outcome = "internal_error"
	OutcomeReplied         Outcome = "replied"
)

const (
	msgMissingConfig = "The bot is missing its API credentials. Try again later."
	msgStoreError    = "Something went wrong on my side. Try again."
	msgEmptyReply    = "Got an empty reply. Try again."
)

// Pipeline processes inbound updates against injected collaborators.
type Pipeline struct {
	store      history.Store
	limiter    *ratelimit.Limiter
	builder    prompt.Builder
	generator  genai.Generator
	notifier   telegram.Notifier
	metrics    *observability.Metrics
	configured bool
	now        func() time.Time
}

func New(
	store history.Store,
	limiter *ratelimit.Limiter,
	builder prompt.Builder,
	generator genai.Generator,
	notifier telegram.Notifier,
	metrics *observability.Metrics,
	configured bool,
) *Pipeline {
	return &Pipeline{
		store:      store,
		limiter:    limiter,
		builder:    builder,
		generator:  generator,
		notifier:   notifier,
		metrics:    metrics,
		configured: configured,
		now:        time.Now,
	}
}

// SetClock overrides the time source. Tests only.
func (p *Pipeline) SetClock(now func() time.Time) {
	p.now = now
}

// Process runs the full pipeline for one update and reports how it ended.
// One failure category produces exactly one user-visible message; invalid
// payloads and delivery failures are only logged. A panic anywhere in the
// pipeline degrades to a logged internal error, never a crash.
func (p *Pipeline) Process(ctx context.Context, update telegram.Update) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("relay: recovered from panic while processing update: %v", r)
			outcome = OutcomeInternalError
		}
		p.metrics.UpdatesProcessed.WithLabelValues(string(outcome)).Inc()
	}()

	msg := update.Message
	// Not every inbound update is a user text message; those are dropped
	// without a reply.
	if msg == nil || msg.Text == "" {
		return OutcomeIgnored
	}
	if msg.Chat.ID == 0 || msg.MessageID == 0 {
		log.Printf("relay: dropping malformed update %d: missing chat or message id", update.UpdateID)
		return OutcomeIgnored
	}

	chatID := msg.Chat.ID
	messageID := msg.MessageID
	chatKey := strconv.FormatInt(chatID, 10)

	if !p.configured {
		p.notify(ctx, chatID, messageID, msgMissingConfig)
		return OutcomeConfigError
	}

	if !p.limiter.Admit(chatKey, p.now()) {
		p.notify(ctx, chatID, messageID, cooldownMessage(p.limiter.Window()))
		return OutcomeRateLimited
	}

	// The user turn is appended before generation and never rolled back:
	// history reflects what the user actually sent even if no reply follows.
	turns, err := p.store.Append(ctx, chatKey, history.RoleUser, msg.Text)
	if err != nil {
		log.Printf("relay: append user turn for chat %s: %v", chatKey, err)
		p.metrics.StoreErrors.WithLabelValues("append_user").Inc()
		p.notify(ctx, chatID, messageID, msgStoreError)
		return OutcomeStoreError
	}

	req := p.builder.Build(turns)
	start := time.Now()
	reply, err := p.generator.Generate(ctx, req)
	p.metrics.ObserveGenerationLatency(time.Since(start))
	if err != nil {
		return p.handleGenerationFailure(ctx, chatID, messageID, err)
	}

	// Persist the assistant turn before delivery; losing one history entry
	// is preferable to telling the user their reply failed when it did not.
	if _, err := p.store.Append(ctx, chatKey, history.RoleAssistant, reply); err != nil {
		log.Printf("relay: append assistant turn for chat %s: %v", chatKey, err)
		p.metrics.StoreErrors.WithLabelValues("append_assistant").Inc()
	}

	p.notify(ctx, chatID, messageID, reply)
	return OutcomeReplied
}

func (p *Pipeline) handleGenerationFailure(ctx context.Context, chatID, messageID int64, err error) Outcome {
	if errors.Is(err, genai.ErrEmptyResponse) {
		log.Printf("relay: generation returned empty text for chat %d", chatID)
		p.metrics.GenerationErrors.WithLabelValues("empty").Inc()
		p.notify(ctx, chatID, messageID, msgEmptyReply)
		return OutcomeEmptyReply
	}

	var reqErr *genai.RequestError
	if errors.As(err, &reqErr) {
		kind := reliability.FailureKind(reqErr.Status)
		log.Printf("relay: generation failed for chat %d (%s): %v", chatID, kind, err)
		p.metrics.GenerationErrors.WithLabelValues(kind).Inc()
		userMsg := reqErr.Message
		if userMsg == "" {
			userMsg = fmt.Sprintf("OpenAI error (%d).", reqErr.Status)
		}
		p.notify(ctx, chatID, messageID, userMsg)
		return OutcomeGenerationError
	}

	log.Printf("relay: generation request failed for chat %d: %v", chatID, err)
	p.metrics.GenerationErrors.WithLabelValues("transport").Inc()
	p.notify(ctx, chatID, messageID, "Could not reach the model. Try again later.")
	return OutcomeGenerationError
}

// notify delivers a message to the chat. Delivery failures are logged and
// counted, never surfaced back through the webhook.
func (p *Pipeline) notify(ctx context.Context, chatID, replyTo int64, text string) {
	if err := p.notifier.SendMessage(ctx, chatID, text, replyTo); err != nil {
		log.Printf("relay: send to chat %d failed: %v", chatID, err)
		p.metrics.NotifyErrors.Inc()
	}
}

func cooldownMessage(window time.Duration) string {
	secs := int((window + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return fmt.Sprintf("Wait %d seconds 😅", secs)
}
