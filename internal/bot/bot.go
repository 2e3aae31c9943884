// Package bot contains the Telegram-facing layer: the update loop, the route
// table that dispatches inbound events to handlers, and the handler sets for
// the holiday workflow and the shop (orders, shifts).
//
// Dispatch is an explicit ordered list of (predicate, handler) pairs. Each
// inbound update is offered to the routes in registration order and the first
// match wins; updates nobody claims are counted and dropped. Handlers are
// invoked one at a time per bot instance, which is what lets the JSON-backed
// holiday store get away with coarse locking.
package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/shopcrew/go-shop-bots/internal/observability"
)

// Handler processes one matched update.
type Handler func(ctx context.Context, upd tgbotapi.Update) error

// Predicate decides whether a route claims an update.
type Predicate func(upd tgbotapi.Update) bool

type route struct {
	match  Predicate
	handle Handler
}

// UpdateSource is the part of *tgbotapi.BotAPI the loop consumes.
type UpdateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot runs one long-polling loop and dispatches its updates.
type Bot struct {
	name   string
	api    UpdateSource
	routes []route
	log    zerolog.Logger
}

// New creates a bot around an update source. name distinguishes the two bot
// loops in logs.
func New(name string, api UpdateSource, log zerolog.Logger) *Bot {
	return &Bot{name: name, api: api, log: log.With().Str("bot", name).Logger()}
}

// Register appends a (predicate, handler) pair to the route table. Order is
// significant: earlier routes shadow later ones.
func (b *Bot) Register(match Predicate, handle Handler) {
	b.routes = append(b.routes, route{match: match, handle: handle})
}

// Run polls for updates until ctx is cancelled. Handler errors are logged at
// the dispatch boundary; nothing an individual update does can stop the loop.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.log.Info().Msg("bot loop started")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.log.Info().Msg("bot loop stopped")
			return
		case upd, ok := <-updates:
			if !ok {
				b.log.Info().Msg("updates channel closed")
				return
			}
			b.HandleUpdate(ctx, upd)
		}
	}
}

// HandleUpdate offers the update to the route table; first match wins.
func (b *Bot) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	for _, r := range b.routes {
		if !r.match(upd) {
			continue
		}
		observability.UpdatesHandled.WithLabelValues(updateKind(upd)).Inc()
		if err := r.handle(ctx, upd); err != nil {
			observability.HandlerErrors.Inc()
			b.log.Error().Err(err).Int("update_id", upd.UpdateID).Msg("handler failed")
		}
		return
	}
	observability.UpdatesHandled.WithLabelValues("ignored").Inc()
}

func updateKind(upd tgbotapi.Update) string {
	switch {
	case upd.CallbackQuery != nil:
		return "callback"
	case upd.Message != nil:
		return "message"
	}
	return "other"
}

// Command returns a predicate matching a specific /command in a message.
func Command(name string) Predicate {
	return func(upd tgbotapi.Update) bool {
		return upd.Message != nil && upd.Message.IsCommand() && upd.Message.Command() == name
	}
}

// CallbackPrefix returns a predicate matching callback payloads by prefix.
func CallbackPrefix(prefix string) Predicate {
	return func(upd tgbotapi.Update) bool {
		return upd.CallbackQuery != nil && len(upd.CallbackQuery.Data) >= len(prefix) &&
			upd.CallbackQuery.Data[:len(prefix)] == prefix
	}
}

// And combines predicates conjunctively.
func And(ps ...Predicate) Predicate {
	return func(upd tgbotapi.Update) bool {
		for _, p := range ps {
			if !p(upd) {
				return false
			}
		}
		return true
	}
}
