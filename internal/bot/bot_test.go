package bot

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func TestDispatchFirstMatchWins(t *testing.T) {
	b := New("test", nil, zerolog.Nop())

	var hits []string
	record := func(name string) Handler {
		return func(ctx context.Context, upd tgbotapi.Update) error {
			hits = append(hits, name)
			return nil
		}
	}
	always := func(tgbotapi.Update) bool { return true }

	b.Register(Command("ping"), record("ping"))
	b.Register(always, record("fallback"))

	b.HandleUpdate(context.Background(), commandUpdate(1, employee(), "/ping"))
	b.HandleUpdate(context.Background(), commandUpdate(1, employee(), "/other"))

	if len(hits) != 2 || hits[0] != "ping" || hits[1] != "fallback" {
		t.Fatalf("dispatch order: %v", hits)
	}
}

func TestDispatchHandlerErrorDoesNotPropagate(t *testing.T) {
	b := New("test", nil, zerolog.Nop())
	b.Register(func(tgbotapi.Update) bool { return true }, func(context.Context, tgbotapi.Update) error {
		return errors.New("boom")
	})

	// Must not panic; the error is absorbed at the dispatch boundary.
	b.HandleUpdate(context.Background(), commandUpdate(1, employee(), "/anything"))
}

func TestDispatchUnmatchedIsDropped(t *testing.T) {
	b := New("test", nil, zerolog.Nop())
	called := false
	b.Register(Command("ping"), func(context.Context, tgbotapi.Update) error {
		called = true
		return nil
	})

	b.HandleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: 1}, Text: "plain text",
	}})
	if called {
		t.Fatal("plain text must not match a command route")
	}
}

func TestCommandPredicate(t *testing.T) {
	p := Command("holiday")

	if !p(commandUpdate(1, employee(), "/holiday 20.02 x")) {
		t.Error("command with arguments should match")
	}
	if p(commandUpdate(1, employee(), "/holidays")) {
		t.Error("different command must not match")
	}
	if p(tgbotapi.Update{}) {
		t.Error("empty update must not match")
	}
}

func TestCallbackPrefixPredicate(t *testing.T) {
	p := CallbackPrefix("holiday_")

	if !p(callbackUpdate(1, "holiday_approve_3")) {
		t.Error("matching prefix should match")
	}
	if p(callbackUpdate(1, "order_confirm_3")) {
		t.Error("other prefix must not match")
	}
	if p(tgbotapi.Update{}) {
		t.Error("non-callback update must not match")
	}
}

func TestAndPredicate(t *testing.T) {
	yes := func(tgbotapi.Update) bool { return true }
	no := func(tgbotapi.Update) bool { return false }

	if !And(yes, yes)(tgbotapi.Update{}) {
		t.Error("all-true conjunction should match")
	}
	if And(yes, no)(tgbotapi.Update{}) {
		t.Error("any-false conjunction must not match")
	}
}
