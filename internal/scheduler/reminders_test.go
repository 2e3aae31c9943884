package scheduler

import (
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/shopcrew/go-shop-bots/internal/config"
)

type fakeSender struct {
	sent []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func newTestReminders(t *testing.T) (*Reminders, *fakeSender, *time.Time) {
	t.Helper()

	send := &fakeSender{}
	r := New(send, config.ReminderConfig{
		ChatID:       -100123,
		DeliveryHour: 10,
		ReportHour:   20,
	}, zerolog.Nop())

	// Injected clock; zero spread keeps the fire times exact.
	clock := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }
	return r, send, &clock
}

func TestTick_NothingBeforeTheHour(t *testing.T) {
	r, send, clock := newTestReminders(t)

	*clock = time.Date(2025, time.January, 15, 9, 59, 0, 0, time.UTC)
	r.Tick()
	if len(send.sent) != 0 {
		t.Fatalf("sent %d reminders before the window", len(send.sent))
	}
}

func TestTick_FiresOncePerDay(t *testing.T) {
	r, send, clock := newTestReminders(t)

	*clock = time.Date(2025, time.January, 15, 10, 0, 0, 0, time.UTC)
	r.Tick()
	if len(send.sent) != 1 {
		t.Fatalf("got %d sends, want the delivery reminder", len(send.sent))
	}
	msg := send.sent[0].(tgbotapi.MessageConfig)
	if msg.ChatID != -100123 {
		t.Fatalf("reminder chat = %d", msg.ChatID)
	}

	// Later ticks the same day stay quiet.
	*clock = time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)
	r.Tick()
	r.Tick()
	if len(send.sent) != 1 {
		t.Fatalf("reminder repeated within the day: %d sends", len(send.sent))
	}

	// The evening job fires independently.
	*clock = time.Date(2025, time.January, 15, 20, 5, 0, 0, time.UTC)
	r.Tick()
	if len(send.sent) != 2 {
		t.Fatalf("got %d sends, want delivery + report", len(send.sent))
	}
}

func TestTick_FiresAgainNextDay(t *testing.T) {
	r, send, clock := newTestReminders(t)

	*clock = time.Date(2025, time.January, 15, 10, 30, 0, 0, time.UTC)
	r.Tick()
	*clock = time.Date(2025, time.January, 16, 10, 30, 0, 0, time.UTC)
	r.Tick()

	if len(send.sent) != 2 {
		t.Fatalf("got %d sends, want one per day", len(send.sent))
	}
}

func TestTick_LateStartStillFires(t *testing.T) {
	// Process restarted after the window: the reminder goes out on the first
	// tick instead of waiting for tomorrow.
	r, send, clock := newTestReminders(t)

	*clock = time.Date(2025, time.January, 15, 23, 0, 0, 0, time.UTC)
	r.Tick()
	if len(send.sent) != 2 {
		t.Fatalf("got %d sends, want both jobs after a late start", len(send.sent))
	}
}

func TestSpreadStaysInsideWindow(t *testing.T) {
	r, _, clock := newTestReminders(t)
	r.cfg.Spread = 30 * time.Minute

	*clock = time.Date(2025, time.January, 15, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 50; i++ {
		at := r.sendTimeFor(r.jobs[0], *clock)
		if at.Hour() != 10 || at.Minute() >= 30 {
			t.Fatalf("send time %v outside 10:00–10:29", at)
		}
	}
}
