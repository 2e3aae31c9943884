// Package scheduler runs the daily staff reminders: the delivery check in the
// morning and the end-of-day report nudge in the evening. Each reminder fires
// once per day at a randomized minute inside its configured hour, so the
// messages do not land at a robotic fixed time.
package scheduler

import (
	"math/rand"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/shopcrew/go-shop-bots/internal/bot"
	"github.com/shopcrew/go-shop-bots/internal/config"
	"github.com/shopcrew/go-shop-bots/internal/observability"
)

// job is one daily reminder. fireAt is recomputed per day; lastSent guards
// against double sends within the same day.
type job struct {
	name     string
	hour     int
	text     string
	fireAt   time.Time
	lastSent string // ISO day of the last send
}

// Reminders owns the background loop. Start/Stop bracket its goroutine.
type Reminders struct {
	send bot.Sender
	cfg  config.ReminderConfig
	log  zerolog.Logger

	// CheckInterval is how often the loop wakes up. Minute granularity is
	// plenty for send times jittered across half an hour.
	CheckInterval time.Duration

	now  func() time.Time
	rnd  *rand.Rand
	jobs []*job

	stop chan struct{}
	wg   sync.WaitGroup
	mu   sync.Mutex
}

// New creates the reminder loop for the configured staff chat.
func New(send bot.Sender, cfg config.ReminderConfig, log zerolog.Logger) *Reminders {
	return &Reminders{
		send:          send,
		cfg:           cfg,
		log:           log.With().Str("module", "reminders").Logger(),
		CheckInterval: time.Minute,
		now:           time.Now,
		rnd:           rand.New(rand.NewSource(time.Now().UnixNano())),
		jobs: []*job{
			{name: "delivery", hour: cfg.DeliveryHour, text: "Delivery check: has everything for today been received and shelved?"},
			{name: "report", hour: cfg.ReportHour, text: "Time to send the daily report before closing up."},
		},
		stop: make(chan struct{}),
	}
}

// Start begins the loop. A zero chat id disables reminders entirely.
func (r *Reminders) Start() {
	if r.cfg.ChatID == 0 {
		r.log.Info().Msg("no reminder chat configured, reminders disabled")
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(r.CheckInterval)
		defer ticker.Stop()

		r.log.Info().Int("delivery_hour", r.cfg.DeliveryHour).Int("report_hour", r.cfg.ReportHour).Msg("reminder loop started")
		for {
			select {
			case <-r.stop:
				return
			case <-ticker.C:
				r.Tick()
			}
		}
	}()
}

// Stop terminates the loop and waits for it to exit.
func (r *Reminders) Stop() {
	close(r.stop)
	r.wg.Wait()
}

// Tick fires every job whose randomized send time has come. Exported so tests
// (and a manual admin poke) can drive the loop without waiting on the ticker.
func (r *Reminders) Tick() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	day := now.Format("2006-01-02")

	for _, j := range r.jobs {
		if j.lastSent == day {
			continue
		}
		if j.fireAt.IsZero() || j.fireAt.Format("2006-01-02") != day {
			j.fireAt = r.sendTimeFor(j, now)
		}
		if now.Before(j.fireAt) {
			continue
		}

		// One attempt per day, fire and forget: a failed send is logged and
		// the job is still marked done so the chat is not spammed by retries.
		j.lastSent = day
		if _, err := r.send.Send(tgbotapi.NewMessage(r.cfg.ChatID, j.text)); err != nil {
			r.log.Warn().Err(err).Str("job", j.name).Msg("reminder send failed")
			continue
		}
		observability.RemindersFired.WithLabelValues(j.name).Inc()
		r.log.Info().Str("job", j.name).Time("at", now).Msg("reminder sent")
	}
}

// sendTimeFor picks today's send time: the job's hour plus a random offset
// within the configured spread.
func (r *Reminders) sendTimeFor(j *job, now time.Time) time.Time {
	base := time.Date(now.Year(), now.Month(), now.Day(), j.hour, 0, 0, 0, now.Location())
	if r.cfg.Spread <= 0 {
		return base
	}
	return base.Add(time.Duration(r.rnd.Int63n(int64(r.cfg.Spread))))
}
