// Command bots runs the retail Telegram bots: the shop bot (orders, shifts,
// reminders) and the holiday workflow bot, plus the loopback admin listener.
// When HOLIDAY_BOT_TOKEN is absent or equals BOT_TOKEN, both handler sets
// share one client and one update loop.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/shopcrew/go-shop-bots/internal/bot"
	"github.com/shopcrew/go-shop-bots/internal/config"
	adminapi "github.com/shopcrew/go-shop-bots/internal/http"
	"github.com/shopcrew/go-shop-bots/internal/repo"
	"github.com/shopcrew/go-shop-bots/internal/scheduler"
	"github.com/shopcrew/go-shop-bots/internal/services"
	"github.com/shopcrew/go-shop-bots/internal/store"
	"github.com/shopcrew/go-shop-bots/internal/sysutil"
)

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Persistence: JSON document for the holiday workflow, SQLite for the
	// retail entities.
	holidays := store.Open(cfg.Holiday.StorePath)

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	holidaySvc := &services.HolidayService{
		Store:         holidays,
		AdminIDs:      cfg.Holiday.AdminIDs,
		FreeDateCount: cfg.FreeDates,
		ScanHorizon:   cfg.ScanHorizon,
	}
	orderSvc := &services.OrderService{DB: db}
	shiftSvc := &services.ShiftService{DB: db}

	shopAPI, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("shop bot auth")
	}
	log.Info().Str("username", shopAPI.Self.UserName).Msg("shop bot authorized")

	shopSender := bot.NewLimitedSender(shopAPI, cfg.SendRPS, cfg.SendBurst)
	shopBot := bot.New("shop", shopAPI, log.Logger)
	bot.NewShopHandlers(orderSvc, shiftSvc, shopSender, cfg.StaffChatID, log.Logger).Register(shopBot)

	// The holiday workflow rides on its own bot unless it shares the token.
	holidayBot := shopBot
	holidaySender := bot.Sender(shopSender)
	if cfg.Holiday.BotToken != cfg.BotToken {
		holidayAPI, err := tgbotapi.NewBotAPI(cfg.Holiday.BotToken)
		if err != nil {
			log.Fatal().Err(err).Msg("holiday bot auth")
		}
		log.Info().Str("username", holidayAPI.Self.UserName).Msg("holiday bot authorized")
		holidaySender = bot.NewLimitedSender(holidayAPI, cfg.SendRPS, cfg.SendBurst)
		holidayBot = bot.New("holiday", holidayAPI, log.Logger)
	}
	bot.NewHolidayHandlers(holidaySvc, holidaySender, cfg.Holiday, log.Logger).Register(holidayBot)

	reminders := scheduler.New(shopSender, cfg.Reminders, log.Logger)
	reminders.Start()
	defer reminders.Stop()

	if cfg.AdminAddr != "" {
		go func() {
			engine := adminapi.NewRouter(holidays)
			if err := adminapi.Serve(cfg.AdminAddr, engine); err != nil {
				log.Error().Err(err).Str("addr", cfg.AdminAddr).Msg("admin listener stopped")
			}
		}()
	}

	if holidayBot != shopBot {
		go holidayBot.Run(ctx)
	}
	shopBot.Run(ctx)
}
