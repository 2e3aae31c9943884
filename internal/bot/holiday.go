package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/shopcrew/go-shop-bots/internal/config"
	"github.com/shopcrew/go-shop-bots/internal/dateutil"
	"github.com/shopcrew/go-shop-bots/internal/domain"
	"github.com/shopcrew/go-shop-bots/internal/observability"
	"github.com/shopcrew/go-shop-bots/internal/services"
)

// Holiday workflow commands and the callback payload scheme. The payload is
// an opaque token "holiday_<approve|reject>_<id>" carried on the inline
// buttons sent to admins.
const (
	HolidayCmd      = "holiday"
	MyHolidaysCmd   = "myholidays"
	AllHolidaysCmd  = "allholidays"
	FreeDatesCmd    = "freedates"
	holidayPrefix   = "holiday_"
	actionApprove   = "approve"
	actionReject    = "reject"
)

// HolidayHandlers binds the holiday workflow to the bot's route table.
type HolidayHandlers struct {
	svc  *services.HolidayService
	send Sender
	cfg  config.HolidayConfig
	log  zerolog.Logger
}

// NewHolidayHandlers wires the workflow service to a sender and its
// configured scope.
func NewHolidayHandlers(svc *services.HolidayService, send Sender, cfg config.HolidayConfig, log zerolog.Logger) *HolidayHandlers {
	return &HolidayHandlers{svc: svc, send: send, cfg: cfg, log: log.With().Str("module", "holiday").Logger()}
}

// Register attaches the workflow routes. Command routes are scoped to the
// configured chat+topic; the callback route is keyed by payload prefix only,
// because resolution buttons live in admin private chats.
func (h *HolidayHandlers) Register(b *Bot) {
	b.Register(And(h.scoped, Command(HolidayCmd)), h.handleSubmit)
	b.Register(And(h.scoped, Command(MyHolidaysCmd)), h.handleFutureApproved)
	b.Register(And(h.scoped, Command(AllHolidaysCmd)), h.handleAllApproved)
	b.Register(And(h.scoped, Command(FreeDatesCmd)), h.handleFreeDates)
	b.Register(CallbackPrefix(holidayPrefix), h.handleResolution)
}

// scoped restricts message routes to the configured chat and topic. Updates
// outside the scope fall through silently; other modules may still claim
// them. The wire library predates forum topics, so the thread pin is the
// topic's root service message, which Telegram sets as reply_to_message on
// every non-reply message posted in a topic.
func (h *HolidayHandlers) scoped(upd tgbotapi.Update) bool {
	m := upd.Message
	if m == nil || m.Chat == nil || m.Chat.ID != h.cfg.ChatID {
		return false
	}
	if h.cfg.TopicID == 0 {
		return true
	}
	return m.ReplyToMessage != nil && m.ReplyToMessage.MessageID == h.cfg.TopicID
}

func (h *HolidayHandlers) handleSubmit(ctx context.Context, upd tgbotapi.Update) error {
	m := upd.Message
	from := m.From
	if from == nil {
		return nil
	}

	req, err := h.svc.Submit(services.Submitter{
		ID:        from.ID,
		Username:  from.UserName,
		FirstName: from.FirstName,
		LastName:  from.LastName,
	}, m.CommandArguments())
	if err != nil {
		h.reply(m, submitErrorText(err))
		return nil
	}

	observability.HolidayRequests.WithLabelValues("submitted").Inc()
	h.reply(m, fmt.Sprintf("Request #%d for %s recorded. Waiting for approval.",
		req.ID, dateutil.FormatDate(req.Date)))
	h.notifyAdmins(req, from)
	return nil
}

// submitErrorText maps the submission error taxonomy to corrective replies.
// Unexpected errors cannot come out of Submit; every failure is user input.
func submitErrorText(err error) string {
	switch {
	case errors.Is(err, services.ErrBadFormat):
		return "Send the day and a reason, e.g. /holiday 24.12 family visit"
	case errors.Is(err, services.ErrBadDate):
		return "I could not read that date. Try 24, 24.12 or 24.12.2026."
	case errors.Is(err, services.ErrPastDate):
		return "That day has already passed. Pick a future date."
	case errors.Is(err, services.ErrDateTaken):
		return "That day is already taken by an approved request. /freedates shows what is open."
	}
	return "Something went wrong, please try again."
}

// notifyAdmins sends every configured admin a private notification with the
// approve/reject buttons. A failed delivery (admin never started the bot,
// blocked it, ...) is logged and skipped; the request is already stored.
func (h *HolidayHandlers) notifyAdmins(req domain.HolidayRequest, from *tgbotapi.User) {
	name := strings.TrimSpace(from.FirstName + " " + from.LastName)
	if from.UserName != "" {
		name = fmt.Sprintf("%s (@%s)", name, from.UserName)
	}
	text := fmt.Sprintf("Holiday request #%d\nFrom: %s\nDate: %s\nReason: %s",
		req.ID, name, dateutil.FormatDate(req.Date), req.Reason)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Approve", fmt.Sprintf("%s%s_%d", holidayPrefix, actionApprove, req.ID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Reject", fmt.Sprintf("%s%s_%d", holidayPrefix, actionReject, req.ID)),
		),
	)

	for _, adminID := range h.cfg.AdminIDs {
		msg := tgbotapi.NewMessage(adminID, text)
		msg.ReplyMarkup = keyboard
		if _, err := h.send.Send(msg); err != nil {
			observability.NotificationsSent.WithLabelValues("failed").Inc()
			h.log.Warn().Err(err).Int64("admin_id", adminID).Int("request_id", req.ID).Msg("admin notification failed")
			continue
		}
		observability.NotificationsSent.WithLabelValues("ok").Inc()
	}
}

func (h *HolidayHandlers) handleResolution(ctx context.Context, upd tgbotapi.Update) error {
	cb := upd.CallbackQuery
	approve, id, ok := parseResolution(cb.Data)
	if !ok {
		h.answer(cb, "Unknown action.")
		return nil
	}

	req, err := h.svc.Resolve(id, approve, cb.From.ID)
	switch {
	case errors.Is(err, services.ErrNotAdmin):
		h.answer(cb, "You are not allowed to resolve requests.")
		return nil
	case errors.Is(err, services.ErrRequestNotFound):
		h.answer(cb, fmt.Sprintf("Request #%d not found.", id))
		return nil
	case errors.Is(err, services.ErrAlreadyProcessed):
		h.answer(cb, fmt.Sprintf("Request #%d was already processed.", id))
		return nil
	case err != nil:
		h.answer(cb, "Something went wrong.")
		return err
	}

	verdict, stamp := "rejected", "Rejected"
	if approve {
		verdict, stamp = "approved", "Approved"
	}
	observability.HolidayRequests.WithLabelValues(verdict).Inc()

	// Edit the admin's message in place; the missing reply_markup on the
	// edit removes the buttons.
	if cb.Message != nil {
		edit := tgbotapi.NewEditMessageText(cb.Message.Chat.ID, cb.Message.MessageID,
			fmt.Sprintf("%s\n\n%s by you, %s", cb.Message.Text, stamp, dateutil.FormatDateTime(req.ProcessedAt)))
		if _, err := h.send.Send(edit); err != nil {
			h.log.Warn().Err(err).Int("request_id", id).Msg("edit of admin message failed")
		}
	}
	h.answer(cb, fmt.Sprintf("Request #%d %s.", id, verdict))

	// Fresh message to the requester. Failure (bot blocked etc.) is logged
	// only; the transition is committed and stays committed.
	note := fmt.Sprintf("Your holiday request #%d for %s was %s.", req.ID, dateutil.FormatDate(req.Date), verdict)
	if _, err := h.send.Send(tgbotapi.NewMessage(req.UserID, note)); err != nil {
		observability.NotificationsSent.WithLabelValues("failed").Inc()
		h.log.Warn().Err(err).Int64("user_id", req.UserID).Int("request_id", req.ID).Msg("requester notification failed")
	} else {
		observability.NotificationsSent.WithLabelValues("ok").Inc()
	}
	return nil
}

// parseResolution decodes "holiday_<approve|reject>_<id>".
func parseResolution(data string) (approve bool, id int, ok bool) {
	parts := strings.Split(data, "_")
	if len(parts) != 3 || parts[0] != "holiday" {
		return false, 0, false
	}
	id, err := strconv.Atoi(parts[2])
	if err != nil || id <= 0 {
		return false, 0, false
	}
	switch parts[1] {
	case actionApprove:
		return true, id, true
	case actionReject:
		return false, id, true
	}
	return false, 0, false
}

func (h *HolidayHandlers) handleFutureApproved(ctx context.Context, upd tgbotapi.Update) error {
	m := upd.Message
	if m.From == nil {
		return nil
	}
	reqs := h.svc.FutureApproved(m.From.ID)
	if len(reqs) == 0 {
		h.reply(m, "No approved holidays coming up.")
		return nil
	}
	var sb strings.Builder
	sb.WriteString("Your upcoming holidays:\n")
	for _, r := range reqs {
		fmt.Fprintf(&sb, "• %s — %s\n", dateutil.FormatDate(r.Date), r.Reason)
	}
	h.reply(m, sb.String())
	return nil
}

func (h *HolidayHandlers) handleAllApproved(ctx context.Context, upd tgbotapi.Update) error {
	m := upd.Message
	if m.From == nil {
		return nil
	}
	reqs := h.svc.AllApproved(m.From.ID)
	if len(reqs) == 0 {
		h.reply(m, "No approved holidays on record.")
		return nil
	}
	var sb strings.Builder
	sb.WriteString("All your approved holidays:\n")
	for _, r := range reqs {
		fmt.Fprintf(&sb, "• %s — %s\n", dateutil.FormatDate(r.Date), r.Reason)
	}
	h.reply(m, sb.String())
	return nil
}

func (h *HolidayHandlers) handleFreeDates(ctx context.Context, upd tgbotapi.Update) error {
	m := upd.Message
	dates := h.svc.FreeDates()
	if len(dates) == 0 {
		h.reply(m, "No free weekdays found in the scan window.")
		return nil
	}
	var sb strings.Builder
	sb.WriteString("Nearest free weekdays:\n")
	for _, d := range dates {
		fmt.Fprintf(&sb, "• %s\n", d.Format("02.01.2006"))
	}
	h.reply(m, sb.String())
	return nil
}

// reply answers in the same chat, threaded under the triggering message so it
// stays inside the topic.
func (h *HolidayHandlers) reply(m *tgbotapi.Message, text string) {
	msg := tgbotapi.NewMessage(m.Chat.ID, text)
	msg.ReplyToMessageID = m.MessageID
	if _, err := h.send.Send(msg); err != nil {
		observability.NotificationsSent.WithLabelValues("failed").Inc()
		h.log.Warn().Err(err).Int64("chat_id", m.Chat.ID).Msg("reply failed")
		return
	}
	observability.NotificationsSent.WithLabelValues("ok").Inc()
}

// answer acknowledges a callback query; Telegram shows the text as a toast.
func (h *HolidayHandlers) answer(cb *tgbotapi.CallbackQuery, text string) {
	if _, err := h.send.Request(tgbotapi.NewCallback(cb.ID, text)); err != nil {
		h.log.Warn().Err(err).Msg("callback answer failed")
	}
}
