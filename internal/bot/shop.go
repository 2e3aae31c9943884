package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/shopcrew/go-shop-bots/internal/observability"
	"github.com/shopcrew/go-shop-bots/internal/services"
)

// Shop bot commands and callback payloads. Order callbacks carry the order
// uuid: "order_<confirm|done|cancel>_<id>".
const (
	OrderCmd       = "order"
	OrdersCmd      = "orders"
	PriceCmd       = "price"
	ShiftStartCmd  = "shift_start"
	ShiftEndCmd    = "shift_end"
	ShiftReportCmd = "shift_report"
	orderPrefix    = "order_"
)

// ShopHandlers binds order intake and shift tracking to the route table.
type ShopHandlers struct {
	orders      *services.OrderService
	shifts      *services.ShiftService
	send        Sender
	staffChatID int64
	log         zerolog.Logger
}

// NewShopHandlers wires the retail services to a sender. staffChatID is the
// chat that receives new-order notifications and may work the order buttons.
func NewShopHandlers(orders *services.OrderService, shifts *services.ShiftService, send Sender, staffChatID int64, log zerolog.Logger) *ShopHandlers {
	return &ShopHandlers{
		orders:      orders,
		shifts:      shifts,
		send:        send,
		staffChatID: staffChatID,
		log:         log.With().Str("module", "shop").Logger(),
	}
}

// Register attaches the shop routes.
func (h *ShopHandlers) Register(b *Bot) {
	b.Register(Command(OrderCmd), h.handleOrder)
	b.Register(And(h.staffOnly, Command(OrdersCmd)), h.handleOpenOrders)
	b.Register(And(h.staffOnly, Command(PriceCmd)), h.handlePrice)
	b.Register(Command(ShiftStartCmd), h.handleShiftStart)
	b.Register(Command(ShiftEndCmd), h.handleShiftEnd)
	b.Register(And(h.staffOnly, Command(ShiftReportCmd)), h.handleShiftReport)
	b.Register(h.staffCallback, h.handleOrderAction)
}

// staffOnly limits a command to the staff chat.
func (h *ShopHandlers) staffOnly(upd tgbotapi.Update) bool {
	return upd.Message != nil && upd.Message.Chat != nil && upd.Message.Chat.ID == h.staffChatID
}

// staffCallback claims order buttons pressed in the staff chat.
func (h *ShopHandlers) staffCallback(upd tgbotapi.Update) bool {
	cb := upd.CallbackQuery
	return cb != nil && cb.Message != nil && cb.Message.Chat != nil &&
		cb.Message.Chat.ID == h.staffChatID && strings.HasPrefix(cb.Data, orderPrefix)
}

func (h *ShopHandlers) handleOrder(ctx context.Context, upd tgbotapi.Update) error {
	m := upd.Message
	if m.From == nil {
		return nil
	}

	o, err := h.orders.Place(ctx, m.Chat.ID, m.From.ID, m.From.UserName, m.CommandArguments())
	if errors.Is(err, services.ErrEmptyOrder) {
		h.reply(m, "Tell me what to order, e.g. /order 2 lemonade, 1 crisps")
		return nil
	}
	if err != nil {
		h.reply(m, "Could not record the order, please try again.")
		return err
	}

	observability.OrdersPlaced.Inc()
	h.reply(m, "Order received! We will confirm it shortly.")

	if h.staffChatID != 0 {
		text := fmt.Sprintf("New order from @%s\n%s\n\nid: %s", o.Username, o.Items, o.ID)
		msg := tgbotapi.NewMessage(h.staffChatID, text)
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("Confirm", orderPrefix+"confirm_"+o.ID),
				tgbotapi.NewInlineKeyboardButtonData("Done", orderPrefix+"done_"+o.ID),
				tgbotapi.NewInlineKeyboardButtonData("Cancel", orderPrefix+"cancel_"+o.ID),
			),
		)
		if _, err := h.send.Send(msg); err != nil {
			observability.NotificationsSent.WithLabelValues("failed").Inc()
			h.log.Warn().Err(err).Str("order_id", o.ID).Msg("staff notification failed")
		} else {
			observability.NotificationsSent.WithLabelValues("ok").Inc()
		}
	}
	return nil
}

func (h *ShopHandlers) handleOrderAction(ctx context.Context, upd tgbotapi.Update) error {
	cb := upd.CallbackQuery
	rest := strings.TrimPrefix(cb.Data, orderPrefix)
	action, id, found := strings.Cut(rest, "_")
	if !found {
		h.answer(cb, "Unknown action.")
		return nil
	}

	var err error
	var outcome string
	switch action {
	case "confirm":
		_, err = h.orders.Confirm(ctx, id)
		outcome = "Order confirmed."
	case "done":
		_, err = h.orders.Complete(ctx, id)
		outcome = "Order completed."
	case "cancel":
		_, err = h.orders.Cancel(ctx, id)
		outcome = "Order cancelled."
	default:
		h.answer(cb, "Unknown action.")
		return nil
	}

	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		h.answer(cb, "Order not found.")
	case errors.Is(err, services.ErrOrderClosed):
		h.answer(cb, "Order is already closed.")
	case err != nil:
		h.answer(cb, "Something went wrong.")
		return err
	default:
		h.answer(cb, outcome)
	}
	return nil
}

func (h *ShopHandlers) handleOpenOrders(ctx context.Context, upd tgbotapi.Update) error {
	m := upd.Message
	orders, err := h.orders.Open(ctx)
	if err != nil {
		h.reply(m, "Could not load orders.")
		return err
	}
	if len(orders) == 0 {
		h.reply(m, "No open orders.")
		return nil
	}
	var sb strings.Builder
	sb.WriteString("Open orders:\n")
	for _, o := range orders {
		fmt.Fprintf(&sb, "• [%s] @%s — %s (%s)\n", o.Status, o.Username, o.Items, o.ID)
	}
	h.reply(m, sb.String())
	return nil
}

// handlePrice sets the total on an order: /price <order-id> <amount>.
func (h *ShopHandlers) handlePrice(ctx context.Context, upd tgbotapi.Update) error {
	m := upd.Message
	args := strings.Fields(m.CommandArguments())
	if len(args) != 2 {
		h.reply(m, "Usage: /price <order-id> <amount>")
		return nil
	}
	total, err := decimal.NewFromString(args[1])
	if err != nil || total.IsNegative() {
		h.reply(m, "That does not look like an amount.")
		return nil
	}

	err = h.orders.SetTotal(ctx, args[0], total)
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		h.reply(m, "Order not found.")
	case errors.Is(err, services.ErrOrderClosed):
		h.reply(m, "Order is already closed.")
	case err != nil:
		h.reply(m, "Could not set the price.")
		return err
	default:
		h.reply(m, fmt.Sprintf("Order priced at %s.", total.StringFixed(2)))
	}
	return nil
}

func (h *ShopHandlers) handleShiftStart(ctx context.Context, upd tgbotapi.Update) error {
	m := upd.Message
	if m.From == nil {
		return nil
	}
	name := strings.TrimSpace(m.From.FirstName + " " + m.From.LastName)

	sh, err := h.shifts.Open(ctx, m.From.ID, name)
	switch {
	case errors.Is(err, services.ErrShiftAlreadyOpen):
		h.reply(m, "You already have an open shift.")
	case err != nil:
		h.reply(m, "Could not open the shift.")
		return err
	default:
		h.reply(m, fmt.Sprintf("Shift opened at %s. Have a good one!", sh.OpenedAt.Format("15:04")))
	}
	return nil
}

func (h *ShopHandlers) handleShiftEnd(ctx context.Context, upd tgbotapi.Update) error {
	m := upd.Message
	if m.From == nil {
		return nil
	}

	sh, err := h.shifts.Close(ctx, m.From.ID)
	switch {
	case errors.Is(err, services.ErrNoOpenShift):
		h.reply(m, "You have no open shift.")
	case err != nil:
		h.reply(m, "Could not close the shift.")
		return err
	default:
		dur := sh.ClosedAt.Sub(sh.OpenedAt).Round(time.Minute)
		h.reply(m, fmt.Sprintf("Shift closed. You worked %s.", dur))
	}
	return nil
}

func (h *ShopHandlers) handleShiftReport(ctx context.Context, upd tgbotapi.Update) error {
	m := upd.Message
	shifts, err := h.shifts.Report(ctx, m.Time())
	if err != nil {
		h.reply(m, "Could not build the report.")
		return err
	}
	if len(shifts) == 0 {
		h.reply(m, "No shifts today.")
		return nil
	}
	var sb strings.Builder
	sb.WriteString("Shifts today:\n")
	for _, s := range shifts {
		end := "…"
		if s.ClosedAt != nil {
			end = s.ClosedAt.Format("15:04")
		}
		fmt.Fprintf(&sb, "• %s: %s – %s\n", s.Name, s.OpenedAt.Format("15:04"), end)
	}
	h.reply(m, sb.String())
	return nil
}

func (h *ShopHandlers) reply(m *tgbotapi.Message, text string) {
	msg := tgbotapi.NewMessage(m.Chat.ID, text)
	msg.ReplyToMessageID = m.MessageID
	if _, err := h.send.Send(msg); err != nil {
		observability.NotificationsSent.WithLabelValues("failed").Inc()
		h.log.Warn().Err(err).Int64("chat_id", m.Chat.ID).Msg("reply failed")
		return
	}
	observability.NotificationsSent.WithLabelValues("ok").Inc()
}

func (h *ShopHandlers) answer(cb *tgbotapi.CallbackQuery, text string) {
	if _, err := h.send.Request(tgbotapi.NewCallback(cb.ID, text)); err != nil {
		h.log.Warn().Err(err).Msg("callback answer failed")
	}
}
