// Package telegram serves the household budget through a Telegram chat.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"presupuesto/internal/analytics"
	"presupuesto/internal/auth"
	"presupuesto/internal/charts"
	"presupuesto/internal/core"
	"presupuesto/internal/services"
)

const helpText = `Escríbeme tus gastos en lenguaje natural, por ejemplo:
"Gasté 50.000 en supermercado"

Comandos:
/resumen  presupuesto y gasto del mes
/grafica  gasto diario acumulado
/ayuda    esta ayuda`

const (
	msgNotSaved = "⚠️ No se pudo guardar el gasto. Intenta de nuevo."
	msgNoChart  = "Aún no hay datos para graficar."
	msgLoading  = "Cargando datos, intenta en un momento."
)

var monthNames = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// Sender delivers replies; *tgbotapi.BotAPI implements it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Deps struct {
	Family    *auth.Family
	Entry     *services.QuickEntry
	Dashboard *services.Dashboard
	Charts    *charts.Renderer
	Logger    *slog.Logger
}

// Bot answers messages from a single configured chat.
type Bot struct {
	sender Sender
	chatID int64
	deps   Deps
	logger *slog.Logger
}

func New(sender Sender, chatID int64, deps Deps) *Bot {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		sender: sender,
		chatID: chatID,
		deps:   deps,
		logger: logger.With("component", "telegram"),
	}
}

// Run long-polls api for updates until ctx ends.
func (b *Bot) Run(ctx context.Context, api *tgbotapi.BotAPI) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)
	b.logger.InfoContext(ctx, "Telegram bot polling", "bot", api.Self.UserName, "chat_id", b.chatID)

	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if err := b.HandleUpdate(ctx, update); err != nil {
				b.logger.ErrorContext(ctx, "Failed to handle update", "update_id", update.UpdateID, "error", err)
			}
		}
	}
}

// HandleUpdate answers one update. Messages from other chats are ignored.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return nil
	}
	if msg.Chat.ID != b.chatID {
		b.logger.WarnContext(ctx, "Ignoring message from unknown chat", "chat_id", msg.Chat.ID)
		return nil
	}

	if msg.IsCommand() {
		switch msg.Command() {
		case "resumen":
			return b.reply(b.summary())
		case "grafica":
			return b.sendChart(ctx)
		default:
			return b.reply(helpText)
		}
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return nil
	}
	return b.reply(b.submit(ctx, msg.From, text))
}

func (b *Bot) submit(ctx context.Context, from *tgbotapi.User, text string) string {
	if from == nil {
		return core.MsgUnknownUser
	}
	member, err := b.deps.Family.ByTelegram(from.UserName)
	if err != nil {
		b.logger.WarnContext(ctx, "Message from unmapped Telegram user", "username", from.UserName)
		return core.UserMessage(err)
	}

	out, err := b.deps.Entry.SubmitText(ctx, text, member)
	switch {
	case err != nil:
		return core.UserMessage(err)
	case !out.Saved || out.Expense == nil:
		return msgNotSaved
	}

	name := core.UnknownCategoryName
	if snap, ok := b.deps.Dashboard.Snapshot(); ok {
		name = analytics.LookupCategory(snap.Categories, out.Expense.CategoryID).Name
	}
	reply := fmt.Sprintf("✅ %s en %s\n%s", core.FormatCOP(out.Expense.Amount), name, out.Expense.Description)
	if out.Fallback {
		reply += "\n(no reconocí la categoría, revisa si es correcta)"
	}
	return reply
}

func (b *Bot) summary() string {
	now := b.deps.Dashboard.Now()
	view, ok := b.deps.Dashboard.View(now)
	if !ok {
		return msgLoading
	}
	return FormatSummary(view.View, now)
}

// FormatSummary renders the month totals and the per-category spending.
func FormatSummary(d analytics.Dashboard, now time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 Resumen de %s %d\n", monthNames[now.Month()-1], now.Year())
	fmt.Fprintf(&sb, "Presupuesto: %s\n", core.FormatCOP(d.Totals.Budget))
	fmt.Fprintf(&sb, "Gastado: %s (%.0f%%)\n", core.FormatCOP(d.Totals.Spent), d.Totals.PercentUsed)
	fmt.Fprintf(&sb, "Disponible: %s\n", core.FormatCOP(d.Totals.Available))
	if len(d.Categories) > 0 {
		sb.WriteString("\n")
	}
	for _, c := range d.Categories {
		mark := "•"
		if c.OverBudget {
			mark = "🔴"
		}
		fmt.Fprintf(&sb, "%s %s: %s de %s\n", mark, c.Category.Name, core.FormatCOP(c.Spent), core.FormatCOP(c.Category.Budget))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (b *Bot) sendChart(ctx context.Context) error {
	now := b.deps.Dashboard.Now()
	view, ok := b.deps.Dashboard.View(now)
	if !ok {
		return b.reply(msgLoading)
	}
	png, err := b.deps.Charts.Render(charts.KindDaily, view.Revision, now, view.View)
	if errors.Is(err, charts.ErrNoData) {
		return b.reply(msgNoChart)
	}
	if err != nil {
		b.logger.ErrorContext(ctx, "Failed to render chart", "error", err)
		return b.reply(core.MsgGeneric)
	}

	photo := tgbotapi.NewPhoto(b.chatID, tgbotapi.FileBytes{Name: "gasto-diario.png", Bytes: png})
	photo.Caption = fmt.Sprintf("Gasto diario de %s", monthNames[now.Month()-1])
	if _, err := b.sender.Send(photo); err != nil {
		return fmt.Errorf("send chart: %w", err)
	}
	return nil
}

func (b *Bot) reply(text string) error {
	if _, err := b.sender.Send(tgbotapi.NewMessage(b.chatID, text)); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}
