package telegram

import (
	"context"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"presupuesto/internal/analytics"
	"presupuesto/internal/auth"
	"presupuesto/internal/charts"
	"presupuesto/internal/core"
	"presupuesto/internal/extraction"
	"presupuesto/internal/services"
	"presupuesto/internal/store"
	"presupuesto/internal/store/memory"
)

const chatID = 42

type fakeSender struct {
	sent []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) lastText(t *testing.T) string {
	t.Helper()
	if len(f.sent) == 0 {
		t.Fatal("nothing sent")
	}
	msg, ok := f.sent[len(f.sent)-1].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("expected a text message, got %T", f.sent[len(f.sent)-1])
	}
	return msg.Text
}

type fakeExtractor struct {
	res extraction.Result
}

func (f fakeExtractor) Extract(context.Context, string, []string) (extraction.Result, error) {
	return f.res, nil
}

func newBot(t *testing.T, ex extraction.Extractor) (*Bot, *fakeSender, *store.Hub) {
	t.Helper()
	hub := store.NewHub(memory.New(), []core.Category{
		{ID: "1", Name: "Alimentación", Budget: 500000},
		{ID: "2", Name: "Vivienda", Budget: 1200000},
	}, nil)
	if err := hub.Start(context.Background()); err != nil {
		t.Fatalf("start hub: %v", err)
	}
	family := auth.NewFamily([]core.FamilyUser{
		{ID: "u1", Name: "Papá", TelegramUsername: "papa"},
		{ID: "u2", Name: "Mamá", TelegramUsername: "mama"},
	})
	expenses := services.NewExpenseService(hub, nil, nil)
	sender := &fakeSender{}
	bot := New(sender, chatID, Deps{
		Family:    family,
		Entry:     services.NewQuickEntry(ex, hub, expenses, nil),
		Dashboard: services.NewDashboard(hub, time.UTC),
		Charts:    charts.NewRenderer(4, time.Minute, nil),
	})
	return bot, sender, hub
}

func message(chat int64, user, text string) tgbotapi.Update {
	msg := &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: chat},
		From: &tgbotapi.User{UserName: user},
	}
	if strings.HasPrefix(text, "/") {
		cmd, _, _ := strings.Cut(text, " ")
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}}
	}
	return tgbotapi.Update{Message: msg}
}

func TestTextMessageSavesExpense(t *testing.T) {
	amount := 35000.0
	name := "alimentación"
	desc := "Mercado"
	bot, sender, hub := newBot(t, fakeExtractor{res: extraction.Result{Amount: &amount, CategoryName: &name, Description: &desc}})

	if err := bot.HandleUpdate(context.Background(), message(chatID, "mama", "gasté 35 mil en mercado")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	reply := sender.lastText(t)
	if !strings.Contains(reply, "Alimentación") || !strings.HasPrefix(reply, "✅") {
		t.Fatalf("unexpected reply %q", reply)
	}

	snap, _ := hub.Latest()
	if len(snap.Expenses) != 1 || snap.Expenses[0].UserID != "u2" {
		t.Fatalf("expected expense attributed to u2, got %+v", snap.Expenses)
	}
}

func TestTextMessageErrors(t *testing.T) {
	bot, sender, _ := newBot(t, fakeExtractor{})

	if err := bot.HandleUpdate(context.Background(), message(chatID, "extraño", "gasté 10")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if got := sender.lastText(t); got != core.MsgUnknownUser {
		t.Fatalf("unmapped user: got %q", got)
	}

	if err := bot.HandleUpdate(context.Background(), message(chatID, "papa", "hola")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if got := sender.lastText(t); got != core.MsgExtractionFailed {
		t.Fatalf("no amount: got %q", got)
	}
}

func TestIgnoresOtherChats(t *testing.T) {
	bot, sender, _ := newBot(t, fakeExtractor{})
	if err := bot.HandleUpdate(context.Background(), message(7, "papa", "/resumen")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("expected no reply, got %d", len(sender.sent))
	}
}

func TestCommands(t *testing.T) {
	bot, sender, hub := newBot(t, fakeExtractor{})
	ctx := context.Background()

	if err := bot.HandleUpdate(ctx, message(chatID, "papa", "/ayuda")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if sender.lastText(t) != helpText {
		t.Fatal("expected help text")
	}

	if err := bot.HandleUpdate(ctx, message(chatID, "papa", "/resumen")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.HasPrefix(sender.lastText(t), "📊 Resumen de") {
		t.Fatalf("unexpected summary %q", sender.lastText(t))
	}

	_, err := hub.CreateExpense(ctx, core.Expense{
		CategoryID: "1", Amount: 120000, Date: time.Now(), Description: "mercado", UserID: "u1", UserName: "Papá",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := bot.HandleUpdate(ctx, message(chatID, "papa", "/grafica")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	photo, ok := sender.sent[len(sender.sent)-1].(tgbotapi.PhotoConfig)
	if !ok {
		t.Fatalf("expected a photo, got %T", sender.sent[len(sender.sent)-1])
	}
	if photo.ChatID != chatID {
		t.Fatalf("photo sent to %d", photo.ChatID)
	}
}

func TestFormatSummary(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	cats := []core.Category{
		{ID: "1", Name: "Alimentación", Budget: 100000},
		{ID: "2", Name: "Vivienda", Budget: 1000000},
	}
	exps := []core.Expense{
		{CategoryID: "1", Amount: 150000, Date: now},
		{CategoryID: "2", Amount: 500000, Date: now},
	}
	got := FormatSummary(analytics.Compute(cats, exps, now), now)

	for _, want := range []string{"marzo 2024", "Presupuesto: " + core.FormatCOP(1100000), "🔴 Alimentación", "• Vivienda"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
}
