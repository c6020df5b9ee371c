// Package telegram serves the shopping list and the recipe clipper through
// a Telegram webhook bot.
package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"menu-planner/internal/app"
	"menu-planner/internal/metrics"
	"menu-planner/internal/shared"
	"menu-planner/internal/shopping"
)

const (
	handleTimeout = 2 * time.Minute
	usageDays     = 7

	callbackRegenerate = "regen"
)

const helpText = "🛒 *Menu planner*\n\n" +
	"/menus: list menus\n" +
	"/list <menu id>: show a shopping list\n" +
	"/regenerate <menu id>: rebuild a shopping list from the menu's recipes\n\n" +
	"Send a recipe link to clip it into the catalog."

// sender is the part of the Telegram API the bot talks to.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot answers webhook updates from allowed users. Updates are handled in
// the background; Shutdown waits for them.
type Bot struct {
	api    sender
	app    *app.App
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	closed  bool
	pending sync.WaitGroup
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(a *app.App, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(a.Config.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	logger.Info("authorized on telegram", zap.String("account", api.Self.UserName))

	webhookURL := a.Config.TelegramWebhookURL
	wh, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", webhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", webhookURL, err)
	}
	logger.Info("webhook set", zap.String("description", resp.Description))

	return newBot(api, a, logger), nil
}

func newBot(api sender, a *app.App, logger *zap.Logger) *Bot {
	ctx, cancel := context.WithCancel(context.Background())
	return &Bot{api: api, app: a, logger: logger, ctx: ctx, cancel: cancel}
}

// ServeHTTP handles one webhook update. Work happens in the background so
// Telegram gets its answer right away. Once the bot is shutting down,
// updates are refused with 503 so Telegram delivers them again later.
func (b *Bot) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		b.logger.Warn("error parsing update", zap.Error(err))
		http.Error(w, "bad update", http.StatusBadRequest)
		return
	}

	var job func(ctx context.Context)
	switch {
	case update.CallbackQuery != nil:
		if b.allowed(update.CallbackQuery.From) {
			job = func(ctx context.Context) { b.handleCallbackQuery(ctx, update.CallbackQuery) }
		}
	case update.Message != nil:
		if b.allowed(update.Message.From) {
			job = func(ctx context.Context) { b.processMessage(ctx, update.Message) }
		}
	}

	if job != nil && !b.start(job) {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// start runs job in the background unless the bot is closed.
func (b *Bot) start(job func(ctx context.Context)) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return false
	}
	b.pending.Add(1)
	go func() {
		defer b.pending.Done()
		ctx, cancel := context.WithTimeout(b.ctx, handleTimeout)
		defer cancel()
		job(ctx)
	}()
	return true
}

// Wait blocks until every update accepted so far has been handled.
func (b *Bot) Wait() {
	b.pending.Wait()
}

// Shutdown stops accepting updates and waits for the ones in flight. If ctx
// ends first, in-flight handlers are cancelled and ctx's error is returned
// once they have returned.
func (b *Bot) Shutdown(ctx context.Context) error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.cancel()
		return nil
	case <-ctx.Done():
		b.cancel()
		<-done
		return ctx.Err()
	}
}

func (b *Bot) allowed(from *tgbotapi.User) bool {
	if from == nil {
		return false
	}
	for _, id := range b.app.Config.TelegramAllowedUserIDs {
		if from.ID == id {
			return true
		}
	}
	b.logger.Warn("unauthorized access attempt",
		zap.Int64("user_id", from.ID),
		zap.String("username", from.UserName))
	return false
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)
	if strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://") {
		b.handleClipperRequest(ctx, msg.Chat.ID, text)
		return
	}

	switch msg.Command() {
	case "menus":
		b.handleMenus(ctx, msg.Chat.ID)
	case "list":
		b.handleList(ctx, msg.Chat.ID, msg.CommandArguments(), false)
	case "regenerate":
		b.handleList(ctx, msg.Chat.ID, msg.CommandArguments(), true)
	case "metrics":
		if msg.From.ID != b.app.Config.AdminTelegramID {
			b.sendMarkdown(msg.Chat.ID, "⛔ *Access Denied*: Admin only.")
			return
		}
		b.handleMetricsCommand(ctx, msg.Chat.ID)
	default:
		b.sendMarkdown(msg.Chat.ID, helpText)
	}
}

func (b *Bot) handleMenus(ctx context.Context, chatID int64) {
	menus, err := b.app.Menus.List(ctx)
	if err != nil {
		b.logger.Error("failed to list menus", zap.Error(err))
		b.sendMarkdown(chatID, "❌ Error loading menus.")
		return
	}
	if len(menus) == 0 {
		b.sendMarkdown(chatID, "_No menus yet_")
		return
	}
	var sb strings.Builder
	sb.WriteString("📋 *Menus*\n\n")
	for _, m := range menus {
		fmt.Fprintf(&sb, "• `%d` %s (%d meals)\n", m.ID, escape(m.Name), m.MealCount)
	}
	b.sendMarkdown(chatID, sb.String())
}

func (b *Bot) handleList(ctx context.Context, chatID int64, arg string, regenerate bool) {
	menuID, err := shared.ParseID(arg)
	if err != nil {
		b.sendMarkdown(chatID, "Usage: /list <menu id>")
		return
	}

	var list shopping.Grouped
	if regenerate {
		list, err = b.app.Shopping.Regenerate(ctx, menuID)
	} else {
		list, err = b.app.Shopping.Fetch(ctx, menuID)
	}
	switch {
	case errors.Is(err, shared.ErrNotFound):
		b.sendMarkdown(chatID, fmt.Sprintf("❌ Menu %d not found.", menuID))
		return
	case err != nil:
		b.logger.Error("failed to load shopping list", zap.Int64("menu_id", menuID), zap.Error(err))
		b.sendMarkdown(chatID, "❌ Error loading the shopping list.")
		return
	}

	msg := tgbotapi.NewMessage(chatID, formatShoppingList(list))
	msg.ParseMode = tgbotapi.ModeMarkdown
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Regenerate", fmt.Sprintf("%s|%d", callbackRegenerate, menuID)),
		),
	)
	msg.ReplyMarkup = keyboard
	b.send(msg)
}

func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	// Answer callback to remove spinner
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		b.logger.Warn("failed to answer callback", zap.Error(err))
	}

	action, arg, ok := strings.Cut(query.Data, "|")
	if !ok || action != callbackRegenerate || query.Message == nil {
		return
	}
	b.handleList(ctx, query.Message.Chat.ID, arg, true)
}

func (b *Bot) handleClipperRequest(ctx context.Context, chatID int64, url string) {
	sent, err := b.api.Send(markdown(chatID, "✂️ *Clipping recipe...*"))
	if err != nil {
		b.logger.Error("failed to send initial reply", zap.Error(err))
		return
	}

	res, err := b.app.Clipper.ClipURL(ctx, url)
	var finalText string
	if err != nil {
		b.logger.Warn("error clipping recipe", zap.String("url", url), zap.Error(err))
		safeErr := strings.ReplaceAll(err.Error(), "`", "'")
		finalText = fmt.Sprintf("❌ *Error clipping recipe:*\n```\n%v\n```", safeErr)
	} else {
		verb := "Saved"
		if !res.Created {
			verb = "Updated"
		}
		finalText = fmt.Sprintf("✅ *Recipe %s!*\n\n*Title:* %s\n*ID:* `%d`\n*Ingredients:* %d",
			verb, escape(res.Recipe.Title), res.Recipe.ID, len(res.Recipe.IngredientLines()))
		if res.Post != nil && res.Post.URL != "" {
			finalText += "\n*Post:* " + escape(res.Post.URL)
		}
	}
	edit := tgbotapi.NewEditMessageText(chatID, sent.MessageID, finalText)
	edit.ParseMode = tgbotapi.ModeMarkdown
	b.send(edit)
}

func (b *Bot) handleMetricsCommand(ctx context.Context, chatID int64) {
	usage, err := b.app.Metrics.GetDailyUsage(ctx, usageDays)
	if err != nil {
		b.logger.Error("failed to fetch metrics", zap.Error(err))
		b.sendMarkdown(chatID, "❌ Error fetching metrics.")
		return
	}
	health := metrics.GetSysHealth(filepath.Dir(b.app.Config.DatabasePath))
	b.sendMarkdown(chatID, formatMetrics(usage, health))
}

// formatShoppingList renders a grouped list as Telegram Markdown.
func formatShoppingList(list shopping.Grouped) string {
	if list.Count() == 0 {
		return "🛒 *Shopping List*\n\n_Empty. Use /regenerate to build it from the menu._"
	}

	var sb strings.Builder
	sb.WriteString("🛒 *Shopping List*\n")
	for _, grp := range list {
		fmt.Fprintf(&sb, "\n*%s*\n", escape(grp.Category))
		for _, it := range grp.Items {
			mark := "•"
			if it.IsChecked {
				mark = "✔️"
			}
			sb.WriteString(mark + " " + escape(it.IngredientName))
			if it.Quantity != "" {
				sb.WriteString(": " + escape(it.Quantity))
			}
			if it.Notes != "" {
				sb.WriteString(" _(" + escape(it.Notes) + ")_")
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func formatMetrics(usage []metrics.DailyUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		fmt.Fprintf(&sb, "• *%s*: %d tokens (%d calls)\n", d.Date, d.Tokens(), d.Calls)
	}

	sb.WriteString("\n🧠 *System Health*\n")
	fmt.Fprintf(&sb, "• RAM: %dMB heap / %dMB sys\n", health.HeapMB, health.SysMB)
	fmt.Fprintf(&sb, "• Goroutines: %d\n", health.Goroutines)
	fmt.Fprintf(&sb, "• Disk Data: %s\n", health.DataSize)
	fmt.Fprintf(&sb, "• Uptime: %s\n", health.Uptime)
	return sb.String()
}

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

func markdown(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	return msg
}

func (b *Bot) sendMarkdown(chatID int64, text string) {
	b.send(markdown(chatID, text))
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.logger.Warn("failed to send telegram message", zap.Error(err))
	}
}
