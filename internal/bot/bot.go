package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"habit-planner/internal/bizday"
	"habit-planner/internal/model"
	"habit-planner/internal/repository"
	"habit-planner/internal/service"
)

const (
	cbDonePrefix = "done:"
	cbPickPrefix = "pick:"
)

const (
	menuLabelToday   = "📋 Today"
	menuLabelBacklog = "📦 Backlog"
	menuLabelSprint  = "🏃 Sprint"
	menuLabelHelp    = "ℹ️ Help"
	backlogPageSize  = 15
	toStockArg       = "-"
)

// Services are the planner operations reachable from chat.
type Services struct {
	Backlog *service.BacklogService
	Daily   *service.DailyService
	Sprints *service.SprintService
	Digest  *service.DigestService
}

// Bot aggregates Telegram API with services. It answers a single chat.
type Bot struct {
	api    *tgbotapi.BotAPI
	svc    Services
	clock  *bizday.Resolver
	chatID int64
	logger *slog.Logger
}

func New(token string, chatID int64, svc Services, clock *bizday.Resolver, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("bot authorized", "account", api.Self.UserName)

	return &Bot{
		api:    api,
		svc:    svc,
		clock:  clock,
		chatID: chatID,
		logger: logger,
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.logger.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				b.logger.Error("handle callback", "err", err)
			}
		case update.Message != nil:
			if update.Message.Chat == nil || update.Message.Chat.ID != b.chatID {
				if update.Message.Chat != nil {
					b.logger.Warn("ignored message from unknown chat", "chat_id", update.Message.Chat.ID)
				}
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				b.logger.Error("handle message", "err", err)
			}
		}
	}

	return nil
}

// SendDigest pushes the daily digest to the configured chat.
func (b *Bot) SendDigest(ctx context.Context) error {
	text, err := b.svc.Digest.Summary(ctx)
	if err != nil {
		return fmt.Errorf("build digest: %w", err)
	}
	return b.sendText(b.chatID, text)
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.IsCommand() {
		b.logger.Info("command", "command", msg.Command(), "args", msg.CommandArguments())
		return b.handleCommand(ctx, msg.Chat.ID, msg.Command(), msg.CommandArguments())
	}

	switch strings.TrimSpace(msg.Text) {
	case menuLabelToday:
		return b.sendBoard(ctx, msg.Chat.ID)
	case menuLabelBacklog:
		return b.sendBacklog(ctx, msg.Chat.ID)
	case menuLabelSprint:
		return b.sendSprint(ctx, msg.Chat.ID)
	case menuLabelHelp:
		return b.sendText(msg.Chat.ID, helpText)
	}
	return b.sendText(msg.Chat.ID, "I did not get that. Send /help for the list of commands.")
}

func (b *Bot) handleCommand(ctx context.Context, chatID int64, command, args string) error {
	switch command {
	case "start", "help":
		return b.sendText(chatID, helpText)
	case "today":
		return b.sendBoard(ctx, chatID)
	case "report":
		text, err := b.svc.Digest.Summary(ctx)
		if err != nil {
			return b.sendText(chatID, errorText(err))
		}
		return b.sendText(chatID, text)
	case "add":
		title := strings.TrimSpace(args)
		if title == "" {
			return b.sendText(chatID, "Usage: /add <title>")
		}
		task, err := b.svc.Daily.QuickAdd(ctx, service.QuickAddInput{Title: title})
		if err != nil {
			return b.sendText(chatID, errorText(err))
		}
		return b.sendText(chatID, fmt.Sprintf("➕ Added «%s» for %s.", escape(normalizeTitle(task.Title)), task.TargetDate))
	case "done", "undo":
		id, _, err := parseTaskArgs(args)
		if err != nil {
			return b.sendText(chatID, fmt.Sprintf("Usage: /%s <task id>", command))
		}
		return b.setStatus(ctx, chatID, id, command == "done")
	case "skip":
		id, _, err := parseTaskArgs(args)
		if err != nil {
			return b.sendText(chatID, "Usage: /skip <task id>")
		}
		task, err := b.svc.Daily.Skip(ctx, id)
		if err != nil {
			return b.sendText(chatID, errorText(err))
		}
		return b.sendText(chatID, fmt.Sprintf("⏭️ Skipped «%s».", escape(normalizeTitle(task.Title))))
	case "postpone":
		return b.handlePostpone(ctx, chatID, args)
	case "backlog":
		return b.sendBacklog(ctx, chatID)
	case "sprint":
		return b.sendSprint(ctx, chatID)
	default:
		return b.sendText(chatID, "Unknown command. Send /help for the list of commands.")
	}
}

// handlePostpone moves a task to the given date, to the next business day
// when none is given, or back to the backlog for "-".
func (b *Bot) handlePostpone(ctx context.Context, chatID int64, args string) error {
	id, date, err := parseTaskArgs(args)
	if err != nil {
		return b.sendText(chatID, "Usage: /postpone <task id> [YYYY-MM-DD|-]")
	}

	var target *string
	switch date {
	case toStockArg:
	case "":
		next, err := bizday.AddDays(b.clock.BusinessDate(), 1)
		if err != nil {
			return err
		}
		target = &next
	default:
		target = &date
	}

	task, err := b.svc.Daily.Postpone(ctx, id, target)
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}
	if task == nil {
		return b.sendText(chatID, "📦 Back to the backlog.")
	}
	return b.sendText(chatID, fmt.Sprintf("➡️ «%s» moved to %s.", escape(normalizeTitle(task.Title)), task.TargetDate))
}

func (b *Bot) setStatus(ctx context.Context, chatID int64, id string, completed bool) error {
	task, err := b.svc.Daily.SetStatus(ctx, id, completed)
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}
	b.logger.Info("task status changed", "task_id", task.ID, "completed", completed)

	info := fmt.Sprintf("✅ «%s» done.", escape(normalizeTitle(task.Title)))
	if !completed {
		info = fmt.Sprintf("↩️ «%s» reopened.", escape(normalizeTitle(task.Title)))
	}
	return b.sendText(chatID, info)
}

func (b *Bot) sendBoard(ctx context.Context, chatID int64) error {
	view, err := b.svc.Daily.View(ctx, "")
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}
	text, buttons := formatBoard(view)
	return b.sendWithButtons(chatID, text, buttons)
}

func (b *Bot) sendBacklog(ctx context.Context, chatID int64) error {
	items, err := b.svc.Backlog.List(ctx, repository.BacklogFilter{Status: model.BacklogStock, Limit: backlogPageSize})
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}
	text, buttons := formatBacklog(items)
	return b.sendWithButtons(chatID, text, buttons)
}

func (b *Bot) sendSprint(ctx context.Context, chatID int64) error {
	sprint, err := b.svc.Sprints.GetActive(ctx)
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}
	if sprint == nil {
		return b.sendText(chatID, "No active sprint.")
	}
	items, err := b.svc.Sprints.ListTasks(ctx, sprint.ID)
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}
	return b.sendText(chatID, formatSprint(sprint, items))
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.Message == nil || cb.Message.Chat == nil || cb.Message.Chat.ID != b.chatID {
		return nil
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.logger.Warn("callback ack", "err", err)
	}
	chatID := cb.Message.Chat.ID

	switch {
	case strings.HasPrefix(cb.Data, cbDonePrefix):
		if err := b.setStatus(ctx, chatID, strings.TrimPrefix(cb.Data, cbDonePrefix), true); err != nil {
			return err
		}
		return b.sendBoard(ctx, chatID)
	case strings.HasPrefix(cb.Data, cbPickPrefix):
		date := b.clock.BusinessDate()
		task, created, err := b.svc.Daily.Pick(ctx, strings.TrimPrefix(cb.Data, cbPickPrefix), date)
		if err != nil {
			return b.sendText(chatID, errorText(err))
		}
		if !created {
			return b.sendText(chatID, fmt.Sprintf("«%s» is already on %s.", escape(normalizeTitle(task.Title)), date))
		}
		return b.sendText(chatID, fmt.Sprintf("📌 «%s» picked for %s.", escape(normalizeTitle(task.Title)), date))
	}
	return nil
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithButtons(chatID int64, text string, buttons [][]tgbotapi.InlineKeyboardButton) error {
	if len(buttons) == 0 {
		return b.sendText(chatID, text)
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	_, err := b.api.Send(msg)
	return err
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelToday),
			tgbotapi.NewKeyboardButton(menuLabelBacklog),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelSprint),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}

const helpText = `<b>Habit planner</b>
/today – today's board
/add &lt;title&gt; – add a task for today
/done &lt;id&gt; – complete a task
/undo &lt;id&gt; – reopen a task
/skip &lt;id&gt; – skip a task
/postpone &lt;id&gt; [YYYY-MM-DD|-] – move a task, "-" returns it to the backlog
/backlog – pick tasks from the backlog
/sprint – the active sprint
/report – daily digest`

// parseTaskArgs splits "<id> [date]". The date, when present, must be a
// YYYY-MM-DD day or "-".
func parseTaskArgs(args string) (id, date string, err error) {
	fields := strings.Fields(args)
	switch len(fields) {
	case 1:
		return fields[0], "", nil
	case 2:
		if fields[1] != toStockArg && !bizday.ValidDate(fields[1]) {
			return "", "", fmt.Errorf("invalid date %q", fields[1])
		}
		return fields[0], fields[1], nil
	default:
		return "", "", errors.New("expected a task id")
	}
}

func errorText(err error) string {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return "Not found. It may have been moved or deleted."
	case errors.Is(err, service.ErrPreconditionFailed), errors.Is(err, service.ErrInvalidInput):
		return fmt.Sprintf("⚠️ %s", escape(err.Error()))
	default:
		return "Something went wrong, try again later."
	}
}

func formatBoard(view *service.DailyView) (string, [][]tgbotapi.InlineKeyboardButton) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 <b>%s</b>\n\n", view.Date))
	if len(view.Tasks) == 0 {
		sb.WriteString("Nothing planned. Pick something from /backlog.")
		return sb.String(), nil
	}

	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, task := range view.Tasks {
		sb.WriteString(formatTask(task))
		if task.Status == model.DailyTodo {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✅ "+shortTitle(task.Title, 24), cbDonePrefix+task.ID),
			))
		}
	}
	return strings.TrimSpace(sb.String()), buttons
}

func formatTask(task service.DailyTaskView) string {
	icon := "⬜"
	switch task.Status {
	case model.DailyDone:
		icon = "✅"
	case model.DailySkipped:
		icon = "⏭️"
	}
	if task.Status == model.DailyTodo && task.IsOverdue {
		icon = "⚠️"
	}

	var sb strings.Builder
	sb.WriteString(icon + " ")
	if task.IsHighlighted {
		sb.WriteString(fmt.Sprintf("<b>%s</b>", escape(normalizeTitle(task.Title))))
	} else {
		sb.WriteString(escape(normalizeTitle(task.Title)))
	}
	if task.SourceType == model.SourceRoutine {
		sb.WriteString(" ♻️")
	}
	if task.GoalProgress != "" {
		sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", task.GoalProgress))
	}
	if task.IsOverdue {
		sb.WriteString(fmt.Sprintf(" · from %s", task.TargetDate))
	}
	sb.WriteString(fmt.Sprintf("\n   <code>%s</code>\n", escape(task.ID)))
	return sb.String()
}

func formatBacklog(items []model.BacklogItem) (string, [][]tgbotapi.InlineKeyboardButton) {
	if len(items) == 0 {
		return "📦 The backlog is empty.", nil
	}

	var sb strings.Builder
	sb.WriteString("📦 <b>Backlog</b>\nTap a task to pick it for today.\n\n")
	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("• %s <i>(%s, %s)</i>", escape(normalizeTitle(item.Title)), escape(item.Category), item.Priority))
		if item.Deadline != nil {
			sb.WriteString(fmt.Sprintf(" ⏰ %s", bizday.FormatDate(*item.Deadline)))
		}
		sb.WriteByte('\n')
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📌 "+shortTitle(item.Title, 24), cbPickPrefix+item.ID),
		))
	}
	return strings.TrimSpace(sb.String()), buttons
}

func formatSprint(sprint *model.Sprint, items []model.BacklogItem) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏃 <b>%s</b>\n🗓 %s – %s\n", escape(sprint.Name), sprint.StartDate, sprint.EndDate))
	if sprint.Goal != "" {
		sb.WriteString(fmt.Sprintf("🎯 %s\n", escape(sprint.Goal)))
	}

	done := 0
	sb.WriteByte('\n')
	for _, item := range items {
		icon := "⬜"
		if item.Status == model.BacklogDone {
			icon = "✅"
			done++
		}
		sb.WriteString(fmt.Sprintf("%s %s", icon, escape(normalizeTitle(item.Title))))
		if day := bizday.FormatDatePtr(item.ScheduledDate); day != "" {
			sb.WriteString(" · " + day)
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(fmt.Sprintf("\nProgress: %d/%d", done, len(items)))
	return sb.String()
}

func shortTitle(title string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(title, "\n", " "))
	clean = normalizeTitle(clean)
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func escape(s string) string {
	return html.EscapeString(s)
}

func normalizeTitle(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	runes := []rune(value)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
