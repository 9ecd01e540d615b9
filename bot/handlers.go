package bot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/flizix/flizixbot/core/logger"
	tg "github.com/flizix/flizixbot/core/telegram"
	"github.com/flizix/flizixbot/core/telegram/commands"
	"github.com/flizix/flizixbot/core/telegram/format"
	"github.com/flizix/flizixbot/core/telegram/keyboard"
	"github.com/flizix/flizixbot/core/telegram/session"
	"github.com/flizix/flizixbot/core/validate"
	"github.com/flizix/flizixbot/store"
	"log/slog"
)

const (
	replyWelcome           = "Welcome to Flizix. This a private project, I will recolect your data if you decide stay. Write /addMe to register your user at database and start using this tool ;)"
	replyAlreadyStarted    = "You already are registered on flizix, dont't worry and if you need help write /help"
	replyAlreadyRegistered = "You are already registered and can use this amazing tool ;)"
	replyEmailMissing      = "You email is missing. Please use command: /addMe test@example.com"
	replyEmailInvalid      = "Write a valid email like: test@example.com"
	replyNotRegistered     = "Send /start to use this tool ;)"
	replyEarnUsage         = "Use '/earn amount' or '/earn amount month' to add/update you month earns"
	replyAmountInvalid     = "The amount you sent is not a valid number"
	replyMonthInvalid      = "The month you introduce is no a valid month number. Use 01, 02 ... 12"
	replyRecPayUsage       = "Use '/addRecPay name amount' or '/addRecPay name amount comment' to add a recurrent payment you do"
	replyRecPayMenu        = "Recurrent payments menu. Use /addRecPay to register a payment you do every month"
	replyUnknown           = "Command not recognized by default"
)

// Handlers implements the business logic behind every Flizix command.
type Handlers struct {
	store    store.Store
	now      func() time.Time
	registry *tg.Registry
	sessions session.Manager
}

// NewHandlers builds the handler set. A nil clock defaults to time.Now.
func NewHandlers(st store.Store, now func() time.Time) *Handlers {
	if now == nil {
		now = time.Now
	}
	return &Handlers{store: st, now: now}
}

// AttachNavigation wires the registry and session manager needed by /help and
// the submenu keyboard. Called once during bootstrap, after the registry is
// finalized.
func (h *Handlers) AttachNavigation(reg *tg.Registry, sessions session.Manager) {
	h.registry = reg
	h.sessions = sessions
}

// Start greets unregistered users and points registered ones at /help.
func (h *Handlers) Start(ctx context.Context, req commands.Request) ([]commands.Reply, error) {
	_, err := h.store.GetUserByTelegramID(ctx, req.UserID)
	switch {
	case err == nil:
		return []commands.Reply{{Text: replyAlreadyStarted, Markup: keyboard.RemoveKeyboard()}}, nil
	case errors.Is(err, store.ErrNotFound):
		return []commands.Reply{{Text: replyWelcome, Markup: keyboard.RemoveKeyboard()}}, nil
	default:
		logger.Error(ctx, "service.users", "user.lookup.failed",
			slog.String("err", err.Error()),
		)
		return nil, commands.StoreFailure(err)
	}
}

// Register creates the user row for /addMe. Repeat calls after success are
// no-ops that reply "already registered".
func (h *Handlers) Register(ctx context.Context, req commands.Request) ([]commands.Reply, error) {
	_, err := h.store.GetUserByTelegramID(ctx, req.UserID)
	switch {
	case err == nil:
		return commands.Text(replyAlreadyRegistered), nil
	case errors.Is(err, store.ErrNotFound):
	default:
		return nil, commands.StoreFailure(err)
	}

	if req.Arg == "" {
		return nil, commands.Validationf(replyEmailMissing)
	}
	if !validate.IsEmail(req.Arg) {
		return nil, commands.Validationf(replyEmailInvalid)
	}

	id, err := h.store.CreateUser(ctx, store.User{
		DisplayName: req.DisplayName,
		Email:       req.Arg,
		TelegramID:  req.UserID,
	})
	if err != nil {
		return nil, commands.StoreFailure(err)
	}
	logger.Info(ctx, "service.users", "user.created",
		slog.Int64("db_id", id),
	)
	return commands.Text(fmt.Sprintf(
		"Congratulations, you are part of flizix member (by now). You user ID is: %d "+
			"in case you need it. You can start using commands to manage your finances", id)), nil
}

// RecordEarning upserts the month earn for /earn. The single-argument form
// accepts decimals and targets the current month; the two-argument form takes
// an integer amount and an explicit two-digit month of the current year.
func (h *Handlers) RecordEarning(ctx context.Context, req commands.Request) ([]commands.Reply, error) {
	user, err := h.requireUser(ctx, req)
	if err != nil {
		return nil, err
	}
	if req.Arg == "" {
		return nil, commands.Validationf(replyEarnUsage)
	}

	now := h.now()
	year := now.Year()
	var (
		month   time.Month
		amount  float64
		display string
	)
	if amountStr, monthStr, found := strings.Cut(req.Arg, " "); found {
		if !validate.IsInteger(amountStr) {
			return nil, commands.Validationf(replyAmountInvalid)
		}
		if !validate.IsMonth(monthStr) {
			return nil, commands.Validationf(replyMonthInvalid)
		}
		n, _ := strconv.Atoi(amountStr)
		m, _ := strconv.Atoi(monthStr)
		amount = float64(n)
		month = time.Month(m)
		display = amountStr
	} else {
		if !validate.IsDecimal(req.Arg) {
			return nil, commands.Validationf(replyAmountInvalid)
		}
		amount, _ = strconv.ParseFloat(req.Arg, 64)
		month = now.Month()
		display = formatAmount(amount)
	}

	existing, err := h.store.GetMonthEarn(ctx, user.ID, year, month)
	switch {
	case err == nil:
		if err := h.store.UpdateMonthEarnAmount(ctx, existing.ID, amount); err != nil {
			return nil, commands.StoreFailure(err)
		}
		logger.Info(ctx, "service.earnings", "earn.updated",
			slog.Int64("earn_id", existing.ID),
			slog.Int("month", int(month)),
			slog.Float64("amount", amount),
		)
		return commands.Text("Month earn updated to: $" + display), nil
	case errors.Is(err, store.ErrNotFound):
		id, err := h.store.InsertMonthEarn(ctx, user.ID, year, month, amount)
		if err != nil {
			return nil, commands.StoreFailure(err)
		}
		logger.Info(ctx, "service.earnings", "earn.registered",
			slog.Int64("earn_id", id),
			slog.Int("month", int(month)),
			slog.Float64("amount", amount),
		)
		return commands.Text("Month earn registered with amount: $" + display), nil
	default:
		return nil, commands.StoreFailure(err)
	}
}

// AddRecurringPayment appends a payment row for /addRecPay. The comment is
// the free text after the amount; without it the column stays NULL.
func (h *Handlers) AddRecurringPayment(ctx context.Context, req commands.Request) ([]commands.Reply, error) {
	user, err := h.requireUser(ctx, req)
	if err != nil {
		return nil, err
	}
	name, rest, found := strings.Cut(req.Arg, " ")
	if req.Arg == "" || !found {
		return nil, commands.Validationf(replyRecPayUsage)
	}

	amountStr, comment, _ := strings.Cut(rest, " ")
	if !validate.IsInteger(amountStr) {
		return nil, commands.Validationf(replyAmountInvalid)
	}
	amount, _ := strconv.ParseFloat(amountStr, 64)

	payment := store.RecurrentPayment{
		UserID: user.ID,
		Name:   name,
		Amount: amount,
	}
	if comment != "" {
		payment.Comment = sql.NullString{String: comment, Valid: true}
	}

	id, err := h.store.InsertRecurrentPayment(ctx, payment)
	if err != nil {
		return nil, commands.StoreFailure(err)
	}
	logger.Info(ctx, "service.payments", "payment.registered",
		slog.Int64("payment_id", id),
		slog.Float64("amount", amount),
	)
	return commands.Text(fmt.Sprintf("Recurrent payment (%s) registered", name)), nil
}

// RecurringMenu is a pure context transition: it unlocks the submenu commands
// and shows them as a reply keyboard.
func (h *Handlers) RecurringMenu(ctx context.Context, req commands.Request) ([]commands.Reply, error) {
	menu, _ := h.registry.LookupCommand(cmdRecPay)
	names := make([]string, 0, len(menu.Available))
	for name := range menu.Available {
		names = append(names, name)
	}
	sort.Strings(names)

	return []commands.Reply{{
		Text:   replyRecPayMenu,
		Markup: keyboard.ReplyButtons(keyboard.ChunkLabels(names, 2)...),
	}}, nil
}

// Help echoes the help text of the last executed command, of an explicitly
// named command, or the global summary.
func (h *Handlers) Help(ctx context.Context, req commands.Request) ([]commands.Reply, error) {
	if req.Arg != "" {
		cmd, ok := h.registry.LookupCommand(req.Arg)
		if !ok {
			name, _ := format.EscapeMarkdown(req.Arg, format.MarkdownV1)
			return []commands.Reply{{Text: "Command not found: " + name, Markdown: true}}, nil
		}
		return []commands.Reply{{Text: cmd.Help, Markdown: true}}, nil
	}
	if last := h.sessions.Last(req.ChatID); last != nil {
		return []commands.Reply{{Text: last.Help, Markdown: true}}, nil
	}
	return []commands.Reply{{Text: h.helpSummary(), Markdown: true}}, nil
}

// Unknown is the fallback for unresolved input.
func (h *Handlers) Unknown(ctx context.Context, req commands.Request) ([]commands.Reply, error) {
	return commands.Text(replyUnknown), nil
}

func (h *Handlers) helpSummary() string {
	var b strings.Builder
	b.WriteString("*Flizix commands*\n")
	for _, c := range h.registry.ListCommands(true) {
		fmt.Fprintf(&b, "%s - %s\n", c.Text, c.Description)
	}
	b.WriteString("\nWrite /help followed by a command name to see its usage.")
	return b.String()
}

// requireUser resolves the calling chat identity to a registered user.
func (h *Handlers) requireUser(ctx context.Context, req commands.Request) (store.User, error) {
	user, err := h.store.GetUserByTelegramID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.User{}, commands.NotRegistered(replyNotRegistered)
		}
		return store.User{}, commands.StoreFailure(err)
	}
	return user, nil
}

// formatAmount renders a decimal amount the way it is echoed to the user:
// whole numbers keep one trailing zero, like 500.0.
func formatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
