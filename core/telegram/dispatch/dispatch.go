package dispatch

import (
	"errors"
	"strings"
	"time"

	tg "github.com/flizix/flizixbot/core/telegram"
	"github.com/flizix/flizixbot/core/telegram/commands"
	tghelpers "github.com/flizix/flizixbot/core/telegram/helpers"
	"github.com/flizix/flizixbot/core/telegram/middleware"
	"github.com/flizix/flizixbot/core/telegram/session"
	"github.com/flizix/flizixbot/core/validate"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

const (
	replyNotRecognized = "Command not recognized"
	replyEmptyHandler  = "Nothing to report, write /help to see available commands"
)

// Options wires the dispatcher to the command tree and the session store.
type Options struct {
	Registry *tg.Registry
	Sessions session.Manager
}

// Routes builds the text route that runs the per-message command cycle:
// parse, syntax check, resolve against the session's available commands,
// execute, reply, then update the navigation state. Non-text updates are not
// routed and are ignored by the bot.
func Routes(opts Options) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		token, arg := splitCommand(c.Text())

		if !validate.IsCommandToken(token) {
			// Malformed input never touches the session.
			return handleWithSummary(c, "syntax", start, func() error {
				return tghelpers.SendText(c, replyNotRecognized)
			}, slog.String("reason", "bad_token"))
		}

		chatID := c.Chat().ID
		cmd, ok := opts.Sessions.Resolve(chatID, token)
		if !ok {
			// Unknown and recognized-but-out-of-context inputs are treated
			// identically through the fallback command.
			cmd = opts.Registry.Fallback()
		}

		name := normalizeHandlerName(cmd.Name)
		extras := []slog.Attr{slog.String("command", token)}
		return handleWithSummary(c, name, start, func() error {
			ctx := tghelpers.BuildContext(c)
			req := commands.Request{
				ChatID:      chatID,
				UserID:      c.Sender().ID,
				DisplayName: displayName(c.Sender()),
				Command:     token,
				Arg:         arg,
			}

			replies, execErr := cmd.Handler(ctx, req)
			if execErr != nil {
				replies = commands.Text(renderError(execErr))
			}
			if len(replies) == 0 {
				replies = commands.Text(replyEmptyHandler)
			}

			var sendErr error
			for _, rep := range replies {
				sendOpts := &tele.SendOptions{ReplyMarkup: rep.Markup}
				if rep.Markdown {
					sendOpts.ParseMode = tele.ModeMarkdown
				}
				if err := tghelpers.SendText(c, rep.Text, sendOpts); err != nil && sendErr == nil {
					sendErr = err
				}
			}

			opts.Sessions.Apply(chatID, cmd)

			if execErr != nil {
				return execErr
			}
			return sendErr
		}, extras...)
	}

	return []tg.Route{
		{
			Endpoint: tele.OnText,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
		},
	}
}

// splitCommand separates the command token from the free-text remainder on
// the first space. The remainder is "" when absent.
func splitCommand(text string) (string, string) {
	token, arg, found := strings.Cut(text, " ")
	if !found {
		return text, ""
	}
	return token, arg
}

// renderError is the single place that turns handler failures into
// user-facing text. Validation and registration failures carry their own
// corrective message; everything else gets the apologetic reply with detail.
func renderError(err error) string {
	var cmdErr *commands.Error
	if errors.As(err, &cmdErr) {
		switch cmdErr.Kind {
		case commands.ErrKindValidation, commands.ErrKindNotRegistered:
			return cmdErr.Message
		}
		if cmdErr.Err != nil {
			return "There was an error: " + cmdErr.Err.Error()
		}
	}
	return "There was an error: " + err.Error()
}

func displayName(u *tele.User) string {
	if u == nil {
		return "Unknown"
	}
	name := u.FirstName
	if name == "" {
		name = "Unknown"
	}
	if u.LastName != "" {
		name += " " + u.LastName
	}
	return name
}
