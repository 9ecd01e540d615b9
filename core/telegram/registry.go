package telegram

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/flizix/flizixbot/core/logger"
	"github.com/flizix/flizixbot/core/telegram/commands"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// Registry holds the immutable command tree and its derived availability sets.
// Commands are registered once at startup; Finalize computes which commands
// are dispatchable after each command executes and the registry is read-only
// from then on.
type Registry struct {
	commands  map[string]*commands.Command
	defaults  map[string]*commands.Command
	fallback  *commands.Command
	finalized bool
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]*commands.Command),
	}
}

// RegisterCommand adds a new command definition.
func (r *Registry) RegisterCommand(cmd *commands.Command) {
	if r == nil || cmd == nil || cmd.Name == "" || cmd.Handler == nil || cmd.Description == "" {
		name := ""
		if cmd != nil {
			name = cmd.Name
		}
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.command.skip",
			slog.String("name", name),
			slog.String("reason", "invalid"),
		)
		return
	}
	if cmd.Name[0] != '/' {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.command.skip",
			slog.String("name", cmd.Name),
			slog.String("reason", "no_slash_prefix"),
		)
		return
	}
	if r.finalized {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.command.skip",
			slog.String("name", cmd.Name),
			slog.String("reason", "finalized"),
		)
		return
	}
	if _, exists := r.commands[cmd.Name]; exists {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.command.duplicate",
			slog.String("name", cmd.Name),
		)
		return
	}
	r.commands[cmd.Name] = cmd
}

// SetFallback installs the synthetic command substituted when resolution fails.
func (r *Registry) SetFallback(cmd *commands.Command) {
	if cmd == nil || cmd.Handler == nil {
		return
	}
	cmd.Fallback = true
	cmd.Transient = true
	r.fallback = cmd
}

// Finalize computes the availability sets. Every command reachable from any
// context sees the default set; a submenu command and each of its children
// see the default set merged with all the submenu children, so sibling
// commands stay reachable while the submenu is active.
func (r *Registry) Finalize() error {
	if r.finalized {
		return nil
	}
	if r.fallback == nil {
		return fmt.Errorf("registry: fallback command is required")
	}

	defaults := make(map[string]*commands.Command)
	for name, cmd := range r.commands {
		if cmd.Default {
			defaults[name] = cmd
		}
	}
	r.defaults = defaults

	for _, cmd := range r.commands {
		cmd.Available = defaults
	}
	for _, cmd := range r.commands {
		if len(cmd.Unlocks) == 0 {
			continue
		}
		merged := make(map[string]*commands.Command, len(defaults)+len(cmd.Unlocks))
		for name, def := range defaults {
			merged[name] = def
		}
		for _, childName := range cmd.Unlocks {
			child, ok := r.commands[childName]
			if !ok {
				return fmt.Errorf("registry: %s unlocks unknown command %s", cmd.Name, childName)
			}
			merged[childName] = child
		}
		cmd.Available = merged
		for _, childName := range cmd.Unlocks {
			r.commands[childName].Available = merged
		}
	}
	r.fallback.Available = defaults

	r.finalized = true
	logger.TWire.Info("tg.wire",
		slog.String("event", "complete"),
		slog.Int("commands", len(r.commands)),
		slog.Int("defaults", len(defaults)),
	)
	return nil
}

// Defaults returns the always-available command set.
func (r *Registry) Defaults() map[string]*commands.Command {
	return r.defaults
}

// Fallback returns the synthetic unknown-command handler.
func (r *Registry) Fallback() *commands.Command {
	return r.fallback
}

// Commands returns all registered commands.
func (r *Registry) Commands() map[string]*commands.Command {
	return r.commands
}

// LookupCommand searches for a command by name, with or without the leading
// slash, regardless of current availability.
func (r *Registry) LookupCommand(name string) (*commands.Command, bool) {
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	cmd, ok := r.commands[name]
	return cmd, ok
}

// ListCommands returns a sorted slice of tele.Command for the bot menu,
// optionally filtering out hidden and submenu-only commands.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	var list []tele.Command
	for name, cmd := range r.commands {
		if visibleOnly && (cmd.Hidden || !cmd.Default) {
			continue
		}
		list = append(list, tele.Command{Text: name, Description: cmd.Description})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Text < list[j].Text })
	return list
}

// InitBotCommands sets the Telegram bot commands shown in the command menu.
func InitBotCommands(bot *tele.Bot, reg *Registry) {
	commands := reg.ListCommands(true)
	if err := bot.SetCommands(commands); err != nil {
		logger.TWire.LogAttrs(context.Background(), slog.LevelError, "register.commands.set_failed",
			slog.String("err", err.Error()),
		)
	}
}
