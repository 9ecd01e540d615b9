package commands

import (
	"context"
	"fmt"

	tele "gopkg.in/telebot.v4"
)

// Command represents a bot command with its handler, help texts, and the
// navigation metadata used to build per-context availability.
type Command struct {
	Name        string
	Handler     HandlerFunc
	Description string
	Help        string

	// Default marks the command reachable from any context. Non-default
	// commands are reachable only while their parent submenu is active.
	Default bool
	// Hidden keeps the command out of the Telegram command menu.
	Hidden bool
	// Unlocks lists submenu children made reachable after this command runs.
	Unlocks []string
	// Fallback marks the synthetic command substituted when resolution fails.
	Fallback bool
	// Transient commands are never recorded as the last executed command.
	Transient bool

	// Available is the command set dispatchable after this command executes.
	// It is populated once by Registry.Finalize and never mutated afterwards.
	Available map[string]*Command
}

// Request carries the parsed inbound message to a command handler.
type Request struct {
	ChatID      int64
	UserID      int64
	DisplayName string
	Command     string
	// Arg is the free-text remainder after the command token, "" when absent.
	Arg string
}

// Reply is a single outbound message produced by a handler.
type Reply struct {
	Text     string
	Markdown bool
	Markup   *tele.ReplyMarkup
}

// HandlerFunc executes a command and returns the replies to deliver.
// Failures are reported as *Error; the dispatcher renders them into text.
type HandlerFunc func(ctx context.Context, req Request) ([]Reply, error)

// Text wraps a plain text message into a single-reply slice.
func Text(text string) []Reply {
	return []Reply{{Text: text}}
}

// ErrKind classifies handler failures for uniform rendering.
type ErrKind string

const (
	// ErrKindValidation reports malformed command arguments.
	ErrKindValidation ErrKind = "validation"
	// ErrKindNotRegistered reports a command that requires a registered user.
	ErrKindNotRegistered ErrKind = "not_registered"
	// ErrKindStore reports a persistence failure.
	ErrKindStore ErrKind = "store"
)

// Error is the single failure type crossing the handler boundary.
type Error struct {
	Kind    ErrKind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Code reports the error kind for structured log error codes.
func (e *Error) Code() string {
	return string(e.Kind)
}

// Validationf builds a validation failure with a user-facing corrective message.
func Validationf(format string, args ...any) *Error {
	return &Error{Kind: ErrKindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotRegistered builds a failure prompting the user to register first.
func NotRegistered(message string) *Error {
	return &Error{Kind: ErrKindNotRegistered, Message: message}
}

// StoreFailure wraps a persistence error.
func StoreFailure(err error) *Error {
	return &Error{Kind: ErrKindStore, Err: err}
}
