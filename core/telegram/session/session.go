package session

import "github.com/flizix/flizixbot/core/telegram/commands"

// Session stores the navigation state of one conversation: the commands that
// are currently dispatchable and the last executed command, used for
// contextual help.
type Session struct {
	Available map[string]*commands.Command
	Last      *commands.Command
}

// Resolve returns the command a token dispatches to in this session.
func (s *Session) Resolve(token string) (*commands.Command, bool) {
	cmd, ok := s.Available[token]
	return cmd, ok
}

// Apply records the execution of a command. The available set follows the
// executed command, except that an unresolved input must not erase the
// navigation state once a real command has run. Fallback and transient
// commands are never recorded as the last command.
func (s *Session) Apply(executed *commands.Command) {
	if executed == nil {
		return
	}
	keep := executed.Fallback && s.Last != nil
	if !keep && executed.Available != nil {
		s.Available = executed.Available
	}
	if executed.Fallback || executed.Transient {
		return
	}
	s.Last = executed
}
