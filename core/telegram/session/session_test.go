package session

import (
	"testing"

	"github.com/flizix/flizixbot/core/telegram/commands"
)

func navFixture() (defaults, merged map[string]*commands.Command, menu, sub, help, fallback *commands.Command) {
	start := &commands.Command{Name: "/start", Default: true}
	help = &commands.Command{Name: "/help", Default: true, Transient: true}
	menu = &commands.Command{Name: "/menu", Default: true, Unlocks: []string{"/sub"}}
	sub = &commands.Command{Name: "/sub"}
	fallback = &commands.Command{Name: "/default", Fallback: true, Transient: true}

	defaults = map[string]*commands.Command{
		"/start": start, "/help": help, "/menu": menu,
	}
	merged = map[string]*commands.Command{
		"/start": start, "/help": help, "/menu": menu, "/sub": sub,
	}
	start.Available = defaults
	help.Available = defaults
	menu.Available = merged
	sub.Available = merged
	fallback.Available = defaults
	return
}

func TestSessionResolve(t *testing.T) {
	defaults, _, menu, _, _, _ := navFixture()
	s := &Session{Available: defaults}

	if cmd, ok := s.Resolve("/menu"); !ok || cmd != menu {
		t.Fatal("default command must resolve")
	}
	if _, ok := s.Resolve("/sub"); ok {
		t.Fatal("submenu child must not resolve before the submenu opens")
	}
}

func TestApplyFollowsAvailability(t *testing.T) {
	defaults, _, menu, sub, _, _ := navFixture()
	s := &Session{Available: defaults}

	s.Apply(menu)
	if _, ok := s.Resolve("/sub"); !ok {
		t.Fatal("submenu must unlock its child")
	}
	if s.Last != menu {
		t.Fatal("submenu command must be recorded as last")
	}

	s.Apply(sub)
	if _, ok := s.Resolve("/sub"); !ok {
		t.Fatal("child execution must keep the submenu open")
	}

	// A default command closes the submenu again.
	start := defaults["/start"]
	s.Apply(start)
	if _, ok := s.Resolve("/sub"); ok {
		t.Fatal("default command must restore the default set")
	}
	if s.Last != start {
		t.Fatal("last must follow the executed command")
	}
}

func TestApplyFallbackKeepsState(t *testing.T) {
	defaults, _, menu, _, _, fallback := navFixture()
	s := &Session{Available: defaults}

	s.Apply(menu)
	s.Apply(fallback)
	if _, ok := s.Resolve("/sub"); !ok {
		t.Fatal("unrecognized input must not erase the navigation state")
	}
	if s.Last != menu {
		t.Fatal("fallback must not become the last command")
	}
}

func TestApplyFallbackBeforeAnyCommand(t *testing.T) {
	defaults, _, _, _, _, fallback := navFixture()
	s := &Session{Available: defaults}

	s.Apply(fallback)
	if s.Last != nil {
		t.Fatal("fallback must never be recorded as last")
	}
	if _, ok := s.Resolve("/start"); !ok {
		t.Fatal("defaults must stay available")
	}
}

func TestApplyTransientNotRecorded(t *testing.T) {
	defaults, _, menu, _, help, _ := navFixture()
	s := &Session{Available: defaults}

	s.Apply(menu)
	s.Apply(help)
	if s.Last != menu {
		t.Fatal("transient command must not overwrite last")
	}
	if _, ok := s.Resolve("/sub"); ok {
		t.Fatal("help resets availability to its own set")
	}
}

func TestMemoryManager(t *testing.T) {
	defaults, _, menu, _, _, _ := navFixture()
	m := NewMemoryManager(defaults)

	// First contact starts from the defaults.
	if _, ok := m.Resolve(1, "/menu"); !ok {
		t.Fatal("new chat must see the default commands")
	}
	if m.Last(1) != nil {
		t.Fatal("new chat has no last command")
	}

	m.Apply(1, menu)
	if _, ok := m.Resolve(1, "/sub"); !ok {
		t.Fatal("apply must update the chat's availability")
	}
	if m.Last(1) != menu {
		t.Fatal("apply must record last")
	}

	// Sessions are isolated per chat.
	if _, ok := m.Resolve(2, "/sub"); ok {
		t.Fatal("another chat must not inherit the submenu")
	}

	m.Clear(1)
	if m.Last(1) != nil {
		t.Fatal("clear must drop the session")
	}
	if _, ok := m.Resolve(1, "/menu"); !ok {
		t.Fatal("cleared chat starts over from the defaults")
	}
}
