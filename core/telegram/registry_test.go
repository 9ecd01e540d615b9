package telegram

import (
	"context"
	"io"
	"testing"

	"github.com/flizix/flizixbot/core/logger"
	"github.com/flizix/flizixbot/core/telegram/commands"
	"log/slog"
)

func init() {
	logger.TWire = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func noopHandler(ctx context.Context, req commands.Request) ([]commands.Reply, error) {
	return commands.Text("ok"), nil
}

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	reg.RegisterCommand(&commands.Command{
		Name: "/start", Handler: noopHandler, Description: "start", Default: true,
	})
	reg.RegisterCommand(&commands.Command{
		Name: "/menu", Handler: noopHandler, Description: "menu", Default: true,
		Unlocks: []string{"/sub"},
	})
	reg.RegisterCommand(&commands.Command{
		Name: "/sub", Handler: noopHandler, Description: "sub",
	})
	reg.RegisterCommand(&commands.Command{
		Name: "/secret", Handler: noopHandler, Description: "secret", Default: true, Hidden: true,
	})
	reg.SetFallback(&commands.Command{Name: "/default", Handler: noopHandler})
	return reg
}

func TestRegisterCommandSkipsInvalid(t *testing.T) {
	reg := NewRegistry()

	reg.RegisterCommand(nil)
	reg.RegisterCommand(&commands.Command{Name: "/noHandler", Description: "x"})
	reg.RegisterCommand(&commands.Command{Name: "noSlash", Handler: noopHandler, Description: "x"})
	reg.RegisterCommand(&commands.Command{Name: "/noDescription", Handler: noopHandler})
	if len(reg.Commands()) != 0 {
		t.Fatalf("invalid registrations must be skipped, have %d", len(reg.Commands()))
	}

	reg.RegisterCommand(&commands.Command{Name: "/ok", Handler: noopHandler, Description: "x", Default: true})
	reg.RegisterCommand(&commands.Command{Name: "/ok", Handler: noopHandler, Description: "dup", Default: true})
	if len(reg.Commands()) != 1 {
		t.Fatalf("duplicate must be skipped, have %d", len(reg.Commands()))
	}
	if reg.Commands()["/ok"].Description != "x" {
		t.Fatal("first registration must win")
	}
}

func TestFinalizeRequiresFallback(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand(&commands.Command{Name: "/start", Handler: noopHandler, Description: "start", Default: true})
	if err := reg.Finalize(); err == nil {
		t.Fatal("Finalize must fail without a fallback")
	}
}

func TestFinalizeRejectsUnknownUnlock(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand(&commands.Command{
		Name: "/menu", Handler: noopHandler, Description: "menu", Default: true,
		Unlocks: []string{"/missing"},
	})
	reg.SetFallback(&commands.Command{Name: "/default", Handler: noopHandler})
	if err := reg.Finalize(); err == nil {
		t.Fatal("Finalize must reject an unlock of an unregistered command")
	}
}

func TestFinalizeAvailability(t *testing.T) {
	reg := testRegistry(t)
	if err := reg.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	defaults := reg.Defaults()
	if _, ok := defaults["/sub"]; ok {
		t.Fatal("submenu-only command must not be a default")
	}
	for _, name := range []string{"/start", "/menu", "/secret"} {
		if _, ok := defaults[name]; !ok {
			t.Fatalf("defaults miss %s", name)
		}
	}

	// Plain commands see the default set.
	start, _ := reg.LookupCommand("/start")
	if _, ok := start.Available["/sub"]; ok {
		t.Fatal("/start must not unlock /sub")
	}

	// The submenu command and its child share the merged set, so siblings
	// stay reachable while the submenu is active.
	menu, _ := reg.LookupCommand("/menu")
	sub, _ := reg.LookupCommand("/sub")
	if _, ok := menu.Available["/sub"]; !ok {
		t.Fatal("/menu must unlock /sub")
	}
	if _, ok := sub.Available["/start"]; !ok {
		t.Fatal("defaults must stay reachable inside the submenu")
	}
	if len(menu.Available) != len(sub.Available) {
		t.Fatal("submenu parent and child must share one availability set")
	}

	fb := reg.Fallback()
	if !fb.Fallback || !fb.Transient {
		t.Fatal("fallback must be marked fallback and transient")
	}
	if len(fb.Available) != len(defaults) {
		t.Fatal("fallback availability must be the default set")
	}
}

func TestFinalizeIsIdempotent(t *testing.T) {
	reg := testRegistry(t)
	if err := reg.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	menu, _ := reg.LookupCommand("/menu")
	before := menu.Available
	if err := reg.Finalize(); err != nil {
		t.Fatalf("second Finalize: %v", err)
	}
	if len(menu.Available) != len(before) {
		t.Fatal("Finalize must not recompute availability")
	}

	// The tree is read-only after Finalize.
	reg.RegisterCommand(&commands.Command{Name: "/late", Handler: noopHandler, Description: "late", Default: true})
	if _, ok := reg.LookupCommand("/late"); ok {
		t.Fatal("registration after Finalize must be skipped")
	}
}

func TestLookupCommand(t *testing.T) {
	reg := testRegistry(t)
	if err := reg.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	if _, ok := reg.LookupCommand("/menu"); !ok {
		t.Fatal("lookup with slash failed")
	}
	if _, ok := reg.LookupCommand("menu"); !ok {
		t.Fatal("lookup without slash failed")
	}
	if _, ok := reg.LookupCommand("nope"); ok {
		t.Fatal("lookup of unknown command must fail")
	}
}

func TestListCommands(t *testing.T) {
	reg := testRegistry(t)
	if err := reg.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	visible := reg.ListCommands(true)
	names := make([]string, 0, len(visible))
	for _, c := range visible {
		names = append(names, c.Text)
	}
	if len(names) != 2 || names[0] != "/menu" || names[1] != "/start" {
		t.Fatalf("visible = %v, want sorted [/menu /start]", names)
	}

	if got := len(reg.ListCommands(false)); got != 4 {
		t.Fatalf("full list = %d entries, want 4", got)
	}
}
