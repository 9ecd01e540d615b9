package dispatch

import (
	"errors"
	"testing"

	"github.com/flizix/flizixbot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

func TestSplitCommand(t *testing.T) {
	cases := []struct {
		in    string
		token string
		arg   string
	}{
		{"/start", "/start", ""},
		{"/earn 500", "/earn", "500"},
		{"/earn 500 09", "/earn", "500 09"},
		{"/addRecPay rent 400 paid monthly", "/addRecPay", "rent 400 paid monthly"},
		{"", "", ""},
		{"hello there", "hello", "there"},
	}
	for _, tc := range cases {
		token, arg := splitCommand(tc.in)
		if token != tc.token || arg != tc.arg {
			t.Errorf("splitCommand(%q) = (%q, %q), want (%q, %q)", tc.in, token, arg, tc.token, tc.arg)
		}
	}
}

func TestRenderError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{
			"validation carries its own message",
			commands.Validationf("Write a valid email like: test@example.com"),
			"Write a valid email like: test@example.com",
		},
		{
			"not registered carries its own message",
			commands.NotRegistered("Send /start to use this tool ;)"),
			"Send /start to use this tool ;)",
		},
		{
			"store failure shows the cause",
			commands.StoreFailure(errors.New("connection refused")),
			"There was an error: connection refused",
		},
		{
			"plain error shows the detail",
			errors.New("boom"),
			"There was an error: boom",
		},
	}
	for _, tc := range cases {
		if got := renderError(tc.err); got != tc.want {
			t.Errorf("%s: renderError = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	cases := []struct {
		user *tele.User
		want string
	}{
		{nil, "Unknown"},
		{&tele.User{FirstName: "Ada"}, "Ada"},
		{&tele.User{FirstName: "Ada", LastName: "Lovelace"}, "Ada Lovelace"},
		{&tele.User{LastName: "Lovelace"}, "Unknown Lovelace"},
	}
	for _, tc := range cases {
		if got := displayName(tc.user); got != tc.want {
			t.Errorf("displayName(%+v) = %q, want %q", tc.user, got, tc.want)
		}
	}
}

func TestNormalizeHandlerName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"/addRecPay", "addrecpay"},
		{"/start", "start"},
		{"", "unknown"},
		{"  ", "unknown"},
	}
	for _, tc := range cases {
		if got := normalizeHandlerName(tc.in); got != tc.want {
			t.Errorf("normalizeHandlerName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDeriveErrorCode(t *testing.T) {
	if got := deriveErrorCode(commands.Validationf("bad")); got != "VALIDATION" {
		t.Errorf("validation code = %q", got)
	}
	if got := deriveErrorCode(commands.StoreFailure(errors.New("x"))); got != "STORE" {
		t.Errorf("store code = %q", got)
	}
	if got := deriveErrorCode(errors.New("x")); got == "" {
		t.Error("plain errors still derive a code from their type")
	}
}
