package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/flizix/flizixbot/core/logger"
	"github.com/flizix/flizixbot/core/telegram/commands"
	"github.com/flizix/flizixbot/core/telegram/session"
	"github.com/flizix/flizixbot/store"
	"log/slog"
)

func init() {
	logger.TWire = slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeStore struct {
	users    map[int64]store.User
	earns    map[string]*store.MonthEarn
	payments []store.RecurrentPayment

	nextUserID int64
	nextEarnID int64
	nextPayID  int64

	// forced failure for every call when set
	err error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: make(map[int64]store.User),
		earns: make(map[string]*store.MonthEarn),
	}
}

func earnKey(userID int64, period time.Time) string {
	return fmt.Sprintf("%d/%s", userID, period.Format("2006-01"))
}

func (f *fakeStore) GetUserByTelegramID(ctx context.Context, telegramID int64) (store.User, error) {
	if f.err != nil {
		return store.User{}, f.err
	}
	u, ok := f.users[telegramID]
	if !ok {
		return store.User{}, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) CreateUser(ctx context.Context, u store.User) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.nextUserID++
	u.ID = f.nextUserID
	f.users[u.TelegramID] = u
	return u.ID, nil
}

func (f *fakeStore) GetMonthEarn(ctx context.Context, userID int64, year int, month time.Month) (store.MonthEarn, error) {
	if f.err != nil {
		return store.MonthEarn{}, f.err
	}
	e, ok := f.earns[earnKey(userID, store.PeriodStart(year, month))]
	if !ok {
		return store.MonthEarn{}, store.ErrNotFound
	}
	return *e, nil
}

func (f *fakeStore) InsertMonthEarn(ctx context.Context, userID int64, year int, month time.Month, amount float64) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.nextEarnID++
	period := store.PeriodStart(year, month)
	f.earns[earnKey(userID, period)] = &store.MonthEarn{
		ID:          f.nextEarnID,
		UserID:      userID,
		PeriodStart: period,
		TotalEarn:   amount,
	}
	return f.nextEarnID, nil
}

func (f *fakeStore) UpdateMonthEarnAmount(ctx context.Context, id int64, amount float64) error {
	if f.err != nil {
		return f.err
	}
	for _, e := range f.earns {
		if e.ID == id {
			e.TotalEarn = amount
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeStore) InsertRecurrentPayment(ctx context.Context, p store.RecurrentPayment) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.nextPayID++
	p.ID = f.nextPayID
	f.payments = append(f.payments, p)
	return p.ID, nil
}

var _ store.Store = (*fakeStore)(nil)

var testClock = func() time.Time {
	return time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
}

func newTestHandlers(t *testing.T) (*Handlers, *fakeStore, session.Manager) {
	t.Helper()
	st := newFakeStore()
	h := NewHandlers(st, testClock)
	reg, err := BuildRegistry(h)
	if err != nil {
		t.Fatalf("BuildRegistry: %v", err)
	}
	sessions := session.NewMemoryManager(reg.Defaults())
	h.AttachNavigation(reg, sessions)
	return h, st, sessions
}

func testRequest(arg string) commands.Request {
	return commands.Request{
		ChatID:      7,
		UserID:      7,
		DisplayName: "Ada Lovelace",
		Arg:         arg,
	}
}

func wantText(t *testing.T, replies []commands.Reply, err error, want string) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(replies) != 1 {
		t.Fatalf("want 1 reply, got %d", len(replies))
	}
	if replies[0].Text != want {
		t.Fatalf("reply = %q, want %q", replies[0].Text, want)
	}
}

func wantCmdErr(t *testing.T, err error, kind commands.ErrKind, message string) {
	t.Helper()
	var cmdErr *commands.Error
	if !errors.As(err, &cmdErr) {
		t.Fatalf("want *commands.Error, got %v", err)
	}
	if cmdErr.Kind != kind {
		t.Fatalf("kind = %q, want %q", cmdErr.Kind, kind)
	}
	if message != "" && cmdErr.Message != message {
		t.Fatalf("message = %q, want %q", cmdErr.Message, message)
	}
}

func TestStartUnregistered(t *testing.T) {
	h, _, _ := newTestHandlers(t)

	replies, err := h.Start(context.Background(), testRequest(""))
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if replies[0].Text != replyWelcome {
		t.Fatalf("reply = %q, want welcome", replies[0].Text)
	}
	if replies[0].Markup == nil || !replies[0].Markup.RemoveKeyboard {
		t.Fatal("want reply keyboard removed on /start")
	}
}

func TestRegisterLifecycle(t *testing.T) {
	h, st, _ := newTestHandlers(t)
	ctx := context.Background()

	_, err := h.Register(ctx, testRequest(""))
	wantCmdErr(t, err, commands.ErrKindValidation, replyEmailMissing)

	_, err = h.Register(ctx, testRequest("not-an-email"))
	wantCmdErr(t, err, commands.ErrKindValidation, replyEmailInvalid)

	replies, err := h.Register(ctx, testRequest("ada@example.com"))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !strings.Contains(replies[0].Text, "You user ID is: 1") {
		t.Fatalf("reply = %q, want the assigned user id", replies[0].Text)
	}
	u := st.users[7]
	if u.Email != "ada@example.com" || u.DisplayName != "Ada Lovelace" {
		t.Fatalf("stored user = %+v", u)
	}

	replies, err = h.Register(ctx, testRequest("ada@example.com"))
	wantText(t, replies, err, replyAlreadyRegistered)
	if len(st.users) != 1 {
		t.Fatalf("register must be idempotent, have %d users", len(st.users))
	}

	replies, err = h.Start(ctx, testRequest(""))
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if replies[0].Text != replyAlreadyStarted {
		t.Fatalf("reply = %q, want already-started", replies[0].Text)
	}
}

func TestRecordEarningRequiresRegistration(t *testing.T) {
	h, _, _ := newTestHandlers(t)

	_, err := h.RecordEarning(context.Background(), testRequest("500"))
	wantCmdErr(t, err, commands.ErrKindNotRegistered, replyNotRegistered)
}

func TestRecordEarningUpsert(t *testing.T) {
	h, st, _ := newTestHandlers(t)
	ctx := context.Background()
	if _, err := st.CreateUser(ctx, store.User{DisplayName: "Ada", Email: "ada@example.com", TelegramID: 7}); err != nil {
		t.Fatal(err)
	}

	replies, err := h.RecordEarning(ctx, testRequest("500.5"))
	wantText(t, replies, err, "Month earn registered with amount: $500.5")

	march := earnKey(1, store.PeriodStart(2026, time.March))
	if got := st.earns[march].TotalEarn; got != 500.5 {
		t.Fatalf("march total = %v, want 500.5", got)
	}

	// Same month again overwrites, and a whole number echoes with a decimal.
	replies, err = h.RecordEarning(ctx, testRequest("600"))
	wantText(t, replies, err, "Month earn updated to: $600.0")
	if got := st.earns[march].TotalEarn; got != 600 {
		t.Fatalf("march total = %v, want 600", got)
	}
	if len(st.earns) != 1 {
		t.Fatalf("want a single row per month, have %d", len(st.earns))
	}

	// Explicit month targets a different row and echoes the raw integer.
	replies, err = h.RecordEarning(ctx, testRequest("1200 04"))
	wantText(t, replies, err, "Month earn registered with amount: $1200")
	april := earnKey(1, store.PeriodStart(2026, time.April))
	if got := st.earns[april].TotalEarn; got != 1200 {
		t.Fatalf("april total = %v, want 1200", got)
	}
}

func TestRecordEarningValidation(t *testing.T) {
	h, st, _ := newTestHandlers(t)
	ctx := context.Background()
	if _, err := st.CreateUser(ctx, store.User{DisplayName: "Ada", Email: "ada@example.com", TelegramID: 7}); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		arg  string
		want string
	}{
		{"", replyEarnUsage},
		{"abc", replyAmountInvalid},
		{"12.345", replyAmountInvalid},
		{"500.5 03", replyAmountInvalid},
		{"100 13", replyMonthInvalid},
		{"100 3", replyMonthInvalid},
	}
	for _, tc := range cases {
		_, err := h.RecordEarning(ctx, testRequest(tc.arg))
		var cmdErr *commands.Error
		if !errors.As(err, &cmdErr) || cmdErr.Message != tc.want {
			t.Errorf("arg %q: err = %v, want %q", tc.arg, err, tc.want)
		}
	}
	if len(st.earns) != 0 {
		t.Fatalf("invalid input must not write, have %d rows", len(st.earns))
	}
}

func TestAddRecurringPayment(t *testing.T) {
	h, st, _ := newTestHandlers(t)
	ctx := context.Background()
	if _, err := st.CreateUser(ctx, store.User{DisplayName: "Ada", Email: "ada@example.com", TelegramID: 7}); err != nil {
		t.Fatal(err)
	}

	_, err := h.AddRecurringPayment(ctx, testRequest(""))
	wantCmdErr(t, err, commands.ErrKindValidation, replyRecPayUsage)

	_, err = h.AddRecurringPayment(ctx, testRequest("rent"))
	wantCmdErr(t, err, commands.ErrKindValidation, replyRecPayUsage)

	_, err = h.AddRecurringPayment(ctx, testRequest("rent 4.5"))
	wantCmdErr(t, err, commands.ErrKindValidation, replyAmountInvalid)

	replies, err := h.AddRecurringPayment(ctx, testRequest("rent 400"))
	wantText(t, replies, err, "Recurrent payment (rent) registered")

	replies, err = h.AddRecurringPayment(ctx, testRequest("gym 25 monthly membership"))
	wantText(t, replies, err, "Recurrent payment (gym) registered")

	if len(st.payments) != 2 {
		t.Fatalf("want 2 payments, have %d", len(st.payments))
	}
	rent, gym := st.payments[0], st.payments[1]
	if rent.Comment.Valid {
		t.Fatalf("rent comment must stay NULL, got %q", rent.Comment.String)
	}
	if !gym.Comment.Valid || gym.Comment.String != "monthly membership" {
		t.Fatalf("gym comment = %+v, want the free text after the amount", gym.Comment)
	}
	if rent.Amount != 400 || gym.Amount != 25 {
		t.Fatalf("amounts = %v, %v", rent.Amount, gym.Amount)
	}
}

func TestRecurringMenuShowsKeyboard(t *testing.T) {
	h, _, _ := newTestHandlers(t)

	replies, err := h.RecurringMenu(context.Background(), testRequest(""))
	wantText(t, replies, err, replyRecPayMenu)
	if replies[0].Markup == nil || len(replies[0].Markup.ReplyKeyboard) == 0 {
		t.Fatal("want a reply keyboard with the unlocked commands")
	}

	var labels []string
	for _, row := range replies[0].Markup.ReplyKeyboard {
		for _, btn := range row {
			labels = append(labels, btn.Text)
		}
	}
	joined := strings.Join(labels, " ")
	if !strings.Contains(joined, cmdAddRecPay) {
		t.Fatalf("keyboard %q misses %s", joined, cmdAddRecPay)
	}
	if !strings.Contains(joined, cmdEarn) {
		t.Fatalf("keyboard %q misses the default command %s", joined, cmdEarn)
	}
}

func TestHelp(t *testing.T) {
	h, _, sessions := newTestHandlers(t)
	ctx := context.Background()

	// Named command, with or without the slash.
	replies, err := h.Help(ctx, testRequest("earn"))
	wantText(t, replies, err, helpEarn)
	if !replies[0].Markdown {
		t.Fatal("help replies must render as markdown")
	}
	replies, err = h.Help(ctx, testRequest("/earn"))
	wantText(t, replies, err, helpEarn)

	// Unknown name echoes it back escaped.
	replies, err = h.Help(ctx, testRequest("do_stuff"))
	if err != nil {
		t.Fatalf("Help: %v", err)
	}
	if !strings.HasPrefix(replies[0].Text, "Command not found: ") {
		t.Fatalf("reply = %q", replies[0].Text)
	}
	if !strings.Contains(replies[0].Text, `do\_stuff`) {
		t.Fatalf("reply %q must escape markdown specials", replies[0].Text)
	}

	// No argument and no history falls back to the summary.
	replies, err = h.Help(ctx, testRequest(""))
	if err != nil {
		t.Fatalf("Help: %v", err)
	}
	for _, name := range []string{cmdStart, cmdAddMe, cmdEarn, cmdRecPay} {
		if !strings.Contains(replies[0].Text, name) {
			t.Errorf("summary misses %s", name)
		}
	}
	if strings.Contains(replies[0].Text, cmdAddRecPay) {
		t.Error("summary must not list submenu-only commands")
	}

	// After a command ran, bare /help repeats its hint.
	earn, _ := h.registry.LookupCommand(cmdEarn)
	sessions.Apply(7, earn)
	replies, err = h.Help(ctx, testRequest(""))
	wantText(t, replies, err, helpEarn)
}

func TestUnknown(t *testing.T) {
	h, _, _ := newTestHandlers(t)

	replies, err := h.Unknown(context.Background(), testRequest("whatever"))
	wantText(t, replies, err, replyUnknown)
}

func TestStoreFailureSurfaces(t *testing.T) {
	h, st, _ := newTestHandlers(t)
	boom := errors.New("boom")
	st.err = boom

	_, err := h.RecordEarning(context.Background(), testRequest("500"))
	var cmdErr *commands.Error
	if !errors.As(err, &cmdErr) || cmdErr.Kind != commands.ErrKindStore {
		t.Fatalf("err = %v, want a store failure", err)
	}
	if !errors.Is(err, boom) {
		t.Fatal("store failure must wrap the cause")
	}
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{500, "500.0"},
		{500.5, "500.5"},
		{0, "0.0"},
		{1234.25, "1234.25"},
	}
	for _, tc := range cases {
		if got := formatAmount(tc.in); got != tc.want {
			t.Errorf("formatAmount(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
