package bot

import (
	tg "github.com/flizix/flizixbot/core/telegram"
	"github.com/flizix/flizixbot/core/telegram/commands"
)

const (
	cmdStart     = "/start"
	cmdHelp      = "/help"
	cmdAddMe     = "/addMe"
	cmdEarn      = "/earn"
	cmdRecPay    = "/recPay"
	cmdAddRecPay = "/addRecPay"
)

const (
	helpStart = "Use `/start` to check whether you are registered and learn how to begin."
	helpHelp  = "Use `/help` to repeat the hint for your last command, or `/help earn` to read about a specific command."
	helpAddMe = "Use `/addMe your@email.com` to register yourself. Registration is needed before recording any earns or payments."
	helpEarn  = "Use `/earn amount` to set this month's earn (decimals allowed, like 1500.50), or `/earn amount month` with a two-digit month like 09 to set another month of the current year. Sending it again for the same month overwrites the amount."
	helpRecPay = "Use `/recPay` to open the recurrent payments menu. From there `/addRecPay` becomes available."
	helpAddRecPay = "Use `/addRecPay name amount` or `/addRecPay name amount comment` to register a payment you do every month, like `/addRecPay rent 400`."
)

// BuildRegistry wires the Flizix command tree: the always-available commands,
// the recurrent payments submenu, and the fallback for unresolved input.
func BuildRegistry(h *Handlers) (*tg.Registry, error) {
	reg := tg.NewRegistry()

	reg.RegisterCommand(&commands.Command{
		Name:        cmdStart,
		Handler:     h.Start,
		Description: "Check your registration and how to begin",
		Help:        helpStart,
		Default:     true,
	})
	reg.RegisterCommand(&commands.Command{
		Name:        cmdHelp,
		Handler:     h.Help,
		Description: "Show help for your last command or a given one",
		Help:        helpHelp,
		Default:     true,
		Transient:   true,
	})
	reg.RegisterCommand(&commands.Command{
		Name:        cmdAddMe,
		Handler:     h.Register,
		Description: "Register your user with an email",
		Help:        helpAddMe,
		Default:     true,
	})
	reg.RegisterCommand(&commands.Command{
		Name:        cmdEarn,
		Handler:     h.RecordEarning,
		Description: "Add or update your month earn",
		Help:        helpEarn,
		Default:     true,
	})
	reg.RegisterCommand(&commands.Command{
		Name:        cmdRecPay,
		Handler:     h.RecurringMenu,
		Description: "Open the recurrent payments menu",
		Help:        helpRecPay,
		Default:     true,
		Unlocks:     []string{cmdAddRecPay},
	})
	reg.RegisterCommand(&commands.Command{
		Name:        cmdAddRecPay,
		Handler:     h.AddRecurringPayment,
		Description: "Register a recurrent payment",
		Help:        helpAddRecPay,
	})

	reg.SetFallback(&commands.Command{
		Name:    "/default",
		Handler: h.Unknown,
	})

	if err := reg.Finalize(); err != nil {
		return nil, err
	}
	return reg, nil
}
