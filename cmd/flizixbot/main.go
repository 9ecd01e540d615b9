package main

import (
	"log"

	"github.com/flizix/flizixbot/bot"
	corecmd "github.com/flizix/flizixbot/core/cmd"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return bot.LoadConfig(path)
		},
		Bootstrap: func(cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			appCfg, ok := cfg.(*bot.Config)
			if !ok {
				return nil, bot.ErrBadConfigType
			}
			return bot.Bootstrap(appCfg)
		},
	})
	if err != nil {
		log.Fatalf("flizixbot: %v", err)
	}
}
