package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Chen-DaYi/WeChatAnalysis/internal/conf"
	"github.com/Chen-DaYi/WeChatAnalysis/internal/data"
)

// Sends a text through the configured relay channel, for checking delivery
// before the first scheduled run.
func main() {
	notify := flag.Bool("notify", false, "Send to the operator through the notify channel")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Println("Usage: send-message [-notify] <message>")
		os.Exit(1)
	}
	message := strings.Join(flag.Args(), " ")

	godotenv.Load()
	cfg := conf.LoadFromEnv()
	repos := data.NewRepositories(cfg)

	relay, targets, channel := repos.Relay, cfg.Relay.Targets, cfg.Relay.Channel
	if *notify {
		relay, channel = repos.Notifier, cfg.Relay.NotifyChannel
		targets = nil
		if cfg.Wechat.OperatorID != "" {
			targets = []string{cfg.Wechat.OperatorID}
		}
	}

	if relay == nil || len(targets) == 0 {
		fmt.Printf("Error: no %s targets configured\n", channel)
		os.Exit(1)
	}

	if err := relay.SendText(context.Background(), targets, message); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Message sent to %s via %s\n", strings.Join(targets, ", "), channel)
}
