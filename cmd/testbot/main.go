package main

import (
	"os"

	"github.com/sleepymaid/sleepymaid/internal/bot"
	_ "github.com/sleepymaid/sleepymaid/internal/services/testbot"
)

// version is set at build time via ldflags:
// go build -ldflags "-X main.version=1.0.0" ./cmd/testbot
var version = "dev"

func main() {
	os.Exit(bot.Run("testbot", version))
}
