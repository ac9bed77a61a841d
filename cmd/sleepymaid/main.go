package main

import (
	"os"

	"github.com/sleepymaid/sleepymaid/internal/bot"
	_ "github.com/sleepymaid/sleepymaid/internal/services/sleepymaid"
)

// version is set at build time via ldflags:
// go build -ldflags "-X main.version=1.0.0" ./cmd/sleepymaid
var version = "dev"

func main() {
	os.Exit(bot.Run("sleepymaid", version))
}
