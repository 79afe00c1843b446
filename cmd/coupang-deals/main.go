// Package main is the entry point for coupang-deals.
package main

import (
	"os"

	"github.com/lsm5482-blip/my-coupang-bot/cmd/coupang-deals/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
