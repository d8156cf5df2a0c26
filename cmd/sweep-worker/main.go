package main

import (
	"os"

	"github.com/loomplan-ai/loomplan-notify/sweepworker"
)

func main() {
	if err := sweepworker.Run(); err != nil {
		os.Exit(1)
	}
}
