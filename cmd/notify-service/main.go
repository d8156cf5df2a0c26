package main

import (
	"os"

	"github.com/loomplan-ai/loomplan-notify/notifyservice"
)

func main() {
	if err := notifyservice.Run(); err != nil {
		os.Exit(1)
	}
}
