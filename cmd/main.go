package main

import (
	"os"

	"github.com/yungbote/educator-assistant-backend/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
