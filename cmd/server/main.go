package main

import (
	"os"

	"helpdesk-ai/backend/internal/app"
)

func main() {
	os.Exit(app.Run())
}
