package main

import (
	"os"

	"buildhook/internal/hookctl"
)

func main() { os.Exit(hookctl.Main()) }
