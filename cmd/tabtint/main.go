// Tabtint - adaptive browser chrome colours
//
// Tabtint colours the browser's tab bar and toolbar to match the page being
// viewed. The browser extension connects to "tabtint serve"; the other
// commands show how URLs, page signals and colours are handled.
//
// Copyright (c) 2025 John Mylchreest
// Licensed under the MIT License
package main

import (
	"os"

	"github.com/jmylchreest/tabtint/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
