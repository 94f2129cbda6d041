// emojiart - emoji-art multiple-choice dataset builder
//
// emojiart draws emoji icons with coloured square emoji, turns the results
// into multiple-choice questions and scores language models on them.
//
// Copyright (c) 2025 John Mylchreest
// Licensed under the MIT License
package main

import (
	"os"

	"github.com/jmylchreest/emojiart/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
