package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/tuannm99/novacore/internal/engine"
)

const prompt = "novacore> "

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".novacore_history"
	}
	return filepath.Join(home, ".novacore_history")
}

func main() {
	var (
		cfgPath  = flag.String("config", "", "YAML config file (defaults when empty)")
		histPath = flag.String("history", defaultHistoryPath(), "history file path")
		oneShot  = flag.String("c", "", "run one command and exit")
	)
	flag.Parse()

	db, err := engine.Open(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if strings.TrimSpace(*oneShot) != "" {
		if err := runCommand(db, *oneShot, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     *histPath,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = rl.Close() }()

	fmt.Printf("%s (workdir %s)\n", db.Config.AppName, db.Config.Storage.Workdir)
	fmt.Println("type \\help for help")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err != nil {
			// EOF
			fmt.Println()
			return
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "\\q", "quit", "exit":
			return
		case "\\help":
			fmt.Println(helpText)
			continue
		}

		if err := runCommand(db, line, rl.Stdout()); err != nil {
			fmt.Fprintf(rl.Stderr(), "error: %v\n", err)
		}
	}
}
