package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/hpungsan/chronicle/internal/config"
	"github.com/hpungsan/chronicle/internal/db"
	"github.com/hpungsan/chronicle/internal/entry"
	"github.com/hpungsan/chronicle/internal/errors"
	"github.com/hpungsan/chronicle/internal/mcp"
	"github.com/hpungsan/chronicle/internal/ops"
	"github.com/hpungsan/chronicle/internal/workspace"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"generate": true, "export": true, "list": true, "show": true,
	"reindex": true, "themes": true, "sections": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	switch arg {
	case "--help", "-h", "--version", "-v", "--verbose":
		return true
	}
	return false
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
    _                     _      _
   | |                   (_)    | |
 __| |__  _ __ ___  _ __  _  ___| | ___
/ __| '_ \| '__/ _ \| '_ \| |/ __| |/ _ \
\__ \ | | | | | (_) | | | | | (__| |  __/
|___/_| |_|_|  \___/|_| |_|_|\___|_|\___|

  A diary for your agent

  Usage: chronicle <command> [options]
         chronicle --help

  MCP server mode requires piped input.`)
}

func newLogger(level *slog.LevelVar) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig merges the global and workspace config files. A file that
// cannot be read or parsed is a validation failure.
func loadConfig(globalDir, cwd string) (*config.Config, error) {
	cfg, err := config.LoadWithWorkspace(globalDir, cwd)
	if err != nil {
		return nil, errors.NewValidation(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg, nil
}

// loadEnv resolves the configuration, workspace, section templates and
// entry index for this process. An index that cannot be opened is logged and
// left nil; only list and reindex need it.
func loadEnv(logger *slog.Logger) (*ops.Env, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("could not determine working directory: %w", err)
	}
	home, _ := os.UserHomeDir()

	globalDir := ""
	if home != "" {
		globalDir = filepath.Join(home, config.DirName)
	}
	cfg, err := loadConfig(globalDir, cwd)
	if err != nil {
		return nil, err
	}

	ws := workspace.Find("", cwd, home)

	templates := entry.DefaultTemplates()
	if cfg.SectionsFile != "" {
		path := cfg.SectionsFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(ws.Root, path)
		}
		templates, err = entry.LoadTemplates(path)
		if err != nil {
			return nil, err
		}
	}

	database, err := db.Init(filepath.Join(ws.Root, config.DirName))
	if err != nil {
		logger.Warn("entry index unavailable", "error", err)
		database = nil
	}

	logger.Debug("environment loaded",
		"workspace", ws.Root,
		"diary", cfg.ResolveDiaryDir(ws.Root),
		"backend", cfg.Generation.Backend,
	)

	return &ops.Env{
		Config:    cfg,
		Workspace: ws,
		DB:        database,
		Templates: templates,
		Logger:    logger,
		Stdout:    os.Stdout,
	}, nil
}

// exit prints err the way the CLI reports failures and terminates with its exit code.
func exit(err error) {
	var exitErr cli.ExitCoder
	if stderrors.As(err, &exitErr) {
		if msg := exitErr.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(exitErr.ExitCode())
	}
	var cErr *errors.ChronicleError
	if stderrors.As(err, &cErr) {
		fmt.Fprintf(os.Stderr, "[%s] %s\n", cErr.Code, cErr.Message)
		os.Exit(cErr.Status)
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Handle --help/--version before loading anything
	if isHelpOrVersion() {
		if err := newCLIApp(nil, nil).RunContext(ctx, os.Args); err != nil {
			exit(err)
		}
		return
	}

	level := new(slog.LevelVar)
	logger := newLogger(level)
	env, err := loadEnv(logger)
	if err != nil {
		exit(err)
	}
	if env.DB != nil {
		defer env.DB.Close()
	}

	if isCLIMode() {
		if err := newCLIApp(env, level).RunContext(ctx, os.Args); err != nil {
			if env.DB != nil {
				env.DB.Close()
			}
			exit(err)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'chronicle --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode: stdout carries the protocol.
	env.Stdout = nil
	if unknown := mcp.ValidateDisabledTools(env.Config.DisabledTools); len(unknown) > 0 {
		logger.Warn("unknown tools in disabled_tools", "tools", unknown)
	}
	if err := mcp.Run(env, Version); err != nil {
		exit(err)
	}
}
