// Copyright 2026 The Releasefs Authors
// SPDX-License-Identifier: Apache-2.0

// releasefs mounts a repository's release catalog as a read-only
// filesystem: one directory per release tag, one file per asset.
//
// Usage:
//
//	releasefs [flags] MOUNTPOINT OWNER REPO
//	releasefs --config releasefs.yaml
//
// The catalog is fetched once at startup; pass --refresh to refetch
// it periodically. Asset files carry placeholder content — releasefs
// browses the catalog, it does not download artifacts.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/releasefs/releasefs/lib/config"
	"github.com/releasefs/releasefs/lib/github"
	"github.com/releasefs/releasefs/lib/releasefs"
	mount "github.com/releasefs/releasefs/lib/releasefs/fuse"
	"github.com/releasefs/releasefs/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath   string
		username     string
		passwordFile string
		refresh      time.Duration
		allowOther   bool
		logLevel     string
	)

	flagSet := pflag.NewFlagSet("releasefs", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to a YAML config file")
	flagSet.StringVarP(&username, "username", "u", "", "basic-auth username")
	flagSet.StringVarP(&passwordFile, "password-file", "p", "", "file holding the basic-auth password or token (\"-\" prompts)")
	flagSet.DurationVar(&refresh, "refresh", 0, "periodic catalog refresh interval (0 disables)")
	flagSet.BoolVar(&allowOther, "allow-other", false, "allow other users to access the mount")
	flagSet.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flagSet.BoolP("help", "h", false, "show help")

	// Handle --version before flag parsing so it works without
	// positional arguments.
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("releasefs")
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	// Start from the config file (if any); flags and positional
	// arguments override it.
	settings := &config.Config{LogLevel: "info"}
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		settings = loaded
	}
	if flagSet.Changed("username") {
		settings.Username = username
	}
	if flagSet.Changed("password-file") {
		settings.PasswordFile = passwordFile
	}
	if flagSet.Changed("refresh") {
		settings.RefreshInterval = config.Duration(refresh)
	}
	if flagSet.Changed("allow-other") {
		settings.AllowOther = allowOther
	}
	if flagSet.Changed("log-level") {
		settings.LogLevel = logLevel
	}

	args := flagSet.Args()
	switch len(args) {
	case 0:
		// Everything must come from the config file.
	case 3:
		settings.Mountpoint = args[0]
		settings.Owner = args[1]
		settings.Repo = args[2]
	default:
		return fmt.Errorf("expected MOUNTPOINT OWNER REPO (or --config), got %d arguments", len(args))
	}

	if settings.Mountpoint == "" || settings.Owner == "" || settings.Repo == "" {
		return fmt.Errorf("mountpoint, owner, and repo are required (arguments or config file)")
	}

	logger, err := newLogger(settings.LogLevel)
	if err != nil {
		return err
	}

	var password string
	if settings.Username != "" {
		password, err = readPassword(settings.PasswordFile)
		if err != nil {
			return err
		}
	}

	client, err := github.NewClient(github.Config{
		Username: settings.Username,
		Password: password,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	ctx := context.Background()
	logger.Info("fetching release catalog", "owner", settings.Owner, "repo", settings.Repo)
	filesystem, err := releasefs.New(ctx, releasefs.Options{
		Client: client,
		Owner:  settings.Owner,
		Repo:   settings.Repo,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	server, err := mount.Mount(mount.Options{
		Mountpoint:      settings.Mountpoint,
		Filesystem:      filesystem,
		RefreshInterval: time.Duration(settings.RefreshInterval),
		AllowOther:      settings.AllowOther,
		Logger:          logger,
	})
	if err != nil {
		return err
	}

	// Unmount on SIGINT/SIGTERM; Wait returns once the kernel
	// connection is gone (ours or an external umount).
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		received := <-signals
		logger.Info("unmounting", "signal", received)
		if err := server.Unmount(); err != nil {
			logger.Error("unmount failed", "error", err)
		}
	}()

	server.Wait()
	return nil
}

// newLogger builds a stderr text logger at the requested level.
func newLogger(level string) (*slog.Logger, error) {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "", "info":
		slogLevel = slog.LevelInfo
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slogLevel})), nil
}

// readPassword reads the basic-auth password. If path is empty or
// "-", prompts interactively on the terminal with echo disabled;
// otherwise reads the file and strips trailing newlines.
func readPassword(path string) (string, error) {
	if path != "" && path != "-" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", path, err)
		}
		for len(data) > 0 && (data[len(data)-1] == '\n' || data[len(data)-1] == '\r') {
			data = data[:len(data)-1]
		}
		if len(data) == 0 {
			return "", fmt.Errorf("password file %s is empty", path)
		}
		return string(data), nil
	}

	stdinFileDescriptor := int(os.Stdin.Fd())
	if !term.IsTerminal(stdinFileDescriptor) {
		return "", fmt.Errorf("no terminal available for interactive password prompt (use --password-file)")
	}

	fmt.Fprint(os.Stderr, "Password: ")
	passwordBytes, err := term.ReadPassword(stdinFileDescriptor)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(passwordBytes), nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `releasefs — mount a repository's release catalog as a filesystem

Usage:
  releasefs [flags] MOUNTPOINT OWNER REPO
  releasefs --config releasefs.yaml

Flags:
%s`, flagSet.FlagUsages())
}
