// Package main provides the booktrack binary: a terminal client for a
// personal book library kept on a remote service.
package main

import (
	"book-tracker/internal/adapter"
	"book-tracker/internal/config"
	"book-tracker/internal/core"
	"book-tracker/internal/core/model"
	"book-tracker/internal/ui"
	"book-tracker/pkg/http_client"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "booktrack"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd(os.Stdin, os.Stdout).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, userMessage(err))
		os.Exit(1)
	}
}

// app holds what every command needs once configuration is loaded.
type app struct {
	cfg         *config.Config
	log         *slog.Logger
	svc         *core.Service
	library     *adapter.LibraryClient
	openLibrary *adapter.OpenLibraryClient
	coverOpts   []core.CoverOption
	viewOpts    []core.ViewOption
	in          io.Reader
	out         io.Writer
}

func rootCmd(in io.Reader, out io.Writer) *cobra.Command {
	var (
		configPath string
		logLevel   string
	)
	a := &app{in: in, out: out}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Track the books you own, read and love",
		Long: `booktrack keeps a personal book library on a remote library service.

Books can be searched, filtered and sorted locally, annotated with notes,
rated, and given a cover picked from disk or resolved from the ISBN.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch cmd.Name() {
			case "version", "help", "completion":
				return nil
			}
			return a.setup(configPath, logLevel, cmd.Flags().Changed("log-level"))
		},
	}
	cmd.SetIn(in)
	cmd.SetOut(out)

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		listCmd(a),
		browseCmd(a),
		showCmd(a),
		addCmd(a),
		editCmd(a),
		rateCmd(a),
		deleteCmd(a),
		noteCmd(a),
		statsCmd(a),
		coverCmd(a),
		editionsCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)
	return cmd
}

func (a *app) setup(configPath, logLevel string, levelFlagSet bool) error {
	cfg, err := config.Load(configPath, slog.Default())
	if err != nil {
		return err
	}
	if levelFlagSet || cfg.Log.Level == "" {
		cfg.Log.Level = logLevel
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.Log.Level)}))
	slog.SetDefault(logger)

	httpClient := http_client.CreateHTTPClient(cfg.API.Timeout)
	a.cfg = cfg
	a.log = logger
	a.library = adapter.NewLibraryClient(cfg.API.BaseURL, httpClient)
	a.openLibrary = adapter.NewOpenLibraryClient(cfg.OpenLibrary.BaseURL, cfg.OpenLibrary.UserAgent,
		cfg.OpenLibrary.RPS, httpClient, logger)
	a.svc = core.NewService(a.library, a.openLibrary, core.NewFormValidator(nil), logger)
	a.coverOpts = []core.CoverOption{
		core.WithCoverBaseURL(cfg.Covers.BaseURL),
		core.WithCoverSize(model.CoverSize(cfg.Covers.Size)),
	}
	a.viewOpts = []core.ViewOption{core.WithLocale(cfg.LanguageTag())}

	logger.Debug("booktrack ready", "api", cfg.API.BaseURL, "locale", cfg.Locale)
	return nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	}
	return slog.LevelWarn
}

// userMessage turns any command failure into what the user reads.
func userMessage(err error) string {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		return ui.FieldErrors(verr)
	case errors.Is(err, model.ErrNotFound):
		return ui.ErrorStyle.Render("Not found.") + " The book may have been deleted."
	case errors.Is(err, model.ErrPermissionDenied):
		return ui.ErrorStyle.Render("Permission denied.") + " " + err.Error()
	case errors.Is(err, model.ErrCaptureBusy):
		return ui.ErrorStyle.Render("A cover capture is already running.")
	case errors.Is(err, model.ErrUpstream):
		return ui.ErrorStyle.Render("The library service refused the request.") + "\n" + err.Error()
	case errors.Is(err, context.Canceled):
		return "Interrupted."
	}
	return ui.ErrorStyle.Render("Error:") + " " + err.Error()
}
