package main

import (
	"book-tracker/internal/adapter"
	"book-tracker/internal/core"
	"book-tracker/internal/ui"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func noteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Read and write notes on a book",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <id> <text...>",
			Short: "Add a note",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				n, err := a.svc.AddNote(cmd.Context(), id, strings.Join(args[1:], " "))
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "%s note %d\n", ui.SuccessStyle.Render("Added"), n.ID)
				return nil
			},
		},
		&cobra.Command{
			Use:   "list <id>",
			Short: "List a book's notes",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				notes, err := a.svc.ListNotes(cmd.Context(), id)
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, ui.NotesList(notes))
				return nil
			},
		},
	)
	return cmd
}

func statsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show library statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.svc.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(a.out, ui.StatsView(st))
			return nil
		},
	}
}

func coverCmd(a *app) *cobra.Command {
	var (
		file     string
		from     string
		fallback string
	)
	cmd := &cobra.Command{
		Use:   "cover <id>",
		Short: "Upload a cover image for a book",
		Long: `Upload an image as the book's cover. When the upload fails the image
can still be kept as a local cover, only visible on this device.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			src, err := parseSource(from)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("fallback") {
				fallback = a.cfg.Capture.Fallback
			}
			policy, err := parseFallback(fallback)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			b, err := a.svc.GetBook(ctx, id)
			if err != nil {
				return err
			}

			capture := core.NewCoverCapture(
				adapter.NewDevicePermissions(),
				adapter.PathSource{Path: file},
				a.library,
				adapter.NewTerminalPrompter(a.in, a.out, policy),
				a.log,
			)
			flow, err := capture.Run(ctx, src)
			if err != nil {
				return err
			}
			cover, ok := flow.Cover()
			if !ok {
				fmt.Fprintf(a.out, "Cover unchanged (%s).\n", flow.Outcome)
				return nil
			}
			if _, err := a.svc.SetCover(ctx, b.ID, cover); err != nil {
				return err
			}
			if flow.Outcome == core.OutcomeLocalFallback {
				fmt.Fprintf(a.out, "%s %s (only visible on this device)\n", ui.SuccessStyle.Render("Local cover set:"), cover)
			} else {
				fmt.Fprintf(a.out, "%s %s\n", ui.SuccessStyle.Render("Cover uploaded:"), cover)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Image file to use; empty cancels")
	cmd.Flags().StringVar(&from, "from", "gallery", "gallery or camera")
	cmd.Flags().StringVar(&fallback, "fallback", "ask", "After a failed upload: ask, local or abandon")
	return cmd
}

func parseSource(s string) (core.CaptureSource, error) {
	switch strings.ToLower(s) {
	case "gallery", "":
		return core.SourceGallery, nil
	case "camera":
		return core.SourceCamera, nil
	}
	return 0, fmt.Errorf("unknown source %q (gallery, camera)", s)
}

func parseFallback(s string) (adapter.FallbackPolicy, error) {
	switch p := adapter.FallbackPolicy(strings.ToLower(s)); p {
	case adapter.FallbackAsk, adapter.FallbackLocal, adapter.FallbackAbandon:
		return p, nil
	}
	return "", fmt.Errorf("unknown fallback %q (ask, local, abandon)", s)
}
