package main

import (
	"book-tracker/internal/core"
	"book-tracker/internal/core/model"
	"book-tracker/internal/ui"
	"book-tracker/pkg/util"
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// viewFlags are the search, filter and sort flags shared by list and browse.
type viewFlags struct {
	query  string
	filter string
	sort   string
}

func (v *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&v.query, "query", "q", "", "Match title or author (accent and case insensitive)")
	cmd.Flags().StringVarP(&v.filter, "filter", "f", string(model.FilterAll), "all, read, unread or favorite")
	cmd.Flags().StringVarP(&v.sort, "sort", "s", string(model.SortTitle), "title, author, theme, rating or year")
}

func (v *viewFlags) viewQuery() (model.ViewQuery, error) {
	f, ok := core.ParseFilter(v.filter)
	if !ok {
		return model.ViewQuery{}, fmt.Errorf("unknown filter %q (all, read, unread, favorite)", v.filter)
	}
	s, ok := core.ParseSortKey(v.sort)
	if !ok {
		return model.ViewQuery{}, fmt.Errorf("unknown sort %q (title, author, theme, rating, year)", v.sort)
	}
	return model.ViewQuery{Query: v.query, Filter: f, Sort: s}, nil
}

func listCmd(a *app) *cobra.Command {
	var vf viewFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := vf.viewQuery()
			if err != nil {
				return err
			}
			books, err := a.svc.ListBooks(cmd.Context())
			if err != nil {
				return err
			}
			view := core.BuildView(books, q, a.viewOpts...)
			fmt.Fprintln(a.out, ui.BookTable(view, -1))
			fmt.Fprintf(a.out, "%d of %d books\n", len(view), len(books))
			return nil
		},
	}
	vf.register(cmd)
	return cmd
}

func browseCmd(a *app) *cobra.Command {
	var vf viewFlags
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Search the library interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := vf.viewQuery()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			shelf := core.NewShelf(a.viewOpts...)
			shelf.SetViewQuery(q)

			load := func() tea.Cmd {
				return func() tea.Msg {
					books, err := a.svc.ListBooks(ctx)
					return ui.BooksLoaded{Books: books, Err: err}
				}
			}
			del := func(id int) tea.Cmd {
				return func() tea.Msg {
					return ui.BookDeleted{ID: id, Err: a.svc.DeleteBook(ctx, id)}
				}
			}

			p := tea.NewProgram(ui.NewBrowser(shelf, load, del),
				tea.WithAltScreen(),
				tea.WithContext(ctx),
				tea.WithInput(a.in),
				tea.WithOutput(a.out),
			)
			final, err := p.Run()
			if err != nil {
				return fmt.Errorf("browse: %w", err)
			}
			if b, ok := final.(ui.Browser).Selected(); ok {
				return a.showBook(ctx, b.ID)
			}
			return nil
		},
	}
	vf.register(cmd)
	return cmd
}

func showCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a book with its cover and notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.showBook(cmd.Context(), id)
		},
	}
}

func (a *app) showBook(ctx context.Context, id int) error {
	b, err := a.svc.GetBook(ctx, id)
	if err != nil {
		return err
	}
	notes, err := a.svc.ListNotes(ctx, id)
	if err != nil {
		return err
	}

	var cover ui.CoverView
	if src := core.ResolveCover(b.Cover, b.ISBN, a.coverOpts...); src != nil {
		cover.Source = *src
		cover.Available = a.openLibrary.ProbeCover(ctx, *src)
	}
	fmt.Fprintln(a.out, ui.BookDetail(b, cover, notes))
	return nil
}

// formFlags mirror BookForm. Only flags the user set are applied, so edit
// keeps every other field of the stored book.
type formFlags struct {
	name, author, editor, theme string
	cover, isbn                 string
	year, rating                int
	read, favorite              bool
}

func (f *formFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.name, "name", "", "Title")
	fs.StringVar(&f.author, "author", "", "Author")
	fs.StringVar(&f.editor, "editor", "", "Publisher")
	fs.StringVar(&f.theme, "theme", "", "Genre or theme")
	fs.IntVar(&f.year, "year", 0, "Publication year (defaults to the current year on add)")
	fs.IntVar(&f.rating, "rating", 0, "Rating from 0 to 5")
	fs.BoolVar(&f.read, "read", false, "Mark as read")
	fs.BoolVar(&f.favorite, "favorite", false, "Mark as favorite")
	fs.StringVar(&f.cover, "cover", "", "Cover image URL or file:// reference")
	fs.StringVar(&f.isbn, "isbn", "", "ISBN-10 or ISBN-13")
}

func (f *formFlags) apply(cmd *cobra.Command, form *core.BookForm) {
	fs := cmd.Flags()
	str := func(name string, src string, dst *string) {
		if fs.Changed(name) {
			*dst = src
		}
	}
	str("name", f.name, &form.Name)
	str("author", f.author, &form.Author)
	str("editor", f.editor, &form.Editor)
	str("theme", f.theme, &form.Theme)
	if fs.Changed("year") {
		form.Year = f.year
	}
	if fs.Changed("rating") {
		form.Rating = f.rating
	}
	if fs.Changed("read") {
		form.Read = f.read
	}
	if fs.Changed("favorite") {
		form.Favorite = f.favorite
	}
	if fs.Changed("cover") {
		form.Cover = util.GetPtr(f.cover)
	}
	if fs.Changed("isbn") {
		form.ISBN = util.GetPtr(f.isbn)
	}
}

func addCmd(a *app) *cobra.Command {
	var ff formFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			form := core.NewBookForm(time.Now())
			ff.apply(cmd, &form)
			b, err := a.svc.CreateBook(cmd.Context(), form)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s book %d: %s\n", ui.SuccessStyle.Render("Added"), b.ID, b.Name)
			a.printWarnings(form)
			return nil
		},
	}
	ff.register(cmd)
	return cmd
}

func editCmd(a *app) *cobra.Command {
	var ff formFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a book; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			current, err := a.svc.GetBook(ctx, id)
			if err != nil {
				return err
			}
			form := core.FormFromBook(current)
			ff.apply(cmd, &form)
			b, err := a.svc.UpdateBook(ctx, id, form)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s book %d: %s\n", ui.SuccessStyle.Render("Updated"), b.ID, b.Name)
			a.printWarnings(form)
			return nil
		},
	}
	ff.register(cmd)
	return cmd
}

func rateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rate <id> <0-5>",
		Short: "Set a book's rating",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			rating, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid rating %q", args[1])
			}
			ctx := cmd.Context()
			b, err := a.svc.GetBook(ctx, id)
			if err != nil {
				return err
			}
			if b, err = a.svc.SetRating(ctx, b, rating); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s %s\n", b.Name, ui.StarStyle.Render(ui.Stars(b.Rating)))
			return nil
		},
	}
}

func deleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a book and its notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			b, err := a.svc.GetBook(ctx, id)
			if err != nil {
				return err
			}
			if !yes && !a.confirm(fmt.Sprintf("Delete %q? [y/N] ", b.Name)) {
				fmt.Fprintln(a.out, "Cancelled.")
				return nil
			}
			if err := a.svc.DeleteBook(ctx, id); err != nil {
				return err
			}
			books, err := a.svc.ListBooks(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s %q, %d books left\n", ui.SuccessStyle.Render("Deleted"), b.Name, len(books))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func editionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "editions <id>",
		Short: "Count Open Library editions matching a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			b, err := a.svc.GetBook(ctx, id)
			if err != nil {
				return err
			}
			n, err := a.svc.EditionsCount(ctx, b)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s by %s: %d editions on Open Library\n", b.Name, b.Author, n)
			return nil
		},
	}
}

func (a *app) confirm(prompt string) bool {
	fmt.Fprint(a.out, prompt)
	line, _ := bufio.NewReader(a.in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func (a *app) printWarnings(form core.BookForm) {
	for _, w := range a.svc.Forms.Warnings(form) {
		fmt.Fprintf(a.out, "Warning: %s\n", w.Message)
	}
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid book id %q", s)
	}
	return id, nil
}
