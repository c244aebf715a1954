package ui

import (
	"book-tracker/internal/core"
	"book-tracker/internal/core/model"
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Lines taken by everything but table rows: query, view line, status bar,
// error line and the table borders and header.
const chromeLines = 8

// Browser is the live-search Bubble Tea model. The view is recomputed
// through the shelf on every keystroke.
type Browser struct {
	shelf      *core.Shelf
	input      textinput.Model
	loadBooks  func() tea.Cmd
	deleteBook func(id int) tea.Cmd

	cursor   int
	offset   int
	selected *model.Book
	pending  *model.Book // awaiting delete confirmation
	err      error
	status   string
	width    int
	height   int
	loading  bool
}

// NewBrowser creates a Browser. loadBooks fetches the full list;
// deleteBook removes one book and reports with BookDeleted.
func NewBrowser(shelf *core.Shelf, loadBooks func() tea.Cmd, deleteBook func(id int) tea.Cmd) Browser {
	ti := textinput.New()
	ti.Prompt = SearchPrompt.Render("/ ")
	ti.Placeholder = "title or author"
	ti.Focus()
	ti.SetValue(shelf.Query().Query)

	return Browser{
		shelf:      shelf,
		input:      ti,
		loadBooks:  loadBooks,
		deleteBook: deleteBook,
	}
}

func (b Browser) Init() tea.Cmd {
	if b.loadBooks == nil {
		return textinput.Blink
	}
	return tea.Batch(textinput.Blink, b.loadBooks())
}

func (b Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return b.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		b.clamp()
		return b, nil

	case BooksLoaded:
		b.loading = false
		if msg.Err != nil {
			// previous content stays on screen
			b.err = msg.Err
			return b, nil
		}
		b.err = nil
		b.shelf.SetBooks(msg.Books)
		b.clamp()
		return b, nil

	case BookDeleted:
		if msg.Err != nil {
			b.err = msg.Err
			return b, nil
		}
		b.shelf.Remove(msg.ID)
		b.status = fmt.Sprintf("Deleted book %d", msg.ID)
		b.clamp()
		cmd := b.reload()
		return b, cmd
	}

	var cmd tea.Cmd
	b.input, cmd = b.input.Update(msg)
	return b, cmd
}

func (b Browser) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	b.err = nil
	b.status = ""

	if b.pending != nil {
		return b.confirmDelete(msg)
	}

	switch msg.String() {
	case "ctrl+c", "esc":
		return b, tea.Quit

	case "up", "ctrl+p":
		if b.cursor > 0 {
			b.cursor--
		}
		b.clamp()
		return b, nil

	case "down", "ctrl+n":
		if b.cursor < b.shelf.Len()-1 {
			b.cursor++
		}
		b.clamp()
		return b, nil

	case "tab":
		b.shelf.SetFilter(next(model.Filters, b.shelf.Query().Filter))
		b.clamp()
		return b, nil

	case "shift+tab":
		b.shelf.SetSort(next(model.SortKeys, b.shelf.Query().Sort))
		b.clamp()
		return b, nil

	case "enter":
		if book, ok := b.current(); ok {
			b.selected = &book
			return b, tea.Quit
		}
		return b, nil

	case "ctrl+d":
		if book, ok := b.current(); ok && b.deleteBook != nil {
			b.pending = &book
		}
		return b, nil

	case "ctrl+r":
		cmd := b.reload()
		return b, cmd
	}

	var cmd tea.Cmd
	before := b.input.Value()
	b.input, cmd = b.input.Update(msg)
	if v := b.input.Value(); v != before {
		b.shelf.SetQuery(v)
		b.cursor = 0
		b.clamp()
	}
	return b, cmd
}

// confirmDelete answers the pending delete prompt. Only y deletes.
func (b Browser) confirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	book := *b.pending
	b.pending = nil

	switch msg.String() {
	case "ctrl+c":
		return b, tea.Quit
	case "y", "Y":
		return b, b.deleteBook(book.ID)
	}
	b.status = "Delete cancelled"
	return b, nil
}

func (b *Browser) reload() tea.Cmd {
	if b.loadBooks == nil {
		return nil
	}
	b.loading = true
	return b.loadBooks()
}

func (b Browser) current() (model.Book, bool) {
	view := b.shelf.View()
	if b.cursor < 0 || b.cursor >= len(view) {
		return model.Book{}, false
	}
	return view[b.cursor], true
}

// clamp keeps the cursor inside the view and the window around the cursor.
func (b *Browser) clamp() {
	n := b.shelf.Len()
	b.cursor = max(0, min(b.cursor, n-1))

	rows := b.visibleRows()
	if rows <= 0 {
		b.offset = 0
		return
	}
	if b.cursor < b.offset {
		b.offset = b.cursor
	}
	if b.cursor >= b.offset+rows {
		b.offset = b.cursor - rows + 1
	}
	b.offset = max(0, min(b.offset, n-rows))
}

// visibleRows is 0 when the terminal size is unknown, meaning no limit.
func (b Browser) visibleRows() int {
	if b.height == 0 {
		return 0
	}
	return max(1, b.height-chromeLines)
}

func (b Browser) View() string {
	view := b.shelf.View()
	rows := view
	if n := b.visibleRows(); n > 0 && len(view) > n {
		rows = view[b.offset:min(b.offset+n, len(view))]
	}

	q := b.shelf.Query()
	viewLine := fmt.Sprintf("filter: %s  sort: %s  %d/%d books", q.Filter, q.Sort, len(view), b.shelf.Total())
	if b.loading {
		viewLine += "  loading..."
	}

	parts := []string{
		b.input.View(),
		StatusBarText.Render(viewLine),
		BookTable(rows, b.cursor-b.offset),
	}
	if b.pending != nil {
		parts = append(parts, ErrorStyle.Render(fmt.Sprintf("Delete %q and its notes? y/N", b.pending.Name)))
	} else if b.err != nil {
		parts = append(parts, ErrorStyle.Render("Error: "+b.err.Error()))
	} else if b.status != "" {
		parts = append(parts, SuccessStyle.Render(b.status))
	}
	parts = append(parts, b.statusBar())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (b Browser) statusBar() string {
	hint := func(key, text string) string {
		return StatusBarKey.Render(key) + " " + StatusBarText.Render(text)
	}
	bar := hint("↑/↓", "move") + "  " +
		hint("tab", "filter") + "  " +
		hint("shift+tab", "sort") + "  " +
		hint("enter", "open") + "  " +
		hint("ctrl+d", "delete") + "  " +
		hint("ctrl+r", "reload") + "  " +
		hint("esc", "quit")
	if b.width > 0 {
		return StatusBar.Width(b.width).Render(bar)
	}
	return StatusBar.Render(bar)
}

// Selected returns the book chosen with enter, if any.
func (b Browser) Selected() (model.Book, bool) {
	if b.selected == nil {
		return model.Book{}, false
	}
	return *b.selected, true
}

// Cursor returns the current cursor position (for testing).
func (b Browser) Cursor() int {
	return b.cursor
}

// Err returns the error currently shown, if any.
func (b Browser) Err() error {
	return b.err
}

func next[T comparable](all []T, cur T) T {
	i := slices.Index(all, cur)
	return all[(i+1)%len(all)]
}
