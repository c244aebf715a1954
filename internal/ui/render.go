package ui

import (
	"book-tracker/internal/core/model"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const (
	maxRating = 5
	barWidth  = 30
)

// Stars renders a rating out of five.
func Stars(rating int) string {
	rating = max(0, min(rating, maxRating))
	return strings.Repeat("★", rating) + strings.Repeat("☆", maxRating-rating)
}

// BookTable renders books as a table; selected < 0 highlights nothing.
func BookTable(books []model.Book, selected int) string {
	if len(books) == 0 {
		return StatusBarText.Render("No books match.")
	}

	rows := make([][]string, 0, len(books))
	for _, b := range books {
		fav := ""
		if b.Favorite {
			fav = FavoriteMark.Render("♥")
		}
		read := ""
		if b.Read {
			read = "✓"
		}
		rows = append(rows, []string{
			strconv.Itoa(b.ID),
			b.Name,
			b.Author,
			b.Theme,
			yearCell(b.Year),
			StarStyle.Render(Stars(b.Rating)),
			read,
			fav,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorMuted)).
		Headers("ID", "TITLE", "AUTHOR", "THEME", "YEAR", "RATING", "READ", "FAV").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return HeaderCell
			case row == selected:
				return SelectedRow
			case row >= 0 && row < len(books) && books[row].Read:
				return ReadCell
			}
			return Cell
		})
	return t.String()
}

func yearCell(y int) string {
	if y == 0 {
		return ""
	}
	return strconv.Itoa(y)
}

// CoverView is a resolved cover and whether it could be displayed.
type CoverView struct {
	Source    string
	Available bool
}

// BookDetail renders one book with its cover line and notes.
func BookDetail(b model.Book, cover CoverView, notes []model.Note) string {
	var sb strings.Builder
	sb.WriteString(TitleStyle.Render(b.Name))
	sb.WriteString("\n")

	field := func(label, value string) {
		if value == "" {
			return
		}
		sb.WriteString(LabelStyle.Render(label) + value + "\n")
	}
	field("Author", b.Author)
	field("Editor", b.Editor)
	field("Theme", b.Theme)
	field("Year", yearCell(b.Year))
	field("Rating", StarStyle.Render(Stars(b.Rating)))
	field("Status", readStatus(b))
	if b.ISBN != nil {
		field("ISBN", *b.ISBN)
	}

	sb.WriteString("\n")
	if cover.Available && cover.Source != "" {
		field("Cover", cover.Source)
	} else {
		sb.WriteString(PlaceholderStyle.Render("📖 no cover"))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(NotesList(notes))
	return sb.String()
}

func readStatus(b model.Book) string {
	s := "unread"
	if b.Read {
		s = "read"
	}
	if b.Favorite {
		s += ", " + FavoriteMark.Render("♥ favorite")
	}
	return s
}

// NotesList renders notes oldest first, as the server returns them.
func NotesList(notes []model.Note) string {
	if len(notes) == 0 {
		return StatusBarText.Render("No notes yet.")
	}
	var sb strings.Builder
	sb.WriteString(HeaderCell.UnsetPadding().Render(fmt.Sprintf("Notes (%d)", len(notes))))
	sb.WriteString("\n")
	for _, n := range notes {
		sb.WriteString(NoteDate.Render(noteDate(n)))
		sb.WriteString("  ")
		sb.WriteString(n.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}

func noteDate(n model.Note) string {
	t, err := n.CreatedAt()
	if err != nil {
		return n.DateISO
	}
	return t.Local().Format(time.DateTime)
}

// StatsView renders the totals as cards followed by proportion bars.
func StatsView(st model.Stats) string {
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Total", strconv.Itoa(st.TotalBooks), colorPrimary),
		card("Read", strconv.Itoa(st.ReadCount), colorSuccess),
		card("Unread", strconv.Itoa(st.UnreadCount), colorWarning),
		card("Favorites", strconv.Itoa(st.FavoritesCount), colorDanger),
		card("Avg rating", fmt.Sprintf("%.1f", st.AverageRating), colorHighlight),
	)

	bars := strings.Join([]string{
		barLine("Read", st.ReadCount, st.TotalBooks, colorSuccess),
		barLine("Unread", st.UnreadCount, st.TotalBooks, colorWarning),
		barLine("Favorites", st.FavoritesCount, st.TotalBooks, colorDanger),
		barLine("Rating", int(st.AverageRating*100), maxRating*100, colorHighlight),
	}, "\n")

	return TitleStyle.Render("Library statistics") + "\n" + cards + "\n\n" + bars + "\n"
}

func card(label, value string, color lipgloss.Color) string {
	v := lipgloss.NewStyle().Bold(true).Foreground(color).Render(value)
	return Card.BorderForeground(color).Render(v + "\n" + StatusBarText.Render(label))
}

func barLine(label string, part, total int, color lipgloss.Color) string {
	pct := Percent(part, total)
	filled := barWidth * pct / 100
	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		NoteDate.Render(strings.Repeat("░", barWidth-filled))
	return fmt.Sprintf("%s %s %3d%%", LabelStyle.Render(label), bar, pct)
}

// Percent is part/total as a whole percentage in [0,100]; 0 when total is 0.
func Percent(part, total int) int {
	if total <= 0 || part <= 0 {
		return 0
	}
	return min(100, part*100/total)
}

// FieldErrors renders a validation failure one field per line.
func FieldErrors(err *model.ValidationError) string {
	var sb strings.Builder
	sb.WriteString(ErrorStyle.Render("Please fix the following:"))
	for _, fe := range err.Fields {
		sb.WriteString("\n  - " + fe.Message)
	}
	return sb.String()
}
