//go:build unit

package ui

import (
	"book-tracker/internal/core"
	"book-tracker/internal/core/model"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBooks() []model.Book {
	return []model.Book{
		{ID: 1, Name: "Dune", Author: "Frank Herbert", Read: true, Rating: 5, Year: 1965},
		{ID: 2, Name: "Hyperion", Author: "Dan Simmons", Rating: 4, Year: 1989},
		{ID: 3, Name: "Les Misérables", Author: "Victor Hugo", Favorite: true, Rating: 3, Year: 1862},
	}
}

func loaded(t *testing.T, deleted *[]int) Browser {
	t.Helper()
	load := func() tea.Cmd {
		return func() tea.Msg { return BooksLoaded{Books: testBooks()} }
	}
	del := func(id int) tea.Cmd {
		return func() tea.Msg {
			if deleted != nil {
				*deleted = append(*deleted, id)
			}
			return BookDeleted{ID: id}
		}
	}
	b := NewBrowser(core.NewShelf(), load, del)
	m, _ := b.Update(BooksLoaded{Books: testBooks()})
	return m.(Browser)
}

func send(t *testing.T, b Browser, msgs ...tea.Msg) (Browser, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	var m tea.Model = b
	for _, msg := range msgs {
		m, cmd = m.(Browser).Update(msg)
	}
	return m.(Browser), cmd
}

func typeText(s string) tea.Msg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBrowserLoadsBooksSortedByTitle(t *testing.T) {
	b := loaded(t, nil)
	assert.Equal(t, 3, b.shelf.Len())
	assert.Equal(t, "Dune", b.shelf.View()[0].Name)
	assert.Contains(t, b.View(), "Hyperion")
}

func TestBrowserTypingFiltersView(t *testing.T) {
	b := loaded(t, nil)
	b, _ = send(t, b, typeText("mise"))

	require.Equal(t, 1, b.shelf.Len())
	assert.Equal(t, "Les Misérables", b.shelf.View()[0].Name)
	assert.Equal(t, "mise", b.shelf.Query().Query)
}

func TestBrowserTabCyclesFilter(t *testing.T) {
	b := loaded(t, nil)
	b, _ = send(t, b, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, model.FilterRead, b.shelf.Query().Filter)
	assert.Equal(t, 1, b.shelf.Len())

	b, _ = send(t, b, tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, model.FilterAll, b.shelf.Query().Filter)
}

func TestBrowserShiftTabCyclesSort(t *testing.T) {
	b := loaded(t, nil)
	b, _ = send(t, b, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, model.SortAuthor, b.shelf.Query().Sort)
	assert.Equal(t, "Dan Simmons", b.shelf.View()[0].Author)
}

func TestBrowserCursorStaysInBounds(t *testing.T) {
	b := loaded(t, nil)
	b, _ = send(t, b, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, b.Cursor())

	down := tea.KeyMsg{Type: tea.KeyDown}
	b, _ = send(t, b, down, down, down, down)
	assert.Equal(t, 2, b.Cursor())

	b, _ = send(t, b, typeText("dune"))
	assert.Equal(t, 0, b.Cursor())
}

func TestBrowserEnterSelectsAndQuits(t *testing.T) {
	b := loaded(t, nil)
	b, cmd := send(t, b, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})

	book, ok := b.Selected()
	require.True(t, ok)
	assert.Equal(t, "Hyperion", book.Name)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestBrowserDeleteThenReload(t *testing.T) {
	var deleted []int
	b := loaded(t, &deleted)

	b, cmd := send(t, b, tea.KeyMsg{Type: tea.KeyCtrlD})
	assert.Nil(t, cmd, "nothing is deleted before confirmation")
	assert.Contains(t, b.View(), `Delete "Dune" and its notes? y/N`)
	assert.Empty(t, deleted)

	b, cmd = send(t, b, typeText("y"))
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, []int{1}, deleted)

	b, cmd = send(t, b, msg)
	assert.Equal(t, 2, b.shelf.Total())
	assert.True(t, b.loading)
	require.NotNil(t, cmd, "a delete is followed by a reload")
	assert.IsType(t, BooksLoaded{}, cmd())
}

func TestBrowserDeleteDeclined(t *testing.T) {
	var deleted []int
	b := loaded(t, &deleted)

	b, cmd := send(t, b, tea.KeyMsg{Type: tea.KeyCtrlD}, typeText("n"))
	assert.Nil(t, cmd)
	assert.Empty(t, deleted)
	assert.Equal(t, 3, b.shelf.Total())
	assert.Contains(t, b.View(), "Delete cancelled")
	assert.Empty(t, b.shelf.Query().Query, "the answer is not typed into the search")

	b, cmd = send(t, b, tea.KeyMsg{Type: tea.KeyCtrlD}, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Empty(t, deleted)
	_, selected := b.Selected()
	assert.False(t, selected)
}

func TestBrowserLoadErrorKeepsBooks(t *testing.T) {
	b := loaded(t, nil)
	b, _ = send(t, b, BooksLoaded{Err: errors.New("boom")})

	assert.EqualError(t, b.Err(), "boom")
	assert.Equal(t, 3, b.shelf.Total())
	assert.Contains(t, b.View(), "Error: boom")
}

func TestBrowserWindowLimitsRows(t *testing.T) {
	b := loaded(t, nil)
	b, _ = send(t, b, tea.WindowSizeMsg{Width: 120, Height: chromeLines + 1})
	down := tea.KeyMsg{Type: tea.KeyDown}
	b, _ = send(t, b, down, down)

	v := b.View()
	assert.Contains(t, v, "Les Misérables")
	assert.NotContains(t, v, "Hyperion")
}
