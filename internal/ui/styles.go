package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("33")  // Blue
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorSuccess   = lipgloss.Color("78")  // Green
	colorWarning   = lipgloss.Color("214") // Orange
	colorDanger    = lipgloss.Color("203") // Red
)

// TitleStyle for screen headings.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight).
	MarginBottom(1)

// HeaderCell style for table headers.
var HeaderCell = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorPrimary).
	Padding(0, 1)

// Cell style for regular table cells.
var Cell = lipgloss.NewStyle().Padding(0, 1)

// SelectedRow style for the highlighted table row.
var SelectedRow = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// ReadCell dims books already read.
var ReadCell = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Padding(0, 1)

var FavoriteMark = lipgloss.NewStyle().Foreground(colorDanger)

var StarStyle = lipgloss.NewStyle().Foreground(colorWarning)

// LabelStyle for field labels in detail views.
var LabelStyle = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Width(10)

// PlaceholderStyle for the missing-cover glyph.
var PlaceholderStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorMuted).
	Padding(1, 3)

// Card style for stats cards.
var Card = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	Padding(0, 2).
	MarginRight(1).
	Align(lipgloss.Center)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

var StatusBarText = lipgloss.NewStyle().Foreground(colorSecondary)

// ErrorStyle for displaying errors.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("196")).
	Bold(true)

// SuccessStyle for confirmations.
var SuccessStyle = lipgloss.NewStyle().Foreground(colorSuccess)

// NoteDate style for note timestamps.
var NoteDate = lipgloss.NewStyle().Foreground(colorMuted)

// SearchPrompt style for the query prompt.
var SearchPrompt = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)
