// Package ui renders the library in the terminal: static views for the
// one-shot commands and the Bubble Tea browser.
package ui

import "book-tracker/internal/core/model"

// BooksLoaded is sent when the book list has been fetched.
type BooksLoaded struct {
	Books []model.Book
	Err   error
}

// BookDeleted is sent when a delete request finishes.
type BookDeleted struct {
	ID  int
	Err error
}
