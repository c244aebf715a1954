package core

import (
	"book-tracker/internal/core/model"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const minYear = 1000

// BookForm is what the user submits to create or edit a book.
type BookForm struct {
	Name     string  `json:"name" validate:"required"`
	Author   string  `json:"author" validate:"required"`
	Editor   string  `json:"editor"`
	Theme    string  `json:"theme"`
	Year     int     `json:"year" validate:"pubyear"`
	Rating   int     `json:"rating" validate:"gte=0,lte=5"`
	Read     bool    `json:"read"`
	Favorite bool    `json:"favorite"`
	Cover    *string `json:"cover"`
	ISBN     *string `json:"isbn"`
}

// NewBookForm returns the blank creation form: current year, no rating.
func NewBookForm(now time.Time) BookForm {
	return BookForm{Year: now.Year()}
}

// FormFromBook pre-fills an edit form.
func FormFromBook(b model.Book) BookForm {
	return BookForm{
		Name:     b.Name,
		Author:   b.Author,
		Editor:   b.Editor,
		Theme:    b.Theme,
		Year:     b.Year,
		Rating:   b.Rating,
		Read:     b.Read,
		Favorite: b.Favorite,
		Cover:    b.Cover,
		ISBN:     b.ISBN,
	}
}

// Input converts a validated form into the creation payload.
func (f BookForm) Input() model.BookInput {
	f = f.trimmed()
	return model.BookInput{
		Name:     f.Name,
		Author:   f.Author,
		Editor:   f.Editor,
		Year:     f.Year,
		Read:     f.Read,
		Favorite: f.Favorite,
		Rating:   f.Rating,
		Cover:    f.Cover,
		Theme:    f.Theme,
		ISBN:     f.ISBN,
	}
}

func (f BookForm) trimmed() BookForm {
	f.Name = strings.TrimSpace(f.Name)
	f.Author = strings.TrimSpace(f.Author)
	f.Editor = strings.TrimSpace(f.Editor)
	f.Theme = strings.TrimSpace(f.Theme)
	f.Cover = trimOptional(f.Cover)
	f.ISBN = trimOptional(f.ISBN)
	return f
}

func trimOptional(p *string) *string {
	if p == nil {
		return nil
	}
	s := strings.TrimSpace(*p)
	if s == "" {
		return nil
	}
	return &s
}

// FormValidator checks forms before anything is sent to the server.
type FormValidator struct {
	validate *validator.Validate
	now      func() time.Time
}

// NewFormValidator builds a validator; now defaults to time.Now.
func NewFormValidator(now func() time.Time) *FormValidator {
	if now == nil {
		now = time.Now
	}
	fv := &FormValidator{validate: validator.New(), now: now}

	fv.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// registration only fails for an empty tag or nil func
	_ = fv.validate.RegisterValidation("pubyear", fv.validateYear)
	_ = fv.validate.RegisterValidation("isbn", validateISBN)
	return fv
}

func (fv *FormValidator) maxYear() int {
	return fv.now().Year() + 10
}

func (fv *FormValidator) validateYear(fl validator.FieldLevel) bool {
	y := int(fl.Field().Int())
	return y >= minYear && y <= fv.maxYear()
}

var (
	isbn10Re = regexp.MustCompile(`^\d{9}[\dXx]$`)
	isbn13Re = regexp.MustCompile(`^\d{13}$`)
)

func validateISBN(fl validator.FieldLevel) bool {
	isbn := CleanISBN(fl.Field().String())
	switch len(isbn) {
	case 10:
		return isbn10Re.MatchString(isbn)
	case 13:
		return isbn13Re.MatchString(isbn)
	}
	return false
}

// Validate returns nil or a *model.ValidationError naming every bad field.
func (fv *FormValidator) Validate(f BookForm) error {
	err := fv.validate.Struct(f.trimmed())
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate form: %w", err)
	}

	out := &model.ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, model.FieldError{
			Field:   fe.Field(),
			Message: fv.message(fe),
		})
	}
	return out
}

// Warnings lists fields that look wrong but do not block submission.
// A malformed ISBN only costs the book its generated cover.
func (fv *FormValidator) Warnings(f BookForm) []model.FieldError {
	f = f.trimmed()
	if f.ISBN == nil {
		return nil
	}
	if err := fv.validate.Var(*f.ISBN, "isbn"); err != nil {
		return []model.FieldError{{Field: "isbn", Message: "isbn does not look like a 10 or 13 digit ISBN"}}
	}
	return nil
}

func (fv *FormValidator) message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "pubyear":
		return fmt.Sprintf("year must be between %d and %d", minYear, fv.maxYear())
	case "gte", "lte":
		return fmt.Sprintf("%s must be between 0 and 5", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// ValidateNote trims a note and rejects it when nothing is left.
func ValidateNote(content string) (string, error) {
	c := strings.TrimSpace(content)
	if c == "" {
		return "", &model.ValidationError{Fields: []model.FieldError{
			{Field: "content", Message: "content is required"},
		}}
	}
	return c, nil
}
