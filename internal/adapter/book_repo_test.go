//go:build unit

package adapter

import (
	"book-tracker/internal/core/model"
	"book-tracker/pkg/util"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGet(t *testing.T) {
	r := NewBookRepo()
	ctx := context.Background()

	created, err := r.Create(ctx, model.BookInput{Name: "T1", Author: "A", ISBN: util.GetPtr("978-0-12-345678-9")})
	require.NoError(t, err)
	assert.Equal(t, 1, created.ID)
	assert.Equal(t, "T1", created.Name)

	got, err := r.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "T1", got.Name)
	require.NotNil(t, got.ISBN)
	assert.Equal(t, "978-0-12-345678-9", *got.ISBN)

	second, err := r.Create(ctx, model.BookInput{Name: "T2"})
	require.NoError(t, err)
	assert.Equal(t, 2, second.ID)
}

func TestReturnedBooksAreCopies(t *testing.T) {
	r := NewBookRepo()
	ctx := context.Background()
	b, err := r.Create(ctx, model.BookInput{Name: "T", Cover: util.GetPtr("https://x/c.jpg")})
	require.NoError(t, err)

	*b.Cover = "changed"
	got, err := r.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://x/c.jpg", *got.Cover)
}

func TestListInIDOrder(t *testing.T) {
	r := NewBookRepo()
	ctx := context.Background()
	for _, name := range []string{"C", "A", "B"} {
		_, err := r.Create(ctx, model.BookInput{Name: name})
		require.NoError(t, err)
	}
	books, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, books, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{books[0].ID, books[1].ID, books[2].ID})

	empty, err := NewBookRepo().List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestUpdateAppliesOnlySetFields(t *testing.T) {
	r := NewBookRepo()
	ctx := context.Background()
	b, err := r.Create(ctx, model.BookInput{Name: "Dune", Author: "Herbert", Rating: 3, Cover: util.GetPtr("https://x/c.jpg")})
	require.NoError(t, err)

	up, err := r.Update(ctx, b.ID, model.BookPatch{Rating: util.GetPtr(5), Read: util.GetPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, 5, up.Rating)
	assert.True(t, up.Read)
	assert.Equal(t, "Dune", up.Name)
	assert.Equal(t, "Herbert", up.Author)
	require.NotNil(t, up.Cover)
	assert.Equal(t, "https://x/c.jpg", *up.Cover)

	_, err = r.Update(ctx, 99, model.BookPatch{})
	assert.ErrorIs(t, err, errNotFound)
}

func TestUpdateClearsCoverAndISBN(t *testing.T) {
	r := NewBookRepo()
	ctx := context.Background()
	b, err := r.Create(ctx, model.BookInput{Name: "Dune", Author: "Herbert", Cover: util.GetPtr("https://x/c.jpg"), ISBN: util.GetPtr("0134494164")})
	require.NoError(t, err)

	up, err := r.Update(ctx, b.ID, model.BookPatch{Cover: util.GetPtr(""), ISBN: util.GetPtr(" ")})
	require.NoError(t, err)
	assert.Nil(t, up.Cover)
	assert.Nil(t, up.ISBN)
}

func TestDeleteCascadesNotes(t *testing.T) {
	r := NewBookRepo()
	ctx := context.Background()
	b, err := r.Create(ctx, model.BookInput{Name: "T"})
	require.NoError(t, err)
	_, err = r.AddNote(ctx, b.ID, "first")
	require.NoError(t, err)

	assert.NoError(t, r.Delete(ctx, b.ID))
	_, err = r.GetByID(ctx, b.ID)
	assert.ErrorIs(t, err, errNotFound)
	_, err = r.ListNotes(ctx, b.ID)
	assert.ErrorIs(t, err, errNotFound)
	assert.ErrorIs(t, r.Delete(ctx, b.ID), errNotFound)
}

func TestNotes(t *testing.T) {
	r := NewBookRepo()
	r.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600)) }
	ctx := context.Background()
	b, err := r.Create(ctx, model.BookInput{Name: "T"})
	require.NoError(t, err)

	n1, err := r.AddNote(ctx, b.ID, "  first  ")
	require.NoError(t, err)
	assert.Equal(t, "first", n1.Content)
	assert.Equal(t, b.ID, n1.BookID)
	assert.Equal(t, "2024-03-01T09:00:00Z", n1.DateISO)

	_, err = r.AddNote(ctx, b.ID, "second")
	require.NoError(t, err)

	notes, err := r.ListNotes(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "first", notes[0].Content)
	assert.Equal(t, "second", notes[1].Content)

	_, err = r.AddNote(ctx, b.ID, "   ")
	assert.ErrorIs(t, err, errInvalid)
	_, err = r.AddNote(ctx, 42, "x")
	assert.ErrorIs(t, err, errNotFound)
}

func TestStats(t *testing.T) {
	r := NewBookRepo()
	ctx := context.Background()

	st, err := r.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Stats{}, st)

	for _, in := range []model.BookInput{
		{Name: "A", Read: true, Rating: 5, Favorite: true},
		{Name: "B", Read: true, Rating: 2},
		{Name: "C", Rating: 2},
	} {
		_, err := r.Create(ctx, in)
		require.NoError(t, err)
	}
	st, err = r.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, st.TotalBooks)
	assert.Equal(t, 2, st.ReadCount)
	assert.Equal(t, 1, st.UnreadCount)
	assert.Equal(t, 1, st.FavoritesCount)
	assert.InDelta(t, 3.0, st.AverageRating, 1e-9)
}
