//go:build unit

package core

import (
	"book-tracker/internal/core/model"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const photoRef = "file:///data/user/0/photos/IMG_0001.jpg"

type fakePermissions struct {
	required bool
	granted  bool
	err      error
	asked    int
}

func (p *fakePermissions) Required(CaptureSource) bool { return p.required }

func (p *fakePermissions) Request(context.Context, CaptureSource) (bool, error) {
	p.asked++
	return p.granted, p.err
}

type fakeSource struct {
	ref   string
	err   error
	calls int
	// block, when set, is waited on before returning
	block chan struct{}
}

func (s *fakeSource) Acquire(context.Context, CaptureSource) (string, error) {
	s.calls++
	if s.block != nil {
		<-s.block
	}
	return s.ref, s.err
}

type fakeUploader struct {
	res   model.UploadResult
	err   error
	calls int
}

func (u *fakeUploader) UploadImage(_ context.Context, ref string) (model.UploadResult, error) {
	u.calls++
	return u.res, u.err
}

type fakePrompter struct {
	accept   bool
	notified []string
	asked    int
	cause    error
}

func (p *fakePrompter) Notify(title, _ string) { p.notified = append(p.notified, title) }

func (p *fakePrompter) ConfirmFallback(_ context.Context, _ string, cause error) bool {
	p.asked++
	p.cause = cause
	return p.accept
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func truePtr() *bool {
	b := true
	return &b
}

func TestCaptureUploadSuccess(t *testing.T) {
	up := &fakeUploader{res: model.UploadResult{URL: "https://api/uploads/a.jpg", Success: truePtr()}}
	prompter := &fakePrompter{}
	c := NewCoverCapture(&fakePermissions{}, &fakeSource{ref: photoRef}, up, prompter, quietLogger())

	f, err := c.Run(context.Background(), SourceGallery)
	require.NoError(t, err)
	assert.Equal(t, CaptureIdle, f.State)
	assert.Equal(t, OutcomeRemote, f.Outcome)
	cover, set := f.Cover()
	assert.True(t, set)
	assert.Equal(t, "https://api/uploads/a.jpg", cover)
	assert.Zero(t, prompter.asked)
}

func TestCaptureUploadFailureLocalFallback(t *testing.T) {
	up := &fakeUploader{err: errors.New("status 500")}
	prompter := &fakePrompter{accept: true}
	c := NewCoverCapture(&fakePermissions{}, &fakeSource{ref: photoRef}, up, prompter, quietLogger())

	f, err := c.Run(context.Background(), SourceCamera)
	require.NoError(t, err, "a local fallback is not an error")
	assert.Equal(t, CaptureIdle, f.State)
	assert.Equal(t, OutcomeLocalFallback, f.Outcome)
	assert.Nil(t, f.Err)
	cover, set := f.Cover()
	assert.True(t, set)
	assert.Equal(t, photoRef, cover)
	assert.EqualError(t, prompter.cause, "status 500")
}

func TestCaptureUploadFailureAbandoned(t *testing.T) {
	up := &fakeUploader{res: model.UploadResult{Error: "disk full", Success: new(bool)}}
	prompter := &fakePrompter{accept: false}
	c := NewCoverCapture(&fakePermissions{}, &fakeSource{ref: photoRef}, up, prompter, quietLogger())

	f, err := c.Run(context.Background(), SourceGallery)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAbandoned, f.Outcome)
	_, set := f.Cover()
	assert.False(t, set)
	assert.EqualError(t, f.UploadErr, "disk full")
}

func TestCaptureUploadWithoutURLFallsBack(t *testing.T) {
	up := &fakeUploader{res: model.UploadResult{}}
	prompter := &fakePrompter{accept: true}
	c := NewCoverCapture(&fakePermissions{}, &fakeSource{ref: photoRef}, up, prompter, quietLogger())

	f, err := c.Run(context.Background(), SourceGallery)
	require.NoError(t, err)
	assert.Equal(t, 1, prompter.asked)
	assert.Equal(t, OutcomeLocalFallback, f.Outcome)
}

func TestCapturePermissionDenied(t *testing.T) {
	perms := &fakePermissions{required: true, granted: false}
	src := &fakeSource{ref: photoRef}
	up := &fakeUploader{}
	prompter := &fakePrompter{}
	c := NewCoverCapture(perms, src, up, prompter, quietLogger())

	f, err := c.Run(context.Background(), SourceCamera)
	require.ErrorIs(t, err, model.ErrPermissionDenied)
	assert.Equal(t, OutcomeDenied, f.Outcome)
	assert.Equal(t, CaptureIdle, f.State)
	assert.Equal(t, []string{"Permission denied"}, prompter.notified)
	assert.Zero(t, src.calls)
	assert.Zero(t, up.calls)
}

func TestCapturePermissionRequestError(t *testing.T) {
	perms := &fakePermissions{required: true, granted: true, err: errors.New("no activity")}
	c := NewCoverCapture(perms, &fakeSource{ref: photoRef}, &fakeUploader{}, &fakePrompter{}, quietLogger())

	f, err := c.Run(context.Background(), SourceGallery)
	assert.ErrorIs(t, err, model.ErrPermissionDenied)
	assert.Equal(t, OutcomeDenied, f.Outcome)
}

func TestCapturePermissionGranted(t *testing.T) {
	perms := &fakePermissions{required: true, granted: true}
	up := &fakeUploader{res: model.UploadResult{URL: "https://api/u.jpg"}}
	c := NewCoverCapture(perms, &fakeSource{ref: photoRef}, up, &fakePrompter{}, quietLogger())

	f, err := c.Run(context.Background(), SourceCamera)
	require.NoError(t, err)
	assert.Equal(t, 1, perms.asked)
	assert.Equal(t, OutcomeRemote, f.Outcome)
}

func TestCaptureCancelled(t *testing.T) {
	up := &fakeUploader{}
	prompter := &fakePrompter{}
	c := NewCoverCapture(&fakePermissions{}, &fakeSource{}, up, prompter, quietLogger())

	f, err := c.Run(context.Background(), SourceGallery)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCancelled, f.Outcome)
	assert.Zero(t, up.calls)
	assert.Empty(t, prompter.notified)
}

func TestCaptureAcquireFailure(t *testing.T) {
	up := &fakeUploader{}
	prompter := &fakePrompter{}
	c := NewCoverCapture(&fakePermissions{}, &fakeSource{err: errors.New("camera busy")}, up, prompter, quietLogger())

	f, err := c.Run(context.Background(), SourceCamera)
	assert.EqualError(t, err, "camera busy")
	assert.Equal(t, OutcomeFailed, f.Outcome)
	assert.Equal(t, []string{"Error"}, prompter.notified)
	assert.Zero(t, up.calls)
}

func TestCaptureRejectsOverlappingRuns(t *testing.T) {
	src := &fakeSource{ref: photoRef, block: make(chan struct{})}
	up := &fakeUploader{res: model.UploadResult{URL: "https://api/u.jpg"}}
	c := NewCoverCapture(&fakePermissions{}, src, up, &fakePrompter{}, quietLogger())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := c.Run(context.Background(), SourceGallery)
		assert.NoError(t, err)
	}()

	require.Eventually(t, func() bool { return c.busy.Load() }, time.Second, time.Millisecond)
	_, err := c.Run(context.Background(), SourceGallery)
	assert.ErrorIs(t, err, model.ErrCaptureBusy)

	close(src.block)
	wg.Wait()

	_, err = c.Run(context.Background(), SourceGallery)
	assert.NoError(t, err, "the guard is released after a run")
}

func TestCaptureFlowIllegalTransitions(t *testing.T) {
	idle := CaptureFlow{}

	_, err := idle.PermissionResolved(true)
	assert.ErrorIs(t, err, model.ErrIllegalTransition)
	_, err = idle.Acquired(photoRef, nil)
	assert.ErrorIs(t, err, model.ErrIllegalTransition)
	_, err = idle.Uploaded("https://x", nil)
	assert.ErrorIs(t, err, model.ErrIllegalTransition)
	_, err = idle.ChooseFallback(true)
	assert.ErrorIs(t, err, model.ErrIllegalTransition)

	acquiring, err := idle.Start(SourceGallery, false)
	require.NoError(t, err)
	assert.Equal(t, CaptureAcquiring, acquiring.State)
	same, err := acquiring.Start(SourceGallery, false)
	assert.ErrorIs(t, err, model.ErrIllegalTransition)
	assert.Equal(t, acquiring, same, "an illegal transition leaves the flow unchanged")
}

func TestCaptureFlowTransitions(t *testing.T) {
	f, err := CaptureFlow{}.Start(SourceCamera, true)
	require.NoError(t, err)
	assert.Equal(t, CaptureRequestingPermission, f.State)

	f, err = f.PermissionResolved(true)
	require.NoError(t, err)
	assert.Equal(t, CaptureAcquiring, f.State)

	f, err = f.Acquired(photoRef, nil)
	require.NoError(t, err)
	assert.Equal(t, CaptureUploading, f.State)
	assert.Equal(t, photoRef, f.LocalRef)

	f, err = f.Uploaded("", errors.New("timeout"))
	require.NoError(t, err)
	assert.Equal(t, CaptureAwaitingFallback, f.State)

	f, err = f.ChooseFallback(true)
	require.NoError(t, err)
	assert.Equal(t, CaptureIdle, f.State)
	assert.Equal(t, OutcomeLocalFallback, f.Outcome)
	assert.Equal(t, "local_fallback", f.Outcome.String())
	assert.Equal(t, "awaiting_fallback", CaptureAwaitingFallback.String())
}
