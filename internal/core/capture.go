package core

import (
	"book-tracker/internal/core/model"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
)

type CaptureState int

const (
	CaptureIdle CaptureState = iota
	CaptureRequestingPermission
	CaptureAcquiring
	CaptureUploading
	CaptureAwaitingFallback
)

func (s CaptureState) String() string {
	switch s {
	case CaptureIdle:
		return "idle"
	case CaptureRequestingPermission:
		return "requesting_permission"
	case CaptureAcquiring:
		return "acquiring"
	case CaptureUploading:
		return "uploading"
	case CaptureAwaitingFallback:
		return "awaiting_fallback"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// CaptureSource is where the image comes from.
type CaptureSource int

const (
	SourceGallery CaptureSource = iota
	SourceCamera
)

func (s CaptureSource) String() string {
	if s == SourceCamera {
		return "camera"
	}
	return "gallery"
}

// CaptureOutcome is how a finished invocation ended.
type CaptureOutcome int

const (
	OutcomeNone CaptureOutcome = iota
	OutcomeRemote
	OutcomeLocalFallback
	OutcomeDenied
	OutcomeCancelled
	OutcomeAbandoned
	OutcomeFailed
)

func (o CaptureOutcome) String() string {
	switch o {
	case OutcomeRemote:
		return "remote"
	case OutcomeLocalFallback:
		return "local_fallback"
	case OutcomeDenied:
		return "denied"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeAbandoned:
		return "abandoned"
	case OutcomeFailed:
		return "failed"
	}
	return "none"
}

// CaptureFlow is the state of one capture-then-upload invocation.
// Transitions return a new value; an illegal transition returns the
// receiver unchanged with an error wrapping model.ErrIllegalTransition.
type CaptureFlow struct {
	State     CaptureState
	Source    CaptureSource
	LocalRef  string
	RemoteURL string
	Outcome   CaptureOutcome
	// Err is the terminal error of the invocation (denial, acquisition failure).
	Err error
	// UploadErr is the failure that led to the fallback choice.
	UploadErr error
}

// Cover returns the cover value chosen by a finished flow.
func (f CaptureFlow) Cover() (string, bool) {
	switch f.Outcome {
	case OutcomeRemote:
		return f.RemoteURL, true
	case OutcomeLocalFallback:
		return f.LocalRef, true
	}
	return "", false
}

func (f CaptureFlow) illegal(op string) (CaptureFlow, error) {
	return f, fmt.Errorf("%w: %s from %s", model.ErrIllegalTransition, op, f.State)
}

// Start begins an invocation. The permission step is skipped when the
// platform does not gate the source.
func (f CaptureFlow) Start(src CaptureSource, needPermission bool) (CaptureFlow, error) {
	if f.State != CaptureIdle {
		return f.illegal("start")
	}
	next := CaptureFlow{Source: src, State: CaptureAcquiring}
	if needPermission {
		next.State = CaptureRequestingPermission
	}
	return next, nil
}

func (f CaptureFlow) PermissionResolved(granted bool) (CaptureFlow, error) {
	if f.State != CaptureRequestingPermission {
		return f.illegal("permission")
	}
	if !granted {
		f.State = CaptureIdle
		f.Outcome = OutcomeDenied
		f.Err = fmt.Errorf("%s access: %w", f.Source, model.ErrPermissionDenied)
		return f, nil
	}
	f.State = CaptureAcquiring
	return f, nil
}

// Acquired records the capture/pick result. An empty ref with a nil error
// means the user cancelled.
func (f CaptureFlow) Acquired(ref string, err error) (CaptureFlow, error) {
	if f.State != CaptureAcquiring {
		return f.illegal("acquire")
	}
	switch {
	case err != nil:
		f.State = CaptureIdle
		f.Outcome = OutcomeFailed
		f.Err = err
	case ref == "":
		f.State = CaptureIdle
		f.Outcome = OutcomeCancelled
	default:
		f.State = CaptureUploading
		f.LocalRef = ref
	}
	return f, nil
}

// Uploaded records the upload result. Failure moves to the fallback choice.
func (f CaptureFlow) Uploaded(url string, err error) (CaptureFlow, error) {
	if f.State != CaptureUploading {
		return f.illegal("upload")
	}
	if err == nil && url == "" {
		err = errors.New("upload response has no url")
	}
	if err != nil {
		f.State = CaptureAwaitingFallback
		f.UploadErr = err
		return f, nil
	}
	f.State = CaptureIdle
	f.Outcome = OutcomeRemote
	f.RemoteURL = url
	return f, nil
}

// ChooseFallback applies the user's answer after a failed upload: keep the
// local reference as the cover, or leave the cover unset.
func (f CaptureFlow) ChooseFallback(acceptLocal bool) (CaptureFlow, error) {
	if f.State != CaptureAwaitingFallback {
		return f.illegal("fallback")
	}
	f.State = CaptureIdle
	if acceptLocal {
		f.Outcome = OutcomeLocalFallback
	} else {
		f.Outcome = OutcomeAbandoned
	}
	return f, nil
}

type Permissions interface {
	Required(src CaptureSource) bool
	Request(ctx context.Context, src CaptureSource) (bool, error)
}

type ImageSource interface {
	// Acquire returns a device-local reference, or "" when the user cancelled.
	Acquire(ctx context.Context, src CaptureSource) (string, error)
}

type Uploader interface {
	UploadImage(ctx context.Context, localRef string) (model.UploadResult, error)
}

// Prompter is the user-facing side of the flow.
type Prompter interface {
	Notify(title, message string)
	ConfirmFallback(ctx context.Context, localRef string, cause error) bool
}

// CoverCapture runs capture flows. At most one runs at a time.
type CoverCapture struct {
	Permissions Permissions
	Source      ImageSource
	Uploader    Uploader
	Prompter    Prompter
	log         *slog.Logger
	busy        atomic.Bool
}

func NewCoverCapture(perms Permissions, src ImageSource, up Uploader, prompter Prompter, logger *slog.Logger) *CoverCapture {
	if logger == nil {
		logger = slog.Default()
	}
	return &CoverCapture{Permissions: perms, Source: src, Uploader: up, Prompter: prompter, log: logger}
}

// Run drives one invocation to a final Idle state. The returned error is
// non-nil for denial, acquisition failure or a concurrent invocation.
func (c *CoverCapture) Run(ctx context.Context, src CaptureSource) (CaptureFlow, error) {
	if !c.busy.CompareAndSwap(false, true) {
		return CaptureFlow{}, model.ErrCaptureBusy
	}
	defer c.busy.Store(false)

	f, err := CaptureFlow{}.Start(src, c.Permissions.Required(src))
	if err != nil {
		return f, err
	}

	if f.State == CaptureRequestingPermission {
		granted, perr := c.Permissions.Request(ctx, src)
		if perr != nil {
			c.log.Warn("permission request failed", "source", src.String(), "error", perr)
		}
		if f, err = f.PermissionResolved(granted && perr == nil); err != nil {
			return f, err
		}
		if f.Outcome == OutcomeDenied {
			c.Prompter.Notify("Permission denied", permissionMessage(src))
			return f, f.Err
		}
	}

	ref, aerr := c.Source.Acquire(ctx, src)
	if f, err = f.Acquired(ref, aerr); err != nil {
		return f, err
	}
	switch f.Outcome {
	case OutcomeCancelled:
		return f, nil
	case OutcomeFailed:
		c.log.Error("image acquisition failed", "source", src.String(), "error", f.Err)
		c.Prompter.Notify("Error", fmt.Sprintf("Could not get the image from the %s.", src))
		return f, f.Err
	}

	url, uerr := uploadedURL(c.Uploader.UploadImage(ctx, f.LocalRef))
	if f, err = f.Uploaded(url, uerr); err != nil {
		return f, err
	}
	if f.Outcome == OutcomeRemote {
		c.log.Info("cover uploaded", "url", f.RemoteURL)
		return f, nil
	}

	c.log.Error("cover upload failed", "local_ref", f.LocalRef, "error", f.UploadErr)
	accept := c.Prompter.ConfirmFallback(ctx, f.LocalRef, f.UploadErr)
	f, err = f.ChooseFallback(accept)
	if err != nil {
		return f, err
	}
	c.log.Info("cover fallback chosen", "outcome", f.Outcome.String())
	return f, nil
}

func uploadedURL(res model.UploadResult, err error) (string, error) {
	if err != nil {
		return "", err
	}
	if res.Success != nil && !*res.Success {
		msg := res.Error
		if msg == "" {
			msg = "upload rejected by server"
		}
		return "", errors.New(msg)
	}
	return res.URL, nil
}

func permissionMessage(src CaptureSource) string {
	if src == SourceCamera {
		return "The application needs camera access for this feature."
	}
	return "The application needs access to your photos for this feature."
}
