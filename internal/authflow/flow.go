package authflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"teledrive-web/internal/model"
)

// Stage is the sign-in step the flow currently sits at.
type Stage string

const (
	StagePhone         Stage = "phone"
	StageCode          Stage = "code"
	StagePassword      Stage = "password"
	StageAuthenticated Stage = "authenticated"
)

// ErrBusy is returned when a submission arrives while a previous one
// is still talking to the backend.
var ErrBusy = errors.New("authentication request already in progress")

// Backend is the slice of the TeleDrive client the flow needs.
type Backend interface {
	SendCode(ctx context.Context, phone string) (string, error)
	CheckCode(ctx context.Context, session string, code string) (model.CodeStatus, error)
	CheckPassword(ctx context.Context, session string, password string) (bool, error)
	FetchMe(ctx context.Context, session string) (model.Me, error)
}

// State is a point-in-time snapshot of the flow for the presentation
// layer.
type State struct {
	Stage   Stage     `json:"stage"`
	Phone   string    `json:"phone,omitempty"`
	Busy    bool      `json:"busy"`
	Message string    `json:"message,omitempty"`
	Me      *model.Me `json:"me,omitempty"`
}

// Flow drives the phone, code and optional two-factor password steps
// of Telegram sign-in. The flow only reaches StageAuthenticated after
// a profile fetch confirms the backend session is authorized; a code
// or password acceptance alone is not enough.
type Flow struct {
	api Backend

	mu      sync.Mutex
	stage   Stage
	phone   string
	session string
	busy    bool
	message string
	me      *model.Me
}

func New(api Backend) *Flow {
	return &Flow{api: api, stage: StagePhone}
}

// State returns the current snapshot.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return State{Stage: f.stage, Phone: f.phone, Busy: f.busy, Message: f.message, Me: f.me}
}

// Session returns the backend session token, empty before the phone
// step succeeds.
func (f *Flow) Session() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session
}

// SubmitPhone requests a login code for the phone number and advances
// to the code step.
func (f *Flow) SubmitPhone(ctx context.Context, phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return fmt.Errorf("%w: phone number is required", model.ErrInvalidInput)
	}

	if err := f.begin(StagePhone); err != nil {
		return err
	}

	session, err := f.api.SendCode(ctx, phone)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = false
	if err != nil {
		f.message = err.Error()
		return err
	}
	f.phone = phone
	f.session = session
	f.stage = StageCode
	return nil
}

// SubmitCode verifies the login code. Depending on the account it
// either finishes sign-in or advances to the password step.
func (f *Flow) SubmitCode(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("%w: login code is required", model.ErrInvalidInput)
	}

	if err := f.begin(StageCode); err != nil {
		return err
	}

	f.mu.Lock()
	session := f.session
	f.mu.Unlock()

	status, err := f.api.CheckCode(ctx, session, code)
	if err != nil {
		f.fail(err)
		return err
	}

	switch status {
	case model.CodePasswordRequired:
		f.mu.Lock()
		defer f.mu.Unlock()
		f.busy = false
		f.stage = StagePassword
		return nil
	case model.CodeAuthorized:
		return f.confirm(ctx, session)
	default:
		err := fmt.Errorf("%w: code was not accepted", model.ErrInvalidInput)
		f.fail(err)
		return err
	}
}

// SubmitPassword verifies the two-factor password and finishes
// sign-in.
func (f *Flow) SubmitPassword(ctx context.Context, password string) error {
	if password == "" {
		return fmt.Errorf("%w: password is required", model.ErrInvalidInput)
	}

	if err := f.begin(StagePassword); err != nil {
		return err
	}

	f.mu.Lock()
	session := f.session
	f.mu.Unlock()

	ok, err := f.api.CheckPassword(ctx, session, password)
	if err != nil {
		f.fail(err)
		return err
	}
	if !ok {
		err := fmt.Errorf("%w: password was not accepted", model.ErrInvalidInput)
		f.fail(err)
		return err
	}

	return f.confirm(ctx, session)
}

// Back steps to the previous stage and discards any pending error
// message. From the code step it returns to the phone step; from the
// password step it returns to the code step.
func (f *Flow) Back() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.busy {
		return
	}

	f.message = ""
	switch f.stage {
	case StageCode:
		f.stage = StagePhone
		f.session = ""
	case StagePassword:
		f.stage = StageCode
	}
}

// confirm fetches the profile and only then marks the flow
// authenticated.
func (f *Flow) confirm(ctx context.Context, session string) error {
	me, err := f.api.FetchMe(ctx, session)
	if err != nil {
		f.fail(err)
		return err
	}
	if !me.Authorized {
		err := fmt.Errorf("%w: session not authorized", model.ErrUnauthenticated)
		f.fail(err)
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = false
	f.stage = StageAuthenticated
	f.me = &me
	return nil
}

// begin validates the stage, rejects concurrent submissions and
// clears the previous error message.
func (f *Flow) begin(want Stage) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.busy {
		return ErrBusy
	}
	if f.stage != want {
		return fmt.Errorf("%w: not at the %s step", model.ErrInvalidInput, want)
	}
	f.busy = true
	f.message = ""
	return nil
}

func (f *Flow) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = false
	f.message = err.Error()
}
