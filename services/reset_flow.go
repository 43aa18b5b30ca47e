// file: services/reset_flow.go
package services

import "github.com/alpnix/HackAtDavidson/apperrors"

// ResetStage is a step of the sign-in and password recovery flow.
type ResetStage string

const (
	StageLogin  ResetStage = "login"
	StageForgot ResetStage = "forgot"
	StageOTP    ResetStage = "otp"
	StageReset  ResetStage = "reset"
)

var nextStage = map[ResetStage]ResetStage{
	StageForgot: StageOTP,
	StageOTP:    StageReset,
	StageReset:  StageLogin,
}

// ResetFlow is the client visible state of the recovery flow.
type ResetFlow struct {
	Stage ResetStage `json:"stage"`
	Email string     `json:"email,omitempty"`
	Code  string     `json:"code,omitempty"`
	Error string     `json:"error,omitempty"`
}

// NewResetFlow starts at the login form.
func NewResetFlow() ResetFlow {
	return ResetFlow{Stage: StageLogin}
}

// Forgot switches from the login form to the recovery request form.
func (f ResetFlow) Forgot() ResetFlow {
	return ResetFlow{Stage: StageForgot, Email: f.Email}
}

// Advance applies the outcome of the current stage's request. Success moves
// forward and failure stays put. A rejected code is cleared so it can be retyped.
func (f ResetFlow) Advance(ok bool, errMsg string) ResetFlow {
	if !ok {
		f.Error = errMsg
		if f.Stage == StageOTP {
			f.Code = ""
		}
		return f
	}
	f.Error = ""
	next, has := nextStage[f.Stage]
	if !has {
		return f
	}
	f.Stage = next
	if next == StageLogin {
		f.Code = ""
	}
	return f
}

// Settle advances the flow with the outcome of a request. The error message
// shown inline is the one safe for clients.
func (f ResetFlow) Settle(err error) ResetFlow {
	if err == nil {
		return f.Advance(true, "")
	}
	msg := "Something went wrong. Please try again."
	if appErr, ok := apperrors.As(err); ok {
		msg = appErr.GetUserMessage()
	}
	return f.Advance(false, msg)
}
