// file: dto/auth.go
package dto

import "strings"

type LoginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

func (r *LoginReq) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

type ForgotPasswordReq struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyOTPReq struct {
	Email string `json:"email" validate:"required,email"`
	Token string `json:"token" validate:"required,len=6,numeric"`
	// Type 仅接受 recovery
	Type string `json:"type" validate:"omitempty,eq=recovery"`
}

func (r *VerifyOTPReq) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Token = strings.TrimSpace(r.Token)
}

type ResetPasswordReq struct {
	ResetToken      string `json:"reset_token" validate:"required"`
	Password        string `json:"password" validate:"required,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`

	ResetTokenCamel      string `json:"resetToken" validate:"-"`
	ConfirmPasswordCamel string `json:"confirmPassword" validate:"-"`
}

func (r *ResetPasswordReq) Normalize() {
	if r.ResetToken == "" {
		r.ResetToken = r.ResetTokenCamel
	}
	if r.ConfirmPassword == "" {
		r.ConfirmPassword = r.ConfirmPasswordCamel
	}
}

type LoginResp struct {
	Token   string      `json:"token"`
	Profile ProfileResp `json:"profile"`
}

// ResetFlowResp tells the client which recovery form to show next.
type ResetFlowResp struct {
	Stage string `json:"stage"`
	Email string `json:"email,omitempty"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error,omitempty"`
}

type ForgotPasswordResp struct {
	Flow ResetFlowResp `json:"flow"`
}

type VerifyOTPResp struct {
	ResetToken string        `json:"reset_token"`
	Flow       ResetFlowResp `json:"flow"`
}

type ResetPasswordResp struct {
	Flow ResetFlowResp `json:"flow"`
}

type ProfileResp struct {
	ID        uint32 `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Role      string `json:"role"`
}

type CreateStaffReq struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"firstname" validate:"max=50"`
	LastName  string `json:"lastname" validate:"max=50"`
	Role      string `json:"role" validate:"required"`
}

type UpdateRoleReq struct {
	Role string `json:"role" validate:"required"`
}
