// file: controllers/auth_controller.go
package controllers

import (
	"github.com/alpnix/HackAtDavidson/apperrors"
	"github.com/alpnix/HackAtDavidson/dto"
	"github.com/alpnix/HackAtDavidson/mappers"
	"github.com/alpnix/HackAtDavidson/middlewares"
	"github.com/alpnix/HackAtDavidson/services"
	"github.com/alpnix/HackAtDavidson/utils"
	"github.com/gin-gonic/gin"
)

func (h *Handler) Login(c *gin.Context) {
	var req dto.LoginReq
	if !bindJSON(c, &req) {
		return
	}
	token, profile, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Login successful", dto.LoginResp{Token: token, Profile: mappers.MapProfile(*profile)})
}

// ForgotPassword always reports success so unknown emails cannot be detected.
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordReq
	if !bindJSON(c, &req) {
		return
	}
	h.Auth.Forgot(c.Request.Context(), req.Email)
	flow := services.ResetFlow{Stage: services.StageForgot, Email: req.Email}.Settle(nil)
	utils.Success(c, "If that email belongs to a staff account, a code has been sent",
		dto.ForgotPasswordResp{Flow: mappers.MapResetFlow(flow)})
}

// VerifyOTP checks the emailed code. On failure the flow stays on the code
// form with the code cleared.
func (h *Handler) VerifyOTP(c *gin.Context) {
	var req dto.VerifyOTPReq
	if !bindJSON(c, &req) {
		return
	}
	flow := services.ResetFlow{Stage: services.StageOTP, Email: req.Email, Code: req.Token}
	token, err := h.Auth.VerifyOTP(c.Request.Context(), req.Email, req.Token)
	flow = flow.Settle(err)
	if err != nil {
		utils.FailWith(c, err, gin.H{"flow": mappers.MapResetFlow(flow)})
		return
	}
	utils.Success(c, "Code verified", dto.VerifyOTPResp{ResetToken: token, Flow: mappers.MapResetFlow(flow)})
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordReq
	if !bindJSON(c, &req) {
		return
	}
	flow := services.ResetFlow{Stage: services.StageReset}
	err := h.Auth.Reset(c.Request.Context(), req.ResetToken, req.Password, req.ConfirmPassword)
	flow = flow.Settle(err)
	if err != nil {
		utils.FailWith(c, err, gin.H{"flow": mappers.MapResetFlow(flow)})
		return
	}
	utils.Success(c, "Password updated. Please sign in.", dto.ResetPasswordResp{Flow: mappers.MapResetFlow(flow)})
}

func (h *Handler) Logout(c *gin.Context) {
	claims := middlewares.CurrentClaims(c)
	if claims == nil {
		utils.Fail(c, apperrors.NewAuthError(apperrors.CodeAuthMissing, "Not signed in"))
		return
	}
	if err := h.Auth.Logout(c.Request.Context(), claims); err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Logged out", nil)
}

func (h *Handler) Me(c *gin.Context) {
	p, err := h.Staff.Get(c.Request.Context(), middlewares.CurrentUserID(c))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "ok", mappers.MapProfile(*p))
}
