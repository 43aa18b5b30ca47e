// file: controllers/handler.go
package controllers

import (
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/alpnix/HackAtDavidson/apperrors"
	"github.com/alpnix/HackAtDavidson/services"
	"github.com/alpnix/HackAtDavidson/utils"
	"github.com/gin-gonic/gin"
)

// Handler holds the services the HTTP layer talks to.
type Handler struct {
	Registrations *services.RegistrationService
	Stats         *services.StatsService
	Members       *services.MembershipIndex
	Projects      *services.ProjectService
	Blogs         *services.BlogService
	Forms         *services.FormService
	Auth          *services.AuthService
	Staff         *services.StaffService
	Settings      *services.SettingService
	Site          *services.SiteService

	// Shutdown closes when the server begins draining; long-lived streams end on it.
	Shutdown <-chan struct{}
}

func parseID(c *gin.Context, name, what string) (uint32, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		utils.Fail(c, apperrors.NewInvalidIDError(what))
		return 0, false
	}
	return uint32(id), true
}

// bindJSON decodes and validates the request body into req.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.Fail(c, apperrors.NewValidationError("invalid request body", nil))
		return false
	}
	if n, ok := req.(interface{ Normalize() }); ok {
		n.Normalize()
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.Fail(c, err)
		return false
	}
	return true
}

// formUpload opens an optional multipart file. A missing file yields nil.
func formUpload(c *gin.Context, field string) (*services.Upload, multipart.File, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, apperrors.NewValidationError("unreadable upload", map[string]string{field: "could not read file"})
	}
	return &services.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}, f, nil
}

func splitCSVParam(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
