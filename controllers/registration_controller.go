// file: controllers/registration_controller.go
package controllers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alpnix/HackAtDavidson/apperrors"
	"github.com/alpnix/HackAtDavidson/dto"
	"github.com/alpnix/HackAtDavidson/mappers"
	"github.com/alpnix/HackAtDavidson/middlewares"
	"github.com/alpnix/HackAtDavidson/services"
	"github.com/alpnix/HackAtDavidson/utils"
	"github.com/gin-gonic/gin"
)

// filterFromQuery reads the dashboard filter bar.
func filterFromQuery(c *gin.Context) services.RegistrationFilter {
	return services.NormalizeFilter(services.RegistrationFilter{
		Query:        c.Query("q"),
		LevelOfStudy: c.Query("level"),
		Transport:    c.Query("transport"),
		CheckedIn:    services.ParseCheckedIn(c.Query("checked_in")),
	})
}

// --- 公开接口 ---

// SubmitRegistration handles the public sign-up form.
func (h *Handler) SubmitRegistration(c *gin.Context) {
	h.createRegistration(c, true)
}

// --- 管理员接口 ---

func (h *Handler) AdminCreateRegistration(c *gin.Context) {
	h.createRegistration(c, false)
}

func (h *Handler) createRegistration(c *gin.Context, public bool) {
	var req dto.CreateRegistrationReq
	if err := c.ShouldBind(&req); err != nil {
		utils.Fail(c, apperrors.NewValidationError("invalid registration form", nil))
		return
	}
	req.Normalize()
	if err := req.Validate(public); err != nil {
		utils.Fail(c, err)
		return
	}

	resume, file, err := formUpload(c, "resume")
	if err != nil {
		utils.Fail(c, err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	reg := mappers.MapRegistrationReqToModel(req)
	if err := h.Registrations.Create(c.Request.Context(), &reg, resume, public); err != nil {
		utils.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.Response{Code: 0, Msg: "Registration received", Data: mappers.MapRegistrationToItemResp(reg)})
}

func (h *Handler) ListRegistrations(c *gin.Context) {
	p := utils.ParsePage(c, utils.RegistrationPageOpts)
	rows, meta, err := h.Registrations.List(c.Request.Context(), filterFromQuery(c), p)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "ok", dto.RegistrationListResp{Items: mappers.MapRegistrationsToItems(rows), Meta: meta})
}

func (h *Handler) ExportColumns(c *gin.Context) {
	utils.Success(c, "ok", mappers.MapExportColumns(services.ExportColumns()))
}

// ExportRegistrations streams the filtered registrations as CSV.
func (h *Handler) ExportRegistrations(c *gin.Context) {
	cols, err := services.ResolveColumns(splitCSVParam(c.Query("columns")))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	rows, truncated, err := h.Registrations.Export(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	var buf bytes.Buffer
	if err := services.WriteCSV(&buf, services.RegistrationRecords(cols, rows)); err != nil {
		utils.Fail(c, apperrors.NewSystemError("csv export failed", err))
		return
	}
	filename := fmt.Sprintf("registrations-%s.csv", time.Now().Format("2006-01-02"))
	if truncated {
		c.Header("X-Export-Truncated", "true")
	}
	sendCSV(c, filename, &buf)
}

func sendCSV(c *gin.Context, filename string, buf *bytes.Buffer) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *Handler) RegistrationStats(c *gin.Context) {
	stats, cached, err := h.Stats.Dashboard(c.Request.Context())
	if err != nil {
		utils.Fail(c, err)
		return
	}
	if cached {
		c.Header("X-Cache", "HIT")
	}
	utils.Success(c, "ok", stats)
}

func (h *Handler) GetRegistration(c *gin.Context) {
	id, ok := parseID(c, "id", "registration")
	if !ok {
		return
	}
	reg, err := h.Registrations.Get(c.Request.Context(), id)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "ok", reg)
}

func (h *Handler) CheckIn(c *gin.Context) {
	id, ok := parseID(c, "id", "registration")
	if !ok {
		return
	}
	reg, changed, err := h.Registrations.CheckIn(c.Request.Context(), id, middlewares.CurrentUserID(c))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	msg := "Checked in"
	if !changed {
		msg = "Already checked in"
	}
	utils.Success(c, msg, mappers.MapRegistrationToItemResp(*reg))
}

func (h *Handler) UndoCheckIn(c *gin.Context) {
	id, ok := parseID(c, "id", "registration")
	if !ok {
		return
	}
	reg, err := h.Registrations.UndoCheckIn(c.Request.Context(), id)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Check-in undone", mappers.MapRegistrationToItemResp(*reg))
}

func (h *Handler) DeleteRegistration(c *gin.Context) {
	id, ok := parseID(c, "id", "registration")
	if !ok {
		return
	}
	if err := h.Registrations.Delete(c.Request.Context(), id); err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Registration deleted", nil)
}

// DownloadResume streams a participant's resume through the API so storage
// stays private.
func (h *Handler) DownloadResume(c *gin.Context) {
	id, ok := parseID(c, "id", "registration")
	if !ok {
		return
	}
	rc, name, err := h.Registrations.OpenResume(c.Request.Context(), id)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	defer rc.Close()
	contentType := "application/octet-stream"
	if strings.HasSuffix(name, ".pdf") {
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		c.Error(err)
	}
}
