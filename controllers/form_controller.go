// file: controllers/form_controller.go
package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/alpnix/HackAtDavidson/apperrors"
	"github.com/alpnix/HackAtDavidson/dto"
	"github.com/alpnix/HackAtDavidson/mappers"
	"github.com/alpnix/HackAtDavidson/middlewares"
	"github.com/alpnix/HackAtDavidson/models"
	"github.com/alpnix/HackAtDavidson/services"
	"github.com/alpnix/HackAtDavidson/utils"
	"github.com/gin-gonic/gin"
)

// --- 公开接口 ---

// GetPublicForm answers "Form not found" for anything not open for answers.
func (h *Handler) GetPublicForm(c *gin.Context) {
	id, ok := parseID(c, "id", "form")
	if !ok {
		return
	}
	form, err := h.Forms.Public(c.Request.Context(), id)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "ok", mappers.MapFormToPublicResp(*form))
}

func (h *Handler) SubmitForm(c *gin.Context) {
	id, ok := parseID(c, "id", "form")
	if !ok {
		return
	}
	var req dto.SubmitFormReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, apperrors.NewValidationError("invalid request body", nil))
		return
	}
	sub, err := h.Forms.Submit(c.Request.Context(), id, req.Values)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.Response{Code: 0, Msg: "Response submitted", Data: gin.H{"id": sub.ID}})
}

// --- 管理员接口 ---

func (h *Handler) ListForms(c *gin.Context) {
	p := utils.ParsePage(c, utils.DefaultPageOpts)
	rows, meta, err := h.Forms.List(c.Request.Context(), c.Query("status"), p)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	items := make([]dto.FormResp, 0, len(rows))
	for _, f := range rows {
		items = append(items, mappers.MapFormToAdminResp(f, h.Forms.PublicURL(f.ID)))
	}
	utils.Success(c, "ok", gin.H{"items": items, "meta": meta})
}

func (h *Handler) GetForm(c *gin.Context) {
	id, ok := parseID(c, "id", "form")
	if !ok {
		return
	}
	form, err := h.Forms.Get(c.Request.Context(), id)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "ok", mappers.MapFormToAdminResp(*form, h.Forms.PublicURL(id)))
}

func (h *Handler) CreateForm(c *gin.Context) {
	var req dto.FormReq
	if !bindJSON(c, &req) {
		return
	}
	form, err := h.Forms.Create(c.Request.Context(), services.FormInput{
		Title: req.Title, Description: req.Description, Deadline: req.Deadline,
	}, middlewares.CurrentUserID(c))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.Response{Code: 0, Msg: "Form created", Data: mappers.MapFormToAdminResp(*form, h.Forms.PublicURL(form.ID))})
}

func (h *Handler) UpdateForm(c *gin.Context) {
	id, ok := parseID(c, "id", "form")
	if !ok {
		return
	}
	var req dto.FormReq
	if !bindJSON(c, &req) {
		return
	}
	form, err := h.Forms.Update(c.Request.Context(), id, services.FormInput{
		Title: req.Title, Description: req.Description, Deadline: req.Deadline,
	})
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Form updated", mappers.MapFormToAdminResp(*form, h.Forms.PublicURL(id)))
}

// ReplaceFormFields saves the complete, ordered field list.
func (h *Handler) ReplaceFormFields(c *gin.Context) {
	id, ok := parseID(c, "id", "form")
	if !ok {
		return
	}
	var req dto.ReplaceFieldsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, apperrors.NewValidationError("invalid request body", nil))
		return
	}
	form, err := h.Forms.ReplaceFields(c.Request.Context(), id, mappers.MapFieldReqs(req.Fields))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Fields saved", mappers.MapFormToAdminResp(*form, h.Forms.PublicURL(id)))
}

func (h *Handler) UpdateFormStatus(c *gin.Context) {
	id, ok := parseID(c, "id", "form")
	if !ok {
		return
	}
	var req dto.FormStatusReq
	if !bindJSON(c, &req) {
		return
	}
	form, err := h.Forms.Transition(c.Request.Context(), id, models.FormStatus(req.Status), req.Deadline)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Status updated", mappers.MapFormToAdminResp(*form, h.Forms.PublicURL(id)))
}

func (h *Handler) DeleteForm(c *gin.Context) {
	id, ok := parseID(c, "id", "form")
	if !ok {
		return
	}
	if err := h.Forms.Delete(c.Request.Context(), id); err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Form deleted", nil)
}

func (h *Handler) ListSubmissions(c *gin.Context) {
	id, ok := parseID(c, "id", "form")
	if !ok {
		return
	}
	p := utils.ParsePage(c, utils.DefaultPageOpts)
	rows, meta, err := h.Forms.Submissions(c.Request.Context(), id, p)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "ok", gin.H{"items": mappers.MapSubmissions(rows), "meta": meta})
}

func (h *Handler) ExportSubmissions(c *gin.Context) {
	id, ok := parseID(c, "id", "form")
	if !ok {
		return
	}
	form, records, err := h.Forms.ExportSubmissions(c.Request.Context(), id)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	var buf bytes.Buffer
	if err := services.WriteCSV(&buf, records); err != nil {
		utils.Fail(c, apperrors.NewSystemError("csv export failed", err))
		return
	}
	sendCSV(c, fmt.Sprintf("%s-responses.csv", utils.Slugify(form.Title, 60)), &buf)
}

func (h *Handler) FormQRCode(c *gin.Context) {
	id, ok := parseID(c, "id", "form")
	if !ok {
		return
	}
	size, _ := strconv.Atoi(c.Query("size"))
	png, err := h.Forms.QRCode(c.Request.Context(), id, size)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	if c.Query("download") != "" {
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="form-%d-qr.png"`, id))
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) UploadFormCover(c *gin.Context) {
	id, ok := parseID(c, "id", "form")
	if !ok {
		return
	}
	up, file, err := formUpload(c, "file")
	if err != nil {
		utils.Fail(c, err)
		return
	}
	if file != nil {
		defer file.Close()
	}
	form, err := h.Forms.UploadCover(c.Request.Context(), id, up)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Cover uploaded", mappers.MapFormToAdminResp(*form, h.Forms.PublicURL(id)))
}
