// file: controllers/site_controller.go
package controllers

import (
	"net/http"
	"strings"

	"github.com/alpnix/HackAtDavidson/dto"
	"github.com/alpnix/HackAtDavidson/mappers"
	"github.com/alpnix/HackAtDavidson/models"
	"github.com/alpnix/HackAtDavidson/services"
	"github.com/alpnix/HackAtDavidson/utils"
	"github.com/gin-gonic/gin"
)

// --- 公开接口 ---

func (h *Handler) GetSite(c *gin.Context) {
	content, err := h.Site.Current(c.Request.Context())
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "ok", content)
}

func (h *Handler) PublicSettings(c *gin.Context) {
	rows, err := h.Settings.List(c.Request.Context(), true)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	out := make(map[string]interface{}, len(rows))
	for _, s := range rows {
		out[s.Name] = mappers.MapSetting(s).Value
	}
	utils.Success(c, "ok", out)
}

// --- 管理员接口 ---

func (h *Handler) UpsertHackathon(c *gin.Context) {
	var req dto.HackathonReq
	if !bindJSON(c, &req) {
		return
	}
	hk := models.Hackathon{
		Year:        req.Year,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Location:    strings.TrimSpace(req.Location),
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	}
	if err := h.Site.UpsertHackathon(c.Request.Context(), &hk); err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Hackathon saved", hk)
}

func (h *Handler) AddSponsor(c *gin.Context) {
	var req dto.SponsorReq
	if !bindJSON(c, &req) {
		return
	}
	sp := models.Sponsor{
		Name:     strings.TrimSpace(req.Name),
		Tier:     models.SponsorTier(req.Tier),
		LogoURL:  req.LogoURL,
		Link:     req.Link,
		Position: req.Position,
	}
	if err := h.Site.AddSponsor(c.Request.Context(), &sp); err != nil {
		utils.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.Response{Code: 0, Msg: "Sponsor added", Data: sp})
}

func (h *Handler) AddScheduleItem(c *gin.Context) {
	var req dto.ScheduleItemReq
	if !bindJSON(c, &req) {
		return
	}
	item := models.ScheduleItem{
		Title:    strings.TrimSpace(req.Title),
		Location: strings.TrimSpace(req.Location),
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
	}
	if err := h.Site.AddScheduleItem(c.Request.Context(), &item); err != nil {
		utils.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.Response{Code: 0, Msg: "Schedule item added", Data: item})
}

func (h *Handler) AddFAQ(c *gin.Context) {
	var req dto.FAQReq
	if !bindJSON(c, &req) {
		return
	}
	faq := models.FAQ{Question: strings.TrimSpace(req.Question), Answer: req.Answer, Position: req.Position}
	if err := h.Site.AddFAQ(c.Request.Context(), &faq); err != nil {
		utils.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.Response{Code: 0, Msg: "FAQ added", Data: faq})
}

// deleteSiteRow returns a handler removing one sponsor, schedule item or FAQ.
func (h *Handler) deleteSiteRow(newModel func() interface{}, what string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id", what)
		if !ok {
			return
		}
		if err := h.Site.Delete(c.Request.Context(), newModel(), id, what); err != nil {
			utils.Fail(c, err)
			return
		}
		utils.Success(c, strings.ToUpper(what[:1])+what[1:]+" deleted", nil)
	}
}

func (h *Handler) DeleteSponsor() gin.HandlerFunc {
	return h.deleteSiteRow(func() interface{} { return &models.Sponsor{} }, "sponsor")
}

func (h *Handler) DeleteScheduleItem() gin.HandlerFunc {
	return h.deleteSiteRow(func() interface{} { return &models.ScheduleItem{} }, "schedule item")
}

func (h *Handler) DeleteFAQ() gin.HandlerFunc {
	return h.deleteSiteRow(func() interface{} { return &models.FAQ{} }, "faq")
}

// --- 设置 ---

func (h *Handler) ListSettings(c *gin.Context) {
	rows, err := h.Settings.List(c.Request.Context(), false)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "ok", mappers.MapSettings(rows))
}

func (h *Handler) UpdateSetting(c *gin.Context) {
	var req dto.SettingReq
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.Settings.Update(c.Request.Context(), c.Param("name"), req.Value)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Setting updated", mappers.MapSetting(*s))
}

func (h *Handler) CreateSetting(c *gin.Context) {
	var req dto.CreateSettingReq
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.Settings.Create(c.Request.Context(), strings.TrimSpace(req.Name), models.SettingValueType(req.ValueType), req.Value, req.Public)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.Response{Code: 0, Msg: "Setting created", Data: mappers.MapSetting(*s)})
}

// --- 员工 ---

func (h *Handler) ListStaff(c *gin.Context) {
	rows, err := h.Staff.List(c.Request.Context())
	if err != nil {
		utils.Fail(c, err)
		return
	}
	out := make([]dto.ProfileResp, 0, len(rows))
	for _, p := range rows {
		out = append(out, mappers.MapProfile(p))
	}
	utils.Success(c, "ok", out)
}

func (h *Handler) CreateStaff(c *gin.Context) {
	var req dto.CreateStaffReq
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Staff.Create(c.Request.Context(), services.StaffInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      models.StaffRole(strings.ToUpper(req.Role)),
	})
	if err != nil {
		utils.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.Response{Code: 0, Msg: "Staff account created", Data: mappers.MapProfile(*p)})
}

func (h *Handler) UpdateStaffRole(c *gin.Context) {
	id, ok := parseID(c, "id", "profile")
	if !ok {
		return
	}
	var req dto.UpdateRoleReq
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Staff.UpdateRole(c.Request.Context(), id, models.StaffRole(strings.ToUpper(req.Role)))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Role updated", mappers.MapProfile(*p))
}
