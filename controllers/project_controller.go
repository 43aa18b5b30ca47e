// file: controllers/project_controller.go
package controllers

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/alpnix/HackAtDavidson/dto"
	"github.com/alpnix/HackAtDavidson/mappers"
	"github.com/alpnix/HackAtDavidson/utils"
	"github.com/gin-gonic/gin"
)

const sseKeepAlive = 25 * time.Second

// --- 公开接口 ---

// SearchCandidates lists participants that can still join a team.
// exclude carries the ids already picked in the caller's draft.
func (h *Handler) SearchCandidates(c *gin.Context) {
	var selected []uint32
	for _, raw := range splitCSVParam(c.Query("exclude")) {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			selected = append(selected, uint32(id))
		}
	}
	rows, err := h.Projects.SearchCandidates(c.Request.Context(), c.Query("q"), selected)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "ok", rows)
}

func (h *Handler) BusyMembers(c *gin.Context) {
	utils.Success(c, "ok", h.Members.Snapshot())
}

// StreamBusyMembers pushes the busy set over server-sent events after every change.
func (h *Handler) StreamBusyMembers(c *gin.Context) {
	ctx := c.Request.Context()
	updates := h.Members.Watch(ctx)
	ticker := time.NewTicker(sseKeepAlive)
	defer ticker.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("busy", h.Members.Snapshot())
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-h.Shutdown:
			return false
		case snap, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("busy", snap)
			return true
		case <-ticker.C:
			_, _ = io.WriteString(w, ": keep-alive\n\n")
			return true
		}
	})
}

func (h *Handler) SubmitProject(c *gin.Context) {
	var req dto.SubmitProjectReq
	if !bindJSON(c, &req) {
		return
	}
	project, err := h.Projects.Submit(c.Request.Context(), req.Name, req.MemberIDs)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.Response{Code: 0, Msg: "Project registered", Data: gin.H{"id": project.ID, "name": project.Name}})
}

// --- 管理员接口 ---

func (h *Handler) ListProjects(c *gin.Context) {
	rows, err := h.Projects.ListCurrent(c.Request.Context())
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "ok", mappers.MapProjects(rows))
}

func (h *Handler) DeleteProject(c *gin.Context) {
	id, ok := parseID(c, "id", "project")
	if !ok {
		return
	}
	if err := h.Projects.Delete(c.Request.Context(), id); err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Project deleted", nil)
}

func (h *Handler) RemoveProjectMember(c *gin.Context) {
	id, ok := parseID(c, "id", "project")
	if !ok {
		return
	}
	regID, ok := parseID(c, "registration_id", "registration")
	if !ok {
		return
	}
	if err := h.Projects.RemoveMember(c.Request.Context(), id, regID); err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Member removed", nil)
}
