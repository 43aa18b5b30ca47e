// file: controllers/blog_controller.go
package controllers

import (
	"log/slog"
	"net/http"

	"github.com/alpnix/HackAtDavidson/dto"
	"github.com/alpnix/HackAtDavidson/mappers"
	"github.com/alpnix/HackAtDavidson/middlewares"
	"github.com/alpnix/HackAtDavidson/services"
	"github.com/alpnix/HackAtDavidson/utils"
	"github.com/gin-gonic/gin"
)

// --- 公开接口 ---

func (h *Handler) ListBlogs(c *gin.Context) {
	h.listBlogs(c, false)
}

// GetBlog returns a published post and counts the view once per visitor session.
func (h *Handler) GetBlog(c *gin.Context) {
	id, ok := parseID(c, "id", "blog")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	blog, err := h.Blogs.Get(ctx, id, false)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	counted, err := h.Blogs.RecordView(ctx, middlewares.SessionID(c), id)
	if err != nil {
		slog.Warn("record blog view failed", "blog_id", id, "error", err)
	}
	if counted {
		blog.ViewCount++
	}
	utils.Success(c, "ok", mappers.MapBlogToDetailResp(*blog))
}

// --- 管理员接口 ---

func (h *Handler) AdminListBlogs(c *gin.Context) {
	h.listBlogs(c, true)
}

func (h *Handler) listBlogs(c *gin.Context, staff bool) {
	p := utils.ParsePage(c, utils.DefaultPageOpts)
	rows, meta, err := h.Blogs.List(c.Request.Context(), staff, p)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "ok", gin.H{"items": mappers.MapBlogsToItems(rows), "meta": meta})
}

func (h *Handler) AdminGetBlog(c *gin.Context) {
	id, ok := parseID(c, "id", "blog")
	if !ok {
		return
	}
	blog, err := h.Blogs.Get(c.Request.Context(), id, true)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "ok", mappers.MapBlogToDetailResp(*blog))
}

func (h *Handler) CreateBlog(c *gin.Context) {
	var req dto.BlogReq
	if !bindJSON(c, &req) {
		return
	}
	blog, err := h.Blogs.Create(c.Request.Context(), services.BlogInput{Title: req.Title, Content: req.Content}, middlewares.CurrentUserID(c))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.Response{Code: 0, Msg: "Blog created", Data: mappers.MapBlogToDetailResp(*blog)})
}

func (h *Handler) UpdateBlog(c *gin.Context) {
	id, ok := parseID(c, "id", "blog")
	if !ok {
		return
	}
	var req dto.BlogReq
	if !bindJSON(c, &req) {
		return
	}
	blog, err := h.Blogs.Update(c.Request.Context(), id, services.BlogInput{Title: req.Title, Content: req.Content})
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Blog updated", mappers.MapBlogToDetailResp(*blog))
}

func (h *Handler) ArchiveBlog(c *gin.Context) {
	id, ok := parseID(c, "id", "blog")
	if !ok {
		return
	}
	var req dto.ArchiveReq
	if !bindJSON(c, &req) {
		return
	}
	blog, changed, err := h.Blogs.SetArchived(c.Request.Context(), id, *req.Archived)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "ok", dto.ArchiveResp{Blog: mappers.MapBlogToDetailResp(*blog), Changed: changed})
}

func (h *Handler) DeleteBlog(c *gin.Context) {
	id, ok := parseID(c, "id", "blog")
	if !ok {
		return
	}
	if err := h.Blogs.Delete(c.Request.Context(), id); err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Blog deleted", nil)
}

func (h *Handler) UploadBlogCover(c *gin.Context) {
	id, ok := parseID(c, "id", "blog")
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
	blog, err := h.Blogs.UploadCover(c.Request.Context(), id, up)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Cover uploaded", mappers.MapBlogToDetailResp(*blog))
}
