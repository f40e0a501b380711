package handlers

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tutorlab/tutoring-service/internal/services"
	"github.com/tutorlab/tutoring-service/internal/storage"
	"github.com/tutorlab/tutoring-service/internal/utils"
)

// MaterialHandler serves one material collection; instantiated for homework
// and for study notes. Uploads arrive as multipart forms and land in the
// document store before the record is written.
type MaterialHandler[T any] struct {
	BaseHandler
	materials services.MaterialService[T]
	store     storage.DocumentStore
}

func NewMaterialHandler[T any](materials services.MaterialService[T], store storage.DocumentStore, logger utils.Logger) *MaterialHandler[T] {
	return &MaterialHandler[T]{
		BaseHandler: NewBaseHandler(logger),
		materials:   materials,
		store:       store,
	}
}

// saveUploads persists every uploaded file and returns their stored paths.
func (h *MaterialHandler[T]) saveUploads(c *gin.Context, uploads []*multipart.FileHeader) ([]string, bool) {
	paths := make([]string, 0, len(uploads))
	for _, upload := range uploads {
		f, err := upload.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid file upload",
				Details: err.Error(),
			})
			return nil, false
		}

		path, err := h.store.Save(upload.Filename, f)
		f.Close()
		if err != nil {
			h.LogError(c, "Failed to store upload", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Message: "Failed to store file",
			})
			return nil, false
		}
		paths = append(paths, path)
	}
	return paths, true
}

// Create accepts a multipart form with user_id, name and optional files.
func (h *MaterialHandler[T]) Create(c *gin.Context) {
	h.LogRequest(c, "Creating material")

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid multipart form",
			Details: err.Error(),
		})
		return
	}

	userID, err := strconv.ParseUint(c.PostForm("user_id"), 10, 32)
	if err != nil || userID == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid user_id field"})
		return
	}

	paths, ok := h.saveUploads(c, form.File["files"])
	if !ok {
		return
	}

	req := services.CreateMaterialRequest{
		UserID: uint(userID),
		Name:   c.PostForm("name"),
		Files:  paths,
	}
	row, err := h.materials.Create(c.Request.Context(), CurrentUser(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, row)
}

// Get returns one record.
func (h *MaterialHandler[T]) Get(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	row, err := h.materials.Get(c.Request.Context(), CurrentUser(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

// List returns records visible to the caller.
func (h *MaterialHandler[T]) List(c *gin.Context) {
	limit, offset := h.parsePagination(c)

	query := services.MaterialListQuery{Limit: limit, Offset: offset}
	if raw := c.Query("user_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid user_id parameter"})
			return
		}
		uid := uint(id)
		query.UserID = &uid
	}

	resp, err := h.materials.List(c.Request.Context(), CurrentUser(c), query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Search matches record names against a substring, scoped to the caller.
func (h *MaterialHandler[T]) Search(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, err := h.materials.Search(c.Request.Context(), CurrentUser(c), c.Query("q"), offset)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Update accepts a multipart form; omitted fields keep their stored values.
func (h *MaterialHandler[T]) Update(c *gin.Context) {
	h.LogRequest(c, "Updating material")

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid multipart form",
			Details: err.Error(),
		})
		return
	}

	paths, ok := h.saveUploads(c, form.File["files"])
	if !ok {
		return
	}

	req := services.UpdateMaterialRequest{Files: paths}
	if name := c.PostForm("name"); name != "" {
		req.Name = &name
	}

	row, err := h.materials.Update(c.Request.Context(), CurrentUser(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

// Delete removes one record.
func (h *MaterialHandler[T]) Delete(c *gin.Context) {
	h.LogRequest(c, "Deleting material")

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.materials.Delete(c.Request.Context(), CurrentUser(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Deleted successfully"})
}
