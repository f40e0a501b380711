package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tutorlab/tutoring-service/internal/storage"
	"github.com/tutorlab/tutoring-service/internal/utils"
)

type FileHandler struct {
	BaseHandler
	store storage.DocumentStore
}

func NewFileHandler(store storage.DocumentStore, logger utils.Logger) *FileHandler {
	return &FileHandler{
		BaseHandler: NewBaseHandler(logger),
		store:       store,
	}
}

// Download serves a stored material file by name.
// @Router /files/:name [get]
func (h *FileHandler) Download(c *gin.Context) {
	path, err := h.store.Path(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "File not found"})
		return
	}
	c.FileAttachment(path, c.Param("name"))
}
