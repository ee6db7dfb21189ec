package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gcclean/trash-service/internal/editor"
	"github.com/gcclean/trash-service/internal/http/middleware"
	"github.com/gcclean/trash-service/internal/logger"
	"github.com/gcclean/trash-service/internal/model"
	"github.com/gcclean/trash-service/internal/photo"
	"github.com/gcclean/trash-service/internal/service"
)

const maxPhotoBytes = 10 << 20

type Handler struct {
	trash       *service.TrashService
	leaderboard *service.LeaderboardService
	profiles    *service.ProfileService
	log         zerolog.Logger
	reporter    logger.Reporter
}

func NewHandler(
	trash *service.TrashService,
	leaderboard *service.LeaderboardService,
	profiles *service.ProfileService,
	log zerolog.Logger,
	reporter logger.Reporter,
) *Handler {
	return &Handler{trash: trash, leaderboard: leaderboard, profiles: profiles, log: log, reporter: reporter}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	router.GET("/leaderboard", h.getLeaderboard)
	router.GET("/leaderboard/export", h.exportLeaderboard)

	protected := router.Group("/")
	protected.Use(authMiddleware)
	protected.GET("/trash", h.listTrash)
	protected.POST("/trash", h.createTrash)
	protected.PUT("/trash/:id", h.updateTrash)
	protected.DELETE("/trash/:id", h.deleteTrash)
	protected.GET("/profile", h.getProfile)
	protected.PUT("/profile", h.updateProfile)
}

type trashForm struct {
	Category       string `form:"category"`
	CustomCategory string `form:"custom_category"`
	Quantity       string `form:"quantity"`
	Floor          string `form:"floor"`
	Room           string `form:"room"`
	OccurredAt     string `form:"occurred_at"`
}

func (f trashForm) draft() editor.Draft {
	return editor.Draft{
		Category:       model.Category(strings.TrimSpace(f.Category)),
		CustomCategory: f.CustomCategory,
		Quantity:       f.Quantity,
		Floor:          f.Floor,
		Room:           f.Room,
		OccurredAt:     f.OccurredAt,
	}
}

type updateProfileRequest struct {
	FirstName  string `json:"first_name" binding:"required,notblank,max=100"`
	LastName   string `json:"last_name" binding:"required,notblank,max=100"`
	Department string `json:"department" binding:"required,notblank"`
}

type leaderboardResponse struct {
	*model.Leaderboard
	Departments []string `json:"departments"`
}

func (h *Handler) getLeaderboard(c *gin.Context) {
	board, err := h.leaderboard.Leaderboard(c.Request.Context(), c.Query("department"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, leaderboardResponse{
		Leaderboard: board,
		Departments: h.leaderboard.Departments(),
	})
}

func (h *Handler) exportLeaderboard(c *gin.Context) {
	format := service.ExportFormat(strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", string(service.ExportXLSX)))))

	result, err := h.leaderboard.Export(c.Request.Context(), c.Query("department"), format)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

func (h *Handler) listTrash(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	records, err := h.trash.List(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) createTrash(c *gin.Context) {
	h.submitTrash(c, nil)
}

func (h *Handler) updateTrash(c *gin.Context) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	h.submitTrash(c, &id)
}

func (h *Handler) submitTrash(c *gin.Context, id *uuid.UUID) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var form trashForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	photos, err := readPhotos(c, h.trash.MaxPhotos())
	if err != nil {
		h.handleError(c, err)
		return
	}

	input := service.SubmitInput{
		Principal: principal,
		RecordID:  id,
		Draft:     form.draft(),
		Photos:    photos,
	}
	if id != nil {
		input.Retained = retainedPhotos(c)
	}

	rec, err := h.trash.Submit(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	status := http.StatusCreated
	if id != nil {
		status = http.StatusOK
	}
	c.JSON(status, rec)
}

func (h *Handler) deleteTrash(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.trash.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) getProfile(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	profile, err := h.profiles.Get(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) updateProfile(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if fields := bindingErrors(err); fields != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "fields": fields})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.profiles.Update(c.Request.Context(), service.UpdateProfileInput{
		Principal:  principal,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Department: req.Department,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var (
		validationErr  *editor.ValidationError
		uploadErr      *editor.UploadError
		persistenceErr *editor.PersistenceError
	)
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, editor.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, editor.ErrBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, photo.ErrNotImage) && errors.As(err, &uploadErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported image " + uploadErr.File})
	case errors.As(err, &uploadErr):
		h.fail(c, err, "photo upload failed", map[string]interface{}{"file": uploadErr.File})
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to upload photo " + uploadErr.File})
	case errors.As(err, &persistenceErr):
		h.fail(c, err, "trash persistence failed", nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("failed to %s trash", persistenceErr.Op)})
	default:
		h.fail(c, err, "request failed", nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// fail logs an unexpected error and hands it to the error tracker.
func (h *Handler) fail(c *gin.Context, err error, msg string, extras map[string]interface{}) {
	if extras == nil {
		extras = map[string]interface{}{}
	}
	extras["method"] = c.Request.Method
	extras["path"] = c.FullPath()

	event := h.log.Error().Err(err)
	for k, v := range extras {
		event = event.Interface(k, v)
	}
	event.Msg(msg)

	if h.reporter != nil {
		h.reporter.Report(err, msg, extras)
	}
}

// readPhotos reads at most limit files; the editor ignores the rest anyway.
func readPhotos(c *gin.Context, limit int) ([]editor.File, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", service.ErrInvalidInput, err)
	}

	headers := photoHeaders(form, limit)
	files := make([]editor.File, 0, len(headers))
	for _, header := range headers {
		if header.Size > maxPhotoBytes {
			return nil, fmt.Errorf("%w: %s exceeds %d MB", service.ErrInvalidInput, header.Filename, maxPhotoBytes>>20)
		}
		data, err := readFile(header)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", service.ErrInvalidInput, header.Filename, err)
		}
		files = append(files, editor.File{Name: header.Filename, Data: data})
	}
	return files, nil
}

// photoHeaders accepts both "photos" and "photos[]" keys, in that order.
func photoHeaders(form *multipart.Form, limit int) []*multipart.FileHeader {
	var headers []*multipart.FileHeader
	headers = append(headers, form.File["photos"]...)
	headers = append(headers, form.File["photos[]"]...)
	if limit > 0 && len(headers) > limit {
		headers = headers[:limit]
	}
	return headers
}

func readFile(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxPhotoBytes+1))
}

// retainedPhotos returns nil when the client did not send the field, which
// keeps every stored photo. Blank values are dropped so an empty field
// clears them all.
func retainedPhotos(c *gin.Context) []string {
	values, ok := c.GetPostFormArray("existing_photos")
	if more, found := c.GetPostFormArray("existing_photos[]"); found {
		values = append(values, more...)
		ok = true
	}
	if !ok {
		return nil
	}
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			kept = append(kept, v)
		}
	}
	return kept
}
