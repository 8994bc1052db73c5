package http

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/guestgallery/internal/common"
	"github.com/dmitrijs2005/guestgallery/internal/server/auth"
	"github.com/dmitrijs2005/guestgallery/internal/server/models"
	"github.com/dmitrijs2005/guestgallery/internal/server/services"
	"github.com/gin-gonic/gin"
)

// maxUploadBody caps the whole multipart request: the largest accepted file
// plus room for the form fields and part headers.
const maxUploadBody = common.MaxUploadSize + 1<<20

type uploadResponse struct {
	Success bool               `json:"success"`
	Photo   *models.GuestPhoto `json:"photo"`
	Message string             `json:"message"`
}

type galleryPhoto struct {
	ID        string    `json:"id"`
	PhotoURL  string    `json:"photo_url"`
	Caption   *string   `json:"caption"`
	Location  *string   `json:"location"`
	CreatedAt time.Time `json:"created_at"`
}

type galleryResponse struct {
	Photos []galleryPhoto `json:"photos"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

type reactionRequest struct {
	Reaction string `json:"reaction" binding:"required"`
}

func (h *handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBody)

	sub := &services.Submission{}
	fh, err := c.FormFile("file")
	switch {
	case err == nil:
		f, err := fh.Open()
		if err != nil {
			h.writeError(c, err, uploadMessages)
			return
		}
		defer f.Close()
		sub.Body = f
		sub.Filename = fh.Filename
		sub.MediaType = fh.Header.Get("Content-Type")
		sub.Size = fh.Size
	case isBodyTooLarge(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
		return
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// left empty: validation reports the missing file
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data"})
		return
	}
	sub.Caption = c.PostForm("caption")
	sub.Location = c.PostForm("location")

	photo, err := h.photos.Upload(c.Request.Context(), sessionFrom(c), sub)
	if err != nil {
		h.writeError(c, err, uploadMessages)
		return
	}

	c.JSON(http.StatusOK, uploadResponse{
		Success: true,
		Photo:   photo,
		Message: services.UploadMessage,
	})
}

func isBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return true
	}
	return errors.Is(err, multipart.ErrMessageTooLarge) || strings.Contains(err.Error(), "request body too large")
}

func (h *handler) listPhotos(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a number"})
		return
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be a number"})
		return
	}
	limit, offset = services.NormalizePage(limit, offset)

	photos, err := h.photos.ListApproved(c.Request.Context(), limit, offset)
	if err != nil {
		h.writeError(c, err, galleryMessages)
		return
	}

	resp := galleryResponse{Photos: make([]galleryPhoto, 0, len(photos)), Limit: limit, Offset: offset}
	for _, p := range photos {
		resp.Photos = append(resp.Photos, galleryPhoto{
			ID:        p.ID,
			PhotoURL:  p.PhotoURL,
			Caption:   p.Caption,
			Location:  p.Location,
			CreatedAt: p.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, resp)
}

func queryInt(c *gin.Context, name string) (int, error) {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

func (h *handler) login(c *gin.Context) {
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	marker, err := h.gate.Login(req.Password)
	switch {
	case err == nil:
	case errors.Is(err, common.ErrInvalidPassword):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password"})
		return
	case errors.Is(err, common.ErrGateNotConfigured):
		h.logger.Error(c.Request.Context(), "site password is not configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Site password not configured"})
		return
	default:
		h.logger.Error(c.Request.Context(), "site login failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(common.SiteGateCookieName, marker, int(auth.GateValidity/time.Second), "/", "", h.secureCookies, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *handler) react(c *gin.Context) {
	var req reactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reaction is required"})
		return
	}

	r, err := h.reactions.React(c.Request.Context(), sessionFrom(c), c.Param("id"), models.Reaction(strings.ToLower(req.Reaction)))
	if err != nil {
		h.writeError(c, err, reactionMessages)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "reaction": r})
}

func (h *handler) reactionCounts(c *gin.Context) {
	id := c.Param("id")
	counts, err := h.reactions.Counts(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, galleryMessages)
		return
	}
	c.JSON(http.StatusOK, gin.H{"photo_id": id, "reactions": counts})
}

func (h *handler) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.pingTimeout())
	defer cancel()

	if h.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warn(ctx, "database ping failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handler) pingTimeout() time.Duration {
	if h.dbTimeout > 0 {
		return h.dbTimeout
	}
	return 2 * time.Second
}
