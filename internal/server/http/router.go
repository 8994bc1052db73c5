// Package http exposes the gallery over HTTP: the upload and listing API,
// the site password gate and the static site behind it.
package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/guestgallery/internal/logging"
	"github.com/dmitrijs2005/guestgallery/internal/server/config"
	"github.com/dmitrijs2005/guestgallery/internal/server/metrics"
	"github.com/dmitrijs2005/guestgallery/internal/server/models"
	"github.com/dmitrijs2005/guestgallery/internal/server/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// PhotoService is the part of services.PhotoService used by the handlers.
type PhotoService interface {
	Upload(ctx context.Context, session *models.Session, sub *services.Submission) (*models.GuestPhoto, error)
	ListApproved(ctx context.Context, limit, offset int) ([]*models.GuestPhoto, error)
}

// GateService is the part of services.GateService used by the handlers.
type GateService interface {
	Login(password string) (string, error)
	Allow(present bool, value string) bool
}

// ReactionService is the part of services.ReactionService used by the handlers.
type ReactionService interface {
	React(ctx context.Context, session *models.Session, photoID string, reaction models.Reaction) (*models.GalleryReaction, error)
	Counts(ctx context.Context, photoID string) (map[models.Reaction]int64, error)
}

// Pinger reports database liveness; *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps are the collaborators of the HTTP API.
type Deps struct {
	Photos    PhotoService
	Gate      GateService
	Reactions ReactionService
	DB        Pinger
	Observer  metrics.Observer
	Logger    logging.Logger
}

type handler struct {
	photos        PhotoService
	gate          GateService
	reactions     ReactionService
	db            Pinger
	logger        logging.Logger
	sessionSecret []byte
	secureCookies bool
	dbTimeout     time.Duration
}

// NewRouter builds the gin engine serving the whole site.
func NewRouter(cfg *config.Config, d Deps) *gin.Engine {
	if d.Observer == nil {
		d.Observer = metrics.Nop()
	}
	if d.Logger == nil {
		d.Logger = logging.Nop()
	}
	l := d.Logger.With("module", "http_server")

	h := &handler{
		photos:        d.Photos,
		gate:          d.Gate,
		reactions:     d.Reactions,
		db:            d.DB,
		logger:        l,
		sessionSecret: []byte(cfg.SessionSecret),
		secureCookies: cfg.SecureCookies,
		dbTimeout:     cfg.DatabaseTimeout,
	}

	engine := gin.New()
	engine.MaxMultipartMemory = 8 << 20
	engine.HandleMethodNotAllowed = false

	engine.Use(requestIDMiddleware())
	engine.Use(accessLogMiddleware(l, d.Observer))
	engine.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		l.Error(c.Request.Context(), "panic recovered", "panic", recovered, "path", c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}))
	if len(cfg.CORSOrigins) > 0 {
		engine.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Requested-With"},
			ExposeHeaders:    []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	engine.Use(gateMiddleware(d.Gate))

	engine.GET("/password", servePasswordPage)

	api := engine.Group("/api")
	api.Use(sessionMiddleware(h.sessionSecret))
	{
		api.GET("/health", h.health)
		api.POST("/auth/password", h.login)

		gallery := api.Group("/gallery")
		gallery.POST("/upload", uploadRateLimit(cfg.UploadRatePerMinute, cfg.UploadBurst), h.upload)
		gallery.GET("/photos", h.listPhotos)
		gallery.GET("/photos/:id/reactions", h.reactionCounts)
		gallery.POST("/photos/:id/reactions", h.react)
	}

	engine.NoRoute(staticHandler(cfg.StaticDir))

	return engine
}

// staticHandler serves the site files; unknown API paths get a JSON 404.
func staticHandler(dir string) gin.HandlerFunc {
	var files http.Handler
	if dir != "" {
		files = http.FileServer(http.Dir(dir))
	}
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if isAPIPath(p) || files == nil || (c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	}
}

func isAPIPath(p string) bool {
	return p == "/api" || strings.HasPrefix(p, "/api/")
}
