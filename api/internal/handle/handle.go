package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"analyze-skin/api/internal/logging"
	"analyze-skin/api/internal/skin"
)

const MsgMethodNotAllowed = "Method not allowed."

type Handle struct {
	svc    *skin.Service
	logger *zap.Logger
}

func New(svc *skin.Service, logger *zap.Logger) *Handle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handle{svc: svc, logger: logger.Named("handle")}
}

// NewRouter returns a gin engine with the middleware chain and routes wired.
func NewRouter(h *Handle) *gin.Engine {
	r := gin.New()
	// POST on any path analyzes, so "/analyze-skin/" must not redirect.
	r.RedirectTrailingSlash = false
	r.Use(RequestID(h.logger), CORS(), Recovery(h.logger))
	h.Register(r)
	r.NoRoute(h.Fallback)
	return r
}

// Register wires the routes. OPTIONS on any path is answered by CORS and
// POST on unregistered paths by Fallback.
func (h *Handle) Register(r gin.IRoutes) {
	r.GET("/healthz", h.Healthz)
	r.POST("/", h.AnalyzeSkin)
	r.POST("/analyze-skin", h.AnalyzeSkin)
}

// Fallback serves the analysis on any POST path, e.g. the hosted
// "/functions/v1/analyze-skin", and rejects other methods with the envelope.
func (h *Handle) Fallback(c *gin.Context) {
	if c.Request.Method == http.MethodPost {
		h.AnalyzeSkin(c)
		return
	}
	c.Header("Allow", "POST, OPTIONS")
	c.JSON(http.StatusMethodNotAllowed, skin.ErrorResponse{Error: MsgMethodNotAllowed})
}

func (h *Handle) Healthz(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// fail logs err at the handler boundary and writes the JSON error envelope.
func (h *Handle) fail(c *gin.Context, err error) {
	status := skin.HTTPStatus(err)
	log := logging.FromContext(c.Request.Context(), h.logger)
	if status >= http.StatusInternalServerError {
		log.Error("Error in analyze-skin handler", zap.Error(err), zap.Int("status", status))
	} else {
		log.Warn("rejected analyze-skin request", zap.Error(err), zap.Int("status", status))
	}
	c.JSON(status, skin.ErrorResponse{Error: skin.PublicMessage(err)})
}
