package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redundancy-gate/gateway/internal/record/service"
	"github.com/redundancy-gate/gateway/pkg/logger"
	"github.com/redundancy-gate/gateway/pkg/middleware"
)

const (
	msgDuplicate = "Data already exists in database"
	msgUnique    = "Data stored successfully"
)

// Handler serves the redundancy check endpoint.
type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the endpoint at path for every HTTP method. CORS runs
// first so that responses from mw (e.g. a 429) still carry the headers.
func RegisterRoutes(r gin.IRoutes, path string, h *Handler, mw ...gin.HandlerFunc) {
	chain := make([]gin.HandlerFunc, 0, len(mw)+2)
	chain = append(chain, middleware.CORS())
	chain = append(chain, mw...)
	chain = append(chain, h.Handle)
	r.Any(path, chain...)
}

// RegisterFallback answers verbs that Any does not route (PURGE, PROPFIND, ...)
// on the mounted gateway paths with the same CORS headers and 405 body as
// Handle. Other paths keep gin's plain 405. An engine has a single NoMethod
// chain, so pass every gateway path in one call.
func RegisterFallback(e *gin.Engine, h *Handler, paths []string, mw ...gin.HandlerFunc) {
	mounted := make(map[string]bool, len(paths))
	for _, p := range paths {
		mounted[p] = true
	}
	gate := func(c *gin.Context) {
		if !mounted[c.Request.URL.Path] {
			c.Abort()
		}
	}
	chain := make([]gin.HandlerFunc, 0, len(mw)+3)
	chain = append(chain, gate, middleware.CORS())
	chain = append(chain, mw...)
	chain = append(chain, h.Handle)

	e.HandleMethodNotAllowed = true
	e.NoMethod(chain...)
}

// Handle dispatches on the request method.
func (h *Handler) Handle(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodOptions:
		c.Status(http.StatusOK)
	case http.MethodGet:
		c.JSON(http.StatusOK, h.svc.Health())
	case http.MethodPost:
		h.submit(c)
	default:
		h.writeError(c, &service.MethodNotSupportedError{Method: c.Request.Method})
	}
}

func (h *Handler) submit(c *gin.Context) {
	var req struct {
		Content string `json:"content"`
	}
	// a malformed body or a non-string content counts as missing content
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Debugf("submit: unreadable body: %v", err)
		h.writeError(c, service.ErrContentRequired)
		return
	}

	res, err := h.svc.Submit(c.Request.Context(), req.Content)
	if err != nil {
		h.writeError(c, err)
		return
	}

	rec := res.Record
	if res.Status == service.Duplicate {
		c.JSON(http.StatusOK, gin.H{
			"success":           true,
			"status":            string(service.Duplicate),
			"message":           msgDuplicate,
			"duplicate":         true,
			"existingId":        rec.ID,
			"existingContent":   rec.Content,
			"existingTimestamp": rec.CreatedAt,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"status":     string(service.Unique),
		"message":    msgUnique,
		"duplicate":  false,
		"documentId": rec.ID,
		"content":    rec.Content,
		"timestamp":  rec.CreatedAt,
	})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var (
		ve *service.ValidationError
		se *service.StorageError
		me *service.MethodNotSupportedError
	)
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": ve.Message})
	case errors.As(err, &me):
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	case errors.As(err, &se):
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Database error", "details": se.Detail()})
	default:
		logger.Errorf("unclassified error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Database error", "details": err.Error()})
	}
}
