package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"seo_article_generator/apperr"
	"seo_article_generator/logging"
)

const requestIDHeader = "X-Request-ID"

// ArticlePublisher runs the generation pipeline and returns the preview HTML.
type ArticlePublisher interface {
	PublishArticle(ctx context.Context) (string, error)
}

type Server struct {
	pub      ArticlePublisher
	logger   *logging.Logger
	gatherer prometheus.Gatherer
}

// New wires the HTTP surface. gatherer may be nil, in which case /metrics is
// not mounted.
func New(pub ArticlePublisher, logger *logging.Logger, gatherer prometheus.Gatherer) (*Server, error) {
	if pub == nil {
		return nil, errors.New("article publisher required")
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Server{pub: pub, logger: logger, gatherer: gatherer}, nil
}

func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(requestID(), accessLog(s.logger), gin.Recovery())

	r.GET("/", s.handleRoot)
	r.POST("/process_text", s.handleProcessText)
	if s.gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}
	return r
}

// --- Handlers ---

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Article generator is running"})
}

func (s *Server) handleProcessText(c *gin.Context) {
	// A started pipeline runs to completion even if the client goes away,
	// so the output files are never left half-replaced by a disconnect.
	ctx := context.WithoutCancel(c.Request.Context())

	preview, err := s.pub.PublishArticle(ctx)
	if err != nil {
		status, detail := errorResponse(err)
		s.requestLogger(c).Error("process_text failed",
			"kind", string(apperr.KindOf(err)),
			"status", status,
			"error", err.Error(),
		)
		c.JSON(status, gin.H{"detail": detail})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(preview))
}

// errorResponse maps an error kind to the status and the generic detail the
// caller sees. Specifics stay in the server log.
func errorResponse(err error) (int, string) {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return http.StatusNotFound, "Text file not found"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}

// --- Middleware ---

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func accessLog(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.Request.URL.Path
		if path == "" {
			path = "/"
		}
		logger.Info("http request",
			"request_id", c.GetString("request_id"),
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (s *Server) requestLogger(c *gin.Context) *logging.Logger {
	return s.logger.With("request_id", c.GetString("request_id"))
}
