package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"seo_article_generator/apperr"
	"seo_article_generator/logging"
)

type stubPublisher struct {
	preview string
	err     error
	ctxErr  error
}

func (s *stubPublisher) PublishArticle(ctx context.Context) (string, error) {
	s.ctxErr = ctx.Err()
	return s.preview, s.err
}

func newTestServer(t *testing.T, pub ArticlePublisher, gatherer prometheus.Gatherer) (http.Handler, *observer.ObservedLogs) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	srv, err := New(pub, logging.FromZap(zap.New(core)), gatherer)
	require.NoError(t, err)
	return srv.Routes(), logs
}

func do(h http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestRoutes(t *testing.T) {
	t.Run("Should answer the liveness probe", func(t *testing.T) {
		h, _ := newTestServer(t, &stubPublisher{}, nil)
		w := do(h, http.MethodGet, "/")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message": "Article generator is running"}`, w.Body.String())
		assert.NotEmpty(t, w.Header().Get(requestIDHeader))
	})

	t.Run("Should return the preview as HTML", func(t *testing.T) {
		pub := &stubPublisher{preview: "<html><article><p>Hi</p></article></html>"}
		h, _ := newTestServer(t, pub, nil)
		w := do(h, http.MethodPost, "/process_text")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Equal(t, pub.preview, w.Body.String())
	})

	t.Run("Should map a missing input file to 404", func(t *testing.T) {
		pub := &stubPublisher{err: apperr.New(apperr.KindNotFound, "publisher.readSource", "text file /secret/input.txt not found")}
		h, logs := newTestServer(t, pub, nil)
		w := do(h, http.MethodPost, "/process_text")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"detail": "Text file not found"}`, w.Body.String())
		assert.NotContains(t, w.Body.String(), "/secret")

		entries := logs.FilterMessage("process_text failed").All()
		require.Len(t, entries, 1)
		assert.Contains(t, entries[0].ContextMap()["error"], "/secret/input.txt")
		assert.Equal(t, "not_found", entries[0].ContextMap()["kind"])
	})

	t.Run("Should hide upstream and unexpected details behind a generic 500", func(t *testing.T) {
		for _, err := range []error{
			apperr.Wrap(apperr.KindUpstream, "instructions", errors.New("invalid api key sk-xxx")),
			apperr.Wrap(apperr.KindConfiguration, "template", errors.New("no placeholder")),
			errors.New("plain failure"),
		} {
			h, _ := newTestServer(t, &stubPublisher{err: err}, nil)
			w := do(h, http.MethodPost, "/process_text")
			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.JSONEq(t, `{"detail": "Internal Server Error"}`, w.Body.String())
		}
	})

	t.Run("Should reject other methods on process_text", func(t *testing.T) {
		h, _ := newTestServer(t, &stubPublisher{}, nil)
		w := do(h, http.MethodGet, "/process_text")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Should run the pipeline with a context that outlives the client", func(t *testing.T) {
		pub := &stubPublisher{preview: "<p>x</p>"}
		h, _ := newTestServer(t, pub, nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/process_text", nil).WithContext(ctx))
		assert.NoError(t, pub.ctxErr)
	})

	t.Run("Should expose metrics when a gatherer is given", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		c := prometheus.NewCounter(prometheus.CounterOpts{Name: "articlegen_test_total", Help: "test"})
		reg.MustRegister(c)
		c.Inc()
		h, _ := newTestServer(t, &stubPublisher{}, reg)
		w := do(h, http.MethodGet, "/metrics")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "articlegen_test_total 1")
	})

	t.Run("Should keep a caller supplied request id", func(t *testing.T) {
		h, logs := newTestServer(t, &stubPublisher{}, nil)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(requestIDHeader, "req-42")
		h.ServeHTTP(w, req)
		assert.Equal(t, "req-42", w.Header().Get(requestIDHeader))
		entries := logs.FilterMessage("http request").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "req-42", entries[0].ContextMap()["request_id"])
	})

	t.Run("Should require a publisher", func(t *testing.T) {
		_, err := New(nil, nil, nil)
		assert.Error(t, err)
	})
}
