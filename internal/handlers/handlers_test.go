package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/helixrag/ragengine/internal/errs"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHandleHealthz(t *testing.T) {
	r := gin.New()
	r.GET("/healthz", (&Server{}).handleHealthz)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestHandleConfigOptions(t *testing.T) {
	r := gin.New()
	s := &Server{}
	r.GET("/config/options", s.handleConfigOptions)

	req := httptest.NewRequest(http.MethodGet, "/config/options", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "chunking_strategy")
	assert.Contains(t, rec.Body.String(), "gemini")
}

func TestRespondError_MapsKnownKindToItsStatus(t *testing.T) {
	r := gin.New()
	r.GET("/err", func(c *gin.Context) {
		respondError(c, logrus.New(), errs.New(errs.KindNotFound, "pipeline x not found"))
	})

	req := httptest.NewRequest(http.MethodGet, "/err", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "pipeline x not found")
}

func TestRespondError_UnwrappedErrorFallsBackTo500(t *testing.T) {
	r := gin.New()
	r.GET("/err", func(c *gin.Context) {
		respondError(c, logrus.New(), assertErr{})
	})

	req := httptest.NewRequest(http.MethodGet, "/err", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
