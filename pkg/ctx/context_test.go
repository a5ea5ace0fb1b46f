package ctx_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/foodineye/pkg/apperr"
	appctx "github.com/shashiranjanraj/foodineye/pkg/ctx"
	"github.com/shashiranjanraj/foodineye/pkg/response"
)

func envelope(t *testing.T, rec *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestSuccessCarriesRequestLine(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v3/foods?s_id=abc", nil)
	appctx.Wrap(func(c *appctx.Context) {
		c.Success(map[string]any{"id": 1})
	})(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := envelope(t, rec)
	assert.Equal(t, "GET /api/v3/foods?s_id=abc", env.Request)
	assert.Equal(t, "OK", env.Status)
}

func TestFailUsesErrorKind(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	appctx.Wrap(func(c *appctx.Context) {
		c.Fail(apperr.NotFound("no such food"))
		assert.Equal(t, http.StatusNotFound, c.WrittenStatus())
	})(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	env := envelope(t, rec)
	assert.Equal(t, "NotFoundError", env.Code)
	assert.Equal(t, "no such food", env.Message)
}

func TestBindJSONValidation(t *testing.T) {
	type input struct {
		Name string `json:"name" validate:"required"`
	}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	appctx.Wrap(func(c *appctx.Context) {
		var in input
		assert.False(t, c.BindJSON(&in))
	})(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name"`)
}

func TestRequireQuery(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/?id=", nil)
	appctx.Wrap(func(c *appctx.Context) {
		_, err := c.RequireQuery("id")
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})(rec, req)
}

func TestParam(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/menus/{s_id}", appctx.Wrap(func(c *appctx.Context) {
		c.Success(c.Param("s_id"))
	}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/menus/s42", nil))
	assert.Contains(t, rec.Body.String(), `"data":"s42"`)
}

func multipartRequest(t *testing.T, field string, payload []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, "upload.png")
	require.NoError(t, err)
	_, err = fw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestFormFile(t *testing.T) {
	rec := httptest.NewRecorder()
	appctx.Wrap(func(c *appctx.Context) {
		data, err := c.FormFile("file", 1024)
		require.NoError(t, err)
		assert.Equal(t, []byte("pixels"), data)

		_, err = c.FormFile("other", 1024)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})(rec, multipartRequest(t, "file", []byte("pixels")))
}

func TestFormFileTooLarge(t *testing.T) {
	rec := httptest.NewRecorder()
	appctx.Wrap(func(c *appctx.Context) {
		_, err := c.FormFile("file", 4)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})(rec, multipartRequest(t, "file", []byte("way too many bytes")))
}

func TestBytes(t *testing.T) {
	rec := httptest.NewRecorder()
	appctx.Wrap(func(c *appctx.Context) {
		c.Bytes(http.StatusOK, "image/jpeg", []byte{0xff, 0xd8})
	})(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, []byte{0xff, 0xd8}, rec.Body.Bytes())
}
