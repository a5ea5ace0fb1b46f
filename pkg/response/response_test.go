package response_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/foodineye/pkg/apperr"
	"github.com/shashiranjanraj/foodineye/pkg/response"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v3/foods/food?id=abc", nil)

	response.Success(rec, req, map[string]int{"n": 1})

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "GET /api/v3/foods/food?id=abc", env.Request)
	assert.Equal(t, response.StatusOK, env.Status)
	assert.Empty(t, env.Code)
}

func TestFailMapsKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
		msg    string
	}{
		{apperr.Scope("scope mismatch"), http.StatusUnauthorized, "ScopeError", "scope mismatch"},
		{apperr.Duplicate("taken"), http.StatusConflict, "DuplicateError", "taken"},
		{apperr.E(apperr.KindDecode, "bad image", nil), http.StatusUnprocessableEntity, "DecodeError", "bad image"},
		{errors.New("secret driver detail"), http.StatusInternalServerError, "InternalError", "Internal Server Error"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/x", nil)

		response.Fail(rec, req, tc.err)

		assert.Equal(t, tc.status, rec.Code)
		env := decode(t, rec)
		assert.Equal(t, response.StatusError, env.Status)
		assert.Equal(t, tc.code, env.Code)
		assert.Equal(t, tc.msg, env.Message)
	}
}
