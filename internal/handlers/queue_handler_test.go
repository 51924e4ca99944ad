package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/httperr"
)

func recordError(t *testing.T, err error) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	writeQueueError(c, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestQueueErrorStatusMapping(t *testing.T) {
	cases := []struct {
		code   string
		status int
	}{
		{httperr.CodeAlreadyInQueue, http.StatusConflict},
		{httperr.CodeInvalidTransition, http.StatusBadRequest},
		{httperr.CodeNotYours, http.StatusForbidden},
		{httperr.CodeRemedyRequired, http.StatusBadRequest},
		{httperr.CodeNotFound, http.StatusNotFound},
		{httperr.CodePermissionDenied, http.StatusForbidden},
		{httperr.CodeStoreUnavailable, http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		w, body := recordError(t, httperr.ErrBusiness(tc.code))
		assert.Equal(t, tc.status, w.Code, tc.code)
		assert.Equal(t, tc.code, body["error_code"], tc.code)
	}
}

func TestQueueErrorRemedyRequiredFlag(t *testing.T) {
	_, body := recordError(t, httperr.ErrBusiness(httperr.CodeRemedyRequired))
	assert.Equal(t, true, body["requires_remedy"],
		"clients key their prescribe-first flow off this flag")
}

func TestQueueErrorUntypedMapsToStoreUnavailable(t *testing.T) {
	w, body := recordError(t, errors.New("dial tcp: connection refused"))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, httperr.CodeStoreUnavailable, body["error_code"])
}
