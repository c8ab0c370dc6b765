package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteErrorResponses(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteNotFoundResponse(rec, "Site not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"Site not found","code":"NOT_FOUND"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	WriteValidationErrorResponse(rec, "invalid site", "url: bad")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid site","code":"VALIDATION_ERROR","details":"url: bad"}`, rec.Body.String())
}

func TestWriteCreatedResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteCreatedResponse(rec, map[string]string{"id": "1"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":"1"}`, rec.Body.String())
}

func TestParseJSONBodyAndQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/sites?q=anime", strings.NewReader(`{"name":"Foo"}`))

	var body struct {
		Name string `json:"name"`
	}
	require.NoError(t, ParseJSONBody(req, &body))
	assert.Equal(t, "Foo", body.Name)

	assert.Equal(t, "anime", GetQueryParam(req, "q", ""))
	assert.Equal(t, "all", GetQueryParam(req, "category", "all"))
}
