package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/gravadigital/pulsepoll-api/internal/broadcast"
	"github.com/gravadigital/pulsepoll-api/internal/config"
	"github.com/gravadigital/pulsepoll-api/internal/domain/poll"
	"github.com/gravadigital/pulsepoll-api/internal/services"
	"github.com/gravadigital/pulsepoll-api/internal/storage/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestRouter(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()

	catalog, err := poll.NewCatalog([]poll.Poll{
		{ID: "color", Question: "Pick a color", AnswerType: poll.AnswerSingleChoice, Options: []string{"Red", "Blue"}},
		{ID: "feedback", Question: "Feedback?", AnswerType: poll.AnswerFreeText},
	})
	require.NoError(t, err)

	hub := broadcast.NewHub()
	service := services.NewIngestion(catalog, memory.NewVoteRepository(), hub, nil)

	pollHandler := NewPollHandler(service)
	voteHandler := NewVoteHandler(service)
	adminHandler := NewAdminHandler(service, cfg)

	router := gin.New()
	router.GET("/api/polls", pollHandler.GetCatalog)
	router.GET("/api/polls/:poll_id/results", voteHandler.GetResults)
	router.POST("/api/votes", voteHandler.SubmitVote)
	router.POST("/api/admin/login", adminHandler.Login)
	router.POST("/api/admin/reset", adminHandler.RequireAdmin(), adminHandler.Reset)
	return router
}

func doJSON(router *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestSubmitVote(t *testing.T) {
	router := newTestRouter(t, &config.Config{})

	w := doJSON(router, http.MethodPost, "/api/votes", gin.H{
		"poll_id":  "color",
		"voter_id": "device-1",
		"value":    "Red",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)

	var result struct {
		PollID         string `json:"poll_id"`
		TotalResponses int    `json:"total_responses"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "color", result.PollID)
	assert.Equal(t, 1, result.TotalResponses)
}

func TestSubmitVoteBadRequests(t *testing.T) {
	router := newTestRouter(t, &config.Config{})

	tests := []struct {
		name string
		body gin.H
	}{
		{name: "missing poll_id", body: gin.H{"voter_id": "device-1", "value": "Red"}},
		{name: "unknown poll", body: gin.H{"poll_id": "nope", "voter_id": "device-1", "value": "Red"}},
		{name: "missing voter_id", body: gin.H{"poll_id": "color", "value": "Red"}},
		{name: "missing value", body: gin.H{"poll_id": "color", "voter_id": "device-1"}},
		{name: "numeric value", body: gin.H{"poll_id": "color", "voter_id": "device-1", "value": 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, "/api/votes", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			env := decodeEnvelope(t, w)
			assert.False(t, env.Success)
			assert.NotEmpty(t, env.Error)
		})
	}
}

func TestSubmitVoteAcceptsSelectionArray(t *testing.T) {
	router := newTestRouter(t, &config.Config{})

	// Free-text polls never see arrays in practice, so exercise the array
	// payload form against a dedicated multi-select router.
	catalog, err := poll.NewCatalog([]poll.Poll{
		{ID: "topics", Question: "Pick topics", AnswerType: poll.AnswerMultiSelect, Options: []string{"X", "Y"}},
	})
	require.NoError(t, err)
	service := services.NewIngestion(catalog, memory.NewVoteRepository(), broadcast.NewHub(), nil)
	router = gin.New()
	router.POST("/api/votes", NewVoteHandler(service).SubmitVote)

	w := doJSON(router, http.MethodPost, "/api/votes", gin.H{
		"poll_id":  "topics",
		"voter_id": "device-1",
		"value":    []string{"X", "Y"},
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestGetResults(t *testing.T) {
	router := newTestRouter(t, &config.Config{})

	w := doJSON(router, http.MethodGet, "/api/polls/color/results", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	var result struct {
		Question string `json:"question"`
		Options  []struct {
			Option string `json:"option"`
			Count  int    `json:"count"`
		} `json:"options"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "Pick a color", result.Question)
	require.Len(t, result.Options, 2, "zero-vote options must still appear")
}

func TestGetResultsUnknownPoll(t *testing.T) {
	router := newTestRouter(t, &config.Config{})

	w := doJSON(router, http.MethodGet, "/api/polls/nope/results", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetCatalog(t *testing.T) {
	router := newTestRouter(t, &config.Config{})

	w := doJSON(router, http.MethodGet, "/api/polls", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	var polls []poll.Poll
	require.NoError(t, json.Unmarshal(env.Data, &polls))
	require.Len(t, polls, 2)
	assert.Equal(t, "color", polls[0].ID)
}

func adminConfig(t *testing.T, password string) *config.Config {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	cfg := &config.Config{}
	cfg.Admin.PasswordHash = string(hash)
	cfg.Admin.JWTSecret = "test-secret"
	return cfg
}

func TestAdminLoginAndReset(t *testing.T) {
	router := newTestRouter(t, adminConfig(t, "hunter2"))

	// Seed a vote so the reset has something to clear
	w := doJSON(router, http.MethodPost, "/api/votes", gin.H{
		"poll_id": "color", "voter_id": "device-1", "value": "Red",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodPost, "/api/admin/login", gin.H{"password": "hunter2"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	require.NotEmpty(t, login.Token)

	w = doJSON(router, http.MethodPost, "/api/admin/reset", nil, map[string]string{
		"Authorization": "Bearer " + login.Token,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/polls/color/results", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var result struct {
		TotalResponses int `json:"total_responses"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &result))
	assert.Equal(t, 0, result.TotalResponses)
}

func TestAdminLoginWrongPassword(t *testing.T) {
	router := newTestRouter(t, adminConfig(t, "hunter2"))

	w := doJSON(router, http.MethodPost, "/api/admin/login", gin.H{"password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminLoginUnconfigured(t *testing.T) {
	router := newTestRouter(t, &config.Config{})

	w := doJSON(router, http.MethodPost, "/api/admin/login", gin.H{"password": "anything"}, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAdminResetRequiresToken(t *testing.T) {
	router := newTestRouter(t, adminConfig(t, "hunter2"))

	tests := []struct {
		name    string
		headers map[string]string
	}{
		{name: "no header", headers: nil},
		{name: "not a bearer token", headers: map[string]string{"Authorization": "Basic abc"}},
		{name: "garbage token", headers: map[string]string{"Authorization": "Bearer not.a.jwt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, "/api/admin/reset", nil, tt.headers)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}
