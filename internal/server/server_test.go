package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/contest-guide/internal/advisor"
	"github.com/spigell/contest-guide/internal/ai"
	"github.com/spigell/contest-guide/internal/config"
	"github.com/spigell/contest-guide/internal/contest"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *string         `json:"error"`
	Meta    *Meta           `json:"meta"`
}

type formFile struct {
	field    string
	name     string
	mimeType string
	data     []byte
}

func newTestServer(t *testing.T, svc *advisor.Service) *fiber.App {
	t.Helper()
	if svc == nil {
		svc = advisor.New(advisor.Options{Mode: config.ModeMock})
	}
	cfg := &config.ServerConfig{Port: 0, CORSOrigins: []string{"http://localhost:5173"}}
	return New(cfg, svc, nil).App()
}

func multipartRequest(t *testing.T, path string, fields map[string]string, files ...formFile) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.name))
		h.Set("Content-Type", f.mimeType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func jsonRequest(t *testing.T, path string, payload any) *http.Request {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, envelope) {
	t.Helper()

	resp, err := app.Test(req, fiber.TestConfig{Timeout: 30 * time.Second, FailOnTimeout: true})
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return resp.StatusCode, env
}

const validProfile = `{"major":"CS","skills":[{"name":"Python","level":3}],"hoursPerWeek":10}`

func TestHealth(t *testing.T) {
	t.Parallel()

	app := newTestServer(t, nil)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var got HealthStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, HealthStatus{
		Status:  "healthy",
		Version: config.Version,
		Service: "contest-guide-api",
		AIMode:  config.ModeMock,
		Model:   "mock",
	}, got)
	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))
}

func TestAnalyzeMockMode(t *testing.T) {
	t.Parallel()

	app := newTestServer(t, nil)
	status, env := do(t, app, multipartRequest(t, "/analyze", map[string]string{
		"user_profile": validProfile,
		"contest_text": "2026 AI 해커톤 참가자 모집",
	}))

	require.Equal(t, fiber.StatusOK, status)
	require.True(t, env.Success)
	require.NotNil(t, env.Meta)
	assert.Equal(t, config.ModeMock, env.Meta.AIMode)
	assert.Equal(t, "mock", env.Meta.ModelUsed)

	var data contest.AnalysisData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, contest.CategoryAI, data.ContestInfo.Category)
	assert.GreaterOrEqual(t, data.Analysis.Scores.SkillMatch.Score, 0)
	assert.LessOrEqual(t, data.Analysis.Scores.SkillMatch.Score, 100)
	assert.Nil(t, data.Analysis.Checklist)
}

func TestAnalyzeOptionsEnableChecklist(t *testing.T) {
	t.Parallel()

	app := newTestServer(t, nil)
	_, env := do(t, app, multipartRequest(t, "/analyze", map[string]string{
		"user_profile": validProfile,
		"contest_text": "web development contest",
		"options":      `{"generateChecklist": true}`,
	}))
	require.True(t, env.Success)

	var data contest.AnalysisData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.NotEmpty(t, data.Analysis.Checklist)
}

func TestAnalyzeValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fields  map[string]string
		files   []formFile
		wantErr string
	}{
		{
			name:    "profile is not json",
			fields:  map[string]string{"user_profile": "not json", "contest_text": "AI contest"},
			wantErr: "Invalid user profile JSON format",
		},
		{
			name:    "profile has wrong shape",
			fields:  map[string]string{"user_profile": `{"skills":"python"}`, "contest_text": "AI contest"},
			wantErr: "Invalid user profile format",
		},
		{
			name:    "disallowed image type",
			fields:  map[string]string{"user_profile": validProfile},
			files:   []formFile{{field: "contest_image", name: "poster.pdf", mimeType: "application/pdf", data: []byte("%PDF-1.4")}},
			wantErr: "Invalid image type",
		},
		{
			name:    "image too large",
			fields:  map[string]string{"user_profile": validProfile},
			files:   []formFile{{field: "contest_image", name: "poster.png", mimeType: "image/png", data: make([]byte, 25*1024*1024)}},
			wantErr: "too large",
		},
		{
			name:    "neither text nor image",
			fields:  map[string]string{"user_profile": validProfile},
			wantErr: "Please provide contest text or image",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app := newTestServer(t, nil)
			status, env := do(t, app, multipartRequest(t, "/analyze", tt.fields, tt.files...))

			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Contains(t, *env.Error, tt.wantErr)
			assert.Nil(t, env.Meta)
		})
	}
}

func TestAnalyzeImageOnlyAndEmptyProfile(t *testing.T) {
	t.Parallel()

	app := newTestServer(t, nil)
	status, env := do(t, app, multipartRequest(t, "/analyze",
		map[string]string{"user_profile": "{}"},
		formFile{field: "contest_image", name: "poster.png", mimeType: "image/png", data: []byte{0x89, 'P', 'N', 'G'}},
	))
	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, env.Success)
}

type failingAnalyzer struct{}

func (failingAnalyzer) Analyze(context.Context, ai.AnalysisRequest) (*contest.AnalysisData, error) {
	return nil, &ai.ParseError{Raw: "garbage", Err: errors.New("no JSON object")}
}

func TestAnalyzeRuntimeFallbackReportsMock(t *testing.T) {
	t.Parallel()

	svc := advisor.New(advisor.Options{Analyzer: failingAnalyzer{}, Mode: config.ModeReal, Model: "gemini-2.5-flash"})
	app := newTestServer(t, svc)

	status, env := do(t, app, multipartRequest(t, "/analyze", map[string]string{
		"user_profile": validProfile,
		"contest_text": "startup pitch competition",
	}))
	require.Equal(t, fiber.StatusOK, status)
	require.True(t, env.Success)
	assert.Equal(t, config.ModeMock, env.Meta.AIMode)
	assert.Equal(t, "mock", env.Meta.ModelUsed)
}

func TestExtract(t *testing.T) {
	t.Parallel()

	app := newTestServer(t, nil)

	status, env := do(t, app, multipartRequest(t, "/extract", nil,
		formFile{field: "image", name: "poster.jpg", mimeType: "image/jpeg", data: []byte{0xff, 0xd8, 0xff}},
	))
	require.Equal(t, fiber.StatusOK, status)
	var data contest.Extraction
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, contest.LabelLow, data.Confidence.Title)
	assert.NotEmpty(t, data.RawText)

	status, env = do(t, app, multipartRequest(t, "/extract", nil,
		formFile{field: "image", name: "poster.bmp", mimeType: "image/bmp", data: []byte("BM")},
	))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, *env.Error, "Invalid image type. Allowed: image/jpeg, image/png, image/webp, image/gif")

	status, env = do(t, app, multipartRequest(t, "/extract", map[string]string{"note": "no file"}))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.False(t, env.Success)
}

func TestAssistantSuggest(t *testing.T) {
	t.Parallel()

	app := newTestServer(t, nil)
	status, env := do(t, app, jsonRequest(t, "/assistant/suggest", map[string]any{
		"currentPage": "contests",
		"type":        "deadline_warning",
		"contests":    []map[string]any{{"id": "c1", "title": "Data Cup"}},
	}))
	require.Equal(t, fiber.StatusOK, status)

	var msg advisor.AssistantMessage
	require.NoError(t, json.Unmarshal(env.Data, &msg))
	assert.Equal(t, "warning", msg.Tone)
	assert.Contains(t, msg.Message, "Data Cup")

	status, env = do(t, app, jsonRequest(t, "/assistant/suggest", map[string]any{
		"currentPage": "home",
		"contests":    []map[string]any{{"title": map[string]any{"nested": true}}},
	}))
	assert.Equal(t, fiber.StatusInternalServerError, status)
	require.NotNil(t, env.Error)
	assert.True(t, strings.HasPrefix(*env.Error, "Failed to generate suggestion: "))
}

func TestReadiness(t *testing.T) {
	t.Parallel()

	app := newTestServer(t, nil)
	status, env := do(t, app, jsonRequest(t, "/readiness", map[string]any{
		"userProfile":     map[string]any{"skills": []map[string]any{{"name": "Python", "level": 3}}, "hoursPerWeek": 10},
		"contest":         map[string]any{"title": "AI Cup"},
		"currentProgress": map[string]any{"checklistDone": 5, "checklistTotal": 10},
	}))
	require.Equal(t, fiber.StatusOK, status)
	require.True(t, env.Success)

	var got advisor.Readiness
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, 50, got.Breakdown.ProgressReadiness)

	status, env = do(t, app, jsonRequest(t, "/readiness", map[string]any{
		"userProfile":     map[string]any{},
		"currentProgress": map[string]any{"checklistDone": "lots"},
	}))
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.True(t, strings.HasPrefix(*env.Error, "Calculation failed: "))
}

func TestUnknownRoute(t *testing.T) {
	t.Parallel()

	app := newTestServer(t, nil)
	status, env := do(t, app, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.False(t, env.Success)
}

func TestParseOptions(t *testing.T) {
	t.Parallel()

	assert.True(t, ParseOptions(`{"generateChecklist": true}`).GenerateChecklist)
	assert.True(t, ParseOptions(`{"generateChecklist": "true"}`).GenerateChecklist)
	assert.False(t, ParseOptions(`{broken`).GenerateChecklist)
	assert.False(t, ParseOptions("").GenerateChecklist)
}

func TestParseProfileFalsy(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"null", "{}", `""`, "0", "false"} {
		profile, err := ParseProfile(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, contest.DefaultWeeklyHours, profile.WeeklyHours())
	}

	_, err := ParseProfile(`[1, 2]`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid user profile format")
}
