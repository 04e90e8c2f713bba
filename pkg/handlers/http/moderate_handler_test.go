package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NeuralTrust/ContentGuard/pkg/app/metrics"
	"github.com/NeuralTrust/ContentGuard/pkg/app/moderation"
	moderationmocks "github.com/NeuralTrust/ContentGuard/pkg/app/moderation/mocks"
	domain "github.com/NeuralTrust/ContentGuard/pkg/domain/moderation"
	"github.com/NeuralTrust/ContentGuard/pkg/infra/classifier"
	"github.com/NeuralTrust/ContentGuard/pkg/infra/classifier/mocks"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newModerationApp(t *testing.T, c classifier.Classifier) (*fiber.App, moderation.Moderator) {
	t.Helper()
	logger := newTestLogger()
	policy, err := domain.NewPolicy(0.8, 0.7, []string{"non_toxic"}, map[string]string{"inappropriate": "inappropriate_content"})
	require.NoError(t, err)
	svc := moderation.NewService(logger, c, moderation.NewEngine(policy), metrics.NewAggregator())

	app := fiber.New()
	app.Post("/api/moderate", NewModerateHandler(logger, svc).Handle)
	app.Get("/api/metrics", NewGetMetricsHandler(logger, svc).Handle)
	return app, svc
}

func postJSON(t *testing.T, app *fiber.App, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/api/moderate", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return do(t, app, req)
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, map[string]interface{}) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestModerateHandler_FlaggedText(t *testing.T) {
	c := new(mocks.MockClassifier)
	c.On("Name").Return("mock")
	c.On("Classify", mock.Anything, domain.ContentTypeText, classifier.TextContent("you are awful")).
		Return(domain.LabelScores{"toxic": 0.92, "insult": 0.85, "threat": 0.1}, nil)

	app, _ := newModerationApp(t, c)
	status, body := postJSON(t, app, map[string]string{"type": "text", "content": "you are awful"})

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["is_inappropriate"])
	assert.InDelta(t, 0.92, body["confidence"], 1e-9)
	assert.Equal(t, []interface{}{"toxic", "insult"}, body["flagged_categories"])
	assert.NotContains(t, body, "error")
	c.AssertExpectations(t)
}

func TestModerateHandler_CleanText(t *testing.T) {
	c := new(mocks.MockClassifier)
	c.On("Name").Return("mock")
	c.On("Classify", mock.Anything, domain.ContentTypeText, mock.Anything).
		Return(domain.LabelScores{"toxic": 0.8}, nil)

	app, _ := newModerationApp(t, c)
	status, body := postJSON(t, app, map[string]string{"type": "text", "content": "borderline"})

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, false, body["is_inappropriate"])
	assert.Equal(t, []interface{}{}, body["flagged_categories"])
}

func TestModerateHandler_ClassifierFailureFailsOpen(t *testing.T) {
	c := new(mocks.MockClassifier)
	c.On("Name").Return("mock")
	c.On("Classify", mock.Anything, domain.ContentTypeImage, mock.Anything).
		Return(nil, domain.NewClassificationError("cannot decode image: unknown format", nil))

	app, _ := newModerationApp(t, c)
	status, body := postJSON(t, app, map[string]string{"type": "image", "content": "data:image/png;base64,AAAA"})

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, false, body["is_inappropriate"])
	assert.Equal(t, float64(0), body["confidence"])
	assert.Equal(t, map[string]interface{}{}, body["scores"])
	assert.Equal(t, "cannot decode image: unknown format", body["error"])
}

func TestModerateHandler_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    interface{}
		wantErr string
	}{
		{name: "invalid type", body: map[string]string{"type": "video", "content": "x"}, wantErr: `Invalid content type. Must be either "text" or "image"`},
		{name: "missing content", body: map[string]string{"type": "text"}, wantErr: "Missing content type or content"},
		{name: "missing type", body: map[string]string{"content": "hello"}, wantErr: "Missing content type or content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := new(mocks.MockClassifier)
			app, svc := newModerationApp(t, c)

			status, body := postJSON(t, app, tt.body)

			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.Equal(t, tt.wantErr, body["error"])
			assert.Equal(t, int64(0), svc.Metrics().TotalChecks)
			c.AssertNotCalled(t, "Classify", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestModerateHandler_InvalidJSON(t *testing.T) {
	app, _ := newModerationApp(t, new(mocks.MockClassifier))

	req := httptest.NewRequest("POST", "/api/moderate", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	status, body := do(t, app, req)

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, ErrInvalidJsonPayload, body["error"])
}

func TestModerateHandler_RawImageUpload(t *testing.T) {
	raw := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}
	c := new(mocks.MockClassifier)
	c.On("Name").Return("mock")
	c.On("Classify", mock.Anything, domain.ContentTypeImage, classifier.RawContent(raw)).
		Return(domain.LabelScores{"inappropriate": 0.75}, nil)

	app, _ := newModerationApp(t, c)
	req := httptest.NewRequest("POST", "/api/moderate", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "image/png")
	status, body := do(t, app, req)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["is_inappropriate"])
	assert.Equal(t, []interface{}{"inappropriate_content"}, body["flagged_categories"])
}

func TestModerateHandler_RawUploadInvalidType(t *testing.T) {
	app, _ := newModerationApp(t, new(mocks.MockClassifier))

	req := httptest.NewRequest("POST", "/api/moderate?type=audio", bytes.NewReader([]byte{1, 2, 3}))
	req.Header.Set("Content-Type", "application/octet-stream")
	status, body := do(t, app, req)

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, `Invalid content type. Must be either "text" or "image"`, body["error"])
}

func TestModerateHandler_InternalError(t *testing.T) {
	moderator := new(moderationmocks.MockModerator)
	moderator.On("Moderate", mock.Anything, mock.MatchedBy(func(req moderation.Request) bool {
		return req.Type == "text"
	})).Return(nil, errors.New("unexpected")).Once()

	app := fiber.New()
	app.Post("/api/moderate", NewModerateHandler(newTestLogger(), moderator).Handle)

	status, body := postJSON(t, app, map[string]string{"type": "text", "content": "hi"})

	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, ErrInternalServer, body["error"])
	moderator.AssertExpectations(t)
}

func TestGetMetricsHandler_ServesModeratorSnapshot(t *testing.T) {
	moderator := new(moderationmocks.MockModerator)
	moderator.On("Metrics").Return(domain.Snapshot{
		TotalChecks:       4,
		FlaggedContent:    1,
		TextChecks:        4,
		CategoryCounts:    map[string]int64{"toxic": 1},
		FlaggedPercentage: 25,
	}).Once()

	app := fiber.New()
	app.Get("/api/metrics", NewGetMetricsHandler(newTestLogger(), moderator).Handle)

	status, body := do(t, app, httptest.NewRequest("GET", "/api/metrics", nil))

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(4), body["total_checks"])
	assert.Equal(t, float64(25), body["flagged_percentage"])
	assert.Equal(t, map[string]interface{}{"toxic": float64(1)}, body["category_counts"])
	moderator.AssertExpectations(t)
}

func TestGetMetricsHandler_Snapshot(t *testing.T) {
	c := new(mocks.MockClassifier)
	c.On("Name").Return("mock")
	c.On("Classify", mock.Anything, domain.ContentTypeText, classifier.TextContent("bad")).
		Return(domain.LabelScores{"toxic": 0.95}, nil)
	c.On("Classify", mock.Anything, domain.ContentTypeText, classifier.TextContent("fine")).
		Return(domain.LabelScores{"toxic": 0.05}, nil)
	c.On("Classify", mock.Anything, domain.ContentTypeImage, mock.Anything).
		Return(domain.LabelScores{"inappropriate": 0.9}, nil)

	app, _ := newModerationApp(t, c)
	postJSON(t, app, map[string]string{"type": "text", "content": "bad"})
	postJSON(t, app, map[string]string{"type": "text", "content": "fine"})
	postJSON(t, app, map[string]string{"type": "image", "content": "data:image/png;base64,AAAA"})

	status, body := do(t, app, httptest.NewRequest("GET", "/api/metrics", nil))

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(3), body["total_checks"])
	assert.Equal(t, float64(2), body["flagged_content"])
	assert.Equal(t, float64(2), body["text_checks"])
	assert.Equal(t, float64(1), body["image_checks"])
	assert.Equal(t, map[string]interface{}{"toxic": float64(1), "inappropriate_content": float64(1)}, body["category_counts"])
	assert.InDelta(t, 66.67, body["flagged_percentage"], 1e-9)
}

func TestGetVersionHandler(t *testing.T) {
	app := fiber.New()
	app.Get("/version", NewGetVersionHandler(newTestLogger()).Handle)

	status, body := do(t, app, httptest.NewRequest("GET", "/version", nil))

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ContentGuard", body["app_name"])
	assert.NotEmpty(t, body["version"])
}
