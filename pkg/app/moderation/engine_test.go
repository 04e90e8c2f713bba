package moderation

import (
	"errors"
	"math"
	"testing"

	domain "github.com/NeuralTrust/ContentGuard/pkg/domain/moderation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func referencePolicy(t *testing.T) domain.Policy {
	t.Helper()
	p, err := domain.NewPolicy(0.8, 0.7, []string{"non_toxic"}, map[string]string{"inappropriate": "inappropriate_content"})
	require.NoError(t, err)
	return p
}

func TestEngine_Decide(t *testing.T) {
	engine := NewEngine(referencePolicy(t))

	tests := []struct {
		name           string
		contentType    domain.ContentType
		scores         domain.LabelScores
		wantFlag       bool
		wantConfidence float64
		wantCategories []string
	}{
		{
			name:           "toxic text above threshold",
			contentType:    domain.ContentTypeText,
			scores:         domain.LabelScores{"toxic": 0.95},
			wantFlag:       true,
			wantConfidence: 0.95,
			wantCategories: []string{"toxic"},
		},
		{
			name:           "toxic text below threshold",
			contentType:    domain.ContentTypeText,
			scores:         domain.LabelScores{"toxic": 0.5},
			wantConfidence: 0.5,
			wantCategories: []string{},
		},
		{
			name:           "score equal to threshold does not flag",
			contentType:    domain.ContentTypeText,
			scores:         domain.LabelScores{"toxic": 0.8},
			wantConfidence: 0.8,
			wantCategories: []string{},
		},
		{
			name:           "image uses image threshold",
			contentType:    domain.ContentTypeImage,
			scores:         domain.LabelScores{"inappropriate": 0.75},
			wantFlag:       true,
			wantConfidence: 0.75,
			wantCategories: []string{"inappropriate_content"},
		},
		{
			name:           "same score on text stays clean",
			contentType:    domain.ContentTypeText,
			scores:         domain.LabelScores{"inappropriate": 0.75},
			wantConfidence: 0.75,
			wantCategories: []string{},
		},
		{
			name:           "co-flagging labels ordered by score",
			contentType:    domain.ContentTypeText,
			scores:         domain.LabelScores{"insult": 0.85, "toxic": 0.97, "threat": 0.1, "obscene": 0.85},
			wantFlag:       true,
			wantConfidence: 0.97,
			wantCategories: []string{"toxic", "insult", "obscene"},
		},
		{
			name:           "benign complement is ignored",
			contentType:    domain.ContentTypeText,
			scores:         domain.LabelScores{"toxic": 0.05, "non_toxic": 0.95},
			wantConfidence: 0.05,
			wantCategories: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.Decide(tt.contentType, tt.scores, nil)

			assert.Equal(t, tt.wantFlag, result.IsInappropriate)
			assert.Equal(t, tt.wantConfidence, result.Confidence)
			assert.Equal(t, tt.wantCategories, result.FlaggedCategories)
			assert.Equal(t, tt.scores, result.Scores)
			assert.Nil(t, result.Error)
		})
	}
}

func TestEngine_Decide_ScoresAreCopied(t *testing.T) {
	engine := NewEngine(domain.DefaultPolicy())
	scores := domain.LabelScores{"toxic": 0.9}

	result := engine.Decide(domain.ContentTypeText, scores, nil)
	scores["toxic"] = 0.1

	assert.Equal(t, 0.9, result.Scores["toxic"])
}

func TestEngine_Decide_Failures(t *testing.T) {
	engine := NewEngine(domain.DefaultPolicy())

	tests := []struct {
		name    string
		scores  domain.LabelScores
		err     error
		wantMsg string
	}{
		{
			name:    "decode error",
			err:     domain.NewClassificationError("cannot decode image: image: unknown format", nil),
			wantMsg: "cannot decode image: image: unknown format",
		},
		{
			name:    "plain error",
			scores:  domain.LabelScores{"toxic": 0.99},
			err:     errors.New("connection refused"),
			wantMsg: "connection refused",
		},
		{
			name:    "empty scores",
			scores:  domain.LabelScores{},
			wantMsg: "Model returned no results",
		},
		{
			name:    "nil scores",
			wantMsg: "Model returned no results",
		},
		{
			name:    "NaN score",
			scores:  domain.LabelScores{"toxic": math.NaN()},
			wantMsg: `invalid score NaN for label "toxic"`,
		},
		{
			name:    "score above one",
			scores:  domain.LabelScores{"toxic": 1.5},
			wantMsg: `invalid score 1.5 for label "toxic"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.Decide(domain.ContentTypeImage, tt.scores, tt.err)

			assert.False(t, result.IsInappropriate)
			assert.Zero(t, result.Confidence)
			assert.Equal(t, domain.LabelScores{}, result.Scores)
			assert.Equal(t, []string{}, result.FlaggedCategories)
			require.NotNil(t, result.Error)
			assert.Equal(t, tt.wantMsg, *result.Error)
			assert.Equal(t, domain.SeverityNone, result.Severity())
		})
	}
}
