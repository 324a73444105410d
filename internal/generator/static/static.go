// Package static holds canned per-type payloads served when the external
// generator is unavailable and fallback content is enabled. Records built
// from these payloads carry model.SourceFallback so the regenerate operation
// can later replace them with real generated content.
package static

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dayboard/dayboard/internal/model"
)

var payloads = map[model.ContentType]json.RawMessage{
	model.ContentFoodPlan:       json.RawMessage(`{"note":"fallback","meals":["oatmeal with fruit","lentil soup","grilled vegetables with rice"]}`),
	model.ContentLanguageLesson: json.RawMessage(`{"note":"fallback","phrase":"buenos días","translation":"good morning"}`),
	model.ContentAnalyticsQuiz:  json.RawMessage(`{"note":"fallback","question":"What is the median of 1, 3, 5, 7, 9?","answer":"5"}`),
	model.ContentPhysicsFact:    json.RawMessage(`{"note":"fallback","fact":"Light takes about 8 minutes and 20 seconds to travel from the Sun to Earth."}`),
	model.ContentExercisePlan:   json.RawMessage(`{"note":"fallback","blocks":["20 min walk","3x10 squats","10 min stretching"]}`),
	model.ContentDailyBrief:     json.RawMessage(`{"note":"fallback","brief":"No generated brief available for this date."}`),
}

type Generator struct{}

func New() *Generator { return &Generator{} }

func (g *Generator) Generate(_ context.Context, contentType model.ContentType, _ model.Date) (json.RawMessage, error) {
	p, ok := payloads[contentType]
	if !ok {
		return nil, fmt.Errorf("no fallback payload for content type %q", contentType)
	}
	return p, nil
}
