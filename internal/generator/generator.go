// Package generator defines the external content-generation capability the
// orchestrator consumes. The core is agnostic to prompt text, response
// schema and provider; it only requires that the same logical call is safe
// to retry and that failure is distinguishable from success.
package generator

import (
	"context"
	"encoding/json"

	"github.com/dayboard/dayboard/internal/model"
)

// Generator produces the structured daily payload for one content type and
// date. Implementations must honor ctx deadlines; a timeout is a failure,
// never a partial success.
type Generator interface {
	Generate(ctx context.Context, contentType model.ContentType, date model.Date) (json.RawMessage, error)
}

// Func adapts a plain function to Generator.
type Func func(ctx context.Context, contentType model.ContentType, date model.Date) (json.RawMessage, error)

func (f Func) Generate(ctx context.Context, contentType model.ContentType, date model.Date) (json.RawMessage, error) {
	return f(ctx, contentType, date)
}
