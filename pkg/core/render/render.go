package render

import (
	"context"
	"fmt"

	"github.com/scienceol/chemdash/pkg/middleware/logger"
	"github.com/scienceol/chemdash/pkg/utils"
)

// Markup is display-ready depiction markup (SVG or an HTML fragment).
type Markup string

// ErrorMarkup is shown in place of a depiction the renderer could not produce.
const ErrorMarkup Markup = "<p>Error rendering molecule</p>"

// Renderer turns a structure string into markup. Implementations are pure and
// synchronous; a malformed structure is reported as code.RenderErr.
type Renderer interface {
	Render(structure string) (Markup, error)
}

// Safe renders structure and falls back to ErrorMarkup on any failure,
// including a panicking renderer.
func Safe(ctx context.Context, r Renderer, structure string) Markup {
	var (
		out Markup
		err error
	)
	if perr := utils.SafelyRun(func() {
		out, err = r.Render(structure)
	}); perr != nil {
		err = fmt.Errorf("renderer panic: %w", perr)
	}
	if err != nil {
		logger.Warnf(ctx, "render structure %q err: %v", structure, err)
		return ErrorMarkup
	}
	return out
}
