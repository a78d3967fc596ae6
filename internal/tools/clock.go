package tools

import (
	"context"
	"time"

	"golang.org/x/text/language"

	"github.com/tjfontaine/toolchat/internal/domain"
)

// CurrentTimeTool is the clock tool name.
const CurrentTimeTool = "getCurrentTime"

var currentTimeDeclaration = domain.ToolDeclaration{
	Name:        CurrentTimeTool,
	Description: "Gets the current time and date of the host system.",
}

// CurrentTime returns {time, date} formatted for tag. now defaults to time.Now.
func CurrentTime(tag language.Tag, now func() time.Time) Executor {
	if now == nil {
		now = time.Now
	}
	layout := layoutFor(tag)

	return func(ctx context.Context, args map[string]any) (domain.ToolResult, error) {
		t := now()
		return domain.ToolResult{
			"time": t.Format(layout.time),
			"date": t.Format(layout.date),
		}, nil
	}
}
