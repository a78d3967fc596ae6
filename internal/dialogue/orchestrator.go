// Package dialogue runs the request/response cycle with the model service,
// executing at most one round of tool calls per request.
package dialogue

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/tjfontaine/toolchat/internal/domain"
	"github.com/tjfontaine/toolchat/internal/gemini"
	"github.com/tjfontaine/toolchat/internal/history"
)

var tracer = otel.Tracer("github.com/tjfontaine/toolchat/internal/dialogue")

// ErrNoResponse is returned when the model answers without a candidate.
var ErrNoResponse = errors.New("no response from model")

// DefaultSystemInstruction is used when none is configured.
const DefaultSystemInstruction = "You are a helpful assistant that can use tools to answer questions. " +
	"Use the available tools when appropriate."

// Model is the part of the model service the orchestrator needs.
type Model interface {
	GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Dispatcher resolves and runs tools.
type Dispatcher interface {
	Declarations() []domain.ToolDeclaration
	Lookup(name string) (domain.ToolDeclaration, bool)
	Dispatch(ctx context.Context, call domain.ToolCall) (domain.ToolResult, error)
}

// Options configures an Orchestrator.
type Options struct {
	SystemInstruction string
	Policy            CallPolicy
	// CallTimeout bounds each outbound model call. Zero disables it.
	CallTimeout time.Duration
	// MaxRetries is the number of extra attempts after a transient network failure.
	MaxRetries   int
	RetryBackoff time.Duration
	Budget       *history.Budget
	Logger       *slog.Logger
}

// Orchestrator is safe for concurrent use; it holds no per-request state.
type Orchestrator struct {
	model        Model
	tools        Dispatcher
	geminiTools  []*genai.Tool
	system       string
	policy       CallPolicy
	callTimeout  time.Duration
	maxRetries   int
	retryBackoff time.Duration
	budget       *history.Budget
	logger       *slog.Logger
}

// New creates an orchestrator. The tool schema is captured once here.
func New(model Model, tools Dispatcher, opts Options) *Orchestrator {
	if opts.SystemInstruction == "" {
		opts.SystemInstruction = DefaultSystemInstruction
	}
	if opts.Policy == "" {
		opts.Policy = PolicyFirst
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Orchestrator{
		model:        model,
		tools:        tools,
		geminiTools:  gemini.Tools(tools.Declarations()),
		system:       opts.SystemInstruction,
		policy:       opts.Policy,
		callTimeout:  opts.CallTimeout,
		maxRetries:   opts.MaxRetries,
		retryBackoff: opts.RetryBackoff,
		budget:       opts.Budget,
		logger:       opts.Logger,
	}
}

// ToolExchange records one honored directive and its result.
type ToolExchange struct {
	Call   domain.ToolCall
	Result domain.ToolResult
}

// Reply is the outcome of one request cycle.
type Reply struct {
	Text string
	// Tools holds the honored directives in dispatch order.
	Tools []ToolExchange
	// Dropped counts directives ignored by the call policy.
	Dropped int
	// ModelCalls counts outbound attempts, retries included.
	ModelCalls int
}

// Respond sends conv to the model and returns its final answer.
//
// The cycle moves from awaiting a reply either straight to complete (the reply
// is text) or through one tool-requested round: honored directives are
// dispatched, their results sent back as a function-response turn, and the
// text of that second reply is returned.
func (o *Orchestrator) Respond(ctx context.Context, conv domain.Conversation) (*Reply, error) {
	runID := uuid.NewString()
	ctx, span := tracer.Start(ctx, "dialogue.Respond", trace.WithAttributes(
		attribute.String("dialogue.run_id", runID),
		attribute.Int("dialogue.history_length", len(conv)),
	))
	defer span.End()

	reply, err := o.respond(ctx, runID, conv)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("dialogue.model_calls", reply.ModelCalls),
		attribute.Int("dialogue.tool_calls", len(reply.Tools)),
	)
	return reply, nil
}

func (o *Orchestrator) respond(ctx context.Context, runID string, conv domain.Conversation) (*Reply, error) {
	if err := conv.Validate(); err != nil {
		return nil, err
	}
	if err := o.budget.Check(conv); err != nil {
		return nil, err
	}

	prior, active, err := history.Split(conv)
	if err != nil {
		return nil, err
	}

	contents := make([]*genai.Content, 0, len(prior)+3)
	contents = append(contents, prior...)
	contents = append(contents, active)

	log := o.logger.With(slog.String("run_id", runID))
	log.DebugContext(ctx, "sending message to model",
		slog.String("message", conv.Last().Content),
		slog.Int("history_length", len(prior)),
	)

	reply := &Reply{}

	// Awaiting reply.
	first, err := o.generate(ctx, log, contents, reply)
	if err != nil {
		return nil, err
	}

	calls := functionCalls(first)
	if len(calls) == 0 {
		reply.Text = textOf(first)
		log.DebugContext(ctx, "final response (no tool call)", slog.String("text", reply.Text))
		return reply, nil
	}

	// Tool requested.
	honored := o.policy.Select(calls)
	reply.Dropped = len(calls) - len(honored)
	if reply.Dropped > 0 {
		log.WarnContext(ctx, "ignoring extra tool calls",
			slog.String("policy", string(o.policy)),
			slog.Int("requested", len(calls)),
			slog.Int("dropped", reply.Dropped),
		)
	}

	for _, fc := range honored {
		if _, ok := o.tools.Lookup(fc.Name); !ok {
			log.ErrorContext(ctx, "unknown tool requested",
				slog.String("tool", fc.Name),
				slog.Any("arguments", fc.Args),
			)
			return nil, domain.ErrUnknownTool(fc.Name)
		}
	}

	responses := make([]*genai.Part, 0, len(honored))
	for _, fc := range honored {
		call := domain.ToolCall{ID: fc.ID, Name: fc.Name, Arguments: fc.Args}
		result, err := o.dispatch(ctx, log, call)
		if err != nil {
			return nil, err
		}
		reply.Tools = append(reply.Tools, ToolExchange{Call: call, Result: result})
		responses = append(responses, &genai.Part{
			FunctionResponse: &genai.FunctionResponse{
				ID:       fc.ID,
				Name:     fc.Name,
				Response: result,
			},
		})
	}

	contents = append(contents,
		modelTurn(first, honored),
		&genai.Content{Role: history.RoleUser, Parts: responses},
	)

	second, err := o.generate(ctx, log, contents, reply)
	if err != nil {
		return nil, err
	}
	if extra := functionCalls(second); len(extra) > 0 {
		log.WarnContext(ctx, "model requested another tool round; returning text only",
			slog.Int("requested", len(extra)),
		)
	}

	// Complete.
	reply.Text = textOf(second)
	log.DebugContext(ctx, "final response", slog.String("text", reply.Text))
	return reply, nil
}

func (o *Orchestrator) dispatch(ctx context.Context, log *slog.Logger, call domain.ToolCall) (domain.ToolResult, error) {
	ctx, span := tracer.Start(ctx, "tool.dispatch", trace.WithAttributes(
		attribute.String("tool.name", call.Name),
	))
	defer span.End()

	log.InfoContext(ctx, "tool call requested",
		slog.String("tool", call.Name),
		slog.Any("arguments", call.Arguments),
	)

	result, err := o.tools.Dispatch(ctx, call)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.WarnContext(ctx, "tool call failed",
			slog.String("tool", call.Name),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	log.DebugContext(ctx, "tool call result",
		slog.String("tool", call.Name),
		slog.Any("result", result),
	)
	return result, nil
}

// generate performs one outbound call with the configured timeout and retry
// policy, returning the first candidate's content.
func (o *Orchestrator) generate(ctx context.Context, log *slog.Logger, contents []*genai.Content, reply *Reply) (*genai.Content, error) {
	var lastErr error
	for attempt := 0; attempt <= o.maxRetries; attempt++ {
		if attempt > 0 {
			log.WarnContext(ctx, "retrying model call after transient failure",
				slog.Int("attempt", attempt+1),
				slog.String("error", lastErr.Error()),
			)
			if err := sleep(ctx, o.retryBackoff); err != nil {
				break
			}
		}

		reply.ModelCalls++
		content, err := o.generateOnce(ctx, contents)
		if err == nil {
			return content, nil
		}
		lastErr = err
		if !isTransient(err) {
			break
		}
	}

	log.ErrorContext(ctx, "model call failed", slog.String("error", lastErr.Error()))
	if errors.Is(lastErr, context.DeadlineExceeded) {
		return nil, domain.ErrUpstreamTimeout(lastErr)
	}
	return nil, domain.ErrUpstream(lastErr)
}

func (o *Orchestrator) generateOnce(ctx context.Context, contents []*genai.Content) (*genai.Content, error) {
	ctx, span := tracer.Start(ctx, "model.generate", trace.WithAttributes(
		attribute.Int("model.turns", len(contents)),
	))
	defer span.End()

	if o.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.callTimeout)
		defer cancel()
	}

	resp, err := o.model.GenerateContent(ctx, contents, o.requestConfig())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		span.SetStatus(codes.Error, ErrNoResponse.Error())
		return nil, ErrNoResponse
	}
	return resp.Candidates[0].Content, nil
}

// requestConfig is rebuilt per call; the model client may fill in defaults.
func (o *Orchestrator) requestConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: o.system}},
		},
		Tools: o.geminiTools,
	}
}

func functionCalls(content *genai.Content) []*genai.FunctionCall {
	var calls []*genai.FunctionCall
	for _, part := range content.Parts {
		if part != nil && part.FunctionCall != nil {
			calls = append(calls, part.FunctionCall)
		}
	}
	return calls
}

func textOf(content *genai.Content) string {
	var sb strings.Builder
	for _, part := range content.Parts {
		if part != nil && part.Text != "" && !part.Thought {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

// modelTurn echoes the model's reply back into the session, keeping only the
// function calls that will be answered.
func modelTurn(content *genai.Content, honored []*genai.FunctionCall) *genai.Content {
	keep := make(map[*genai.FunctionCall]bool, len(honored))
	for _, fc := range honored {
		keep[fc] = true
	}

	parts := make([]*genai.Part, 0, len(content.Parts))
	for _, part := range content.Parts {
		if part == nil {
			continue
		}
		if part.FunctionCall != nil && !keep[part.FunctionCall] {
			continue
		}
		parts = append(parts, part)
	}
	return &genai.Content{Role: history.RoleModel, Parts: parts}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
