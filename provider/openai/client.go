// Package openai binds the provider capability to the OpenAI API. Sessions
// live locally in a session store; generation rounds run over streaming chat
// completions carrying the session transcript, the standing instructions as
// the system message, and the advertised action definitions as tools.
package openai

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	oai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/tailored-agentic-units/relay/core/protocol"
	"github.com/tailored-agentic-units/relay/instructions"
	"github.com/tailored-agentic-units/relay/provider"
	"github.com/tailored-agentic-units/relay/session"
)

// DefsFunc supplies the action definitions advertised on each run. It is
// called per run so late registrations are picked up.
type DefsFunc func() []protocol.ActionDef

// pendingRun remembers the calls a paused run is waiting on, so result
// submission can be validated against them.
type pendingRun struct {
	sessionID string
	calls     []protocol.ActionCall
}

// Client implements provider.Provider over the OpenAI API.
type Client struct {
	api      oai.Client
	model    string
	sessions *session.Store
	instr    instructions.Store
	defs     DefsFunc

	mu      sync.Mutex
	pending map[string]pendingRun
}

// New creates a Client. instr supplies the standing instructions prepended
// to every run; defs may be nil for a client without actions.
func New(cfg Config, instr instructions.Store, defs DefsFunc) *Client {
	opts := []option.RequestOption{
		option.WithMaxRetries(cfg.MaxRetries),
		option.WithRequestTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}

	return &Client{
		api:      oai.NewClient(opts...),
		model:    cfg.Model,
		sessions: session.NewStore(),
		instr:    instr,
		defs:     defs,
		pending:  make(map[string]pendingRun),
	}
}

func (c *Client) CreateSession(_ context.Context) (provider.Session, error) {
	sess := c.sessions.Create()
	return provider.Session{ID: sess.ID()}, nil
}

func (c *Client) RetrieveSession(_ context.Context, id string) (provider.Session, error) {
	sess, err := c.sessions.Get(id)
	if err != nil {
		return provider.Session{}, fmt.Errorf("%w: %s", provider.ErrSessionNotFound, id)
	}
	return provider.Session{ID: sess.ID()}, nil
}

func (c *Client) DeleteSession(_ context.Context, id string) (provider.DeletionAck, error) {
	if err := c.sessions.Delete(id); err != nil {
		return provider.DeletionAck{}, fmt.Errorf("%w: %s", provider.ErrSessionNotFound, id)
	}
	return provider.DeletionAck{ID: id, Deleted: true}, nil
}

func (c *Client) AppendMessage(_ context.Context, sessionID string, role protocol.Role, content string) error {
	sess, err := c.sessions.Get(sessionID)
	if err != nil {
		return fmt.Errorf("%w: %s", provider.ErrSessionNotFound, sessionID)
	}
	sess.AddMessage(protocol.NewMessage(role, content))
	return nil
}

// StartRun opens a fresh generation round over the session transcript.
func (c *Client) StartRun(ctx context.Context, sessionID string) (provider.EventStream, error) {
	sess, err := c.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", provider.ErrSessionNotFound, sessionID)
	}
	return c.openRun(ctx, sess)
}

// SubmitActionResults validates results against the paused run's requested
// calls, appends them to the transcript as tool messages, and opens the
// continuation round.
func (c *Client) SubmitActionResults(ctx context.Context, sessionID, runID string, results []protocol.ActionResult) (provider.EventStream, error) {
	sess, err := c.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", provider.ErrSessionNotFound, sessionID)
	}

	run, err := c.takeRun(runID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := validateResults(run.calls, results); err != nil {
		return nil, err
	}

	for _, r := range results {
		sess.AddMessage(protocol.Message{
			Role:    protocol.RoleTool,
			Content: r.Output,
			CallID:  r.CallID,
		})
	}

	return c.openRun(ctx, sess)
}

func (c *Client) Instructions(ctx context.Context) (string, error) {
	return c.instr.Load(ctx)
}

func (c *Client) UpdateInstructions(ctx context.Context, text string) (string, error) {
	if err := c.instr.Save(ctx, text); err != nil {
		return "", err
	}
	return text, nil
}

func (c *Client) openRun(ctx context.Context, sess session.Session) (provider.EventStream, error) {
	params, err := c.buildParams(ctx, sess)
	if err != nil {
		return nil, err
	}
	return &runStream{
		client: c,
		sess:   sess,
		stream: c.api.Chat.Completions.NewStreaming(ctx, params),
	}, nil
}

func (c *Client) buildParams(ctx context.Context, sess session.Session) (oai.ChatCompletionNewParams, error) {
	instr, err := c.instr.Load(ctx)
	if err != nil {
		return oai.ChatCompletionNewParams{}, fmt.Errorf("failed to load instructions: %w", err)
	}

	transcript := sess.Messages()
	msgs := make([]oai.ChatCompletionMessageParamUnion, 0, len(transcript)+1)
	if instr != "" {
		msgs = append(msgs, oai.SystemMessage(instr))
	}
	for _, m := range transcript {
		msgs = append(msgs, messageParam(m))
	}

	params := oai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: msgs,
	}
	if c.defs != nil {
		for _, def := range c.defs() {
			params.Tools = append(params.Tools, toolParam(def))
		}
	}
	return params, nil
}

func (c *Client) rememberRun(runID, sessionID string, calls []protocol.ActionCall) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[runID] = pendingRun{sessionID: sessionID, calls: calls}
}

func (c *Client) takeRun(runID, sessionID string) (pendingRun, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	run, ok := c.pending[runID]
	if !ok {
		return pendingRun{}, fmt.Errorf("%w: %s", provider.ErrRunNotFound, runID)
	}
	if run.sessionID != sessionID {
		return pendingRun{}, fmt.Errorf("%w: run %s belongs to another session", provider.ErrRunNotFound, runID)
	}
	delete(c.pending, runID)
	return run, nil
}

// validateResults checks the result set matches the requested calls 1:1.
func validateResults(calls []protocol.ActionCall, results []protocol.ActionResult) error {
	if len(results) != len(calls) {
		return fmt.Errorf("%w: got %d results for %d calls", provider.ErrResultMismatch, len(results), len(calls))
	}

	want := make(map[string]bool, len(calls))
	for _, call := range calls {
		want[call.CallID] = true
	}
	for _, r := range results {
		if !want[r.CallID] {
			return fmt.Errorf("%w: unexpected call id %s", provider.ErrResultMismatch, r.CallID)
		}
		delete(want, r.CallID)
	}
	return nil
}

func messageParam(m protocol.Message) oai.ChatCompletionMessageParamUnion {
	switch m.Role {
	case protocol.RoleSystem:
		return oai.SystemMessage(m.Content)
	case protocol.RoleUser:
		return oai.UserMessage(m.Content)
	case protocol.RoleTool:
		return oai.ToolMessage(m.Content, m.CallID)
	default:
		p := oai.AssistantMessage(m.Content)
		if len(m.ActionCalls) > 0 {
			p.OfAssistant.ToolCalls = toolCallParams(m.ActionCalls)
		}
		return p
	}
}

func toolCallParams(calls []protocol.ActionCall) []oai.ChatCompletionMessageToolCallUnionParam {
	params := make([]oai.ChatCompletionMessageToolCallUnionParam, 0, len(calls))
	for _, call := range calls {
		params = append(params, oai.ChatCompletionMessageToolCallUnionParam{
			OfFunction: &oai.ChatCompletionMessageFunctionToolCallParam{
				ID: call.CallID,
				Function: oai.ChatCompletionMessageFunctionToolCallFunctionParam{
					Name:      call.Name,
					Arguments: call.Arguments,
				},
			},
		})
	}
	return params
}

func toolParam(def protocol.ActionDef) oai.ChatCompletionToolUnionParam {
	return oai.ChatCompletionToolUnionParam{
		OfFunction: &oai.ChatCompletionFunctionToolParam{
			Function: oai.FunctionDefinitionParam{
				Name:        def.Name,
				Description: oai.String(def.Description),
				Parameters:  oai.FunctionParameters(def.Parameters),
			},
		},
	}
}

var errEmptyCompletion = errors.New("completion stream ended without choices")
