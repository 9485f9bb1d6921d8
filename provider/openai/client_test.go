package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/tailored-agentic-units/relay/core/protocol"
	"github.com/tailored-agentic-units/relay/instructions"
	"github.com/tailored-agentic-units/relay/provider"
)

func TestConfigMerge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Merge(&Config{Model: "gpt-5", BaseURL: "http://127.0.0.1:11434/v1"})

	if cfg.Model != "gpt-5" {
		t.Errorf("model = %q", cfg.Model)
	}
	if cfg.BaseURL != "http://127.0.0.1:11434/v1" {
		t.Errorf("base url = %q", cfg.BaseURL)
	}
	if cfg.TimeoutSeconds != defaultTimeoutSeconds || cfg.MaxRetries != defaultMaxRetries {
		t.Errorf("zero values overwrote defaults: %+v", cfg)
	}
}

func TestValidateResults(t *testing.T) {
	calls := []protocol.ActionCall{
		{CallID: "call_1", Name: "a"},
		{CallID: "call_2", Name: "b"},
	}

	tests := []struct {
		name    string
		results []protocol.ActionResult
		wantErr bool
	}{
		{
			name: "exact match",
			results: []protocol.ActionResult{
				{CallID: "call_2", Output: "y"},
				{CallID: "call_1", Output: "x"},
			},
		},
		{
			name:    "missing result",
			results: []protocol.ActionResult{{CallID: "call_1"}},
			wantErr: true,
		},
		{
			name: "unknown call id",
			results: []protocol.ActionResult{
				{CallID: "call_1"},
				{CallID: "call_9"},
			},
			wantErr: true,
		},
		{
			name: "duplicate call id",
			results: []protocol.ActionResult{
				{CallID: "call_1"},
				{CallID: "call_1"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResults(calls, tt.results)
			if tt.wantErr && !errors.Is(err, provider.ErrResultMismatch) {
				t.Errorf("got %v, want ErrResultMismatch", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestPendingRunLifecycle(t *testing.T) {
	c := New(DefaultConfig(), instructions.NewMemoryStore(""), nil)
	calls := []protocol.ActionCall{{CallID: "call_1", Name: "a"}}

	c.rememberRun("run_1", "sess_1", calls)

	if _, err := c.takeRun("run_1", "sess_other"); !errors.Is(err, provider.ErrRunNotFound) {
		t.Errorf("cross-session take: got %v, want ErrRunNotFound", err)
	}

	run, err := c.takeRun("run_1", "sess_1")
	if err != nil {
		t.Fatalf("takeRun failed: %v", err)
	}
	if len(run.calls) != 1 || run.calls[0].CallID != "call_1" {
		t.Errorf("run calls = %+v", run.calls)
	}

	// A run can only be taken once.
	if _, err := c.takeRun("run_1", "sess_1"); !errors.Is(err, provider.ErrRunNotFound) {
		t.Errorf("second take: got %v, want ErrRunNotFound", err)
	}
}

func TestSessionLifecycle(t *testing.T) {
	c := New(DefaultConfig(), instructions.NewMemoryStore(""), nil)
	ctx := context.Background()

	sess, err := c.CreateSession(ctx)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	got, err := c.RetrieveSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("RetrieveSession failed: %v", err)
	}
	if got.ID != sess.ID {
		t.Errorf("retrieved id = %q, want %q", got.ID, sess.ID)
	}

	ack, err := c.DeleteSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if ack.ID != sess.ID || !ack.Deleted {
		t.Errorf("ack = %+v", ack)
	}

	if _, err := c.RetrieveSession(ctx, sess.ID); !errors.Is(err, provider.ErrSessionNotFound) {
		t.Errorf("got %v, want ErrSessionNotFound", err)
	}
	if _, err := c.DeleteSession(ctx, sess.ID); !errors.Is(err, provider.ErrSessionNotFound) {
		t.Errorf("double delete: got %v, want ErrSessionNotFound", err)
	}
}

func TestAppendMessageUnknownSession(t *testing.T) {
	c := New(DefaultConfig(), instructions.NewMemoryStore(""), nil)

	err := c.AppendMessage(context.Background(), "sess_missing", protocol.RoleUser, "hi")
	if !errors.Is(err, provider.ErrSessionNotFound) {
		t.Errorf("got %v, want ErrSessionNotFound", err)
	}
}

func TestBuildParams(t *testing.T) {
	defs := func() []protocol.ActionDef {
		return []protocol.ActionDef{{
			Name:        "get_daily_cat_trivia",
			Description: "Returns one cat fact.",
			Parameters:  map[string]any{"type": "object", "properties": map[string]any{}},
		}}
	}
	c := New(DefaultConfig(), instructions.NewMemoryStore("You are a cat expert."), defs)
	ctx := context.Background()

	sess, _ := c.CreateSession(ctx)
	c.AppendMessage(ctx, sess.ID, protocol.RoleUser, "tell me something")

	raw, err := c.sessions.Get(sess.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	raw.AddMessage(protocol.Message{
		Role:        protocol.RoleAssistant,
		Content:     "Looking that up.",
		ActionCalls: []protocol.ActionCall{{CallID: "call_1", Name: "get_daily_cat_trivia", Arguments: "{}"}},
	})
	raw.AddMessage(protocol.Message{Role: protocol.RoleTool, Content: `"a fact"`, CallID: "call_1"})

	params, err := c.buildParams(ctx, raw)
	if err != nil {
		t.Fatalf("buildParams failed: %v", err)
	}

	if params.Model != defaultModel {
		t.Errorf("model = %q", params.Model)
	}

	// system + user + assistant + tool
	if len(params.Messages) != 4 {
		t.Fatalf("got %d messages, want 4", len(params.Messages))
	}
	if params.Messages[0].OfSystem == nil {
		t.Error("first message is not the system instructions")
	}
	if params.Messages[1].OfUser == nil {
		t.Error("second message is not the user turn")
	}

	assistant := params.Messages[2].OfAssistant
	if assistant == nil {
		t.Fatal("third message is not the assistant turn")
	}
	if len(assistant.ToolCalls) != 1 {
		t.Fatalf("got %d tool calls, want 1", len(assistant.ToolCalls))
	}
	fn := assistant.ToolCalls[0].OfFunction
	if fn == nil || fn.ID != "call_1" || fn.Function.Name != "get_daily_cat_trivia" {
		t.Errorf("tool call param = %+v", assistant.ToolCalls[0])
	}

	tool := params.Messages[3].OfTool
	if tool == nil || tool.ToolCallID != "call_1" {
		t.Errorf("fourth message is not the tool result: %+v", params.Messages[3])
	}

	if len(params.Tools) != 1 {
		t.Fatalf("got %d tools, want 1", len(params.Tools))
	}
	if got := params.Tools[0].OfFunction.Function.Name; got != "get_daily_cat_trivia" {
		t.Errorf("tool name = %q", got)
	}
}

func TestBuildParamsNoInstructions(t *testing.T) {
	c := New(DefaultConfig(), instructions.NewMemoryStore(""), nil)
	ctx := context.Background()

	sess, _ := c.CreateSession(ctx)
	c.AppendMessage(ctx, sess.ID, protocol.RoleUser, "hi")

	raw, err := c.sessions.Get(sess.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	params, err := c.buildParams(ctx, raw)
	if err != nil {
		t.Fatalf("buildParams failed: %v", err)
	}
	if len(params.Messages) != 1 {
		t.Errorf("got %d messages, want user message only", len(params.Messages))
	}
	if len(params.Tools) != 0 {
		t.Errorf("got %d tools, want none", len(params.Tools))
	}
}

func TestUpdateInstructions(t *testing.T) {
	store := instructions.NewMemoryStore("old")
	c := New(DefaultConfig(), store, nil)
	ctx := context.Background()

	stored, err := c.UpdateInstructions(ctx, "new text")
	if err != nil {
		t.Fatalf("UpdateInstructions failed: %v", err)
	}
	if stored != "new text" {
		t.Errorf("stored = %q", stored)
	}

	got, err := c.Instructions(ctx)
	if err != nil {
		t.Fatalf("Instructions failed: %v", err)
	}
	if got != "new text" {
		t.Errorf("loaded = %q", got)
	}
}
