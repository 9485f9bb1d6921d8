package protocol

// ActionDef describes a callable action advertised to the provider.
// Parameters uses JSON Schema format to describe the action's input.
type ActionDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ActionCall is one action invocation requested by the provider.
// Arguments holds the raw JSON-encoded argument object.
type ActionCall struct {
	CallID    string `json:"call_id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ActionResult is the outcome of executing one ActionCall. Output holds a
// JSON-encoded value and CallID correlates the result back to the request.
type ActionResult struct {
	CallID string `json:"call_id"`
	Output string `json:"output"`
}
