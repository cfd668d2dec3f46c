package types

// DefaultToolChoice is used when GenerateOptions.ToolChoice is empty
const DefaultToolChoice = "auto"

// Message is one role/content pair of a chat prompt
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Tool is a function definition offered to the model, kept in provider
// wire form ({"type": "function", "function": {...}}).
type Tool map[string]interface{}

// GenerateOptions carries everything besides the messages for one
// generation call.
type GenerateOptions struct {
	// ResponseFormat is either a string ("json_object") or a schema mapping
	ResponseFormat interface{}
	Tools          []Tool
	ToolChoice     string
	Stream         bool
	// Extra holds provider-specific options (temperature, max_tokens, ...)
	Extra map[string]interface{}
}

// EffectiveToolChoice returns ToolChoice or the "auto" default
func (o GenerateOptions) EffectiveToolChoice() string {
	if o.ToolChoice == "" {
		return DefaultToolChoice
	}
	return o.ToolChoice
}

// Response is the result of a generation call: plain text, or a structured
// mapping when the model was asked to call tools.
type Response struct {
	Text       string
	Structured map[string]interface{}
}

// TextResponse wraps a plain text result
func TextResponse(text string) *Response {
	return &Response{Text: text}
}

// StructuredResponse wraps a mapping result
func StructuredResponse(m map[string]interface{}) *Response {
	return &Response{Structured: m}
}

// IsStructured reports whether the response carries a mapping
func (r *Response) IsStructured() bool {
	return r != nil && r.Structured != nil
}

// Value returns the mapping for structured responses and the text otherwise
func (r *Response) Value() interface{} {
	if r == nil {
		return nil
	}
	if r.Structured != nil {
		return r.Structured
	}
	return r.Text
}
