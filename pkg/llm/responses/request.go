package responses

import (
	"github.com/bytedance/sonic"
	"github.com/curaious/uno/pkg/llm/constants"
)

// Request is the wire-level payload for one call to a provider's Responses
// API. Every pkg/gateway provider (openai_responses, gemini_responses,
// anthropic_responses) translates its own native request shape into this
// one before handing it to llm.Provider.NewResponses/NewStreamingResponses.
type Request struct {
	Model        string      `json:"model"`
	Instructions *string     `json:"instructions,omitempty"`
	Input        InputUnion  `json:"input"`
	Tools        []ToolUnion `json:"tools,omitempty"`
}

// Response is the non-streaming terminal response. It carries the same core
// fields as ChunkResponseData (without Background, Error and
// IncompleteDetails), since a completed streaming run and a non-streaming
// call both resolve to one finished response object.
type Response struct {
	Id        string               `json:"id"`
	Object    string               `json:"object"`
	CreatedAt int                  `json:"created_at"`
	Status    string               `json:"status"`
	Output    []OutputMessageUnion `json:"output"`
	Usage     Usage                `json:"usage"`
	Request
}

// Usage is provider-reported token accounting for one response.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// InputUnion is the Responses API's "input" field, which accepts either a
// bare prompt string or a structured list of turns.
type InputUnion struct {
	OfString           *string
	OfInputMessageList InputMessageList
}

func (u InputUnion) MarshalJSON() ([]byte, error) {
	if u.OfString != nil {
		return sonic.Marshal(*u.OfString)
	}
	return sonic.Marshal(u.OfInputMessageList)
}

// InputMessageList is an ordered list of input items: messages, function
// calls and function-call outputs interleaved in turn order.
type InputMessageList []InputMessageUnion

// InputMessageUnion is one entry of an InputMessageList.
type InputMessageUnion struct {
	OfInputMessage       *InputMessage
	OfFunctionCall       *FunctionCallMessage
	OfFunctionCallOutput *FunctionCallOutputMessage
}

func (u InputMessageUnion) MarshalJSON() ([]byte, error) {
	if u.OfInputMessage != nil {
		return sonic.Marshal(u.OfInputMessage)
	}
	if u.OfFunctionCall != nil {
		return sonic.Marshal(u.OfFunctionCall)
	}
	if u.OfFunctionCallOutput != nil {
		return sonic.Marshal(u.OfFunctionCallOutput)
	}
	return []byte("null"), nil
}

// InputMessage is one plain user/assistant/developer/system turn.
type InputMessage struct {
	Role    constants.Role `json:"role"`
	Content InputContent   `json:"content"`
}

// InputContent is an ordered list of content parts within one InputMessage.
type InputContent []InputContentUnion

// InputContentUnion is one content part of an InputMessage: text or an
// image reference.
type InputContentUnion struct {
	OfInputText  *InputTextContent
	OfInputImage *InputImageContent
}

func (u InputContentUnion) MarshalJSON() ([]byte, error) {
	if u.OfInputText != nil {
		return sonic.Marshal(u.OfInputText)
	}
	if u.OfInputImage != nil {
		return sonic.Marshal(u.OfInputImage)
	}
	return []byte("null"), nil
}

type InputTextContent struct {
	Type constants.ContentTypeInputText `json:"type"`
	Text string                         `json:"text"`
}

type InputImageContent struct {
	Type     constants.ContentTypeInputImage `json:"type"`
	ImageURL string                          `json:"image_url"`
}

// FunctionCallMessage is an assistant turn's tool-call item, whether found
// in a Request's input list (replaying a prior call) or a Response's output
// list (a fresh call the model just made).
type FunctionCallMessage struct {
	Type      constants.MessageTypeFunctionCall `json:"type"`
	CallID    string                            `json:"call_id"`
	Name      string                            `json:"name"`
	Arguments string                            `json:"arguments"`
}

// FunctionCallOutputMessage feeds a tool's result back into the next
// request's input list.
type FunctionCallOutputMessage struct {
	Type   constants.MessageTypeFunctionCallOutput `json:"type"`
	CallID string                                  `json:"call_id"`
	Output FunctionCallOutputContentUnion          `json:"output"`
}

// FunctionCallOutputContentUnion is either a plain string tool result or a
// structured content-part list.
type FunctionCallOutputContentUnion struct {
	OfString *string
	OfParts  []OutputContentUnion
}

func (u FunctionCallOutputContentUnion) MarshalJSON() ([]byte, error) {
	if u.OfString != nil {
		return sonic.Marshal(*u.OfString)
	}
	return sonic.Marshal(u.OfParts)
}

// ToolUnion is one entry of a Request's Tools list.
type ToolUnion struct {
	OfFunction *FunctionTool
}

func (u ToolUnion) MarshalJSON() ([]byte, error) {
	if u.OfFunction != nil {
		return sonic.Marshal(u.OfFunction)
	}
	return []byte("null"), nil
}

type FunctionTool struct {
	Type        constants.ToolTypeFunction `json:"type"`
	Name        string                     `json:"name"`
	Description *string                    `json:"description,omitempty"`
	Parameters  map[string]any             `json:"parameters,omitempty"`
}

// OutputMessageUnion is one item of a completed Response's Output list.
type OutputMessageUnion struct {
	OfMessage      *OutputMessage
	OfFunctionCall *FunctionCallMessage
}

func (u OutputMessageUnion) MarshalJSON() ([]byte, error) {
	if u.OfMessage != nil {
		return sonic.Marshal(u.OfMessage)
	}
	if u.OfFunctionCall != nil {
		return sonic.Marshal(u.OfFunctionCall)
	}
	return []byte("null"), nil
}

type OutputMessage struct {
	Type    constants.MessageTypeMessage `json:"type"`
	Role    constants.Role               `json:"role"`
	Content OutputContent                `json:"content"`
}

// OutputContent is an ordered list of content parts within one OutputMessage.
type OutputContent []OutputContentUnion

// OutputContentUnion is one content part of a completed message or
// reasoning item: output text or a reasoning summary.
type OutputContentUnion struct {
	OfOutputText  *OutputTextContent
	OfSummaryText *SummaryTextContent
}

func (u OutputContentUnion) MarshalJSON() ([]byte, error) {
	if u.OfOutputText != nil {
		return sonic.Marshal(u.OfOutputText)
	}
	if u.OfSummaryText != nil {
		return sonic.Marshal(u.OfSummaryText)
	}
	return []byte("null"), nil
}

type OutputTextContent struct {
	Type constants.ContentTypeOutputText `json:"type"`
	Text string                          `json:"text"`
}

type SummaryTextContent struct {
	Type constants.ContentTypeSummaryText `json:"type"`
	Text string                           `json:"text"`
}
