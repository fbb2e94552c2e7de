package speech

import (
	"fmt"

	"github.com/bytedance/sonic"
)

type Response struct {
	Audio       []byte `json:"audio"`
	ContentType string `json:"content_type"`
	Usage       Usage  `json:"usage"`
}

type ResponseChunk struct {
	OfAudioDelta *ChunkAudioDelta[ChunkTypeAudioDelta] `json:",omitempty"`
	OfAudioDone  *ChunkAudioDone[ChunkTypeAudioDone]   `json:",omitempty"`
}

type ChunkAudioDelta[T any] struct {
	Type  T      `json:"type"`
	Audio string `json:"audio"`
}

type ChunkAudioDone[T any] struct {
	Type  T     `json:"type"`
	Usage Usage `json:"usage"`
}

// ChunkTypeAudioDelta and ChunkTypeAudioDone are this package's own chunk
// discriminators, following the same named-string/Value()/MarshalJSON
// pattern as pkg/llm/constants, scoped locally since speech chunks never
// need to compare against the other wire families' discriminators.
type stringConstant interface {
	Value() string
}

func unmarshalConstantString(c stringConstant, buf []byte) error {
	var s string
	if err := sonic.Unmarshal(buf, &s); err != nil {
		return err
	}
	if s != c.Value() {
		return fmt.Errorf("invalid %T: got %q, want %q", c, s, c.Value())
	}
	return nil
}

type ChunkTypeAudioDelta string

func (m *ChunkTypeAudioDelta) Value() string                { return "speech.audio.delta" }
func (m *ChunkTypeAudioDelta) MarshalJSON() ([]byte, error) { return sonic.Marshal(m.Value()) }
func (m *ChunkTypeAudioDelta) UnmarshalJSON(buf []byte) error {
	return unmarshalConstantString(m, buf)
}

type ChunkTypeAudioDone string

func (m *ChunkTypeAudioDone) Value() string                { return "speech.audio.done" }
func (m *ChunkTypeAudioDone) MarshalJSON() ([]byte, error) { return sonic.Marshal(m.Value()) }
func (m *ChunkTypeAudioDone) UnmarshalJSON(buf []byte) error {
	return unmarshalConstantString(m, buf)
}

type Usage struct {
	InputTokens        int `json:"input_tokens"`
	InputTokensDetails struct {
		CachedTokens int `json:"cached_tokens"`
	} `json:"input_tokens_details"`
	OutputTokens        int `json:"output_tokens"`
	OutputTokensDetails struct {
		ReasoningTokens int `json:"reasoning_tokens"`
	} `json:"output_tokens_details"`
	TotalTokens int `json:"total_tokens"`
}
