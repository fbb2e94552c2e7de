package embeddings

import "github.com/bytedance/sonic"

// Request is the wire-level payload for one call to a provider's embeddings
// API. Mirrors Response's flat shape: openai_embeddings.Request embeds this
// type directly rather than wrapping per-field, so Input carries either a
// single string or a batch the same way OpenAI's own embeddings endpoint
// accepts both.
type Request struct {
	Model          string     `json:"model"`
	Input          InputUnion `json:"input"`
	EncodingFormat *string    `json:"encoding_format,omitempty"`
	Dimensions     *int       `json:"dimensions,omitempty"`
	User           *string    `json:"user,omitempty"`
}

// InputUnion is the embeddings request's "input" field: a single string or a
// batch of strings to embed in one call.
type InputUnion struct {
	OfString *string
	OfList   []string
}

func (u InputUnion) MarshalJSON() ([]byte, error) {
	if u.OfString != nil {
		return sonic.Marshal(*u.OfString)
	}
	return sonic.Marshal(u.OfList)
}
