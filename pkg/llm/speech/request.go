package speech

// Request is the wire-level payload for a text-to-speech call: the text to
// speak, the model to speak it with, and the voice preset to use.
type Request struct {
	Model string `json:"model"`
	Input string `json:"input"`
	Voice string `json:"voice"`
}
