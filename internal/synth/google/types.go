// Package google synthesizes wire-accurate Google Generative Language
// payloads.
package google

// GenerateContentResponse is the generateContent success envelope.
type GenerateContentResponse struct {
	Candidates    []Candidate   `json:"candidates"`
	UsageMetadata UsageMetadata `json:"usageMetadata"`
}

// Candidate is one generated candidate.
type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason"`
	Index        int     `json:"index"`
}

// Content is the candidate content block.
type Content struct {
	Parts []Part `json:"parts"`
	Role  string `json:"role"`
}

// Part is one content part.
type Part struct {
	Text string `json:"text"`
}

// UsageMetadata carries token accounting.
type UsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// ErrorResponse is the Google error envelope. The numeric code equals the
// HTTP status.
type ErrorResponse struct {
	Error ErrorStatus `json:"error"`
}

// ErrorStatus is the error object inside an ErrorResponse.
type ErrorStatus struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}
