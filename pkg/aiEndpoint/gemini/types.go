package gemini

// GenerateContentRequest is the body of a models/{model}:generateContent call.
type GenerateContentRequest struct {
	Contents []*Content `json:"contents"`
}

// Content is one turn of input or output, made of parts.
type Content struct {
	Parts []*Part `json:"parts"`
	Role  string  `json:"role,omitempty"`
}

// Part is a single element of a Content. Text is nil when the part carries
// no text field (inlineData, functionCall, or "text": null).
type Part struct {
	Text *string `json:"text"`
}

// GenerateContentResponse is the subset of the generateContent reply this
// tool reads.
type GenerateContentResponse struct {
	Candidates []*Candidate `json:"candidates"`
}

type Candidate struct {
	Content      *Content `json:"content"`
	FinishReason string   `json:"finishReason,omitempty"`
}

type countTokensResponse struct {
	TotalTokens int `json:"totalTokens"`
}

// errorEnvelope is the JSON body Google APIs return alongside non-2xx statuses.
type errorEnvelope struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// NewTextRequest builds a single-turn request carrying prompt.
func NewTextRequest(prompt string) *GenerateContentRequest {
	return &GenerateContentRequest{
		Contents: []*Content{
			{Parts: []*Part{{Text: &prompt}}},
		},
	}
}

// ExtractText returns candidates[0].content.parts[0].text, or a
// *ResponseError naming the first missing element.
func ExtractText(resp *GenerateContentResponse) (string, error) {
	switch {
	case resp == nil:
		return "", &ResponseError{Reason: "empty response"}
	case len(resp.Candidates) == 0:
		return "", &ResponseError{Reason: "response has no candidates"}
	case resp.Candidates[0] == nil || resp.Candidates[0].Content == nil:
		return "", &ResponseError{Reason: "candidate 0 has no content"}
	case len(resp.Candidates[0].Content.Parts) == 0 || resp.Candidates[0].Content.Parts[0] == nil:
		return "", &ResponseError{Reason: "candidate 0 content has no parts"}
	case resp.Candidates[0].Content.Parts[0].Text == nil:
		return "", &ResponseError{Reason: "candidate 0 part 0 has no text"}
	}
	return *resp.Candidates[0].Content.Parts[0].Text, nil
}
