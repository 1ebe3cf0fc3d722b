package advisor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"budgetmate-backend/internal/models"
)

// Client talks to the Gemini generateContent REST endpoint. Every public
// method degrades to a fixed fallback on failure; callers never see an
// error from the advice service.
type Client struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewClient(endpoint, apiKey, model string) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		model:    model,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type generatePart struct {
	Text string `json:"text"`
}

type generateContent struct {
	Role  string         `json:"role,omitempty"`
	Parts []generatePart `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type generateRequest struct {
	Contents         []generateContent `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content generateContent `json:"content"`
	} `json:"candidates"`
}

// SuggestBudget asks the advice service for a category split. Transport
// errors, non-200 responses and unparseable payloads all fall through to
// the deterministic 40/30/30 split.
func (cl *Client) SuggestBudget(amount float64, period models.PeriodType) Suggestion {
	text, err := cl.generate(budgetPrompt(amount, period), true)
	if err != nil {
		log.Printf("advisor: budget suggestion failed, using fallback: %v", err)
		return FallbackSplit(amount)
	}

	var s Suggestion
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		log.Printf("advisor: budget suggestion was not valid JSON, using fallback: %v", err)
		return FallbackSplit(amount)
	}
	if s.Food < 0 || s.Transportation < 0 || s.Other < 0 {
		log.Println("advisor: budget suggestion had negative allocations, using fallback")
		return FallbackSplit(amount)
	}
	return s
}

// Chat produces a free-text reply for one turn. Failures return the fixed
// apology string, never an error.
func (cl *Client) Chat(message, history string, role models.UserRole) string {
	text, err := cl.generate(chatPrompt(message, history, role), false)
	if err != nil {
		log.Printf("advisor: chat failed, using apology reply: %v", err)
		return ApologyReply
	}
	return strings.TrimSpace(text)
}

func (cl *Client) generate(prompt string, jsonMode bool) (string, error) {
	if cl.apiKey == "" {
		return "", fmt.Errorf("no API key configured")
	}

	reqBody := generateRequest{
		Contents: []generateContent{
			{Role: "user", Parts: []generatePart{{Text: prompt}}},
		},
	}
	if jsonMode {
		reqBody.GenerationConfig = &generationConfig{ResponseMimeType: "application/json"}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("could not encode request: %v", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", cl.endpoint, cl.model, cl.apiKey)

	req, err := http.NewRequest("POST", url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("could not build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := cl.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("could not read response: %v", err)
	}

	var gr generateResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return "", fmt.Errorf("could not decode response: %v", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("response had no candidates")
	}

	return gr.Candidates[0].Content.Parts[0].Text, nil
}
