package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"reachly/models"
)

// Client talks to an OpenAI-compatible chat-completions endpoint to author
// subject/body templates from a free-text instruction. Generation quality
// is out of scope here; the engine only cares that it gets a template pair
// back. Implements services.TemplateGenerator.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

func NewClient(baseURL, apiKey, model string) *Client {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat respFormat    `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type generatedTemplate struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

const systemPrompt = `You are an expert email writer for personalized outreach campaigns.
Write an email template using these personalization tokens where natural:
{{first_name}}, {{last_name}}, {{full_name}}, {{company_name}}, {{job_title}},
{{industry}}, {{city}}, {{country}}, {{linkedin_url}}.
Respond with a JSON object: {"subject": "...", "body": "..."} where body is HTML.`

// GenerateTemplate asks the model for a subject/body pair. A sample contact,
// when given, grounds the instruction in realistic field values.
func (c *Client) GenerateTemplate(ctx context.Context, instruction string, sample *models.Contact) (string, string, error) {
	user := instruction
	if sample != nil {
		user += fmt.Sprintf(
			"\n\nExample recipient for context:\nName: %s\nCompany: %s\nTitle: %s\nIndustry: %s",
			sample.FullName, sample.CompanyName, sample.JobTitle, sample.Industry)
	}

	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: user},
		},
		ResponseFormat: respFormat{Type: "json_object"},
	})
	if err != nil {
		return "", "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("template generation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("template generation returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", "", fmt.Errorf("decoding generation response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", "", fmt.Errorf("template generation returned no choices")
	}

	var tmpl generatedTemplate
	if err := json.Unmarshal([]byte(parsed.Choices[0].Message.Content), &tmpl); err != nil {
		return "", "", fmt.Errorf("parsing generated template: %w", err)
	}
	if tmpl.Subject == "" || tmpl.Body == "" {
		return "", "", fmt.Errorf("generated template missing subject or body")
	}
	return tmpl.Subject, tmpl.Body, nil
}
