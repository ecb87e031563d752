// Package ai wraps the LLM assistant features: invoice field extraction
// from text and images, reminder-email drafting, and dashboard/stats
// insight summaries.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

// Assistant talks to the chat-completion API. Safe for concurrent use.
type Assistant struct {
	client *openai.Client
	model  string
	log    zerolog.Logger
}

// NewAssistant builds an Assistant from the environment. OPENAI_API_KEY is
// required; OPENAI_MODEL overrides the default model.
func NewAssistant() (*Assistant, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required")
	}
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Assistant{
		client: openai.NewClient(apiKey),
		model:  model,
		log:    log.With().Str("component", "ai").Logger(),
	}, nil
}

// ParsedInvoice is the structured extraction result for a draft invoice.
type ParsedInvoice struct {
	ClientName string       `json:"clientName"`
	Email      string       `json:"email"`
	Address    string       `json:"address"`
	Items      []ParsedItem `json:"items"`
}

type ParsedItem struct {
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

const extractionSchema = `{
  "clientName": "string",
  "email": "string (if available)",
  "address": "string (if available)",
  "items": [
    {
      "name": "string",
      "quantity": "number",
      "unitPrice": "number"
    }
  ]
}`

// ParseInvoiceText extracts invoice fields from free text.
func (a *Assistant) ParseInvoiceText(ctx context.Context, text string) (*ParsedInvoice, error) {
	prompt := fmt.Sprintf(`You are an expert invoice data extraction AI. Analyze the following text and extract the relevant information to create an invoice.
The output MUST be a valid JSON object with the following structure:
%s

Here is the text to parse:
--- TEXT START ---
%s
--- TEXT END ---

Extract the data and provide only the JSON object.`, extractionSchema, text)

	raw, err := a.chat(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	})
	if err != nil {
		return nil, err
	}

	var parsed ParsedInvoice
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &parsed); err != nil {
		a.log.Warn().Err(err).Str("response", raw).Msg("could not parse invoice JSON from response")
		return nil, fmt.Errorf("could not parse invoice JSON from response: %w", err)
	}
	return &parsed, nil
}

// ParseInvoiceImage extracts invoice fields from a base64-encoded image.
// contextText, when present, is added as extra guidance.
func (a *Assistant) ParseInvoiceImage(ctx context.Context, mimeType, imageBase64, contextText string) (*ParsedInvoice, error) {
	extra := ""
	if contextText != "" {
		extra = "Additional context: " + contextText + "\n\n"
	}
	prompt := fmt.Sprintf(`You are an expert invoice data extraction AI. Analyze the provided image and extract the relevant information to create an invoice.
The output MUST be a valid JSON object with the following structure:
%s

%sExtract the data and provide only the JSON object.`, extractionSchema, extra)

	raw, err := a.chat(ctx, []openai.ChatCompletionMessage{
		{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: prompt},
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL: fmt.Sprintf("data:%s;base64,%s", mimeType, imageBase64),
					},
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	var parsed ParsedInvoice
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &parsed); err != nil {
		a.log.Warn().Err(err).Msg("could not parse invoice JSON from image response")
		return nil, fmt.Errorf("could not parse invoice JSON from response: %w", err)
	}
	return &parsed, nil
}

// ReminderInput carries the invoice and sender details a reminder email is
// personalized with.
type ReminderInput struct {
	ClientName    string
	InvoiceNumber string
	AmountDue     float64
	DueDate       string
	Tone          string // polite (default) | firm | final
	SenderName    string
	SenderOrg     string
}

var toneInstructions = map[string]string{
	"polite": "polite, friendly, and professional",
	"firm":   "firm and direct but still professional and respectful",
	"final":  "a final notice that is urgent yet professional and respectful",
}

// GenerateReminder drafts a payment-reminder email for an invoice.
func (a *Assistant) GenerateReminder(ctx context.Context, in ReminderInput) (string, error) {
	tone, ok := toneInstructions[strings.ToLower(in.Tone)]
	if !ok {
		tone = toneInstructions["polite"]
	}
	signatureLines := make([]string, 0, 2)
	if s := strings.TrimSpace(in.SenderName); s != "" {
		signatureLines = append(signatureLines, s)
	}
	if s := strings.TrimSpace(in.SenderOrg); s != "" {
		signatureLines = append(signatureLines, s)
	}
	signature := strings.Join(signatureLines, "\n")
	if signature == "" {
		signature = "N/A"
	}

	prompt := fmt.Sprintf(`You are a professional accounting assistant. Write a reminder email to a client about an overdue or upcoming invoice payment.
The tone must be %s.

Use the following details to personalize the email:
- Client Name: %s
- Invoice Number: %s
- Amount Due: %.2f
- Due Date: %s

Keep it concise. Start the email with "Subject:".
End the email with a closing signature that includes the sender name and organization when available.
Use this signature exactly (omit if not provided):
%s`, tone, in.ClientName, in.InvoiceNumber, in.AmountDue, in.DueDate, signature)

	text, err := a.chat(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty reminder text from assistant")
	}
	return text, nil
}

// DashboardInsights turns a pre-computed data summary into 2-3 short
// insight strings.
func (a *Assistant) DashboardInsights(ctx context.Context, dataSummary string) ([]string, error) {
	prompt := fmt.Sprintf(`You are a friendly and insightful financial analyst for a small business owner.
Based on the following summary of their invoice data, provide 2-3 concise and actionable insights.
Each insight should be a short string in a JSON array.
The insights should be encouraging and helpful. Do not just repeat the data.

Data Summary:
%s

Return your response as a valid JSON object with a single key "insights" which is an array of strings.`, dataSummary)

	raw, err := a.chat(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Insights []string `json:"insights"`
	}
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &parsed); err != nil || parsed.Insights == nil {
		return []string{"Not enough data to generate insights."}, nil
	}
	return parsed.Insights, nil
}

// StatsInsights is the analyst view over a stats payload.
type StatsInsights struct {
	Summary  string   `json:"summary"`
	Insights []string `json:"insights"`
	Actions  []string `json:"actions"`
}

// AnalyzeStats summarizes a stats payload into an executive summary plus
// bounded insight/action bullets.
func (a *Assistant) AnalyzeStats(ctx context.Context, statsJSON []byte) (*StatsInsights, error) {
	prompt := fmt.Sprintf(`You are a data analyst for a small business.
Use only the provided JSON. Do not invent numbers or facts.
If the data is insufficient, respond with summary "Not enough data" and empty arrays.

Return a valid JSON object with:
- summary: a short executive summary paragraph
- insights: 4-6 concise bullet insights
- actions: 2-3 concise recommended actions

Keep the total number of bullets (insights + actions) at or below 8.

JSON data:
%s`, statsJSON)

	raw, err := a.chat(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	})
	if err != nil {
		return nil, err
	}

	var parsed StatsInsights
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &parsed); err != nil {
		return &StatsInsights{Summary: "Not enough data", Insights: []string{}, Actions: []string{}}, nil
	}
	if parsed.Insights == nil {
		parsed.Insights = []string{}
	}
	if parsed.Actions == nil {
		parsed.Actions = []string{}
	}
	if strings.TrimSpace(parsed.Summary) == "" {
		parsed.Summary = "Not enough data"
	}
	// Bound the bullet count the same way the UI expects it.
	if len(parsed.Insights)+len(parsed.Actions) > 8 {
		if len(parsed.Insights) > 6 {
			parsed.Insights = parsed.Insights[:6]
		}
		remaining := 8 - len(parsed.Insights)
		if len(parsed.Actions) > remaining {
			parsed.Actions = parsed.Actions[:remaining]
		}
	}
	return &parsed, nil
}

func (a *Assistant) chat(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    messages,
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices from assistant")
	}
	return resp.Choices[0].Message.Content, nil
}

// stripCodeFences unwraps responses the model returns inside markdown
// code blocks.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
