package extraction

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"pantry/internal/model"
)

const DefaultModel = "gemini-2.5-flash"

const promptTemplate = `
Extract food items from the following text: %q.
For each item, determine the best fitting category from this list: [%s].
Also estimate a conservative number of days until it expires based on general food safety knowledge (e.g., Milk ~7 days, Canned beans ~365 days).
If quantity is not specified, assume 1.
`

// generator is the slice of *genai.Models the extractor needs.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini extracts drafts with a Gemini model constrained to a JSON schema.
type Gemini struct {
	models generator
	model  string
}

// NewGemini creates a Gemini extractor. An empty model selects DefaultModel.
func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newGemini(client.Models, modelName), nil
}

func newGemini(g generator, modelName string) *Gemini {
	if modelName == "" {
		modelName = DefaultModel
	}
	return &Gemini{models: g, model: modelName}
}

var _ Extractor = (*Gemini)(nil)

func (g *Gemini) Extract(ctx context.Context, text string) ([]model.ItemDraft, error) {
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt(text)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	return Decode([]byte(responseText(resp)))
}

func prompt(text string) string {
	names := make([]string, len(model.Categories))
	for i, c := range model.Categories {
		names[i] = string(c)
	}
	return fmt.Sprintf(promptTemplate, text, strings.Join(names, ", "))
}

func responseSchema() *genai.Schema {
	enum := make([]string, len(model.Categories))
	for i, c := range model.Categories {
		enum[i] = string(c)
	}
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"name":                 {Type: genai.TypeString},
				"category":             {Type: genai.TypeString, Enum: enum},
				"quantity":             {Type: genai.TypeNumber},
				"expiryDateOffsetDays": {Type: genai.TypeNumber},
			},
			Required: []string{"name", "category", "expiryDateOffsetDays"},
		},
	}
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range c.Content.Parts {
		if p != nil {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}
