package recipe

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"menu-planner/internal/llm"
	"menu-planner/internal/shared"
)

//go:embed extractor_prompt.md
var extractorPrompt string

var extractorTemplate = template.Must(template.New("extractor").Parse(extractorPrompt))

// maxPageText bounds how much page text is sent to the model.
const maxPageText = 20000

// PageData is the input of the AI extractor.
type PageData struct {
	URL   string
	Title string
	Text  string
}

// ExtractorResult is what the extractor produced plus execution metadata.
type ExtractorResult struct {
	Recipe Recipe
	Meta   shared.CallMeta
}

type extractedRecipe struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	PrepTime     string   `json:"prep_time"`
	Servings     string   `json:"servings"`
}

// Extractor turns free page text into a Recipe with a language model.
type Extractor struct {
	textGen llm.TextGenerator
}

// NewExtractor creates an Extractor.
func NewExtractor(textGen llm.TextGenerator) *Extractor {
	return &Extractor{textGen: textGen}
}

// Extract runs the model over the page. Meta is filled in even when the
// model answer cannot be decoded so that usage is still recorded.
func (e *Extractor) Extract(ctx context.Context, page PageData) (ExtractorResult, error) {
	start := time.Now()

	prompt, err := buildExtractorPrompt(page)
	if err != nil {
		return ExtractorResult{}, err
	}

	llmResp, err := e.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return ExtractorResult{}, fmt.Errorf("failed to get LLM response: %w", err)
	}

	meta := shared.CallMeta{
		Helper:  "Extractor",
		Usage:   llmResp.Usage,
		Latency: time.Since(start),
	}

	var out extractedRecipe
	if err := json.Unmarshal([]byte(llm.StripCodeFence(llmResp.Content)), &out); err != nil {
		return ExtractorResult{Meta: meta}, fmt.Errorf("failed to unmarshal LLM response: %w", err)
	}

	rec := Recipe{
		Title:        strings.TrimSpace(out.Title),
		Description:  strings.TrimSpace(out.Description),
		Category:     strings.TrimSpace(out.Category),
		Ingredients:  strings.Join(cleanLines(out.Ingredients), "\n"),
		Instructions: strings.Join(cleanLines(out.Instructions), "\n"),
		PrepTime:     strings.TrimSpace(out.PrepTime),
		Servings:     strings.TrimSpace(out.Servings),
		Source:       page.URL,
	}
	if err := rec.Validate(); err != nil {
		return ExtractorResult{Meta: meta}, err
	}
	return ExtractorResult{Recipe: rec, Meta: meta}, nil
}

func buildExtractorPrompt(page PageData) (string, error) {
	if len(page.Text) > maxPageText {
		page.Text = strings.ToValidUTF8(page.Text[:maxPageText], "")
	}
	var buf bytes.Buffer
	if err := extractorTemplate.Execute(&buf, page); err != nil {
		return "", fmt.Errorf("failed to render extractor prompt: %w", err)
	}
	return buf.String(), nil
}
