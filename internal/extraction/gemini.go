// Package extraction wraps the remote vision inference call that turns a
// captured receipt image into recognized text.
package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/phamvy/chitieu/internal/common"
	"github.com/phamvy/chitieu/internal/model"
)

const (
	defaultModel   = "gemini-2.0-flash"
	defaultTimeout = 8 * time.Second
)

const extractionPrompt = `Transcribe every line of text visible in this receipt image.
Preserve the reading order and group lines into visual blocks (header, item list, totals, footer).
Respond with JSON only, in this exact shape:
{"found": true, "blocks": [["line 1", "line 2"], ["line 3"]]}
If the image contains no readable text, respond with {"found": false, "blocks": []}.
Do not summarize, translate, or omit lines. Keep amounts exactly as printed.`

// Gemini implements the Extractor interface using Google Gemini vision.
type Gemini struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	apiKey  string
	timeout time.Duration
}

// NewGemini creates a Gemini extraction client. An empty API key yields a
// client that reports itself unconfigured rather than an error, so the rest
// of the application can start and surface the problem at scan time.
func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	g := &Gemini{
		apiKey:  apiKey,
		timeout: defaultTimeout,
	}
	if apiKey == "" {
		return g, nil
	}

	if modelName == "" {
		modelName = defaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	g.client = client
	g.model = client.GenerativeModel(modelName)
	return g, nil
}

// IsConfigured reports whether the client has the credentials it needs.
func (g *Gemini) IsConfigured() bool {
	return g.apiKey != "" && g.client != nil
}

// Extract runs vision inference over the image at imagePath and returns the
// recognized text. The call is bounded by the client timeout; a timeout is
// reported as a transport failure, not a fatal error.
func (g *Gemini) Extract(ctx context.Context, imagePath string) (*model.ExtractionResult, error) {
	if !g.IsConfigured() {
		return nil, common.ErrNotConfigured
	}

	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("reading captured image: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	parts := []genai.Part{
		genai.ImageData(imageFormat(imagePath), imageData),
		genai.Text(extractionPrompt),
	}

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrTransport, err)
	}
	elapsed := time.Since(start)

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: empty model response", common.ErrTransport)
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			responseText.WriteString(string(text))
		}
	}

	result, err := parseExtractionJSON(responseText.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrTransport, err)
	}
	result.Elapsed = elapsed

	if !result.Found {
		return result, common.ErrNoTextFound
	}

	slog.Debug("Extraction completed",
		"blocks", len(result.Blocks),
		"lines", len(result.Lines()),
		"elapsed", elapsed)

	return result, nil
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

// imageFormat maps a file extension onto the format label the API expects.
func imageFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".webp":
		return "webp"
	case ".heic":
		return "heic"
	default:
		return "jpeg"
	}
}
