package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/staffdesk/staffdesk/internal/models"
)

// DocumentModel is the inference call the verifier needs from a
// pre-configured generative model.
type DocumentModel interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// VerifierFunction holds the dependencies for document verification.
type VerifierFunction struct {
	model  DocumentModel
	prompt string
}

// NewVerifier creates a VerifierFunction around a model already configured
// for JSON output.
func NewVerifier(model DocumentModel, userPrompt string) *VerifierFunction {
	return &VerifierFunction{model: model, prompt: userPrompt}
}

// Process classifies one uploaded document against its expected type.
// PDF payloads are structurally validated before spending an inference call.
func (f *VerifierFunction) Process(ctx context.Context, req models.VerifyDocumentRequest) (*models.VerifyDocumentResponse, error) {
	if len(req.ImageData) == 0 || req.MIMEType == "" || req.DocumentType == "" {
		return nil, fmt.Errorf("imageData, mimeType and documentType are required: %w", ErrInvalidArgument)
	}

	if req.MIMEType == "application/pdf" {
		if err := validatePDF(req.ImageData); err != nil {
			// A corrupt upload is the client's problem, not a server fault.
			return nil, fmt.Errorf("uploaded PDF failed validation (%v): %w", err, ErrInvalidArgument)
		}
	}

	prompt := genai.Text(fmt.Sprintf("%s\n\nExpected document type: %s", f.prompt, req.DocumentType))
	blob := genai.Blob{
		MIMEType: req.MIMEType,
		Data:     req.ImageData,
	}

	resp, err := f.model.GenerateContent(ctx, blob, prompt)
	if err != nil {
		slog.Error("Call to Vertex AI for document verification failed", "error", err)
		return nil, fmt.Errorf("failed to generate verdict: %w", err)
	}

	verdict, err := parseVerdict(extractText(resp))
	if err != nil {
		slog.Error("Unusable classifier response", "error", err, "documentType", req.DocumentType)
		return nil, err
	}
	return verdict, nil
}

// validatePDF rejects corrupt uploads with pdfcpu's relaxed validation.
func validatePDF(data []byte) error {
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	return api.Validate(bytes.NewReader(data), cfg)
}

// extractText gets the raw text content from the model response.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return ""
	}
	var content strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			content.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(content.String())
}

// parseVerdict decodes the classifier's JSON verdict, tolerating markdown
// fences around it. Anything else is a classifier failure.
func parseVerdict(raw string) (*models.VerifyDocumentResponse, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	if clean == "" {
		return nil, fmt.Errorf("empty response: %w", ErrClassifierFailure)
	}

	var verdict models.VerifyDocumentResponse
	if err := json.Unmarshal([]byte(clean), &verdict); err != nil {
		return nil, fmt.Errorf("malformed verdict %q: %w", clean, ErrClassifierFailure)
	}
	if verdict.Reason == "" {
		return nil, fmt.Errorf("verdict missing reason: %w", ErrClassifierFailure)
	}
	return &verdict, nil
}
