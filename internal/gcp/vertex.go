package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/vertexai/genai"
)

// --- Document Verifier Model Prompts ---
const VerifierSystemPrompt = "You are a document verification assistant for an employee records system. Your task is to decide whether an uploaded document image matches the document type it was submitted as. You must output your response as a single valid JSON object."

const VerifierUserPrompt = `You will be provided with an image or PDF of a document submitted during employee onboarding, together with the expected document type.

Follow these rules precisely:
1. Inspect the document and decide whether it is genuinely a document of the expected type (for example an Aadhaar card, a PAN card, a bank passbook, or a passport photo).
2. Respond with a JSON object with exactly two keys:
   - "match": a boolean, true only if the document is of the expected type.
   - "reason": a single sentence explaining your decision.
3. Do not include any text before or after the JSON object.

Example output format:
{"match": true, "reason": "The document shows the layout, emblem and number format of an Aadhaar card."}`

// VertexClient holds the pre-configured generative model for document
// verification.
type VertexClient struct {
	DocumentVerifierModel *genai.GenerativeModel
	baseClient            *genai.Client
}

// NewVertexClient creates a new client holding the verifier model.
func NewVertexClient(ctx context.Context, projectID, region string) (*VertexClient, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexClient: projectID and region cannot be empty")
	}

	baseClient, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	verifierModel := baseClient.GenerativeModel("gemini-1.5-pro")
	verifierModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(VerifierSystemPrompt)},
	}
	verifierModel.GenerationConfig = genai.GenerationConfig{
		// Force JSON output. The verifier treats anything else as a
		// classifier failure.
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.0),
	}
	verifierModel.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockNone},
	}

	return &VertexClient{
		DocumentVerifierModel: verifierModel,
		baseClient:            baseClient,
	}, nil
}

func (c *VertexClient) Close() error {
	if c.baseClient != nil {
		return c.baseClient.Close()
	}
	return nil
}
