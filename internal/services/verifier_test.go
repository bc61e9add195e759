package services

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/vertexai/genai"
	"github.com/staffdesk/staffdesk/internal/models"
)

type fakeModel struct {
	response *genai.GenerateContentResponse
	err      error
}

func (m *fakeModel) GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	return m.response, m.err
}

func textResponse(s string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text(s)}}},
		},
	}
}

func TestVerifierParsesVerdict(t *testing.T) {
	model := &fakeModel{response: textResponse(`{"match": true, "reason": "Layout matches an Aadhaar card."}`)}
	verifier := NewVerifier(model, "verify this document")

	res, err := verifier.Process(context.Background(), models.VerifyDocumentRequest{
		ImageData:    []byte{0xff, 0xd8, 0xff},
		MIMEType:     "image/jpeg",
		DocumentType: "Aadhaar card",
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !res.Match {
		t.Fatalf("expected a match")
	}
	if res.Reason == "" {
		t.Fatalf("expected a reason")
	}
}

func TestVerifierToleratesFencedJSON(t *testing.T) {
	verdict, err := parseVerdict("```json\n{\"match\": false, \"reason\": \"This is a PAN card, not an Aadhaar card.\"}\n```")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if verdict.Match {
		t.Fatalf("expected a mismatch verdict")
	}
}

func TestVerifierClassifierFailure(t *testing.T) {
	cases := map[string]*genai.GenerateContentResponse{
		"empty response": textResponse(""),
		"non-json":       textResponse("I cannot determine the document type."),
		"no candidates":  {},
	}
	for name, resp := range cases {
		verifier := NewVerifier(&fakeModel{response: resp}, "verify this document")
		_, err := verifier.Process(context.Background(), models.VerifyDocumentRequest{
			ImageData:    []byte{0x01},
			MIMEType:     "image/png",
			DocumentType: "PAN card",
		})
		if !errors.Is(err, ErrClassifierFailure) {
			t.Fatalf("%s: expected ErrClassifierFailure, got %v", name, err)
		}
	}
}

func TestVerifierRequiresAllInputs(t *testing.T) {
	verifier := NewVerifier(&fakeModel{}, "verify this document")

	_, err := verifier.Process(context.Background(), models.VerifyDocumentRequest{
		MIMEType:     "image/png",
		DocumentType: "PAN card",
	})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestVerifierRejectsCorruptPDF(t *testing.T) {
	verifier := NewVerifier(&fakeModel{}, "verify this document")

	_, err := verifier.Process(context.Background(), models.VerifyDocumentRequest{
		ImageData:    []byte("not a pdf at all"),
		MIMEType:     "application/pdf",
		DocumentType: "bank passbook",
	})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("corrupt PDF must be rejected as an invalid argument, got %v", err)
	}
}
