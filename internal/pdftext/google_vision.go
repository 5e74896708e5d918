package pdftext

import (
	"context"
	"fmt"
	"os"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

const (
	// MaxVisionFileSizeBytes is the Vision API limit for synchronous
	// processing (20MB).
	MaxVisionFileSizeBytes = 20 * 1024 * 1024
)

// VisionEngine implements Engine using Google Cloud Vision document text
// detection. It is selected with OCR_ENGINE=vision for environments where
// the local tesseract toolchain is not installed.
type VisionEngine struct {
	client *vision.ImageAnnotatorClient
}

// NewVisionEngine creates the engine with credentials from the environment:
// GOOGLE_CREDENTIALS inline JSON, GOOGLE_APPLICATION_CREDENTIALS file path,
// or application default credentials.
func NewVisionEngine(ctx context.Context) (*VisionEngine, error) {
	const op = "NewVisionEngine"

	var client *vision.ImageAnnotatorClient
	var err error

	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
	} else {
		client, err = vision.NewImageAnnotatorClient(ctx)
	}
	if err != nil {
		return nil, NewAcquireError(op, ErrEngineUnavailable, fmt.Sprintf("failed to create Vision client: %v", err))
	}

	return &VisionEngine{client: client}, nil
}

// NewVisionEngineWithClient creates the engine with an explicit client (for testing).
func NewVisionEngineWithClient(client *vision.ImageAnnotatorClient) *VisionEngine {
	return &VisionEngine{client: client}
}

// Recognize submits the whole PDF to the Vision API and concatenates the
// per-page text with PageBreakMarker.
func (v *VisionEngine) Recognize(ctx context.Context, pdfBytes []byte) (string, error) {
	const op = "Recognize"

	if len(pdfBytes) > MaxVisionFileSizeBytes {
		return "", NewAcquireError(op, ErrInvalidPDF, fmt.Sprintf("file size %d exceeds Vision API limit", len(pdfBytes)))
	}

	req := &visionpb.BatchAnnotateFilesRequest{
		Requests: []*visionpb.AnnotateFileRequest{
			{
				InputConfig: &visionpb.InputConfig{
					Content:  pdfBytes,
					MimeType: "application/pdf",
				},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	}

	resp, err := v.client.BatchAnnotateFiles(ctx, req)
	if err != nil {
		return "", NewAcquireError(op, err, "Vision API call failed")
	}
	if len(resp.Responses) == 0 {
		return "", NewAcquireError(op, ErrNoTextExtracted, "no response from Vision API")
	}

	fileResp := resp.Responses[0]
	if fileResp.Error != nil {
		return "", NewAcquireError(op, fmt.Errorf("%s", fileResp.Error.Message), "Vision API error")
	}

	var b strings.Builder
	for _, page := range fileResp.Responses {
		if page.Error != nil || page.FullTextAnnotation == nil {
			continue
		}
		pageText := page.FullTextAnnotation.Text
		if strings.TrimSpace(pageText) == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(PageBreakMarker)
		}
		b.WriteString(pageText)
	}

	return b.String(), nil
}

// Close closes the underlying Vision client.
func (v *VisionEngine) Close() error {
	if v.client != nil {
		return v.client.Close()
	}
	return nil
}
