package ocr

import (
	"context"
	"fmt"
	"image"
	"slices"

	gvision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

// Vision recognizes text with Google Cloud Vision TEXT_DETECTION.
type Vision struct {
	client *gvision.ImageAnnotatorClient
}

var _ Engine = (*Vision)(nil)

// NewVision creates a Cloud Vision engine. With an empty credentialsFile
// the client uses Application Default Credentials.
func NewVision(ctx context.Context, credentialsFile string) (*Vision, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := gvision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return &Vision{client: client}, nil
}

func (v *Vision) Name() string { return "vision" }

// Close releases the Vision API client.
func (v *Vision) Close() error {
	return v.client.Close()
}

// Recognize sends img to TEXT_DETECTION and returns the full text annotation.
func (v *Vision) Recognize(ctx context.Context, img image.Image, languages []string) (string, error) {
	data, err := encodePNG(img)
	if err != nil {
		return "", err
	}

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: data},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_TEXT_DETECTION},
				},
				ImageContext: &visionpb.ImageContext{LanguageHints: languageHints(languages)},
			},
		},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return "", fmt.Errorf("vision API request failed: %w", err)
	}

	if len(resp.Responses) == 0 {
		return "", nil
	}

	if resp.Responses[0].Error != nil {
		return "", fmt.Errorf("vision API error: %s", resp.Responses[0].Error.Message)
	}

	return resp.Responses[0].GetFullTextAnnotation().GetText(), nil
}

// languageHints maps Tesseract language codes to the BCP-47 codes Vision
// expects. Unknown codes pass through.
func languageHints(languages []string) []string {
	hints := make([]string, 0, len(languages))
	for _, l := range languages {
		switch l {
		case "jpn", "jpn_vert":
			l = "ja"
		case "eng":
			l = "en"
		}
		if !slices.Contains(hints, l) {
			hints = append(hints, l)
		}
	}
	return hints
}
