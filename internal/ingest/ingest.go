// Package ingest runs single-image ingestion against the local
// cutout/OCR backend and the LLM title extractor.
package ingest

import (
	"context"

	"flyer-service/internal/deepseek"
	"flyer-service/internal/discount/model"
)

// OCR is the recognized-text evidence for one image. RecTexts stays empty
// (never nil in JSON terms) when recognition fails.
type OCR struct {
	Text     string   `json:"text"`
	RecTexts []string `json:"rec_texts"`
}

// Title is the bilingual product title picked from extraction.
type Title struct {
	En string `json:"en"`
	Zh string `json:"zh"`
}

// Result is everything ingestion learned about one image.
type Result struct {
	InputPath  string          `json:"inputPath"`
	CutoutPath string          `json:"cutoutPath"`
	OCR        OCR             `json:"ocr"`
	Title      Title           `json:"title"`
	Items      []deepseek.Item `json:"items,omitempty"`
	Discount   *model.Row      `json:"discount,omitempty"`
}

// Ingestor is the per-image ingestion collaborator. Implementations must
// degrade OCR failures to empty rec_texts rather than failing the image.
type Ingestor interface {
	Ingest(ctx context.Context, imagePath string) (*Result, error)
}
