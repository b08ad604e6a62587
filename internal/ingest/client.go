package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"flyer-service/internal/deepseek"
)

// Extractor pulls a structured title out of OCR text; nil disables the
// extraction step.
type Extractor interface {
	Extract(ctx context.Context, rawText string) ([]deepseek.Item, error)
}

// Client talks to the local cutout/OCR backend over HTTP.
type Client struct {
	baseURL   string
	outDir    string
	httpc     *http.Client
	extractor Extractor
	log       zerolog.Logger
}

type ClientConfig struct {
	BaseURL string // backend address, e.g. http://127.0.0.1:17890
	OutDir  string // where cutout PNGs are written
	Timeout time.Duration
}

func NewClient(cfg ClientConfig, extractor Extractor, logger zerolog.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		outDir:    cfg.OutDir,
		httpc:     &http.Client{Timeout: cfg.Timeout},
		extractor: extractor,
		log:       logger,
	}
}

// Ingest runs OCR, title extraction and background cutout for one image.
// OCR and extraction failures degrade to empty results; only a cutout
// failure fails the image.
func (c *Client) Ingest(ctx context.Context, imagePath string) (*Result, error) {
	res := &Result{InputPath: imagePath, OCR: OCR{RecTexts: []string{}}}

	recTexts, err := c.runOCR(ctx, imagePath)
	if err != nil {
		c.log.Warn().Err(err).Str("image", imagePath).Msg("ocr failed, continuing without text")
	} else {
		res.OCR.RecTexts = recTexts
		res.OCR.Text = strings.Join(recTexts, " ")
	}

	if c.extractor != nil && len(res.OCR.RecTexts) > 0 {
		items, err := c.extractor.Extract(ctx, strings.Join(res.OCR.RecTexts, "\n"))
		if err != nil {
			c.log.Warn().Err(err).Str("image", imagePath).Msg("title extraction failed")
		} else if len(items) > 0 {
			res.Items = items
			res.Title = Title{En: items[0].En, Zh: items[0].Zh}
		}
	}

	cutoutPath, err := c.runCutout(ctx, imagePath)
	if err != nil {
		return nil, fmt.Errorf("cutout: %w", err)
	}
	res.CutoutPath = cutoutPath

	return res, nil
}

type ocrRequest struct {
	Path string `json:"path"`
}

type ocrResponse struct {
	RecTexts []string `json:"rec_texts"`
}

func (c *Client) runOCR(ctx context.Context, imagePath string) ([]string, error) {
	body, err := json.Marshal(ocrRequest{Path: imagePath})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ocr", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ocr status %d", res.StatusCode)
	}

	var or ocrResponse
	if err := json.NewDecoder(res.Body).Decode(&or); err != nil {
		return nil, err
	}
	return or.RecTexts, nil
}

func (c *Client) runCutout(ctx context.Context, imagePath string) (string, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(imagePath))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/cutout", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	res, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("cutout status %d", res.StatusCode)
	}

	if err := os.MkdirAll(c.outDir, 0o755); err != nil {
		return "", err
	}
	base := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
	outPath := filepath.Join(c.outDir, base+".cutout.png")

	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()
	if _, err := io.Copy(out, res.Body); err != nil {
		return "", err
	}

	c.log.Debug().Str("cutout", outPath).Msg("cutout written")
	return outPath, nil
}
