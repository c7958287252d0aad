// Package ocr turns scanned bill images into raw text and derives
// best-effort transaction fields from that text.
package ocr

import (
	"bytes"
	"context"
	"fmt"

	"moodledger/internal/core"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// Engine converts an image into raw text. It may return empty text; an
// error means the engine itself failed, not that nothing was found.
type Engine interface {
	Extract(ctx context.Context, image []byte) (string, error)
}

// Tesseract runs the system tesseract engine through gosseract, with a
// light grayscale-and-upscale pass first. Small phone photos of receipts
// OCR noticeably better after upscaling.
type Tesseract struct {
	language string
}

func NewTesseract(language string) *Tesseract {
	if language == "" {
		language = "eng"
	}
	return &Tesseract{language: language}
}

func (t *Tesseract) Extract(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", core.WrapKind(core.ErrExtraction, err)
	}

	client := gosseract.NewClient()
	defer client.Close()
	_ = client.SetLanguage(t.language)

	if err := client.SetImageFromBytes(preprocess(image)); err != nil {
		return "", core.WrapKind(core.ErrExtraction, fmt.Errorf("set image: %w", err))
	}
	text, err := client.Text()
	if err != nil {
		return "", core.WrapKind(core.ErrExtraction, fmt.Errorf("run ocr: %w", err))
	}
	return text, nil
}

// preprocess grayscales and upscales the image. Bytes that do not decode
// are passed through untouched and left for the engine to reject.
func preprocess(image []byte) []byte {
	img, err := imaging.Decode(bytes.NewReader(image))
	if err != nil {
		return image
	}
	gray := imaging.Grayscale(img)
	if gray.Bounds().Dy() < 800 {
		gray = imaging.Resize(gray, 0, 1200, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, gray, imaging.PNG); err != nil {
		return image
	}
	return buf.Bytes()
}
