package extract

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"recruit-backend/internal/parser"
	"recruit-backend/internal/shared/metrics"
	"recruit-backend/internal/shared/telemetry"
)

// defaultMinTextLen is the shortest extracted text worth sending to the
// parser; anything below it is noise or a blank scan.
const defaultMinTextLen = 30

// Pipeline runs text extraction and structured parsing for one document.
type Pipeline struct {
	Parser parser.Client
	// TempDir holds spooled working copies. Empty means os.TempDir().
	TempDir string
	// MinTextLen overrides the sufficiency threshold when positive.
	MinTextLen int
}

// Input identifies the document to run through the pipeline. Open returns a
// fresh reader for its bytes; the pipeline owns closing it. Path, when set,
// points at bytes already on local disk and the pipeline reads them in place
// instead of calling Open.
type Input struct {
	DocumentID string
	FileName   string
	MimeType   string
	Kind       parser.Kind
	Path       string
	Open       func(ctx context.Context) (io.ReadCloser, error)
}

// Run extracts the document's text, checks it is worth parsing and calls the
// structured parser. Remote-backed bytes are spooled to a scratch file that
// is removed on every path, success or failure; locally stored bytes are read
// in place and never copied.
func (p *Pipeline) Run(ctx context.Context, in Input) (parser.Result, error) {
	metrics.IncParse()

	result, err := p.run(ctx, in)
	if err != nil {
		metrics.IncParseFailed()
		return parser.Result{}, err
	}
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, in Input) (parser.Result, error) {
	path := in.Path
	if path == "" {
		spooled, err := p.spool(ctx, in)
		if err != nil {
			return parser.Result{}, err
		}
		defer func() {
			if rmErr := os.Remove(spooled); rmErr != nil {
				telemetry.Warn("scratch file cleanup failed", map[string]any{
					"document_id": in.DocumentID,
					"path":        spooled,
					"error":       rmErr.Error(),
				})
			}
		}()
		path = spooled
	}

	text, err := TextFromFile(path, in.MimeType, in.FileName)
	if err != nil {
		return parser.Result{}, err
	}
	if err := p.ValidateSufficiency(text); err != nil {
		return parser.Result{}, err
	}

	start := time.Now()
	result, err := p.Parser.Parse(ctx, text, in.Kind)
	metrics.ObserveParseDurationMs(float64(time.Since(start)) / float64(time.Millisecond))
	if err != nil {
		return parser.Result{}, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	if result.Empty() {
		return parser.Result{}, fmt.Errorf("%w: parser produced no usable fields", ErrParseFailed)
	}
	if result.Profile != nil && len(result.PopulatedFields) == 0 {
		result.PopulatedFields = result.Profile.PopulatedFields()
	}
	return result, nil
}

// ValidateSufficiency rejects extracted text too short to carry signal.
func (p *Pipeline) ValidateSufficiency(text string) error {
	min := p.MinTextLen
	if min <= 0 {
		min = defaultMinTextLen
	}
	if len(strings.TrimSpace(text)) < min {
		return fmt.Errorf("%w: need at least %d characters of text", ErrInsufficientContent, min)
	}
	return nil
}

// spool copies the document's bytes to a scratch file and returns its path.
func (p *Pipeline) spool(ctx context.Context, in Input) (string, error) {
	rc, err := in.Open(ctx)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	tmp, err := os.CreateTemp(p.TempDir, "extract-*")
	if err != nil {
		return "", fmt.Errorf("create scratch file: %w", err)
	}
	if _, err := io.Copy(tmp, rc); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("spool document %s: %w", in.DocumentID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("spool document %s: %w", in.DocumentID, err)
	}
	return tmp.Name(), nil
}
