// Package convert validates uploads and turns them into document extractions.
package convert

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"

	"github.com/dgallion1/docchunk/internal/config"
	"github.com/dgallion1/docchunk/internal/document"
	"github.com/dgallion1/docchunk/internal/parser"
	"github.com/dgallion1/docchunk/internal/stats"
)

// Upload is one file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Service struct {
	maxBytes int64
	allowed  []string
	timeout  time.Duration
	opts     parser.Options
	stats    *stats.Recorder
	log      *slog.Logger
}

func NewService(cfg config.Config, rec *stats.Recorder, log *slog.Logger) *Service {
	return &Service{
		maxBytes: cfg.MaxUploadBytes,
		allowed:  cfg.AllowedTypes,
		timeout:  cfg.ConversionTimeout,
		opts: parser.Options{
			PDFFallbackPdftotext: cfg.PDFFallbackPdftotext,
			AntiwordPath:         cfg.AntiwordPath,
		},
		stats: rec,
		log:   log,
	}
}

// MaxBytes is the upload size limit.
func (s *Service) MaxBytes() int64 {
	return s.maxBytes
}

// CheckSize rejects uploads over the configured limit.
func (s *Service) CheckSize(n int64) error {
	if n > s.maxBytes {
		return fmt.Errorf("%w. Maximum size: %s", ErrFileTooLarge, humanBytes(s.maxBytes))
	}
	return nil
}

// ResolveType returns the normalized content type for an upload. A missing or
// generic declared type is replaced by one sniffed from the content.
func (s *Service) ResolveType(u Upload) string {
	ct := parser.NormalizeType(u.ContentType)
	if ct == "" || ct == "application/octet-stream" {
		ct = parser.NormalizeType(mimetype.Detect(u.Data).String())
	}
	return ct
}

// Validate checks size, emptiness and type, returning the matched format.
func (s *Service) Validate(u Upload) (string, parser.Format, error) {
	if err := s.CheckSize(int64(len(u.Data))); err != nil {
		return "", parser.Format{}, err
	}
	if len(u.Data) == 0 {
		return "", parser.Format{}, ErrEmptyFile
	}

	ct := s.ResolveType(u)
	f, ok := parser.Lookup(ct)
	if !ok || !slices.Contains(s.allowed, ct) {
		return "", parser.Format{}, fmt.Errorf("%w: %s. Allowed types: %s", ErrUnsupportedType, ct, s.allowedLabels())
	}
	return ct, f, nil
}

func (s *Service) allowedLabels() string {
	var labels []string
	for _, ct := range s.allowed {
		label := ct
		if f, ok := parser.Lookup(ct); ok {
			label = f.Label
		}
		if !slices.Contains(labels, label) {
			labels = append(labels, label)
		}
	}
	return strings.Join(labels, ", ")
}

// Convert validates the upload, writes it to a temp file and runs the
// matching parser under the conversion timeout. The temp file is always
// removed.
func (s *Service) Convert(ctx context.Context, u Upload) (*document.Extraction, error) {
	ct, format, err := s.Validate(u)
	if err != nil {
		return nil, err
	}
	log := s.log.With("filename", u.Filename, "content_type", ct, "size_bytes", len(u.Data))

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	ext, err := s.run(ctx, ct, format, u)
	elapsed := time.Since(start)
	if s.stats != nil {
		s.stats.Record(format.Name, elapsed, err)
	}

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			log.Error("conversion timed out", "timeout", s.timeout)
			return nil, fmt.Errorf("%w after %s", ErrTimeout, s.timeout)
		}
		log.Error("conversion failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrProcessing, err)
	}

	if ext.Metadata == nil {
		ext.Metadata = map[string]any{}
	}
	ext.Metadata["filename"] = u.Filename
	ext.Metadata["content_type"] = ct
	ext.Metadata["size_bytes"] = len(u.Data)
	ext.Metadata["content_hash"] = ContentHashHex(u.Data)

	log.Info("converted document",
		"format", format.Name,
		"sections", len(ext.Sections),
		"chars", utf8.RuneCountInString(ext.Text),
		"duration_ms", elapsed.Milliseconds())
	return ext, nil
}

func (s *Service) run(ctx context.Context, ct string, format parser.Format, u Upload) (ext *document.Extraction, err error) {
	p, err := parser.ForContentType(ct, s.opts)
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp("", "docchunk-*"+format.Suffix)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.Write(u.Data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	// Third-party decoders panic on some malformed input.
	defer func() {
		if r := recover(); r != nil {
			ext, err = nil, fmt.Errorf("parser panic: %v", r)
		}
	}()
	return p.Parse(ctx, path, u.Filename)
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

func humanBytes(n int64) string {
	const mb = 1024 * 1024
	if n >= mb && n%mb == 0 {
		return fmt.Sprintf("%dMB", n/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}
