package convert

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/docchunk/internal/config"
	"github.com/dgallion1/docchunk/internal/parser"
	"github.com/dgallion1/docchunk/internal/stats"
)

func newTestService(t *testing.T, allowed ...string) (*Service, *stats.Recorder) {
	t.Helper()
	rec := stats.NewRecorder(time.Hour)
	cfg := config.Config{
		MaxUploadBytes:    1024,
		AllowedTypes:      allowed,
		ConversionTimeout: 5 * time.Second,
	}
	return NewService(cfg, rec, slog.New(slog.NewTextHandler(io.Discard, nil))), rec
}

func TestConvert_PlainText(t *testing.T) {
	svc, rec := newTestService(t, parser.TypeText)
	data := []byte("Intro paragraph.\n\nSecond paragraph here.")

	ext, err := svc.Convert(context.Background(), Upload{Filename: "notes.txt", ContentType: "text/plain", Data: data})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ext.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(ext.Sections))
	}
	if !strings.Contains(ext.Text, "Second paragraph here.") {
		t.Errorf("text missing content: %q", ext.Text)
	}
	if ext.Metadata["filename"] != "notes.txt" {
		t.Errorf("expected filename metadata, got %v", ext.Metadata["filename"])
	}
	if ext.Metadata["content_type"] != parser.TypeText {
		t.Errorf("expected content_type metadata, got %v", ext.Metadata["content_type"])
	}
	if ext.Metadata["content_hash"] != ContentHashHex(data) {
		t.Errorf("unexpected content_hash %v", ext.Metadata["content_hash"])
	}
	if snap := rec.Snapshot(); snap.Count != 1 || snap.ByFormat["text"] != 1 {
		t.Errorf("expected one recorded text conversion, got %+v", snap)
	}
}

func TestConvert_RemovesTempFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TMPDIR", dir)
	svc, _ := newTestService(t, parser.TypeText)

	if _, err := svc.Convert(context.Background(), Upload{Filename: "a.txt", ContentType: "text/plain", Data: []byte("Hello.")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read temp dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected temp dir to be empty, found %d entries", len(entries))
	}
}

func TestConvert_RemovesTempFileOnFailure(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TMPDIR", dir)
	svc, _ := newTestService(t, parser.TypePDF)

	_, err := svc.Convert(context.Background(), Upload{Filename: "bad.pdf", ContentType: parser.TypePDF, Data: []byte("%PDF-1.4\nnot really a pdf\n")})
	if err == nil {
		t.Fatal("expected error for malformed pdf")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected temp dir to be empty, found %d entries", len(entries))
	}
}

func TestConvert_TooLarge(t *testing.T) {
	svc, rec := newTestService(t, parser.TypeText)
	data := []byte(strings.Repeat("x", 1025))

	_, err := svc.Convert(context.Background(), Upload{Filename: "big.txt", ContentType: "text/plain", Data: data})
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
	if !strings.Contains(err.Error(), "Maximum size") {
		t.Errorf("expected limit in message, got %q", err.Error())
	}
	if rec.Snapshot().Count != 0 {
		t.Error("rejected uploads should not be recorded as conversions")
	}
}

func TestConvert_Empty(t *testing.T) {
	svc, _ := newTestService(t, parser.TypeText)
	_, err := svc.Convert(context.Background(), Upload{Filename: "e.txt", ContentType: "text/plain"})
	if !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}
}

func TestConvert_UnsupportedListsAllowedTypes(t *testing.T) {
	svc, _ := newTestService(t, parser.TypePDF, parser.TypeDOC, parser.TypeDOCX)
	_, err := svc.Convert(context.Background(), Upload{Filename: "a.txt", ContentType: "text/plain", Data: []byte("hi")})
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
	if !strings.Contains(err.Error(), "Allowed types: PDF, DOC, DOCX") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestConvert_UnknownTypeRejectedEvenIfAllowed(t *testing.T) {
	svc, _ := newTestService(t, "image/png")
	_, err := svc.Convert(context.Background(), Upload{Filename: "a.png", ContentType: "image/png", Data: []byte("png")})
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestResolveType(t *testing.T) {
	svc, _ := newTestService(t)
	tests := []struct {
		name     string
		declared string
		data     string
		want     string
	}{
		{"declared wins", "text/markdown", "# Title", "text/markdown"},
		{"parameters stripped", "text/plain; charset=utf-8", "hi", "text/plain"},
		{"sniffed pdf", "application/octet-stream", "%PDF-1.4\n%\xe2\xe3\xcf\xd3\n", "application/pdf"},
		{"sniffed text", "", "just some words", "text/plain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.ResolveType(Upload{ContentType: tt.declared, Data: []byte(tt.data)})
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestConvert_ParserFailureIsProcessingError(t *testing.T) {
	svc, rec := newTestService(t, parser.TypePDF)
	_, err := svc.Convert(context.Background(), Upload{Filename: "bad.pdf", ContentType: parser.TypePDF, Data: []byte("%PDF-1.4\nnot really a pdf\n")})
	if !errors.Is(err, ErrProcessing) {
		t.Fatalf("expected ErrProcessing, got %v", err)
	}
	if IsClientError(err) {
		t.Error("processing failure must not be a client error")
	}
	if snap := rec.Snapshot(); snap.Failures != 1 {
		t.Errorf("expected one recorded failure, got %+v", snap)
	}
}

func TestConvert_Timeout(t *testing.T) {
	svc, _ := newTestService(t, parser.TypeText)
	svc.timeout = -time.Second

	_, err := svc.Convert(context.Background(), Upload{Filename: "a.txt", ContentType: "text/plain", Data: []byte("One.\n\nTwo.")})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if !errors.Is(err, ErrProcessing) {
		t.Error("timeout should also be a processing error")
	}
}

func TestIsClientError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{ErrFileTooLarge, true},
		{ErrUnsupportedType, true},
		{ErrEmptyFile, true},
		{ErrProcessing, false},
		{ErrTimeout, false},
		{errors.New("other"), false},
	}
	for _, tt := range tests {
		if got := IsClientError(tt.err); got != tt.want {
			t.Errorf("IsClientError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestHumanBytes(t *testing.T) {
	if got := humanBytes(20 * 1024 * 1024); got != "20MB" {
		t.Errorf("expected 20MB, got %s", got)
	}
	if got := humanBytes(1500); got != "1500 bytes" {
		t.Errorf("expected 1500 bytes, got %s", got)
	}
}

func TestContentHashHex(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hello world", "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"},
		{"", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
	}
	for _, tt := range tests {
		if got := ContentHashHex([]byte(tt.in)); got != tt.want {
			t.Errorf("ContentHashHex(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
