package mimecheck

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"
)

// buildUpload assembles a real multipart form and returns its file header.
func buildUpload(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	r := multipart.NewReader(&buf, w.Boundary())
	form, err := r.ReadForm(32 << 20)
	if err != nil {
		t.Fatalf("read form: %v", err)
	}
	t.Cleanup(func() { form.RemoveAll() })

	files := form.File["file"]
	if len(files) != 1 {
		t.Fatalf("expected one file, got %d", len(files))
	}
	return files[0]
}

func TestFromUpload(t *testing.T) {
	fh := buildUpload(t, "photo.png", "image/png", pngHeader)

	target, cleanup, err := FromUpload(fh)
	if err != nil {
		t.Fatalf("FromUpload() error: %v", err)
	}
	defer cleanup()

	if target.Name != "photo.png" {
		t.Errorf("expected name photo.png, got %q", target.Name)
	}
	if target.Type != "image/png" {
		t.Errorf("expected declared type image/png, got %q", target.Type)
	}
	if target.Path == "" {
		t.Error("expected a readable path")
	}
	if target.Size != int64(len(pngHeader)) {
		t.Errorf("expected size %d, got %d", len(pngHeader), target.Size)
	}
}

func TestCheckUpload(t *testing.T) {
	checker, err := New(Options{Allowed: []string{"image/png"}})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if err := checker.CheckUpload(buildUpload(t, "photo.png", "image/png", pngHeader)); err != nil {
		t.Errorf("expected PNG upload to be accepted, got %v", err)
	}

	err = checker.CheckUpload(buildUpload(t, "page.html", "text/html", []byte("<html><body>hi</body></html>")))
	if !IsCode(err, FalseType) {
		t.Errorf("expected FALSE_TYPE for HTML upload, got %v", err)
	}
}

func TestCheckUploadSpoofedHeader(t *testing.T) {
	// Declared type is irrelevant when sniffing is on: content decides
	checker, err := New(Options{Allowed: []string{"image/png"}})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	fh := buildUpload(t, "fake.png", "image/png", []byte(strings.Repeat("just plain text ", 8)))
	if err := checker.CheckUpload(fh); !IsCode(err, FalseType) {
		t.Errorf("expected FALSE_TYPE for spoofed header, got %v", err)
	}
}

func TestFromPath(t *testing.T) {
	target := FromPath("/var/uploads/doc.pdf")

	if target.Name != "doc.pdf" {
		t.Errorf("expected base name, got %q", target.Name)
	}
	if target.Path != "/var/uploads/doc.pdf" {
		t.Errorf("expected path preserved, got %q", target.Path)
	}
	if target.Type != "" {
		t.Errorf("expected no declared type, got %q", target.Type)
	}
}
