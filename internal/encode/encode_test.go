package encode

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"redesignstudio/internal/tester"
)

func TestEncodeProducesDataURL(t *testing.T) {
	f, err := Encode("ladder.png", "image/png", bytes.NewReader([]byte{0x89, 0x50, 0x4e, 0x47}))
	tester.NoErr(t, err)
	tester.Eq(t, f.Name, "ladder.png")
	tester.Eq(t, f.MimeType, "image/png")
	tester.True(t, strings.HasPrefix(f.Data, "data:image/png;base64,"), "data URL prefix")

	raw, err := RawBytes(f)
	tester.NoErr(t, err)
	tester.Eq(t, raw, []byte{0x89, 0x50, 0x4e, 0x47})
}

func TestEncodeDefaultsMimeType(t *testing.T) {
	f, err := Encode("spec", "  ", strings.NewReader("hello"))
	tester.NoErr(t, err)
	tester.Eq(t, f.MimeType, "application/octet-stream")
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestEncodeReadFailureIsTerminal(t *testing.T) {
	_, err := Encode("bad.pdf", "application/pdf", failingReader{})
	if err == nil {
		t.Fatalf("expected read error")
	}
}

func TestRawBytesRejectsBarePayload(t *testing.T) {
	f, _ := Encode("x.png", "image/png", strings.NewReader("x"))
	f.Data = "not-a-data-url"
	if _, err := RawBytes(f); err == nil {
		t.Fatalf("expected data URL parse error")
	}
}

func TestIsImage(t *testing.T) {
	tester.True(t, IsImage("image/png"), "png")
	tester.True(t, IsImage(" image/jpeg"), "jpeg with space")
	tester.False(t, IsImage("application/pdf"), "pdf")
	tester.False(t, IsImage(""), "empty")
}
