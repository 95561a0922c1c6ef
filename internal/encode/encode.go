// Package encode turns raw uploads into transport-ready files. The payload
// is stored as a data: URL so it carries its own media type and can be
// re-submitted to a collaborator or rendered without the original handle.
package encode

import (
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"redesignstudio/internal/types"
)

const defaultMimeType = "application/octet-stream"

// Encode reads r to completion and wraps the bytes as an UploadedFile.
// A read failure is terminal; nothing is retried.
func Encode(name, mimeType string, r io.Reader) (types.UploadedFile, error) {
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" {
		mimeType = defaultMimeType
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return types.UploadedFile{}, fmt.Errorf("encode %q: %w", name, err)
	}
	return types.UploadedFile{
		Data:     DataURL(mimeType, raw),
		MimeType: mimeType,
		Name:     strings.TrimSpace(name),
	}, nil
}

// DataURL builds the self-describing payload form.
func DataURL(mimeType string, raw []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(raw)
}

// RawBytes strips the data-URL prefix and decodes the payload back to its
// original bytes, the form collaborators expect.
func RawBytes(f types.UploadedFile) ([]byte, error) {
	_, b64, found := strings.Cut(f.Data, ",")
	if !found {
		return nil, fmt.Errorf("payload for %q is not a data URL", f.Name)
	}
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("decode payload for %q: %w", f.Name, err)
	}
	return raw, nil
}

// IsImage reports whether the declared media type is an image type.
// Non-image uploads (PDFs and the like) are represented to the generator by
// analysis text alone.
func IsImage(mimeType string) bool {
	return strings.HasPrefix(strings.TrimSpace(mimeType), "image/")
}
