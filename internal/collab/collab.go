// Package collab defines the contracts for the external analysis and
// generation services. The core never implements the remote calls; it only
// consumes these interfaces.
package collab

import "context"

// AnalyzeRequest carries the raw upload bytes (data-URL prefix already
// stripped) and the declared media type.
type AnalyzeRequest struct {
	Data     []byte
	MimeType string
}

// AnalyzeResponse is the free-form analysis text for a drawing.
type AnalyzeResponse struct {
	Text string
}

// Analyzer turns an uploaded drawing into a textual design analysis.
type Analyzer interface {
	Analyze(ctx context.Context, req AnalyzeRequest) (AnalyzeResponse, error)
}

// ReferenceImage is attached to a generation request only when the original
// upload is itself an image.
type ReferenceImage struct {
	Data     []byte
	MimeType string
}

// GenerateRequest asks for a redesign render. Analysis is the raw analysis
// text the render must stay consistent with; Reference is nil for
// non-image originals.
type GenerateRequest struct {
	Prompt    string
	Analysis  string
	Reference *ReferenceImage
}

// GenerateResponse carries the rendered result as a self-describing inline
// image reference.
type GenerateResponse struct {
	ImageURL string
}

// Generator renders a redesign concept from a prompt and analysis context.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
}
