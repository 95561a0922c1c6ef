package types

import "strings"

// UploadedFile is the encoded form of a user upload. Data holds a
// self-describing data: URL so the payload can be re-displayed or re-sent
// without the original file handle. Immutable once created; a new upload or
// a design load replaces it wholesale.
type UploadedFile struct {
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
	Name     string `json:"name"`
}

// DesignSpec is the result of analyzing an uploaded drawing. Only
// RawAnalysis is populated by the analyzer; the structured slices are
// reserved for a parser that does not ship with this core.
type DesignSpec struct {
	Title               string   `json:"title"`
	ExtractedDimensions []string `json:"extractedDimensions"`
	DetectedMaterials   []string `json:"detectedMaterials"`
	DesignFeatures      []string `json:"designFeatures"`
	RawAnalysis         string   `json:"rawAnalysis"`
}

// HistoryItem is one generation result in the active session's history
// strip. History is most-recent-first and append-only via prepend.
type HistoryItem struct {
	ID        string `json:"id"`
	Prompt    string `json:"prompt"`
	ImageURL  string `json:"imageUrl"`
	Timestamp int64  `json:"timestamp"`
}

// SavedDesign is an immutable snapshot of a session at save time. The
// design store owns these; the session only ever holds copies.
type SavedDesign struct {
	ID                 string       `json:"id"`
	Name               string       `json:"name"`
	CreatedAt          int64        `json:"createdAt"`
	UploadedFile       UploadedFile `json:"uploadedFile"`
	AnalysisSpec       DesignSpec   `json:"analysisSpec"`
	ModificationPrompt string       `json:"modificationPrompt"`
	GeneratedImageURL  string       `json:"generatedImageUrl,omitempty"`
}

// NormalizeSavedDesign trims identity fields and defaults the display name.
func NormalizeSavedDesign(d SavedDesign) SavedDesign {
	d.ID = strings.TrimSpace(d.ID)
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		d.Name = "Untitled Design"
	}
	return d
}
