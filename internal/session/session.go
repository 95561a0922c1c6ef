// Package session owns the active working context: one uploaded drawing,
// one analysis, the evolving prompt, and the in-memory history of generated
// results. All transitions apply their success or failure effects atomically
// under the session lock; no failure may leave the state half-updated or a
// loading flag stuck.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"redesignstudio/internal/collab"
	"redesignstudio/internal/designstore"
	"redesignstudio/internal/encode"
	"redesignstudio/internal/types"
)

var (
	// ErrBusy rejects a Modify while a generation is already in flight.
	ErrBusy = errors.New("session: generation already in progress")
	// ErrNoAnalysis guards Modify and SaveDesign before a successful upload.
	ErrNoAnalysis = errors.New("session: no analyzed upload")
	// ErrEmptyAnalysis marks an analysis that returned no text.
	ErrEmptyAnalysis = errors.New("session: analysis produced no text")
)

// User-facing failure messages, kept stable for the UI.
const (
	analyzeFailedMsg  = "Failed to analyze the file. Please ensure it is a valid PDF or Image."
	generateFailedMsg = "Failed to generate design. Please try again."
)

// State is a copying view of the session for rendering and transport.
type State struct {
	UploadedFile *types.UploadedFile `json:"uploadedFile,omitempty"`
	AnalysisSpec *types.DesignSpec   `json:"analysisSpec,omitempty"`
	Prompt       string              `json:"prompt"`
	IsAnalyzing  bool                `json:"isAnalyzing"`
	IsGenerating bool                `json:"isGenerating"`
	ImageURL     string              `json:"imageUrl,omitempty"`
	Error        string              `json:"error,omitempty"`
	History      []types.HistoryItem `json:"history"`
}

type Session struct {
	analyzer  collab.Analyzer
	generator collab.Generator
	designs   *designstore.Store

	now   func() time.Time
	newID func() string

	mu sync.Mutex
	// epoch increments whenever the working context is replaced (Upload,
	// LoadDesign). A collaborator result from a superseded epoch is
	// discarded instead of clobbering the new context.
	epoch        uint64
	uploadedFile *types.UploadedFile
	spec         *types.DesignSpec
	prompt       string
	analyzing    bool
	generating   bool
	imageURL     string
	lastErr      string
	history      []types.HistoryItem
}

func New(analyzer collab.Analyzer, generator collab.Generator, designs *designstore.Store) *Session {
	return &Session{
		analyzer:  analyzer,
		generator: generator,
		designs:   designs,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Upload encodes the file, resets the working context, and runs analysis.
// The encode failure is terminal and leaves the previous context intact; an
// analysis failure is recorded in the session error and clears the
// analyzing flag. A concurrent Upload or LoadDesign supersedes this one:
// its late analysis result is dropped.
func (s *Session) Upload(ctx context.Context, name, mimeType string, r io.Reader) error {
	file, err := encode.Encode(name, mimeType, r)
	if err != nil {
		return err
	}
	raw, err := encode.RawBytes(file)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.epoch++
	epoch := s.epoch
	s.uploadedFile = &file
	s.spec = nil
	s.history = nil
	s.imageURL = ""
	s.lastErr = ""
	s.analyzing = true
	s.generating = false
	s.mu.Unlock()

	resp, err := s.analyzer.Analyze(ctx, collab.AnalyzeRequest{Data: raw, MimeType: file.MimeType})

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		// Superseded while in flight; the new context owns the fields now.
		return nil
	}
	s.analyzing = false
	if err == nil && strings.TrimSpace(resp.Text) == "" {
		err = ErrEmptyAnalysis
	}
	if err != nil {
		s.lastErr = analyzeFailedMsg
		return fmt.Errorf("analyze %q: %w", file.Name, err)
	}
	s.spec = &types.DesignSpec{
		Title:               file.Name,
		ExtractedDimensions: []string{},
		DetectedMaterials:   []string{},
		DesignFeatures:      []string{},
		RawAnalysis:         resp.Text,
	}
	return nil
}

// Modify requests a redesign render for promptText against the current
// analysis. The original payload is passed as a reference image only when
// it is an image type. On success the result is prepended to history; on
// failure history and the current image are untouched.
func (s *Session) Modify(ctx context.Context, promptText string) error {
	s.mu.Lock()
	if s.spec == nil || s.uploadedFile == nil {
		s.mu.Unlock()
		return ErrNoAnalysis
	}
	if s.generating {
		s.mu.Unlock()
		return ErrBusy
	}
	var ref *collab.ReferenceImage
	if encode.IsImage(s.uploadedFile.MimeType) {
		raw, err := encode.RawBytes(*s.uploadedFile)
		if err != nil {
			s.lastErr = generateFailedMsg
			s.mu.Unlock()
			return err
		}
		ref = &collab.ReferenceImage{Data: raw, MimeType: s.uploadedFile.MimeType}
	}
	s.generating = true
	s.lastErr = ""
	s.prompt = promptText
	epoch := s.epoch
	analysis := s.spec.RawAnalysis
	s.mu.Unlock()

	resp, err := s.generator.Generate(ctx, collab.GenerateRequest{
		Prompt:    promptText,
		Analysis:  analysis,
		Reference: ref,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return nil
	}
	s.generating = false
	if err != nil {
		msg := strings.TrimSpace(err.Error())
		if msg == "" {
			msg = generateFailedMsg
		}
		s.lastErr = msg
		return fmt.Errorf("generate: %w", err)
	}
	s.imageURL = resp.ImageURL
	item := types.HistoryItem{
		ID:        s.newID(),
		Prompt:    promptText,
		ImageURL:  resp.ImageURL,
		Timestamp: s.now().UnixMilli(),
	}
	s.history = append([]types.HistoryItem{item}, s.history...)
	return nil
}

// SelectHistory recalls a past result into the visible fields. Pure lookup:
// no collaborator call, history itself is never reordered or truncated.
func (s *Session) SelectHistory(id string) (types.HistoryItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.history {
		if item.ID == id {
			s.imageURL = item.ImageURL
			s.prompt = item.Prompt
			s.lastErr = ""
			return item, true
		}
	}
	return types.HistoryItem{}, false
}

// SaveDesign snapshots the current context under name and inserts it into
// the design store. A store failure (including storage-full) is returned to
// the caller and leaves the session state untouched.
func (s *Session) SaveDesign(ctx context.Context, name string) (types.SavedDesign, error) {
	s.mu.Lock()
	if s.uploadedFile == nil || s.spec == nil {
		s.mu.Unlock()
		return types.SavedDesign{}, ErrNoAnalysis
	}
	d := types.SavedDesign{
		ID:                 s.newID(),
		Name:               name,
		CreatedAt:          s.now().UnixMilli(),
		UploadedFile:       *s.uploadedFile,
		AnalysisSpec:       cloneSpec(*s.spec),
		ModificationPrompt: s.prompt,
		GeneratedImageURL:  s.imageURL,
	}
	s.mu.Unlock()

	if err := s.designs.Insert(ctx, d); err != nil {
		return types.SavedDesign{}, err
	}
	return d, nil
}

// LoadDesign replaces the working context from a snapshot. History is
// seeded with the snapshot's last result when it has one, so the history
// strip is populated immediately after a load.
func (s *Session) LoadDesign(d types.SavedDesign) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	file := d.UploadedFile
	spec := cloneSpec(d.AnalysisSpec)
	s.uploadedFile = &file
	s.spec = &spec
	s.prompt = d.ModificationPrompt
	s.analyzing = false
	s.generating = false
	s.lastErr = ""
	s.imageURL = d.GeneratedImageURL
	s.history = nil
	if d.GeneratedImageURL != "" {
		s.history = []types.HistoryItem{{
			ID:        s.newID(),
			Prompt:    d.ModificationPrompt,
			ImageURL:  d.GeneratedImageURL,
			Timestamp: s.now().UnixMilli(),
		}}
	}
}

// DeleteDesign removes a snapshot from the store. The active session is
// untouched even if the deleted snapshot is the one currently loaded.
func (s *Session) DeleteDesign(ctx context.Context, id string) error {
	return s.designs.Remove(ctx, id)
}

// Designs lists the persisted snapshots, most recent first.
func (s *Session) Designs(ctx context.Context) []types.SavedDesign {
	return s.designs.List(ctx)
}

// State returns an independent copy of the session's visible fields.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{
		Prompt:       s.prompt,
		IsAnalyzing:  s.analyzing,
		IsGenerating: s.generating,
		ImageURL:     s.imageURL,
		Error:        s.lastErr,
		History:      make([]types.HistoryItem, len(s.history)),
	}
	copy(st.History, s.history)
	if s.uploadedFile != nil {
		file := *s.uploadedFile
		st.UploadedFile = &file
	}
	if s.spec != nil {
		spec := cloneSpec(*s.spec)
		st.AnalysisSpec = &spec
	}
	return st
}

func cloneSpec(spec types.DesignSpec) types.DesignSpec {
	spec.ExtractedDimensions = append([]string(nil), spec.ExtractedDimensions...)
	spec.DetectedMaterials = append([]string(nil), spec.DetectedMaterials...)
	spec.DesignFeatures = append([]string(nil), spec.DesignFeatures...)
	return spec
}
