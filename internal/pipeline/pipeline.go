// Package pipeline sequences the capture-to-card flow: size check,
// transcription, structuring, validation, persistence. The first failing
// stage aborts the attempt; nothing partial is ever persisted.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/echonote/echonote/internal/model"
	"github.com/echonote/echonote/internal/store"
	"github.com/echonote/echonote/internal/structure"
	"github.com/echonote/echonote/internal/transcribe"
	"github.com/echonote/echonote/internal/validate"
)

// Stage names a pipeline step for failure reporting.
type Stage string

const (
	StageSizeCheck  Stage = "size_check"
	StageTranscribe Stage = "transcribe"
	StageStructure  Stage = "structure"
	StageValidate   Stage = "validate"
	StagePersist    Stage = "persist"
)

// Reason is the machine-readable failure code surfaced to the API layer.
type Reason string

const (
	ReasonEmptyAudio           Reason = "EmptyAudio"
	ReasonEmptyTranscript      Reason = "EmptyTranscript"
	ReasonTranscriptionFailure Reason = "TranscriptionFailure"
	ReasonStructuringFailure   Reason = "StructuringFailure"
	ReasonInvalidStructure     Reason = "InvalidStructure"
	ReasonPersistFailure       Reason = "PersistFailure"
)

// Failure reports which stage broke and why. It wraps the underlying
// error when one exists.
type Failure struct {
	Stage  Stage
	Reason Reason
	Err    error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("pipeline %s: %s: %v", f.Stage, f.Reason, f.Err)
	}
	return fmt.Sprintf("pipeline %s: %s", f.Stage, f.Reason)
}

func (f *Failure) Unwrap() error { return f.Err }

// UserRetryable reports whether re-recording could fix the failure, which
// maps to a 400 at the HTTP boundary.
func (f *Failure) UserRetryable() bool {
	return f.Reason == ReasonEmptyAudio || f.Reason == ReasonEmptyTranscript
}

// DefaultMinAudioBytes guards against empty or silent recordings before
// any external call is spent.
const DefaultMinAudioBytes = 2000

// Pipeline runs the full capture flow. Adapters are injected so tests can
// substitute fakes without process-wide state.
type Pipeline struct {
	transcriber   transcribe.Transcriber
	structurer    structure.Structurer
	cards         store.Store
	minAudioBytes int
	log           zerolog.Logger
}

func New(t transcribe.Transcriber, s structure.Structurer, cards store.Store, minAudioBytes int, log zerolog.Logger) *Pipeline {
	if minAudioBytes <= 0 {
		minAudioBytes = DefaultMinAudioBytes
	}
	return &Pipeline{transcriber: t, structurer: s, cards: cards, minAudioBytes: minAudioBytes, log: log}
}

// Run processes one recording end to end. On success the persisted card is
// returned; otherwise the error is a *Failure naming the stage. Each stage
// makes its external call at most once.
func (p *Pipeline) Run(ctx context.Context, audio []byte, mimeType string) (*model.MemoryCard, *Failure) {
	if len(audio) < p.minAudioBytes {
		return nil, &Failure{Stage: StageSizeCheck, Reason: ReasonEmptyAudio}
	}

	transcript, err := p.transcriber.Transcribe(ctx, audio, mimeType)
	if err != nil {
		if errors.Is(err, transcribe.ErrEmptyTranscript) {
			return nil, &Failure{Stage: StageTranscribe, Reason: ReasonEmptyTranscript, Err: err}
		}
		return nil, &Failure{Stage: StageTranscribe, Reason: ReasonTranscriptionFailure, Err: err}
	}

	candidate, err := p.structurer.Structure(ctx, transcript)
	if err != nil {
		return nil, &Failure{Stage: StageStructure, Reason: ReasonStructuringFailure, Err: err}
	}

	card, ok := validate.SanitizeCandidate(candidate)
	if !ok {
		// The transcript is discarded along with the candidate; no orphan
		// record is written.
		p.log.Warn().Str("stage", string(StageValidate)).Msg("structured output failed validation")
		return nil, &Failure{Stage: StageValidate, Reason: ReasonInvalidStructure, Err: model.ErrValidation}
	}

	persisted, err := p.cards.Create(ctx, transcript, card)
	if err != nil {
		return nil, &Failure{Stage: StagePersist, Reason: ReasonPersistFailure, Err: err}
	}

	p.log.Info().Str("id", persisted.ID).Int("action_items", len(persisted.ActionItems)).Msg("memory card created")
	return persisted, nil
}
