// Package registry is the Model Registry: the single source of truth
// for which styles are available, mapping style-id to (model-id,
// internal style index) and model-id to its loaded ONNX session set.
package registry

import (
	"sync"

	"github.com/google/uuid"

	"github.com/example/voicekit/internal/archive"
	"github.com/example/voicekit/internal/inference"
	"github.com/example/voicekit/internal/voicekiterr"
)

// StyleID is a 32-bit style identifier, unique across every loaded
// model.
type StyleID uint32

type loadedModel struct {
	id       uuid.UUID
	sessions inference.Sessions
	metas    []archive.SpeakerMeta
	// styleIndex maps a style id this model owns to its position among
	// the model's own styles (flattened across its speakers, in
	// metadata order) — the "internal style index" resolve() returns.
	styleIndex map[StyleID]int
}

// newSessionSet is a seam over inference.NewSessionSet so tests can
// substitute a fake session set without a real ONNX Runtime library.
var newSessionSet = inference.NewSessionSet

// Registry is a copy-on-write, RWMutex-guarded style→model index. Reads
// (IsLoaded, IsStyleLoaded, Metas, Resolve) proceed concurrently; Load
// and Unload are mutually exclusive and atomic.
type Registry struct {
	mu         sync.RWMutex
	models     map[uuid.UUID]*loadedModel
	styleOwner map[StyleID]uuid.UUID
	// everLoaded records the last model to own a style id and is never
	// cleared on Unload, so Resolve can tell a style that was never
	// registered (InvalidStyleId) apart from one whose owning model was
	// unloaded (UnloadedModel).
	everLoaded map[StyleID]uuid.UUID
	cfg        inference.RunnerConfig
}

// New builds an empty registry. cfg is forwarded to every SessionSet
// created on Load.
func New(cfg inference.RunnerConfig) *Registry {
	return &Registry{
		models:     make(map[uuid.UUID]*loadedModel),
		styleOwner: make(map[StyleID]uuid.UUID),
		everLoaded: make(map[StyleID]uuid.UUID),
		cfg:        cfg,
	}
}

// Load opens the three ONNX sessions for model and publishes its styles.
// Fails with ModelAlreadyLoaded if model.ID is already present, or
// StyleAlreadyLoaded if any style it contributes is already owned by a
// different loaded model. Failure leaves the registry unchanged.
func (r *Registry) Load(model *archive.VoiceModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.models[model.ID]; exists {
		return voicekiterr.New(voicekiterr.KindLoadModelAlreadyLoaded, "model %s already loaded", model.ID)
	}

	styleIndex := make(map[StyleID]int)
	idx := 0
	for _, speaker := range model.Metas {
		for _, style := range speaker.Styles {
			sid := StyleID(style.ID)
			if owner, taken := r.styleOwner[sid]; taken {
				return voicekiterr.New(voicekiterr.KindStyleAlreadyLoaded, "style %d already owned by model %s", sid, owner)
			}

			styleIndex[sid] = idx
			idx++
		}
	}

	sessions, err := newSessionSet(model.Graphs, r.cfg)
	if err != nil {
		return err
	}

	r.models[model.ID] = &loadedModel{
		id:         model.ID,
		sessions:   sessions,
		metas:      model.Metas,
		styleIndex: styleIndex,
	}

	for sid := range styleIndex {
		r.styleOwner[sid] = model.ID
		r.everLoaded[sid] = model.ID
	}

	return nil
}

// Unload releases a loaded model's sessions and removes its styles from
// the index. Fails with InvalidModelId if id is not loaded.
func (r *Registry) Unload(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.models[id]
	if !ok {
		return voicekiterr.New(voicekiterr.KindInvalidModelID, "model %s is not loaded", id)
	}

	for sid := range m.styleIndex {
		delete(r.styleOwner, sid)
	}

	delete(r.models, id)
	m.sessions.Close()

	return nil
}

// IsLoaded reports whether id is currently loaded.
func (r *Registry) IsLoaded(id uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.models[id]

	return ok
}

// IsStyleLoaded reports whether sid is owned by any currently loaded
// model.
func (r *Registry) IsStyleLoaded(sid StyleID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.styleOwner[sid]

	return ok
}

// Metas returns the speaker metadata of every currently loaded model.
func (r *Registry) Metas() []archive.SpeakerMeta {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []archive.SpeakerMeta
	for _, m := range r.models {
		out = append(out, m.metas...)
	}

	return out
}

// Resolve maps a style id to the session set owning it and that
// style's internal index within the model. Fails with InvalidStyleId
// if the style has never been loaded, and UnloadedModel if it was
// known but its owning model has since been unloaded.
func (r *Registry) Resolve(sid StyleID) (inference.Sessions, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owner, ok := r.everLoaded[sid]
	if !ok {
		return nil, 0, voicekiterr.New(voicekiterr.KindInvalidStyleID, "style %d is not loaded", sid)
	}

	m, ok := r.models[owner]
	if !ok {
		return nil, 0, voicekiterr.New(voicekiterr.KindUnloadedModel, "style %d's owning model %s was unloaded", sid, owner)
	}

	return m.sessions, m.styleIndex[sid], nil
}
