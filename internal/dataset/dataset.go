// Package dataset provides read access to the synthetic episode dataset:
// reference tables under metadata/, per-episode documents, and per-patient
// preferences.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/sells-group/carenav/internal/model"
)

const (
	metadataDir    = "metadata"
	preferencesDir = "preferences"
)

// Categories lists every top-level dataset directory, in layout order.
var Categories = []string{
	metadataDir,
	string(model.DocumentIntake),
	string(model.DocumentTranscript),
	string(model.DocumentClinicalNote),
	string(model.DocumentDischarge),
	string(model.DocumentConsent),
	string(model.DocumentBilling),
	string(model.DocumentEOB),
	preferencesDir,
}

// ErrMissingInput marks a required dataset file that does not exist.
var ErrMissingInput = eris.New("missing input")

// DocumentError reports a per-episode (or per-patient) file that could not
// be loaded. Owner is the episode id, or the patient id for preferences.
type DocumentError struct {
	Owner    string
	Document string
	Path     string
	Err      error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("dataset: load %s for %s (%s): %v", e.Document, e.Owner, e.Path, e.Err)
}

func (e *DocumentError) Unwrap() error { return e.Err }

// References holds the read-only reference tables for a dataset.
type References struct {
	Patients  []model.Patient
	Providers []model.Provider
	Episodes  []model.Episode

	patientsByID map[string]model.Patient
}

// Patient looks up a patient by id.
func (r *References) Patient(id string) (model.Patient, bool) {
	p, ok := r.patientsByID[id]
	return p, ok
}

// Store reads a dataset rooted at a directory. It holds no mutable state
// and is safe for concurrent use.
type Store struct {
	root string
}

// Open returns a Store for the dataset at root. The directory is not
// validated until the first read.
func Open(root string) *Store {
	return &Store{root: root}
}

// Root returns the dataset root directory.
func (s *Store) Root() string { return s.root }

// LoadReferences reads patients, providers and episodes from metadata/.
func (s *Store) LoadReferences(ctx context.Context) (*References, error) {
	patients, err := readArray[model.Patient](ctx, filepath.Join(s.root, metadataDir, "patients.json"))
	if err != nil {
		return nil, err
	}
	providers, err := readArray[model.Provider](ctx, filepath.Join(s.root, metadataDir, "providers.json"))
	if err != nil {
		return nil, err
	}
	episodes, err := readArray[model.Episode](ctx, filepath.Join(s.root, metadataDir, "episodes.json"))
	if err != nil {
		return nil, err
	}

	byID := make(map[string]model.Patient, len(patients))
	for _, p := range patients {
		byID[p.PatientID] = p
	}

	return &References{
		Patients:     patients,
		Providers:    providers,
		Episodes:     episodes,
		patientsByID: byID,
	}, nil
}

// LoadDocuments reads all seven source documents for an episode. Any
// missing or malformed document fails the whole set.
func (s *Store) LoadDocuments(episodeID string) (*model.DocumentSet, error) {
	var docs model.DocumentSet

	targets := []struct {
		kind model.DocumentKind
		read func(path string) error
	}{
		{model.DocumentIntake, func(p string) error { return readDocument(p, &docs.Intake) }},
		{model.DocumentTranscript, func(p string) error { return readDocument(p, &docs.Transcript) }},
		{model.DocumentClinicalNote, func(p string) error { return readDocument(p, &docs.ClinicalNote) }},
		{model.DocumentDischarge, func(p string) error { return readDocument(p, &docs.Discharge) }},
		{model.DocumentConsent, func(p string) error { return readDocument(p, &docs.Consent) }},
		{model.DocumentBilling, func(p string) error { return readDocument(p, &docs.Billing) }},
		{model.DocumentEOB, func(p string) error { return readDocument(p, &docs.EOB) }},
	}

	for _, t := range targets {
		path := s.DocumentPath(t.kind, episodeID)
		if err := t.read(path); err != nil {
			return nil, &DocumentError{Owner: episodeID, Document: string(t.kind), Path: path, Err: err}
		}
	}

	if docs.Billing == nil {
		docs.Billing = []model.Bill{}
	}
	return &docs, nil
}

// LoadPreferences reads the preferences document for a patient.
func (s *Store) LoadPreferences(patientID string) (*model.Preferences, error) {
	path := filepath.Join(s.root, preferencesDir, patientID+".json")
	var prefs model.Preferences
	if err := readDocument(path, &prefs); err != nil {
		return nil, &DocumentError{Owner: patientID, Document: preferencesDir, Path: path, Err: err}
	}
	return &prefs, nil
}

// DocumentPath returns the file path of a per-episode document.
func (s *Store) DocumentPath(kind model.DocumentKind, episodeID string) string {
	return filepath.Join(s.root, string(kind), episodeID+".json")
}

func readArray[T any](ctx context.Context, path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapOpen(err, path)
	}
	defer f.Close() //nolint:errcheck

	items, err := DecodeJSONArray[T](ctx, f)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: decode %s", path)
	}
	return items, nil
}

func readDocument[T any](path string, dst *T) error {
	f, err := os.Open(path)
	if err != nil {
		return wrapOpen(err, path)
	}
	defer f.Close() //nolint:errcheck

	doc, err := DecodeJSONDocument[T](f)
	if err != nil {
		return eris.Wrapf(err, "dataset: decode %s", path)
	}
	*dst = doc
	return nil
}

func wrapOpen(err error, path string) error {
	if errors.Is(err, fs.ErrNotExist) {
		return eris.Wrapf(ErrMissingInput, "dataset: %s", path)
	}
	return eris.Wrapf(err, "dataset: read %s", path)
}
