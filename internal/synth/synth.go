// Package synth generates a deterministic synthetic episode dataset in the
// layout read by package dataset. All records are fictional.
package synth

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/carenav/internal/dataset"
	"github.com/sells-group/carenav/internal/model"
)

var (
	specialties = []string{"Primary Care", "Cardiology", "Orthopedics", "Dermatology", "Gastroenterology", "OB-GYN"}
	symptoms    = []struct{ text, severity string }{
		{"chest pain", "moderate"},
		{"shortness of breath", "mild"},
		{"knee pain", "severe"},
		{"abdominal discomfort", "moderate"},
		{"skin rash", "mild"},
		{"fatigue", "moderate"},
	}
	medications  = []string{"ibuprofen", "acetaminophen", "lisinopril", "omeprazole", "amoxicillin"}
	consentTypes = []string{"Procedure Consent", "HIPAA Authorization", "Financial Responsibility Agreement"}
	billTypes    = []string{"Facility Fee", "Professional Fee", "Laboratory", "Imaging", "Anesthesia"}
	languages    = []string{"English", "Spanish"}
	schedules    = []string{"morning", "evening", "flexible"}
	ageRanges    = []string{"18-30", "31-45", "46-60", "60+"}
	locations    = []string{"CA", "NY", "TX"}
	detailLevels = []string{"high", "medium", "low"}
)

// Options controls the size and shape of a generated dataset.
type Options struct {
	Seed         int64
	Patients     int
	Providers    int
	MinVisits    int
	MaxVisits    int
	LookbackDays int
	// AsOf anchors visit dates; visits fall 1..LookbackDays days before it.
	AsOf time.Time
}

func (o Options) validate() error {
	switch {
	case o.Patients < 0 || o.Providers < 1:
		return eris.Errorf("synth: need at least one provider and a non-negative patient count")
	case o.MinVisits < 0 || o.MaxVisits < o.MinVisits:
		return eris.Errorf("synth: invalid visit range [%d, %d]", o.MinVisits, o.MaxVisits)
	case o.LookbackDays < 1:
		return eris.Errorf("synth: lookback_days must be positive")
	case o.AsOf.IsZero():
		return eris.New("synth: as-of date is required")
	}
	return nil
}

// Dataset is a fully generated dataset held in memory.
type Dataset struct {
	Patients    []model.Patient
	Providers   []model.Provider
	Episodes    []model.Episode
	Documents   map[string]*model.DocumentSet
	Preferences []model.Preferences
}

type generator struct {
	src *rand.ChaCha8
	rng *rand.Rand
}

func newGenerator(seed int64) *generator {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], uint64(seed))
	src := rand.NewChaCha8(key)
	return &generator{src: src, rng: rand.New(src)}
}

// id returns prefix_xxxxxxxx using the first 8 hex digits of a uuid drawn
// from the seeded source.
func (g *generator) id(prefix string) string {
	u, err := uuid.NewRandomFromReader(g.src)
	if err != nil {
		// ChaCha8.Read never fails.
		panic(err)
	}
	hex := u.String()
	return prefix + "_" + hex[:8]
}

func (g *generator) pick(xs []string) string { return xs[g.rng.IntN(len(xs))] }

// between returns an int in [lo, hi].
func (g *generator) between(lo, hi int) int { return lo + g.rng.IntN(hi-lo+1) }

func (g *generator) sample(xs []string, k int) []string {
	perm := g.rng.Perm(len(xs))
	out := make([]string, 0, k)
	for _, i := range perm[:k] {
		out = append(out, xs[i])
	}
	return out
}

func cents(v float64) float64 { return math.Round(v*100) / 100 }

func ptr[T any](v T) *T { return &v }

// Generate builds a dataset from opts. The same options always yield the
// same dataset.
func Generate(opts Options) (*Dataset, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	g := newGenerator(opts.Seed)

	// Patients and providers share a small plan pool so that network
	// matching has something to find.
	plans := make([]string, max(3, opts.Patients/4))
	for i := range plans {
		plans[i] = g.id("plan")
	}

	ds := &Dataset{
		Patients:    make([]model.Patient, 0, opts.Patients),
		Providers:   make([]model.Provider, 0, opts.Providers),
		Episodes:    []model.Episode{},
		Documents:   map[string]*model.DocumentSet{},
		Preferences: make([]model.Preferences, 0, opts.Patients),
	}

	for range opts.Patients {
		ds.Patients = append(ds.Patients, model.Patient{
			PatientID:   g.id("patient"),
			AgeRange:    g.pick(ageRanges),
			Language:    g.pick(languages),
			Caregiver:   g.rng.IntN(2) == 1,
			InsuranceID: ptr(g.pick(plans)),
		})
	}
	for range opts.Providers {
		ds.Providers = append(ds.Providers, model.Provider{
			ProviderID:     g.id("prov"),
			Specialty:      g.pick(specialties),
			Location:       g.pick(locations),
			InNetworkPlans: g.sample(plans, 2),
		})
	}

	for _, p := range ds.Patients {
		visits := g.between(opts.MinVisits, opts.MaxVisits)
		for range visits {
			prov := ds.Providers[g.rng.IntN(len(ds.Providers))]
			visit := opts.AsOf.AddDate(0, 0, -g.between(1, opts.LookbackDays))
			ep := model.Episode{
				EpisodeID:  g.id("episode"),
				PatientID:  p.PatientID,
				ProviderID: prov.ProviderID,
				Specialty:  prov.Specialty,
				VisitDate:  visit.Format(time.DateOnly),
			}
			ds.Episodes = append(ds.Episodes, ep)
			ds.Documents[ep.EpisodeID] = g.documents(ep)
		}
		ds.Preferences = append(ds.Preferences, model.Preferences{
			PatientID:         p.PatientID,
			ReminderTime:      g.pick(schedules),
			DetailLevel:       g.pick(detailLevels),
			PreferredLanguage: p.Language,
		})
	}
	return ds, nil
}

func (g *generator) documents(ep model.Episode) *model.DocumentSet {
	id := ep.EpisodeID
	sym := symptoms[g.rng.IntN(len(symptoms))]
	duration := g.between(1, 30)

	missing := []string{}
	if g.rng.IntN(2) == 1 {
		missing = []string{"provider signature", "date"}
	}

	bills := []model.Bill{}
	var total float64
	for _, bt := range g.sample(billTypes, g.between(2, 4)) {
		amount := cents(50 + g.rng.Float64()*1150)
		total += amount
		bills = append(bills, model.Bill{
			EpisodeID:     id,
			BillType:      bt,
			Amount:        amount,
			DateOfService: ep.VisitDate,
		})
	}
	responsibility := cents(total * 0.2)

	return &model.DocumentSet{
		Intake: model.Intake{
			EpisodeID:       id,
			ReportedSymptom: ptr(sym.text),
			Severity:        ptr(sym.severity),
			DurationDays:    json.RawMessage(strconv.Itoa(duration)),
			FreeText:        fmt.Sprintf("I have been experiencing %s for a few days.", sym.text),
		},
		Transcript: model.Transcript{
			EpisodeID: id,
			Transcript: "Patient describes symptoms. Provider explains possible causes, " +
				"next steps, and follow-up recommendations.",
		},
		ClinicalNote: model.ClinicalNote{
			EpisodeID:    id,
			Assessment:   ptr("Symptoms reviewed as documented."),
			Medications:  g.sample(medications, 2),
			TestsOrdered: []string{"blood work", "x-ray"},
			FollowUp:     ptr("Schedule follow-up in 2 weeks."),
		},
		Discharge: model.Discharge{
			EpisodeID: id,
			Instructions: []string{
				"Take medications as prescribed.",
				"Monitor symptoms daily.",
				"Avoid strenuous activity for 7 days.",
			},
			RedFlags: []string{"worsening pain", "fever above 101F", "shortness of breath"},
		},
		Consent: model.Consent{
			EpisodeID:    id,
			DocumentType: ptr(g.pick(consentTypes)),
			Clauses: []string{
				"You may be financially responsible for uncovered services.",
				"This authorization may be revoked at any time in writing.",
			},
			MissingFields: missing,
		},
		Billing: bills,
		EOB: model.EOB{
			EpisodeID:             id,
			TotalBilled:           &total,
			PatientResponsibility: &responsibility,
			Notes:                 "Amounts subject to deductible and co-insurance.",
		},
	}
}

// Write persists the dataset under root and returns the number of files
// written. Existing files with the same names are replaced.
func (d *Dataset) Write(ctx context.Context, root string) (int, error) {
	files := 0
	write := func(rel string, v any) error {
		if err := dataset.WriteJSON(filepath.Join(root, rel), v); err != nil {
			return eris.Wrapf(err, "synth: write %s", rel)
		}
		files++
		return nil
	}

	for _, ep := range d.Episodes {
		if err := ctx.Err(); err != nil {
			return files, eris.Wrap(err, "synth: write cancelled")
		}
		docs := d.Documents[ep.EpisodeID]
		name := ep.EpisodeID + ".json"
		for _, doc := range []struct {
			kind model.DocumentKind
			v    any
		}{
			{model.DocumentIntake, docs.Intake},
			{model.DocumentTranscript, docs.Transcript},
			{model.DocumentClinicalNote, docs.ClinicalNote},
			{model.DocumentDischarge, docs.Discharge},
			{model.DocumentConsent, docs.Consent},
			{model.DocumentBilling, docs.Billing},
			{model.DocumentEOB, docs.EOB},
		} {
			if err := write(filepath.Join(string(doc.kind), name), doc.v); err != nil {
				return files, err
			}
		}
	}

	for _, p := range d.Preferences {
		if err := write(filepath.Join("preferences", p.PatientID+".json"), p); err != nil {
			return files, err
		}
	}

	for name, v := range map[string]any{
		"patients.json":  d.Patients,
		"providers.json": d.Providers,
		"episodes.json":  d.Episodes,
	} {
		if err := write(filepath.Join("metadata", name), v); err != nil {
			return files, err
		}
	}

	zap.L().Info("synth: dataset written",
		zap.String("root", root),
		zap.Int("patients", len(d.Patients)),
		zap.Int("providers", len(d.Providers)),
		zap.Int("episodes", len(d.Episodes)),
		zap.Int("files", files),
	)
	return files, nil
}
