package core

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
)

// Report summarizes one pipeline run. Counts distinguish files handled in
// this run from files skipped because a prior run already handled them.
type Report struct {
	// RunID uniquely identifies this run in logs and diagnostics.
	RunID string

	// NewlyProcessed lists the source paths converted during this run,
	// including sources whose conversion failed and produced a
	// placeholder artifact.
	NewlyProcessed []string

	// TotalProcessed is the number of progress entries after the run,
	// spanning this run and all prior ones.
	TotalProcessed int

	// Errors maps source paths to conversion failure descriptions from
	// this run only.
	Errors map[string]string

	// Uploads maps artifact paths to the upload outcomes recorded during
	// this run, including failed attempts.
	Uploads map[string]*UploadOutcome

	// RegistrationFailures maps remote file IDs to registration errors.
	RegistrationFailures map[string]string
}

// NewReport creates an empty report for the given run ID.
func NewReport(runID string) *Report {
	return &Report{
		RunID:                runID,
		Errors:               make(map[string]string),
		Uploads:              make(map[string]*UploadOutcome),
		RegistrationFailures: make(map[string]string),
	}
}

// Err folds all per-file failures from this run into a single error, or
// returns nil if every file converted, uploaded, and registered cleanly.
// The result is for reporting: a non-nil Err never means the run aborted.
func (r *Report) Err() error {
	var errs *multierror.Error
	for _, source := range sortedKeys(r.Errors) {
		errs = multierror.Append(errs, fmt.Errorf("convert %s: %s", source, r.Errors[source]))
	}
	for _, artifact := range sortedKeys(r.Uploads) {
		if outcome := r.Uploads[artifact]; !outcome.Ok() {
			errs = multierror.Append(errs, fmt.Errorf("upload %s: %s", artifact, outcome.Error))
		}
	}
	for _, id := range sortedKeys(r.RegistrationFailures) {
		errs = multierror.Append(errs, fmt.Errorf("register %s: %s", id, r.RegistrationFailures[id]))
	}
	return errs.ErrorOrNil()
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
