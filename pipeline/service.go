package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/docpipe/ai"
	"github.com/poiesic/docpipe/convert"
	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/knowledge"
)

// Service orchestrates discovery, conversion, embedding, upload, and
// registration for one directory tree. It owns the progress store and the
// upload ledger for the duration of a run.
type Service struct {
	finder    *Finder
	converter convert.Converter
	embedder  ai.Embedder
	uploader  knowledge.Uploader
	registrar knowledge.Registrar

	outputDir      string
	artifactExt    string
	hashNames      bool
	embeddingModel string
	batchSize      int
	registerDelay  time.Duration
	maxRetries     int
	retryDelay     time.Duration
	progressOut    io.Writer

	pool     *ants.Pool
	progress *ProgressStore
	ledger   *UploadLedger
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(s *Service) error {
		if size < 1 {
			size = 1
		}
		if s.pool != nil {
			s.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		s.pool = pool
		return nil
	}
}

// WithBatchSize sets how many files are dispatched between checkpoints.
// Default is 10.
func WithBatchSize(size int) Option {
	return func(s *Service) error {
		if size < 1 {
			size = 1
		}
		s.batchSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithUploader enables the upload stage.
func WithUploader(uploader knowledge.Uploader) Option {
	return func(s *Service) error {
		s.uploader = uploader
		return nil
	}
}

// WithRegistrar enables post-run knowledge registration. It has no effect
// unless an uploader is also configured.
func WithRegistrar(registrar knowledge.Registrar) Option {
	return func(s *Service) error {
		s.registrar = registrar
		return nil
	}
}

// WithHashedNames qualifies artifact base names with a hash of the source
// path, so sources sharing a base name across directories do not collide.
func WithHashedNames() Option {
	return func(s *Service) error {
		s.hashNames = true
		return nil
	}
}

// WithArtifactExt sets the artifact file extension.
// Default is core.DefaultArtifactExt.
func WithArtifactExt(ext string) Option {
	return func(s *Service) error {
		if ext != "" {
			s.artifactExt = ext
		}
		return nil
	}
}

// WithEmbeddingModel sets the model name recorded in embedding sidecars.
func WithEmbeddingModel(model string) Option {
	return func(s *Service) error {
		s.embeddingModel = model
		return nil
	}
}

// WithRegisterDelay sets a settle delay between the upload stage and
// knowledge registration, giving the remote store time to finish
// processing the uploaded files. Default is no delay.
func WithRegisterDelay(delay time.Duration) Option {
	return func(s *Service) error {
		s.registerDelay = delay
		return nil
	}
}

// WithRetry configures retries for embedding calls.
// Defaults are 3 attempts with a 1 second base delay.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(s *Service) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		s.maxRetries = maxAttempts
		s.retryDelay = baseDelay
		return nil
	}
}

// WithProgressOutput sets where per-stage progress lines are written
// (typically os.Stderr). Default discards them.
func WithProgressOutput(w io.Writer) Option {
	return func(s *Service) error {
		if w != nil {
			s.progressOut = w
		}
		return nil
	}
}

// NewService creates a pipeline service. The finder, converter, and
// embedder are required; runs without embeddings pass ai.NopEmbedder.
// Upload and registration are enabled through options.
func NewService(finder *Finder, converter convert.Converter, embedder ai.Embedder, outputDir string, opts ...Option) (*Service, error) {
	if finder == nil {
		return nil, ErrFinderRequired
	}
	if converter == nil {
		return nil, ErrConverterRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if outputDir == "" {
		return nil, ErrOutputDirRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	s := &Service{
		finder:      finder,
		converter:   converter,
		embedder:    embedder,
		outputDir:   outputDir,
		artifactExt: core.DefaultArtifactExt,
		batchSize:   10,
		maxRetries:  3,
		retryDelay:  1 * time.Second,
		progressOut: io.Discard,
		pool:        pool,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(s); optErr != nil {
			s.Release()
			return nil, optErr
		}
	}

	s.progress = NewProgressStore(filepath.Join(outputDir, ProgressFileName), s.logger)
	s.ledger = NewUploadLedger(filepath.Join(outputDir, LedgerFileName), s.logger)

	return s, nil
}

// ProgressFile returns the path of the progress record file.
func (s *Service) ProgressFile() string {
	return s.progress.path
}

// LedgerFile returns the path of the upload ledger file.
func (s *Service) LedgerFile() string {
	return s.ledger.path
}

// uploadItem pairs a source path with its recorded artifact for the upload
// stage.
type uploadItem struct {
	source   string
	artifact string
}

// Run processes every matching file under inputDir: conversion first, then
// upload, then registration. Per-file failures are collected in the report
// and never abort the run; only discovery, checkpointing, or cancellation
// surface as errors. The returned report is valid even when err is non-nil.
func (s *Service) Run(ctx context.Context, inputDir string) (*core.Report, error) {
	report := core.NewReport(uuid.NewString())
	logger := s.logger.With("run", report.RunID)

	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return report, fmt.Errorf("create output directory: %w", err)
	}
	if err := s.progress.Load(); err != nil {
		return report, fmt.Errorf("load progress: %w", err)
	}
	if err := s.ledger.Load(); err != nil {
		return report, fmt.Errorf("load upload ledger: %w", err)
	}

	files, err := s.finder.Find(inputDir)
	if err != nil {
		return report, fmt.Errorf("discover files in %s: %w", inputDir, err)
	}

	pending := make([]string, 0, len(files))
	for _, source := range files {
		if !s.progress.Done(source) {
			pending = append(pending, source)
		}
	}
	logger.Info("discovered files", "total", len(files), "pending", len(pending))

	if err := s.runConversion(ctx, logger, report, pending); err != nil {
		return report, err
	}

	if s.uploader != nil {
		if err := s.runUpload(ctx, logger, report); err != nil {
			return report, err
		}
		if s.registrar != nil {
			s.runRegistration(ctx, logger, report)
		}
	}

	report.TotalProcessed = s.progress.Len()
	return report, nil
}

// runConversion executes the conversion stage over pending sources,
// checkpointing the progress store after every batch.
func (s *Service) runConversion(ctx context.Context, logger *slog.Logger, report *core.Report, pending []string) error {
	tracker := NewProgressTracker(s.progressOut, "converting", len(pending))
	tracker.Start()

	var reportMu sync.Mutex
	err := runBatches(ctx, s.pool, pending, s.batchSize, func(ctx context.Context, source string) {
		s.convertOne(ctx, logger, report, &reportMu, source)
		tracker.Increment(1)
	}, s.progress.Save)
	tracker.Finish()
	if err != nil {
		return err
	}

	return s.progress.Save()
}

// convertOne handles a single source file. A conversion error writes a
// diagnostic placeholder artifact and still marks the file done, so
// permanently broken inputs are not retried every run. Empty extracted
// text writes nothing and leaves the file eligible for the next run.
func (s *Service) convertOne(ctx context.Context, logger *slog.Logger, report *core.Report, reportMu *sync.Mutex, source string) {
	if s.progress.Done(source) {
		return
	}
	artifact := s.artifactPath(source)

	text, err := s.converter.Convert(ctx, source)
	if err != nil {
		msg := fmt.Sprintf("Error processing file: %v", err)
		logger.Error("conversion failed", "source", source, "err", err)

		// Record the conversion error first; a failed placeholder write
		// must not erase it from the run report.
		reportMu.Lock()
		report.Errors[source] = msg
		reportMu.Unlock()

		placeholder := fmt.Sprintf("# Error processing %s\n\n```\n%s\n```\n", filepath.Base(source), msg)
		if werr := os.WriteFile(artifact, []byte(placeholder), 0o644); werr != nil {
			logger.Error("failed to write placeholder artifact", "artifact", artifact, "err", werr)
			return
		}

		s.progress.Mark(source, artifact)
		reportMu.Lock()
		report.NewlyProcessed = append(report.NewlyProcessed, source)
		reportMu.Unlock()
		return
	}

	if text == "" {
		// No entry is recorded, so the file stays eligible next run.
		logger.Warn("no text extracted, leaving file for next run", "source", source)
		return
	}

	if err := os.WriteFile(artifact, []byte(text), 0o644); err != nil {
		logger.Error("failed to write artifact", "artifact", artifact, "err", err)
		reportMu.Lock()
		report.Errors[source] = fmt.Sprintf("Error writing artifact: %v", err)
		reportMu.Unlock()
		return
	}

	s.embedOne(ctx, logger, artifact, text)

	s.progress.Mark(source, artifact)
	reportMu.Lock()
	report.NewlyProcessed = append(report.NewlyProcessed, source)
	reportMu.Unlock()
}

// embedOne derives and persists the embedding sidecar for an artifact.
// Embedding failures degrade to "no embedding produced": they are logged
// and never affect the conversion outcome.
func (s *Service) embedOne(ctx context.Context, logger *slog.Logger, artifact, text string) {
	var vector []float32
	err := retryWithBackoff(ctx, func() error {
		var embedErr error
		vector, embedErr = s.embedder.EmbedText(ctx, text)
		return embedErr
	}, s.maxRetries, s.retryDelay)
	if err != nil {
		logger.Warn("embedding failed, continuing without sidecar", "artifact", artifact, "err", err)
		return
	}
	if vector == nil {
		return
	}

	sidecar := core.EmbeddingSidecarPath(artifact)
	if err := core.NewEmbedding(s.embeddingModel, vector).WriteFile(sidecar); err != nil {
		logger.Warn("failed to write embedding sidecar", "sidecar", sidecar, "err", err)
	}
}

// runUpload executes the upload stage over every progress entry without a
// completed ledger outcome, checkpointing the ledger after every batch.
func (s *Service) runUpload(ctx context.Context, logger *slog.Logger, report *core.Report) error {
	entries := s.progress.Entries()
	sources := make([]string, 0, len(entries))
	for source := range entries {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	// Colliding base names map several sources to one artifact; build at
	// most one item per artifact so concurrent workers never race on the
	// same ledger key.
	items := make([]uploadItem, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, source := range sources {
		artifact := entries[source]
		if _, dup := seen[artifact]; dup {
			continue
		}
		seen[artifact] = struct{}{}
		if !s.ledger.Uploaded(artifact) {
			items = append(items, uploadItem{source: source, artifact: artifact})
		}
	}
	logger.Info("uploading artifacts", "pending", len(items))

	tracker := NewProgressTracker(s.progressOut, "uploading", len(items))
	tracker.Start()

	var reportMu sync.Mutex
	err := runBatches(ctx, s.pool, items, s.batchSize, func(ctx context.Context, item uploadItem) {
		s.uploadOne(ctx, logger, report, &reportMu, item)
		tracker.Increment(1)
	}, s.ledger.Save)
	tracker.Finish()
	if err != nil {
		return err
	}

	return s.ledger.Save()
}

// uploadOne submits one artifact and records the outcome in both the
// ledger and the report, even when the attempt failed, so retry candidates
// stay visible to the caller.
func (s *Service) uploadOne(ctx context.Context, logger *slog.Logger, report *core.Report, reportMu *sync.Mutex, item uploadItem) {
	if s.ledger.Uploaded(item.artifact) {
		return
	}

	outcome := s.uploader.Upload(ctx, item.artifact)
	outcome.SourcePath = item.source
	outcome.ArtifactPath = item.artifact

	s.ledger.Record(item.artifact, outcome)
	reportMu.Lock()
	report.Uploads[item.artifact] = outcome
	reportMu.Unlock()

	if !outcome.Ok() {
		logger.Warn("upload failed", "artifact", item.artifact, "err", outcome.Error)
	}
}

// runRegistration registers every file uploaded successfully in this run
// with the knowledge collection. Failures are logged and reported, never
// fatal, and this stage is not checkpointed.
func (s *Service) runRegistration(ctx context.Context, logger *slog.Logger, report *core.Report) {
	var ids []string
	for _, outcome := range report.Uploads {
		if outcome.Ok() {
			ids = append(ids, outcome.ID)
		}
	}
	sort.Strings(ids)
	if len(ids) == 0 {
		return
	}

	if s.registerDelay > 0 {
		logger.Info("waiting before knowledge registration", "delay", s.registerDelay)
		timer := time.NewTimer(s.registerDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}

	logger.Info("registering uploaded files", "count", len(ids))
	for _, id := range ids {
		if err := s.registrar.Register(ctx, id); err != nil {
			logger.Error("registration failed", "fileID", id, "err", err)
			report.RegistrationFailures[id] = err.Error()
		}
	}
}

func (s *Service) artifactPath(source string) string {
	if s.hashNames {
		return core.HashedArtifactPath(s.outputDir, source, s.artifactExt)
	}
	return core.ArtifactPath(s.outputDir, source, s.artifactExt)
}

// Release releases the worker pool.
// The service should not be used after calling Release.
func (s *Service) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}
