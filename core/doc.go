// Package core defines the domain model shared across the document
// processing pipeline: artifact path derivation, embedding artifacts,
// upload outcomes, and the per-run report.
package core
