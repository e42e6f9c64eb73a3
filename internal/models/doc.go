// Package models defines the value types shared by the reconciliation and acquisition packages.
//
// The package contains three groups of types:
//
// 1. Track data: records built fresh on every run and never mutated afterwards
//   - [Track] : artist/title metadata plus optional identity link, id, duration and local path
//   - [TrackInfo] : a [Track] as reported by a per-track detail lookup, with the native download flag
//
// 2. Reconciliation results
//   - [MatchMethod] : url, tokens, unmatchable or missing
//   - [MatchResult] : one classified remote track, with the chosen local candidate if any
//
// 3. Acquisition results
//   - [Outcome] : tagged result (ok, unavailable, failed) returned by every collaborator call
//   - [Decision] : the per-track acquisition decision
//   - [AcquisitionRecord] : one row of the acquisition log
//
// Local tracks are referenced by their position in the local slice (an arena), never by pointer
// from index structures.
package models
