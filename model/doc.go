// Package model defines the normalized language-model contract consumed by
// model-backed agents and speaker selectors. Provider adapters (see the
// openai and anthropic subpackages) translate the shared conversation into
// vendor message formats and stream normalized responses back.
//
// The scheduler core never depends on this package; it only sees the
// core.Agent capability interface. Model integration is deliberately kept at
// the edge so the turn loop stays provider-agnostic.
package model
