// Package testutil provides shared helpers for constructing messages and
// conversation fixtures in tests. It is internal: production code must not
// depend on it.
package testutil
