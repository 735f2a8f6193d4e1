// Package core defines the shared vocabulary of varlint.
//
// This package contains:
//   - Severities for lint findings
//   - Configuration types (ProjectConfig, VariantConfig, LintOptions)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
