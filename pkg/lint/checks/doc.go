// Package checks provides the built-in detectors and the issue registries.
//
// Text checks (any file):
//   - TrailingWhitespace: line ends in spaces or tabs
//   - MergeMarker: unresolved version control conflict marker
//
// Source checks:
//   - LongLine: line longer than max_length (off by default)
//   - TodoComment: TODO / FIXME / XXX comment
//   - StopShip: STOPSHIP marker left in code
//   - HardcodedSecret: credential or key literal in a source or resource
//
// Build file checks:
//   - DynamicVersion: dependency version that can change between builds
//
// Project checks (platform projects only):
//   - UnusedResources: resource never referenced from any source
//
// Registries are built once and never modified. NewPlatformRegistry swaps the
// textual DynamicVersion detector for one that understands the YAML build file.
package checks
