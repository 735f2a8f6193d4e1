// Package execution drives lint runs for a project.
//
// An Execution decides the run mode from the request (a single variant, all
// variants of a platform project, or a non-platform project), creates one
// lint client per variant, merges the per-variant findings, writes the
// reports and decides whether the build fails. Every registry, flag set and
// client it creates lives for a single call and is discarded afterwards.
package execution
