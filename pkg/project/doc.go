// Package project provides the variant model of a project and the per-variant
// inputs (source, resource and build files) handed to the lint client.
//
// A platform project declares named variants in its configuration and exposes
// a ModelBuilder. A non-platform project has no variant model and is linted as
// a single configuration whose inputs are named "".
package project
