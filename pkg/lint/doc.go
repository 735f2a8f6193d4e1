// Package lint provides the analysis client that runs issue detectors over the
// inputs of one project variant.
//
// # Architecture
//
// The package is organised around a few contracts:
//
//  1. Issue and Implementation describe a check and the detector that finds it
//  2. Registry is an immutable set of issues, built once per client
//  3. Client runs the enabled issues of a registry over VariantInputs and
//     returns the resulting Warnings together with the Baseline it used
//  4. Reporter writes a finding set in one representation (text, HTML, ...)
//
// Built-in detectors and registries live in pkg/lint/checks, reporters in
// pkg/lint/report.
//
// # Running a Client
//
//	flags := lint.NewFlags()
//	flags.AddReporter(report.NewText(os.Stdout, flags))
//	client := lint.NewClient(lint.ClientConfig{
//		Registry: checks.NewBuiltinRegistry(),
//		Flags:    flags,
//		Inputs:   inputs,
//	})
//	warnings, baseline, err := client.Run(ctx)
//
// # Suppressing Findings
//
// A finding is dropped when its line, or the line above it, contains
// "varlint:ignore" followed by the issue ID or "all".
//
// # Baselines
//
// A baseline is an XML snapshot of accepted findings. Findings matching a
// baseline entry by issue ID, file and message are filtered out of the result;
// entries that match nothing are counted as fixed.
package lint
