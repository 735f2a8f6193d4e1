// Package report contains the lint reporters: plain text, HTML, XML (also
// used for baseline files), JSON and SARIF.
//
// Every reporter implements lint.Reporter. File reporters open their output
// when Write is called and announce the written file unless the run is quiet.
package report
