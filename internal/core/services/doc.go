// Package services implements the driving port interfaces.
// Services contain the pipeline logic (ingestion, retrieval, answer
// synthesis, document sessions) and orchestrate calls to driven ports.
//
// Services are pure Go with no external dependencies beyond the ports.
package services
