// Package pipeline orchestrates scan execution.
// It defines the Step interface, the Pipeline that runs steps in
// sequence, a BatchProcessor for scanning multiple targets
// concurrently, and a Build function that assembles the right steps
// for the requested scan types and the platform's capabilities.
package pipeline
