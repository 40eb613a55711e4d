// Package ciutil detects the execution environment and resolves the external
// services used by integration tests.
//
// Integration tests for the Postgres, Mongo and Redis backends read their
// connection strings from TASKFLOW_TEST_* variables. Locally a missing
// variable skips the test; on a CI runner it fails it, so a misconfigured
// pipeline cannot pass by silently skipping every backend.
package ciutil
