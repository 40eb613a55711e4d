// Package client is a typed HTTP client for the task API.
//
// Every endpoint of the server has a method here. Successful responses are
// unwrapped from the {data} envelope into domain types; failures come back as
// *APIError carrying the status, message and per-field validation errors.
package client
