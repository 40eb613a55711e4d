// Package viewstate holds client-side view state on top of the API client:
// the signed-in session, the task board with its filter, the dashboard and
// the profile form.
//
// Filtering and reconciliation are pure functions over slices of tasks and
// never modify their inputs. Views apply a mutation locally only after the
// server accepted it, using the server's returned document.
package viewstate
