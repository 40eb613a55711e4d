// Package domain defines the core business entities of the task manager
// (users, tasks, filters, pages and statistics) together with their
// validation rules and domain errors. It has no dependencies on storage or
// transport packages.
package domain
