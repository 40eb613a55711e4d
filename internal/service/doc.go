// Package service contains the application use cases for accounts and tasks.
// It orchestrates domain objects and the store interfaces (defined in
// internal/store) and never depends on a concrete backend.
//
// UserService covers registration, login and profile management; TaskService
// covers ownership-scoped task CRUD, listing and statistics. Expected
// outcomes surface as sentinel errors from domain, store and this package;
// unexpected ones are wrapped in *ServiceError.
package service
