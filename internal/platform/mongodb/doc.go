// Package mongodb provides MongoDB implementations of the store interfaces
// using the official mongo-go-driver. Users and tasks live in the "users" and
// "tasks" collections with string UUID primary keys; every task operation is
// filtered by both _id and user_id so ownership is checked atomically by the
// server.
package mongodb
