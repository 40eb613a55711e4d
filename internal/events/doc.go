// Package events carries task lifecycle notifications from the task service
// to interested components.
//
// The task service emits a TaskEvent after every successful mutation. Handlers
// register with an emitter and receive events synchronously, in registration
// order. The Redis stats cache uses this to invalidate an owner's cached
// statistics, and the optional NATS publisher forwards events to other
// processes.
//
// The primary components are:
// - TaskEvent: a created, updated or deleted notification for one task
// - EventHandler: interface for components that react to events
// - EventEmitter: interface for components that publish events
package events
