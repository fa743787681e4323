// Package types defines the domain entities, sentinel errors, Config, and
// the Store interface for the fieldops sales-pipeline system.
//
// Entities are explicit tagged structs; semi-structured fields (activity
// groups, conversation history) are typed slices, not loose maps. Storage
// backends implement Store; the pipeline engine in internal/pipeline holds
// all business rules and treats the Store as a dumb durable collection.
package types
