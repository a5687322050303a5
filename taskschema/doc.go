// Package taskschema assembles the JSON Schema document describing task
// configuration files from registered task types and problem matchers.
//
// # Overview
//
// Task providers register a TaskDefinition per task type (its
// type-specific configuration properties) and any ProblemMatchers they
// contribute. Build folds all registrations into one JSON Schema document:
// a base task definition shared by every type, one merged definition per
// registered type, and a problemMatcher definition whose name enum lists
// every registered matcher.
//
// This is pure data transformation: no concurrency concerns beyond a lock
// on the registration maps, no I/O. The document is a plain
// map[string]any, ready for encoding/json.
package taskschema
