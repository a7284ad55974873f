// Package condition evaluates audience targeting expressions against user
// attributes.
//
// An expression is a tree of boolean combinators over attribute matches,
// modeled as a tagged union: Leaf matches a single attribute, And/Or/Not
// combine child conditions. Evaluation is total - malformed nodes, missing
// attributes and type mismatches all evaluate to "no match" rather than
// returning an error, because audience misses are a normal outcome on the
// decision hot path.
//
// The package also decodes the serialized expression grammar used by project
// datafiles, a nested JSON form where arrays carry an operator head:
//
//	["and", ["or", {"name": "device_type", "type": "custom_attribute", "value": "iPhone"}]]
//
// Malformed documents are rejected at decode time so the evaluator only ever
// sees well-formed trees.
package condition
