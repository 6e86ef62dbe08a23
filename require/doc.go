// Package require evaluates [schema.Requirement] trees, both structurally
// at schema-validation time ([Tag]) and against an accumulated
// [schema.Values] mapping at parse time ([Eval]). Each half has its own
// recursive traversal over the same closed set of requirement node types.
package require
