// Package planir defines the typed intermediate representation of a
// compiled search plan.
//
// A plan is an ordered chain of named relation stages. Each stage consumes
// exactly one upstream relation and defines the next; stage order is fixed
// and never depends on request content, only stage presence does. Building
// a plan performs no I/O and produces no SQL: serialization to query text
// happens once, in package plansql, so "validate before render" is a
// structural property rather than a convention.
package planir
