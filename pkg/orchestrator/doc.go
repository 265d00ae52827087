// Package orchestrator wires the loader → controller → renderer pipeline so
// hosts can turn schema documents into a rendered form with one call.
package orchestrator
