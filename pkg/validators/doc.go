// Package validators provides the common synchronous validators for form controls.
//
// Length and format validators ignore empty values so they compose with Required.
package validators
