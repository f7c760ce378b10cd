// Package prediction serves occupancy estimates. A Lifecycle loads the trained
// model exactly once and settles in Ready or, when the artifact cannot be
// used, in Degraded with a placeholder model. A Server encodes raw inputs,
// calls the model, and turns its scalar into a non-negative headcount and a
// status label.
//
// The loaded model is never mutated, so one Server can be shared by any
// number of goroutines without locking.
package prediction
