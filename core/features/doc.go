// Package features turns raw prediction inputs into the numeric vector the
// trained occupancy model consumes.
//
// The column order of Vector is fixed by the training pipeline. Reordering
// the index constants below does not fail loudly; it silently corrupts every
// prediction. Names must stay aligned with the constants.
package features
