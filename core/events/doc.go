// Package events defines the prediction related events emitted on the event bus.
//
// Available event types:
//   - PredictionEvent: a prediction completed
//   - FailureEvent: a prediction was rejected or the model call failed
//   - ModelStateEvent: the model lifecycle settled on Ready or Degraded
package events
