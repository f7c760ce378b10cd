// Package infra holds the adapters to systems outside the process: model
// artifact files, MQTT brokers, metrics backends, Sentry and history
// databases. Adapters depend only on contracts declared under core.
package infra
