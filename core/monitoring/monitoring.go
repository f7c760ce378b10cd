// Package monitoring defines the error reporting contract. Implementations are
// injected where needed; there is no process-wide monitor.
package monitoring

import "time"

// Monitor reports errors to an external tracker.
type Monitor interface {
	// CaptureException records err with optional tags such as the request
	// fields that produced it.
	CaptureException(err error, tags map[string]string)
	// Recover reports a panic in the calling goroutine and re-panics. It
	// must be deferred.
	Recover()
	Flush(timeout time.Duration)
}

// NopMonitor drops every report.
type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Recover()                                  {}
func (NopMonitor) Flush(time.Duration)                       {}

// Recorder keeps captured errors in memory. Tests use it to assert that a
// failure was reported.
type Recorder struct {
	Errors []error
	Tags   []map[string]string
}

func (r *Recorder) CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	r.Errors = append(r.Errors, err)
	r.Tags = append(r.Tags, tags)
}

func (r *Recorder) Recover()            {}
func (r *Recorder) Flush(time.Duration) {}
