package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/gymcrowd/core/factory"
	coremetrics "github.com/kilianp07/gymcrowd/core/metrics"
)

// InfluxConf configures the "influx" sink.
type InfluxConf struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
	// Strict fails startup when InfluxDB is unreachable instead of
	// disabling the sink.
	Strict bool `json:"strict"`
}

func (c InfluxConf) Validate() error {
	if c.URL == "" {
		return errors.New("influx: url is required")
	}
	if c.Bucket == "" {
		return errors.New("influx: bucket is required")
	}
	return nil
}

func newInflux(conf map[string]any) (coremetrics.MetricsSink, error) {
	var c InfluxConf
	if err := factory.Decode(conf, &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if !c.Strict {
		return NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket), nil
	}
	sink := NewInfluxSink(c.URL, c.Token, c.Org, c.Bucket)
	if err := sink.ping(); err != nil {
		sink.Close()
		return nil, fmt.Errorf("influx: %w", err)
	}
	return sink, nil
}

func init() {
	// The Prometheus sink has no settings; the /metrics listener is
	// configured by metrics.prometheus_address.
	_ = coremetrics.RegisterMetricsSink("prometheus", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		if err := factory.Decode(conf, &struct{}{}); err != nil {
			return nil, err
		}
		return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
	})
	_ = coremetrics.RegisterMetricsSink("influx", newInflux)
}
