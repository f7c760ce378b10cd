// Package factory provides a small generic registry used to instantiate modules
// from configuration. A module is described by a type string and a map of raw
// settings; the registered factory decodes the settings into a typed struct and
// returns the concrete implementation.
//
// Model artifacts, metric sinks and history stores are all built this way:
//
//	reg := factory.NewRegistry[estimator.Regressor]()
//	reg.Register("constant", func(conf map[string]any) (estimator.Regressor, error) {
//	    var c struct{ Value float64 `json:"value"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return estimator.NewConstant(c.Value, features.Len), nil
//	})
//	m, err := reg.Create(factory.ModuleConfig{Type: "constant", Conf: map[string]any{"value": 3}})
package factory
