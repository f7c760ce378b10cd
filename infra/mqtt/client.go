package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/gymcrowd/core/features"
	"github.com/kilianp07/gymcrowd/core/model"
	"github.com/kilianp07/gymcrowd/core/prediction"
	"github.com/kilianp07/gymcrowd/infra/logger"
)

// Default topics.
const (
	DefaultRequestTopic   = "gymcrowd/predict/request"
	DefaultResponsePrefix = "gymcrowd/predict/response"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Enabled        bool        `json:"enabled"`
	Broker         string      `json:"broker"`
	ClientID       string      `json:"client_id"`
	Username       string      `json:"username"`
	Password       string      `json:"password"`
	RequestTopic   string      `json:"request_topic"`
	ResponsePrefix string      `json:"response_topic_prefix"`
	QoS            byte        `json:"qos"`
	UseTLS         bool        `json:"use_tls"`
	ClientCert     string      `json:"client_cert"`
	ClientKey      string      `json:"client_key"`
	CABundle       string      `json:"ca_bundle"`
	LWTTopic       string      `json:"lwt_topic"`
	LWTPayload     string      `json:"lwt_payload"`
	LWTQoS         byte        `json:"lwt_qos"`
	LWTRetain      bool        `json:"lwt_retain"`
	MaxRetries     int         `json:"max_retries"`
	BackoffMS      int         `json:"backoff_ms"`
	TLSConfig      *tls.Config `json:"-"`
}

// SetDefaults fills in topics, client id and retry settings.
func (c *Config) SetDefaults() {
	if c.RequestTopic == "" {
		c.RequestTopic = DefaultRequestTopic
	}
	if c.ResponsePrefix == "" {
		c.ResponsePrefix = DefaultResponsePrefix
	}
	if c.ClientID == "" {
		c.ClientID = "gymcrowd-" + uuid.NewString()[:8]
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.BackoffMS <= 0 {
		c.BackoffMS = 100
	}
}

// Validate checks mandatory fields when the transport is enabled.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return fmt.Errorf("mqtt: broker is required")
	}
	if c.QoS > 2 || c.LWTQoS > 2 {
		return fmt.Errorf("mqtt: qos must be 0, 1 or 2")
	}
	if strings.ContainsAny(c.ResponsePrefix, "+#") {
		return fmt.Errorf("mqtt: response_topic_prefix must not contain wildcards")
	}
	return nil
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Predictor is the part of the prediction server the responder needs.
type Predictor interface {
	Predict(in model.RawInput) (model.PredictionResult, error)
	Health() prediction.Health
}

// Responder answers prediction requests received over MQTT.
type Responder struct {
	cli        pahoClient
	pred       Predictor
	logger     logger.Logger
	reqTopic   string
	respPrefix string
	qos        byte
	maxRetries int
	backoff    time.Duration
}

type request struct {
	RequestID string `json:"request_id"`
	model.RawInput
}

// NewResponder connects to the broker and subscribes to the request topic on
// every (re)connection.
func NewResponder(cfg Config, pred Predictor) (*Responder, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_responder")
	r := &Responder{
		pred:       pred,
		logger:     log,
		reqTopic:   cfg.RequestTopic,
		respPrefix: strings.TrimSuffix(cfg.ResponsePrefix, "/"),
		qos:        cfg.QoS,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
	}
	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		if token := c.Subscribe(r.reqTopic, r.qos, r.onRequest); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	// Set before Connect: a retained request can arrive from OnConnect.
	r.cli = newMQTTClient(opts)
	if token := r.cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return r, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	// Handlers publish replies and wait on the token.
	opts.SetOrderMatters(false)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

func (r *Responder) onRequest(_ paho.Client, msg paho.Message) {
	var req request
	if err := json.Unmarshal(msg.Payload(), &req); err != nil {
		r.logger.Errorf("failed to decode request on %s: %v", msg.Topic(), err)
		return
	}
	var reply any
	switch {
	case req.RequestID == "":
		req.RequestID = uuid.NewString()
		reply = r.answer(req)
	case !validRequestID(req.RequestID):
		r.logger.Warnf("rejecting request id %q on %s", req.RequestID, msg.Topic())
		req.RequestID = uuid.NewString()
		reply = model.ErrorResponse{RequestID: req.RequestID, Error: "request_id must not contain '/', '+' or '#'", Field: "request_id"}
	default:
		reply = r.answer(req)
	}
	if err := r.publish(r.ResponseTopic(req.RequestID), reply); err != nil {
		r.logger.Errorf("reply %s: %v", req.RequestID, err)
	}
}

func (r *Responder) answer(req request) any {
	res, err := r.pred.Predict(req.RawInput)
	if err != nil {
		out := model.ErrorResponse{RequestID: req.RequestID, Error: err.Error()}
		var ie *features.InvalidInputError
		if errors.As(err, &ie) {
			out.Field = ie.Field
		} else if errors.Is(err, prediction.ErrInference) {
			out.Error = "inference failed"
		}
		return out
	}
	resp := model.NewResponse(res, r.pred.Health().State.String())
	resp.RequestID = req.RequestID
	return resp
}

// validRequestID reports whether id can be used as a single topic level.
func validRequestID(id string) bool {
	return utf8.ValidString(id) && !strings.ContainsAny(id, "/+#\x00")
}

// ResponseTopic is the topic a reply for requestID is published on.
func (r *Responder) ResponseTopic(requestID string) string {
	return r.respPrefix + "/" + requestID
}

func (r *Responder) publish(topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var publishErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		token := r.cli.Publish(topic, r.qos, false, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			r.logger.Debugf("replied on %s", topic)
			return nil
		}
		r.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt < r.maxRetries {
			time.Sleep(r.backoff * time.Duration(1<<attempt))
		}
	}
	return publishErr
}

// Disconnect gracefully closes the MQTT connection.
func (r *Responder) Disconnect() {
	if r.cli != nil && r.cli.IsConnected() {
		r.cli.Disconnect(250)
	}
}
