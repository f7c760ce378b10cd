package e2e

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kilianp07/gymcrowd/app"
	"github.com/kilianp07/gymcrowd/config"
	"github.com/kilianp07/gymcrowd/core/factory"
	"github.com/kilianp07/gymcrowd/core/history"
	"github.com/kilianp07/gymcrowd/infra/mqtt"
)

const (
	influxOrg    = "gymcrowd"
	influxBucket = "e2e"
	influxToken  = "e2e-token"
)

// junitReport is a minimal JUnit XML report so CI can display the run.
type junitReport struct {
	XMLName  xml.Name        `xml:"testsuite"`
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Cases    []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name    string  `xml:"name,attr"`
	Failure *string `xml:"failure,omitempty"`
	Time    float64 `xml:"time,attr"`
}

func writeJUnit(path string, rep junitReport) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	return enc.Encode(rep)
}

// startInflux starts an InfluxDB 2.7 container already set up with the
// test organisation, bucket and token.
func startInflux(ctx context.Context, t *testing.T) (tc.Container, string) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "influxdb:2.7",
		ExposedPorts: []string{"8086/tcp"},
		Env: map[string]string{
			"DOCKER_INFLUXDB_INIT_MODE":        "setup",
			"DOCKER_INFLUXDB_INIT_USERNAME":    "gymcrowd",
			"DOCKER_INFLUXDB_INIT_PASSWORD":    "gymcrowd-e2e",
			"DOCKER_INFLUXDB_INIT_ORG":         influxOrg,
			"DOCKER_INFLUXDB_INIT_BUCKET":      influxBucket,
			"DOCKER_INFLUXDB_INIT_ADMIN_TOKEN": influxToken,
		},
		WaitingFor: wait.ForHTTP("/health").WithPort("8086/tcp").WithStartupTimeout(60 * time.Second),
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("unable to start influx container: %v", err)
	}
	host, _ := cont.Host(ctx)
	port, _ := cont.MappedPort(ctx, "8086")
	return cont, fmt.Sprintf("http://%s:%s", host, port.Port())
}

func startMosquitto(ctx context.Context, t *testing.T) (tc.Container, string) {
	t.Helper()
	conf := filepath.Join(t.TempDir(), "mosquitto.conf")
	require.NoError(t, os.WriteFile(conf, []byte("listener 1883\nallow_anonymous true\n"), 0o644))
	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
		Files: []tc.ContainerFile{{
			HostFilePath:      conf,
			ContainerFilePath: "/mosquitto/config/mosquitto.conf",
			FileMode:          0o644,
		}},
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("unable to start mosquitto: %v", err)
	}
	host, _ := cont.Host(ctx)
	port, _ := cont.MappedPort(ctx, "1883")
	return cont, fmt.Sprintf("tcp://%s:%s", host, port.Port())
}

// Test_E2E_PredictionFlow runs the service against real InfluxDB and
// Mosquitto brokers: one prediction over HTTP, one over MQTT, then checks
// the history file and the points written to InfluxDB.
func Test_E2E_PredictionFlow(t *testing.T) {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skipf("docker not installed: %v", err)
	}
	started := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	influxCont, influxURL := startInflux(ctx, t)
	defer influxCont.Terminate(ctx) //nolint:errcheck
	mqttCont, broker := startMosquitto(ctx, t)
	defer mqttCont.Terminate(ctx) //nolint:errcheck

	dir := t.TempDir()
	modelPath := filepath.Join(dir, "model.json")
	require.NoError(t, os.WriteFile(modelPath, []byte(`{"kind":"constant","params":{"n_features":16,"value":47.6}}`), 0o644))

	cfg := &config.Config{}
	cfg.Model.Path = modelPath
	cfg.MQTT = mqtt.Config{Enabled: true, Broker: broker, ClientID: "gymcrowd-e2e"}
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "influx", Conf: map[string]any{
		"url": influxURL, "token": influxToken, "org": influxOrg, "bucket": influxBucket,
	}}}
	cfg.History = config.HistoryConfig{Backend: "jsonl", Path: filepath.Join(dir, "history.jsonl")}
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())

	svc, err := app.New(ctx, cfg)
	require.NoError(t, err)
	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- svc.Run(runCtx) }()

	// HTTP
	api := httptest.NewServer(svc.Handler())
	defer api.Close()
	body := `{"hour":17,"day":"Wednesday","month":"September","temperature":70,"semester_status":"During Semester"}`
	resp, err := http.Post(api.URL+"/api/predict", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	var httpOut map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&httpOut))
	_ = resp.Body.Close()
	assert.Equal(t, "47 People", httpOut["count_text"])

	// MQTT
	caller := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("e2e-caller"))
	tok := caller.Connect()
	require.True(t, tok.WaitTimeout(10*time.Second))
	require.NoError(t, tok.Error())
	defer caller.Disconnect(100)
	replies := make(chan []byte, 1)
	tok = caller.Subscribe(mqtt.DefaultResponsePrefix+"/e2e-1", 1, func(_ paho.Client, m paho.Message) {
		select {
		case replies <- m.Payload():
		default:
		}
	})
	require.True(t, tok.WaitTimeout(5*time.Second))

	req := []byte(`{"request_id":"e2e-1","hour":6,"day":"Sunday","month":"July","temperature":85,"semester_status":"Semester Break"}`)
	var mqttOut map[string]any
	require.Eventually(t, func() bool {
		caller.Publish(mqtt.DefaultRequestTopic, 1, false, req).WaitTimeout(time.Second)
		select {
		case b := <-replies:
			return json.Unmarshal(b, &mqttOut) == nil
		case <-time.After(500 * time.Millisecond):
			return false
		}
	}, 15*time.Second, 100*time.Millisecond)
	assert.Equal(t, "e2e-1", mqttOut["request_id"])
	assert.Equal(t, "Moderate", mqttOut["status"])

	stop()
	require.NoError(t, <-done)
	require.NoError(t, svc.Close())

	store, err := history.NewJSONLStore(cfg.History.Path)
	require.NoError(t, err)
	recs, err := store.Query(ctx, history.Query{})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(recs), 2)

	cli := NewInfluxClient(influxURL, influxOrg, influxBucket, influxToken)
	defer cli.Close()
	n, err := cli.CountField(ctx, "occupancy_prediction", "count")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 2)
	v, err := cli.LastValue(ctx, "occupancy_prediction", "count")
	require.NoError(t, err)
	assert.EqualValues(t, 47, v)
	n, err = cli.CountField(ctx, "model_state", "source")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rep := junitReport{Name: "e2e", Tests: 1, Cases: []junitTestCase{{
		Name: "Test_E2E_PredictionFlow", Time: time.Since(started).Seconds(),
	}}}
	if err := writeJUnit(filepath.Join(t.TempDir(), "e2e.xml"), rep); err != nil {
		t.Logf("write junit: %v", err)
	}
}
