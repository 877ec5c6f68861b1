package broadcast

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readEvent reads lines until a blank line and returns the event name and data.
func readEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()
	var name, data string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			if name != "" || data != "" {
				return name, data
			}
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestSSEHandler_StreamsMessages(t *testing.T) {
	hub, _ := startHub(t)
	srv := httptest.NewServer(NewSSEHandler(hub))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	r := bufio.NewReader(resp.Body)
	name, data := readEvent(t, r)
	assert.Equal(t, "connected", name)
	assert.Contains(t, data, "clientId")
	waitForClients(t, hub, 1)

	require.NoError(t, hub.Emit("anomaly_alert", map[string]string{"issue": "high_vibration", "fix": "Inspect motor mounts and bearings."}))

	name, data = readEvent(t, r)
	assert.Equal(t, "anomaly_alert", name)
	var msg struct {
		Event string            `json:"event"`
		Data  map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(data), &msg))
	assert.Equal(t, "anomaly_alert", msg.Event)
	assert.Equal(t, "high_vibration", msg.Data["issue"])
}

func TestSSEHandler_DisconnectUnregisters(t *testing.T) {
	hub, _ := startHub(t)
	srv := httptest.NewServer(NewSSEHandler(hub))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	_, _ = readEvent(t, bufio.NewReader(resp.Body))
	waitForClients(t, hub, 1)

	resp.Body.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestSSEHandler_MethodNotAllowed(t *testing.T) {
	hub, _ := startHub(t)
	w := httptest.NewRecorder()
	NewSSEHandler(hub).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/events", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestSSEHandler_HubStopped(t *testing.T) {
	hub, cancel := startHub(t)
	cancel()
	<-hub.done

	w := httptest.NewRecorder()
	NewSSEHandler(hub).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestEventName(t *testing.T) {
	assert.Equal(t, "anomaly_alert", eventName([]byte(`{"event":"anomaly_alert","data":{}}`)))
	assert.Equal(t, "message", eventName([]byte(`not json`)))
	assert.Equal(t, "message", eventName([]byte(`{"data":1}`)))
}
