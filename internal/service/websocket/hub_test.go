package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gundetect/internal/config"
	"gundetect/internal/dto"
	"gundetect/internal/logger"

	"github.com/gorilla/websocket"
)

func newTestHub(t *testing.T, buffer int) *HubService {
	t.Helper()
	cfg := &config.Config{LogDirectory: t.TempDir(), AlertFeedBuffer: buffer}
	return NewHubService(cfg, logger.NewLogger(cfg))
}

func newViewerServer(t *testing.T, hub *HubService) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(conn)
		defer hub.Unregister(conn)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func waitForClients(t *testing.T, hub *HubService, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if clientCount(hub) == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Expected %d clients, got %d", want, clientCount(hub))
}

func clientCount(hub *HubService) int {
	hub.mutex.RLock()
	defer hub.mutex.RUnlock()
	return len(hub.clients)
}

func TestHub_PublishAlertReachesViewer(t *testing.T) {
	hub := newTestHub(t, 4)
	go hub.Run()
	defer hub.Stop()

	server := newViewerServer(t, hub)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	waitForClients(t, hub, 1)

	hub.PublishAlert(dto.AlertEvent{
		ID:         "evt-1",
		Filename:   "alert_webcam_20250615_143005.jpg",
		Source:     "webcam",
		Timestamp:  "2025-06-15 14:30:05",
		Detections: []dto.DetectionResult{{Class: "Gun", Confidence: 88, BBox: [4]int{1, 2, 3, 4}}},
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, message, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}

	var event dto.AlertEvent
	if err := json.Unmarshal(message, &event); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if event.Filename != "alert_webcam_20250615_143005.jpg" {
		t.Errorf("Expected filename alert_webcam_20250615_143005.jpg, got %s", event.Filename)
	}
	if len(event.Detections) != 1 || event.Detections[0].Confidence != 88 {
		t.Errorf("Unexpected detections: %+v", event.Detections)
	}
}

func TestHub_UnregisterOnDisconnect(t *testing.T) {
	hub := newTestHub(t, 4)
	go hub.Run()
	defer hub.Stop()

	server := newViewerServer(t, hub)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}

	waitForClients(t, hub, 1)
	conn.Close()
	waitForClients(t, hub, 0)
}

func TestHub_BroadcastDropsWhenQueueFull(t *testing.T) {
	// Run is not started, so nothing drains the queue.
	hub := newTestHub(t, 1)

	if !hub.Broadcast([]byte("first")) {
		t.Fatal("Expected first message to be queued")
	}
	if hub.Broadcast([]byte("second")) {
		t.Error("Expected second message to be dropped")
	}
}

func TestHub_StalledViewerIsDropped(t *testing.T) {
	hub := newTestHub(t, 4)
	hub.writeWait = 100 * time.Millisecond
	go hub.Run()
	defer hub.Stop()

	server := newViewerServer(t, hub)
	// The viewer never reads, so socket buffers fill and writes stall.
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	waitForClients(t, hub, 1)

	payload := make([]byte, 1<<20)
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if clientCount(hub) == 0 {
			return
		}
		hub.Broadcast(payload)
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("Expected stalled viewer to be dropped after a write timeout")
}
