package watch

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"escomp/internal/driver"
)

func writeAST(t *testing.T, path string, callName string) {
	t.Helper()
	// A single undeclared top-level call: valid JSON the decoder accepts,
	// deliberately failing type checking so the broadcast frame reports
	// OK=false with at least one diagnostic.
	doc := `{"statements":[{"type":"Call","name":"` + callName + `","arguments":[]}]}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("writing fixture AST: %v", err)
	}
}

func TestRunBroadcastsCompileResultOnConnect(t *testing.T) {
	dir := t.TempDir()
	astPath := filepath.Join(dir, "prog.json")
	writeAST(t, astPath, "not_declared")

	srv := New(astPath, driver.Options{Backend: driver.IRText, OutputPath: filepath.Join(dir, "out.ir")}, 20*time.Millisecond)

	mux := http.NewServeMux()
	mux.HandleFunc("/", srv.Handler)
	httpSrv := httptest.NewServer(mux)
	defer httpSrv.Close()

	wsURL := "ws" + strings.TrimPrefix(httpSrv.URL, "http") + "/"

	stop := make(chan struct{})
	go srv.Run(stop)
	defer close(stop)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dialing watch server: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("reading broadcast frame: %v", err)
	}

	var frame Frame
	if err := json.Unmarshal(payload, &frame); err != nil {
		t.Fatalf("unmarshaling frame: %v", err)
	}
	if frame.OK {
		t.Fatalf("expected OK=false for a program with a type error, got %+v", frame)
	}
	if len(frame.Diagnostics) == 0 {
		t.Fatalf("expected at least one diagnostic in the frame")
	}
}
