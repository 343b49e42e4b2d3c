package server

import (
	"encoding/json"
	"testing"
	"time"
)

func TestWebLogger_Forwarding(t *testing.T) {
	testCases := []struct {
		name     string
		format   string
		args     []interface{}
		expected string
	}{
		{"plain", "scene ready\n", nil, "scene ready\n"},
		{"formatted", "Loading %s with %d triangles...\n", []interface{}{"vase.obj", 12345}, "Loading vase.obj with 12345 triangles...\n"},
		{"progress", "rendering %02d%%\n", []interface{}{7}, "rendering 07%\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := make(chan ConsoleMessage, 1)
			logger := NewWebLogger("test-render", out)
			before := time.Now()
			logger.Printf(tc.format, tc.args...)

			select {
			case msg := <-out:
				if msg.Message != tc.expected {
					t.Errorf("Expected %q, got %q", tc.expected, msg.Message)
				}
				if msg.Level != "info" {
					t.Errorf("Expected level info, got %q", msg.Level)
				}
				if msg.Timestamp.Before(before) {
					t.Errorf("Timestamp %v is before the call", msg.Timestamp)
				}
			default:
				t.Fatal("Expected a message on the channel")
			}
		})
	}
}

func TestWebLogger_KeepsOrder(t *testing.T) {
	out := make(chan ConsoleMessage, 3)
	logger := NewWebLogger("test-render", out)
	for i := 1; i <= 3; i++ {
		logger.Printf("line %d\n", i)
	}
	close(out)

	var got []string
	for msg := range out {
		got = append(got, msg.Message)
	}
	if len(got) != 3 || got[0] != "line 1\n" || got[2] != "line 3\n" {
		t.Errorf("Unexpected lines %q", got)
	}
}

func TestWebLogger_DropsWhenFull(t *testing.T) {
	out := make(chan ConsoleMessage, 1)
	logger := NewWebLogger("test-render", out)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 4; i++ {
			logger.Printf("line %d\n", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Printf blocked on a full channel")
	}
	if logger.Dropped() != 3 {
		t.Errorf("Expected 3 dropped lines, got %d", logger.Dropped())
	}
	if msg := <-out; msg.Message != "line 0\n" {
		t.Errorf("Expected the first line to be kept, got %q", msg.Message)
	}
}

func TestWebLogger_NilChannel(t *testing.T) {
	logger := NewWebLogger("test-render", nil)
	logger.Printf("server log only\n")
	if logger.Dropped() != 0 {
		t.Errorf("Expected nothing dropped without a channel, got %d", logger.Dropped())
	}
}

func TestConsoleMessage_JSON(t *testing.T) {
	msg := ConsoleMessage{
		Message:   "rendering 50%\n",
		Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Level:     "info",
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	expected := `{"message":"rendering 50%\n","timestamp":"2024-01-02T03:04:05Z","level":"info"}`
	if string(data) != expected {
		t.Errorf("Expected %s, got %s", expected, data)
	}
}
