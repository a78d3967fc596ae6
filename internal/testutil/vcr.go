package testutil

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/dnaeon/go-vcr.v2/cassette"
	"gopkg.in/dnaeon/go-vcr.v2/recorder"
)

// apiKeyHeader is stripped from recorded interactions.
const apiKeyHeader = "X-Goog-Api-Key"

// NewVCRRecorder creates a new VCR recorder for testing. Set VCR_MODE=record
// to refresh the cassette against the live API.
func NewVCRRecorder(t *testing.T, cassetteName string) (*recorder.Recorder, func()) {
	t.Helper()

	mode := recorder.ModeReplaying
	if os.Getenv("VCR_MODE") == "record" {
		mode = recorder.ModeRecording
	}

	cassettePath := filepath.Join("testdata", "fixtures", cassetteName)

	r, err := recorder.NewAsMode(cassettePath, mode, nil)
	if err != nil {
		t.Fatalf("Failed to create VCR recorder: %v", err)
	}

	r.SetMatcher(matchRequest)
	r.AddFilter(func(i *cassette.Interaction) error {
		i.Request.Headers.Del(apiKeyHeader)
		return nil
	})

	// Cleanup function
	cleanup := func() {
		if err := r.Stop(); err != nil {
			t.Errorf("Failed to stop VCR recorder: %v", err)
		}
	}

	return r, cleanup
}

// matchRequest matches on method and path, then tells the opening call of a
// tool round apart from the follow-up by the presence of a function response.
func matchRequest(r *http.Request, i cassette.Request) bool {
	if r.Method != i.Method {
		return false
	}
	if !strings.HasSuffix(i.URL, r.URL.Path) && !strings.Contains(i.URL, r.URL.Path+"?") {
		return false
	}
	if r.Body == nil {
		return i.Body == ""
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return false
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	const marker = "functionResponse"
	return bytes.Contains(body, []byte(marker)) == strings.Contains(i.Body, marker)
}

// VCRHTTPClient returns an HTTP client configured to use the VCR recorder
func VCRHTTPClient(r *recorder.Recorder) *http.Client {
	return &http.Client{
		Transport: r,
	}
}
