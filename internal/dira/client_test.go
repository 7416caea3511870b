package dira

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/dira-lottery/internal/logger"
)

func quietLogger() *logger.Logger {
	return logger.New(logger.LevelError, io.Discard)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(WithBaseURL(server.URL), WithLogger(quietLogger()))
}

func TestNewClient(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := NewClient()
		if c.baseURL != DefaultBaseURL {
			t.Errorf("baseURL = %q, want %q", c.baseURL, DefaultBaseURL)
		}
		if c.httpClient.Timeout != DefaultTimeout {
			t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, DefaultTimeout)
		}
		if c.logger == nil {
			t.Error("logger should not be nil")
		}
	})

	t.Run("with options", func(t *testing.T) {
		hc := &http.Client{}
		c := NewClient(WithBaseURL("http://localhost/api"), WithHTTPClient(hc), WithTimeout(5*time.Second))
		if c.baseURL != "http://localhost/api" {
			t.Errorf("baseURL = %q", c.baseURL)
		}
		if c.httpClient != hc {
			t.Error("custom HTTP client not set")
		}
		if hc.Timeout != 5*time.Second {
			t.Errorf("Timeout = %v, want 5s", hc.Timeout)
		}
	})
}

func TestRequestURL(t *testing.T) {
	c := NewClient()
	got := c.RequestURL("1452", "1943")

	want := DefaultBaseURL + "?method=Projects&param=%3FfirstApplicantIdentityNumber%3D%26secondApplicantIdentityNumber%3D%26PageNumber%3D1%26PageSize%3D12%26ProjectNumber%3D1452%26LotteryNumber%3D1943%26"
	if got != want {
		t.Errorf("RequestURL() =\n  %s\nwant\n  %s", got, want)
	}
}

func TestFetchSubscribers_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET request, got %s", r.Method)
		}
		if r.URL.Query().Get("method") != "Projects" {
			t.Errorf("method = %q, want Projects", r.URL.Query().Get("method"))
		}
		param := r.URL.Query().Get("param")
		for _, part := range []string{"PageNumber=1", "PageSize=12", "ProjectNumber=1452", "LotteryNumber=1943", "firstApplicantIdentityNumber=&"} {
			if !strings.Contains(param, part) {
				t.Errorf("param %q missing %q", param, part)
			}
		}
		if !strings.Contains(r.Header.Get("Accept"), "application/json") {
			t.Errorf("Accept header = %q", r.Header.Get("Accept"))
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"ProjectItems":[{"LotteryStageSummery":{"TotalSubscribers":3526,"TotalLocalSubscribers":438}},{"LotteryStageSummery":{"TotalSubscribers":1,"TotalLocalSubscribers":1}}]}`)
	})

	counts, err := c.FetchSubscribers(context.Background(), "1452", "1943")
	if err != nil {
		t.Fatalf("FetchSubscribers() unexpected error: %v", err)
	}
	if counts.TotalSubscribers != 3526 || counts.TotalLocalSubscribers != 438 {
		t.Errorf("FetchSubscribers() = %+v, want 3526/438", counts)
	}
}

func TestFetchSubscribers_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantReason Reason
		wantStatus int
	}{
		{name: "empty project items", status: 200, body: `{"ProjectItems":[]}`, wantReason: ReasonEmpty},
		{name: "missing project items", status: 200, body: `{}`, wantReason: ReasonEmpty},
		{name: "null body", status: 200, body: `null`, wantReason: ReasonEmpty},
		{name: "not json", status: 200, body: `<html>maintenance</html>`, wantReason: ReasonDecode},
		{name: "wrong shape", status: 200, body: `{"ProjectItems":{"a":1}}`, wantReason: ReasonDecode},
		{name: "missing summary", status: 200, body: `{"ProjectItems":[{}]}`, wantReason: ReasonDecode},
		{name: "missing totals", status: 200, body: `{"ProjectItems":[{"LotteryStageSummery":{"TotalSubscribers":5}}]}`, wantReason: ReasonDecode},
		{name: "server error", status: 503, body: `busy`, wantReason: ReasonStatus, wantStatus: 503},
		{name: "not found", status: 404, body: ``, wantReason: ReasonStatus, wantStatus: 404},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			_, err := c.FetchSubscribers(context.Background(), "1452", "1943")
			if err == nil {
				t.Fatal("FetchSubscribers() expected error, got nil")
			}

			var remote *RemoteDataError
			if !errors.As(err, &remote) {
				t.Fatalf("error %v is not a *RemoteDataError", err)
			}
			if remote.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", remote.Reason, tt.wantReason)
			}
			if remote.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", remote.StatusCode, tt.wantStatus)
			}
			if remote.Project != "1452" || remote.Lottery != "1943" {
				t.Errorf("error lacks identifiers: %+v", remote)
			}
		})
	}
}

func TestFetchSubscribers_EmptyItemsIsSentinel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"ProjectItems":[]}`)
	})

	_, err := c.FetchSubscribers(context.Background(), "1", "2")
	if !errors.Is(err, ErrNoProjectItems) {
		t.Errorf("error = %v, want ErrNoProjectItems", err)
	}
}

func TestFetchSubscribers_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	c := NewClient(WithBaseURL(server.URL), WithLogger(quietLogger()))
	_, err := c.FetchSubscribers(context.Background(), "1452", "1943")

	var remote *RemoteDataError
	if !errors.As(err, &remote) {
		t.Fatalf("error %v is not a *RemoteDataError", err)
	}
	if remote.Reason != ReasonTransport {
		t.Errorf("Reason = %q, want %q", remote.Reason, ReasonTransport)
	}
	if !remote.Retryable() {
		t.Error("transport errors should be retryable")
	}
}

func TestFetchSubscribers_ContextCanceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchSubscribers(ctx, "1452", "1943")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled in chain", err)
	}
}

func TestRemoteDataError(t *testing.T) {
	t.Run("message names the lottery", func(t *testing.T) {
		err := &RemoteDataError{Project: "1452", Lottery: "1943", Reason: ReasonStatus, StatusCode: 502, Err: errors.New("bad gateway")}
		want := "fetching subscribers for project 1452 lottery 1943: status 502: bad gateway"
		if err.Error() != want {
			t.Errorf("Error() = %q, want %q", err.Error(), want)
		}
	})

	t.Run("retryable", func(t *testing.T) {
		tests := []struct {
			reason Reason
			status int
			want   bool
		}{
			{ReasonTransport, 0, true},
			{ReasonStatus, 500, true},
			{ReasonStatus, 429, true},
			{ReasonStatus, 404, false},
			{ReasonDecode, 0, false},
			{ReasonEmpty, 0, false},
		}
		for _, tt := range tests {
			err := &RemoteDataError{Reason: tt.reason, StatusCode: tt.status}
			if got := err.Retryable(); got != tt.want {
				t.Errorf("Retryable(%s %d) = %v, want %v", tt.reason, tt.status, got, tt.want)
			}
		}
	})
}
