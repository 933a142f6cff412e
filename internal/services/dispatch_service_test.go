package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jarcoal/httpmock"

	"github.com/mfagundes/taskfan/pkg/domain"
)

func newMockedDispatcher(t *testing.T, timeout time.Duration) (DispatcherService, *resty.Client) {
	t.Helper()
	client := resty.New()
	httpmock.ActivateNonDefault(client.GetClient())
	t.Cleanup(httpmock.DeactivateAndReset)
	return NewDispatcherService(client, slog.Default(), timeout), client
}

// echoResponder answers with completedCount equal to the requested count,
// after an optional delay. The delay is interruptible so per-call deadlines
// behave like real transport timeouts.
func echoResponder(delay time.Duration) httpmock.Responder {
	return func(req *http.Request) (*http.Response, error) {
		var body domain.ExecuteRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			return httpmock.NewJsonResponse(http.StatusBadRequest, domain.ExecuteResponse{Error: "bad body"})
		}
		if delay > 0 {
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(delay):
			}
		}
		return httpmock.NewJsonResponse(http.StatusOK, domain.ExecuteResponse{CompletedCount: body.Count})
	}
}

func assignment(label, url string, count int) domain.WorkerAssignment {
	return domain.WorkerAssignment{
		Worker:        domain.WorkerRecord{Label: label, URL: url},
		Label:         label,
		AssignedCount: count,
	}
}

func TestDispatchSuccess(t *testing.T) {
	d, _ := newMockedDispatcher(t, time.Second)
	httpmock.RegisterResponder("POST", "http://a.test/execute", echoResponder(0))
	httpmock.RegisterResponder("POST", "http://b.test/execute", echoResponder(0))

	outcomes := d.Dispatch(context.Background(), "t-1", "report", []domain.WorkerAssignment{
		assignment("a", "http://a.test", 4),
		assignment("b", "http://b.test", 3),
	})

	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}
	for i, want := range []int{4, 3} {
		if outcomes[i].Error != "" {
			t.Errorf("outcome[%d] unexpected error %q", i, outcomes[i].Error)
		}
		if outcomes[i].CompletedCount != want {
			t.Errorf("outcome[%d].CompletedCount = %d, want %d", i, outcomes[i].CompletedCount, want)
		}
	}
}

func TestDispatchOutcomeOrderMatchesAssignmentsNotCompletion(t *testing.T) {
	d, _ := newMockedDispatcher(t, 5*time.Second)
	// First assignment answers last.
	httpmock.RegisterResponder("POST", "http://slow.test/execute", echoResponder(300*time.Millisecond))
	httpmock.RegisterResponder("POST", "http://mid.test/execute", echoResponder(100*time.Millisecond))
	httpmock.RegisterResponder("POST", "http://fast.test/execute", echoResponder(0))

	outcomes := d.Dispatch(context.Background(), "t-1", "report", []domain.WorkerAssignment{
		assignment("slow", "http://slow.test", 2),
		assignment("mid", "http://mid.test", 2),
		assignment("fast", "http://fast.test", 2),
	})

	for i, want := range []string{"slow", "mid", "fast"} {
		if outcomes[i].Label != want {
			t.Errorf("outcome[%d] = %s, want %s (assignment order)", i, outcomes[i].Label, want)
		}
		if outcomes[i].Error != "" {
			t.Errorf("outcome[%d] unexpected error %q", i, outcomes[i].Error)
		}
	}
}

func TestDispatchTimeoutIsContained(t *testing.T) {
	d, _ := newMockedDispatcher(t, 100*time.Millisecond)
	httpmock.RegisterResponder("POST", "http://hang.test/execute", echoResponder(10*time.Second))
	httpmock.RegisterResponder("POST", "http://ok.test/execute", echoResponder(0))

	start := time.Now()
	outcomes := d.Dispatch(context.Background(), "t-1", "report", []domain.WorkerAssignment{
		assignment("hang", "http://hang.test", 5),
		assignment("ok", "http://ok.test", 5),
	})

	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("timeout not enforced, dispatch took %v", elapsed)
	}
	if outcomes[0].Error != domain.ReasonTimeout {
		t.Errorf("outcome[0].Error = %q, want %q", outcomes[0].Error, domain.ReasonTimeout)
	}
	if outcomes[0].CompletedCount != 0 {
		t.Errorf("timed-out outcome must report 0 completed, got %d", outcomes[0].CompletedCount)
	}
	if outcomes[1].Error != "" || outcomes[1].CompletedCount != 5 {
		t.Errorf("healthy worker affected by peer timeout: %+v", outcomes[1])
	}
}

func TestDispatchConnectionFailure(t *testing.T) {
	d, _ := newMockedDispatcher(t, time.Second)
	httpmock.RegisterResponder("POST", "http://down.test/execute",
		httpmock.NewErrorResponder(errors.New("dial tcp: connection refused")))

	outcomes := d.Dispatch(context.Background(), "t-1", "report", []domain.WorkerAssignment{
		assignment("down", "http://down.test", 3),
	})

	if outcomes[0].Error != domain.ReasonConnectionFailed {
		t.Errorf("Error = %q, want %q", outcomes[0].Error, domain.ReasonConnectionFailed)
	}
}

func TestDispatchWorkerErrorPreservesPartialCount(t *testing.T) {
	d, _ := newMockedDispatcher(t, time.Second)
	httpmock.RegisterResponder("POST", "http://broken.test/execute",
		httpmock.NewJsonResponderOrPanic(http.StatusInternalServerError,
			domain.ExecuteResponse{CompletedCount: 1, Error: "disk full"}))

	outcomes := d.Dispatch(context.Background(), "t-1", "report", []domain.WorkerAssignment{
		assignment("broken", "http://broken.test", 4),
	})

	if outcomes[0].Error != domain.ReasonWorkerError(http.StatusInternalServerError) {
		t.Errorf("Error = %q, want WorkerError:500", outcomes[0].Error)
	}
	if outcomes[0].CompletedCount != 1 {
		t.Errorf("partial completed count not preserved: %d", outcomes[0].CompletedCount)
	}
}

func TestDispatchSynthesizesZeroAssignmentsWithoutNetworkIO(t *testing.T) {
	d, _ := newMockedDispatcher(t, time.Second)
	httpmock.RegisterResponder("POST", "http://a.test/execute", echoResponder(0))
	httpmock.RegisterResponder("POST", "http://b.test/execute", echoResponder(0))
	httpmock.RegisterResponder("POST", "http://c.test/execute", echoResponder(0))

	outcomes := d.Dispatch(context.Background(), "t-1", "report", []domain.WorkerAssignment{
		assignment("a", "http://a.test", 1),
		assignment("b", "http://b.test", 1),
		assignment("c", "http://c.test", 0),
	})

	if got := httpmock.GetTotalCallCount(); got != 2 {
		t.Errorf("expected 2 network calls, got %d", got)
	}
	last := outcomes[2]
	if last.Label != "c" || last.Error != "" || last.CompletedCount != 0 || last.AssignedCount != 0 {
		t.Errorf("zero assignment outcome malformed: %+v", last)
	}
}
