package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dsjohal14/promptlib/internal/libs/jobs"
	"github.com/dsjohal14/promptlib/internal/libs/obs"
	"github.com/dsjohal14/promptlib/internal/scope/prompt"
	"github.com/dsjohal14/promptlib/internal/scope/riskscan"
	"github.com/rs/zerolog"
)

type staticSource []prompt.Prompt

func (s staticSource) AllPrompts(context.Context) ([]prompt.Prompt, error) {
	return s, nil
}

func TestScanCountersAreServed(t *testing.T) {
	metrics := obs.NewMetrics()
	scanner := riskscan.New(staticSource{
		{ID: "a", Title: "Correo", Body: "Escribe a ana@empresa.com", RiskLevel: prompt.RiskMedium, Tags: prompt.Tags{"email"}},
		{ID: "b", Title: "Resumen", Body: "Resume el texto", RiskLevel: prompt.RiskLow, Tags: prompt.Tags{"resumen"}},
	}, metrics)

	queue := jobs.NewQueue()
	job := queue.Enqueue("scan-1")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		process(ctx, queue, scanner, zerolog.Nop())
		close(done)
	}()

	waitFinished(t, queue, job.ID)
	cancel()
	<-done

	srv := metricsServer(":0", metrics)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body, _ := io.ReadAll(rec.Body)
	if want := "promptlib_worker_prompts_scanned_total 2"; !strings.Contains(string(body), want) {
		t.Errorf("metrics output missing %q", want)
	}

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected health 200, got %d", rec.Code)
	}
}

func waitFinished(t *testing.T, queue *jobs.Queue, id string) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if job, ok := queue.Get(id); ok && job.Status == jobs.StatusDone {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish", id)
}
