package jobs

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/NastasiaHalabi/CertificateGenerator/email"
)

func sampleStatuses() []StatusEntry {
	return []StatusEntry{
		{Row: 1, Email: "a@x.com", Status: StatusQueued},
		{Row: 2, Email: "", Status: StatusSkipped, Error: "Missing email"},
		{Row: 3, Email: "bad", Status: StatusFailed, Error: "Invalid email(s): bad"},
		{Row: 4, Email: "b@x.com", Status: StatusQueued},
	}
}

func TestBuildReport(t *testing.T) {
	got := BuildReport([]StatusEntry{
		{Row: 1, Email: "a@x.com", Status: StatusSent},
		{Row: 2, Email: `q"uote@x.com`, Status: StatusFailed, Error: `550 "no"`},
	})
	want := "row,email,status,error\n" +
		`1,"a@x.com",sent,""` + "\n" +
		`2,"q""uote@x.com",failed,"550 ""no"""`
	if got != want {
		t.Fatalf("report mismatch:\n%s\nwant:\n%s", got, want)
	}
	if BuildReport(nil) != "row,email,status,error" {
		t.Fatalf("empty report should be header only")
	}
}

func TestReportFilename(t *testing.T) {
	if got := ReportFilename(""); got != "email_status.csv" {
		t.Fatalf("got %q", got)
	}
	if got := ReportFilename("spring"); got != "spring_email_status.csv" {
		t.Fatalf("got %q", got)
	}
}

func TestJobCounting(t *testing.T) {
	s := NewStore(StoreConfig{}, zaptest.NewLogger(t))
	job, err := s.Create(sampleStatuses(), "r.csv")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	snap := job.Snapshot()
	if snap.Total != 4 || snap.Skipped != 1 || snap.Failed != 1 || snap.Done {
		t.Fatalf("unexpected initial snapshot: %+v", snap)
	}
	if !job.Resolve(1, StatusSent, "") {
		t.Fatalf("resolve row 1 failed")
	}
	if job.Resolve(1, StatusFailed, "again") {
		t.Fatalf("row 1 resolved twice")
	}
	if job.Resolve(2, StatusSent, "") {
		t.Fatalf("skipped row must not change")
	}
	job.Resolve(4, StatusFailed, "boom")
	s.Finalize(job)

	snap = job.Snapshot()
	if !snap.Done || snap.Sent != 1 || snap.Failed != 2 || snap.Skipped != 1 {
		t.Fatalf("unexpected final snapshot: %+v", snap)
	}
	if snap.Sent+snap.Failed+snap.Skipped != snap.Total {
		t.Fatalf("counters do not add up: %+v", snap)
	}
	if snap.Report == nil || snap.Report.Filename != "r.csv" {
		t.Fatalf("missing report: %+v", snap.Report)
	}
	raw, err := base64.StdEncoding.DecodeString(snap.Report.Data)
	if err != nil {
		t.Fatalf("report not base64: %v", err)
	}
	if string(raw) != BuildReport(job.Statuses()) {
		t.Fatalf("report content mismatch")
	}
}

func TestCreateWithNothingQueuedIsDone(t *testing.T) {
	s := NewStore(StoreConfig{}, nil)
	job, err := s.Create([]StatusEntry{{Row: 1, Status: StatusSkipped, Error: "Missing email"}}, "email_status.csv")
	if err != nil {
		t.Fatal(err)
	}
	snap := job.Snapshot()
	if !snap.Done || snap.Report == nil {
		t.Fatalf("job should be finished at creation: %+v", snap)
	}
}

func TestStoreExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(StoreConfig{TTL: time.Minute}, nil)
	s.now = func() time.Time { return now }

	job, _ := s.Create(nil, "x.csv")
	if _, err := s.Get(job.ID); err != nil {
		t.Fatalf("Get: %v", err)
	}
	now = now.Add(time.Minute)
	if _, err := s.Get(job.ID); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound after ttl, got %v", err)
	}
	if n := s.Sweep(); n != 1 || s.Len() != 0 {
		t.Fatalf("sweep removed %d, len %d", n, s.Len())
	}
	if _, err := s.Get("nope"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestStoreCapacity(t *testing.T) {
	s := NewStore(StoreConfig{MaxJobs: 2}, nil)
	queued := []StatusEntry{{Row: 1, Email: "a@x.com", Status: StatusQueued}}

	first, _ := s.Create(nil, "done.csv") // 立即完成
	if _, err := s.Create(queued, "a.csv"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Create(queued, "b.csv"); err != nil {
		t.Fatalf("finished job should have been evicted: %v", err)
	}
	if _, err := s.Get(first.ID); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("oldest finished job still present")
	}
	if _, err := s.Create(queued, "c.csv"); !errors.Is(err, ErrStoreFull) {
		t.Fatalf("expected ErrStoreFull, got %v", err)
	}
	if s.Active() != 2 {
		t.Fatalf("active = %d", s.Active())
	}
}

type fakeSender struct {
	mu   sync.Mutex
	sent [][]string
	fail map[string]error
}

func (f *fakeSender) Send(ctx context.Context, msg email.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[msg.To[0]]; err != nil {
		return err
	}
	f.sent = append(f.sent, msg.To)
	return nil
}

func TestRunnerSendsInOrderAndFinalizes(t *testing.T) {
	s := NewStore(StoreConfig{}, nil)
	sender := &fakeSender{fail: map[string]error{"b@x.com": errors.New("550 mailbox unavailable")}}
	r := NewRunner(context.Background(), s, sender, zaptest.NewLogger(t))

	job, err := s.Create(sampleStatuses(), "r.csv")
	if err != nil {
		t.Fatal(err)
	}
	r.Submit(job, []Task{
		{Row: 1, Message: email.Message{To: []string{"a@x.com"}}},
		{Row: 4, Message: email.Message{To: []string{"b@x.com"}}},
	})
	r.Wait()

	snap := job.Snapshot()
	if !snap.Done || snap.Sent != 1 || snap.Failed != 2 || snap.Skipped != 1 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	statuses := job.Statuses()
	if statuses[3].Status != StatusFailed || statuses[3].Error != "550 mailbox unavailable" {
		t.Fatalf("row 4 status = %+v", statuses[3])
	}
	if len(sender.sent) != 1 || sender.sent[0][0] != "a@x.com" {
		t.Fatalf("sent = %v", sender.sent)
	}
}

func TestRunnerFailsUndispatchedRows(t *testing.T) {
	s := NewStore(StoreConfig{}, nil)
	r := NewRunner(context.Background(), s, &fakeSender{}, nil)
	job, _ := s.Create(sampleStatuses(), "r.csv")
	r.Submit(job, []Task{{Row: 1, Message: email.Message{To: []string{"a@x.com"}}}})
	r.Wait()

	snap := job.Snapshot()
	if !snap.Done || snap.Sent+snap.Failed+snap.Skipped != snap.Total {
		t.Fatalf("job not closed: %+v", snap)
	}
}

func TestSweeperStops(t *testing.T) {
	s := NewStore(StoreConfig{TTL: time.Millisecond}, nil)
	sw := NewSweeper(s, time.Millisecond, nil)
	s.Create(nil, "x.csv")
	sw.Start(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for s.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	sw.Stop()
	sw.Stop()
	if s.Len() != 0 {
		t.Fatalf("expired job not swept")
	}
}
