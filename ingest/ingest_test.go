package ingest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ftahirops/xtimeline/model"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

const itemsDoc = `{"items": [
  {"source": "PodState", "locator": "ns/x pod/a", "message": "created",
   "from": "2024-03-01T10:00:00Z", "to": "2024-03-01T10:00:05Z"},
  {"tempSource": "Disruption", "tempStructuredMessage": {"reason": "DisruptionEnded"},
   "from": "2024-03-01T10:01:00Z"},
  {"source": "Alert",
   "tempStructuredLocator": {"type": "Alert", "keys": {"alert": "KubeAPIDown"}},
   "tempStructuredMessage": {"annotations": {"severity": "critical"}},
   "from": "2024-03-01T10:02:00Z"}
]}`

const auditLog = `{"kind":"Event","auditID":"a1","verb":"get","requestURI":"/api/v1/pods","requestReceivedTimestamp":"2024-03-01T10:00:00.250000Z"}
not json
{"kind":"Event","auditID":"a2","verb":"list","requestURI":"/api/v1/nodes","requestReceivedTimestamp":"2024-03-01T10:00:01Z"}
`

func TestSniff(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{itemsDoc, FormatIntervals},
		{`  [{"from":"2024-03-01T10:00:00Z"}]`, FormatIntervals},
		{auditLog, FormatAudit},
		{`{"kind":"Status"}`, FormatUnknown},
		{"", FormatUnknown},
		{"hello", FormatUnknown},
	}
	for _, tt := range tests {
		if got := Sniff([]byte(tt.in)); got != tt.want {
			t.Errorf("Sniff(%.20q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDecodeIntervals(t *testing.T) {
	b, err := Decode(strings.NewReader(itemsDoc), "items.json", quiet)
	if err != nil {
		t.Fatal(err)
	}
	if b.ID == "" || b.Source != "items.json" || b.Schema != model.IntervalSchema {
		t.Errorf("batch header = %q %q %v", b.ID, b.Source, b.Schema)
	}
	if len(b.Records) != 2 {
		t.Fatalf("records = %d, want 2 (DisruptionEnded dropped)", len(b.Records))
	}
	if b.Records[0].Locator.Raw != "ns/x pod/a" || b.Records[0].Text != "created" {
		t.Errorf("legacy record = %+v", b.Records[0])
	}
	if b.Records[1].Locator.Keys["alert"] != "KubeAPIDown" {
		t.Errorf("structured locator = %+v", b.Records[1].Locator)
	}

	arr, err := Decode(strings.NewReader(`[{"source":"x","from":"2024-03-01T10:00:00Z"}]`), "arr", quiet)
	if err != nil || len(arr.Records) != 1 {
		t.Errorf("bare array: %d records, %v", len(arr.Records), err)
	}

	other, _ := Decode(strings.NewReader(itemsDoc), "items.json", quiet)
	if other.ID == b.ID {
		t.Error("batch IDs should be unique")
	}
}

func TestDecodeSkipsMalformedRecords(t *testing.T) {
	doc := `{"items": [
  {"source": "PodState", "locator": "ns/x pod/a", "from": "2024-03-01T10:00:00Z"},
  {"source": "Alert", "tempStructuredMessage": {"annotations": {"severity": "critical", "count": 3}},
   "from": "2024-03-01T10:00:10Z"},
  {"source": "PodState", "from": 1709287200},
  {"source": "PodState", "tempStructuredLocator": {"keys": ["pod"]}, "from": "2024-03-01T10:00:20Z"},
  {"source": "PodState", "locator": "ns/x pod/b", "from": "2024-03-01T10:00:30Z"}
]}`
	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, nil))

	for _, tt := range []struct {
		name string
		data string
	}{
		{"items", doc},
		{"array", doc[strings.Index(doc, "[") : strings.LastIndex(doc, "]")+1]},
	} {
		t.Run(tt.name, func(t *testing.T) {
			logs.Reset()
			b, err := Decode(strings.NewReader(tt.data), "mixed.json", log)
			if err != nil {
				t.Fatal(err)
			}
			if len(b.Records) != 2 {
				t.Fatalf("records = %d, want 2", len(b.Records))
			}
			if b.Records[0].Locator.Raw != "ns/x pod/a" || b.Records[1].Locator.Raw != "ns/x pod/b" {
				t.Errorf("kept records = %+v", b.Records)
			}
			out := logs.String()
			if got := strings.Count(out, "skipping malformed record"); got != 3 {
				t.Errorf("warnings = %d, want 3:\n%s", got, out)
			}
			for _, want := range []string{"batch=" + b.ID, "source=mixed.json", "index=1", "index=2", "index=3"} {
				if !strings.Contains(out, want) {
					t.Errorf("log missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestDecodeAudit(t *testing.T) {
	b, err := Decode(strings.NewReader(auditLog), "audit.log", quiet)
	if err != nil {
		t.Fatal(err)
	}
	if b.Schema != model.AuditSchema || len(b.Records) != 2 {
		t.Fatalf("schema %v, %d records", b.Schema, len(b.Records))
	}
	rec := b.Records[0]
	if rec.Source != "Event" || rec.Locator.Raw != "/api/v1/pods" || rec.Locator.Keys["verb"] != "get" {
		t.Errorf("record = %+v", rec)
	}
	iv, err := rec.ToInterval(0)
	if err != nil {
		t.Fatal(err)
	}
	if got := iv.To.Sub(iv.From); got != auditSpan {
		t.Errorf("audit span = %v", got)
	}
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"kind":"Status"}`), "x", quiet)
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("err = %v, want ErrUnknownFormat", err)
	}
	if _, err := Decode(strings.NewReader(`{"items": 3}`), "x", quiet); err == nil {
		t.Error("expected decode error for non-array items")
	}
}

func TestFetcherSources(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.Error(w, "no such timeline", http.StatusNotFound)
			return
		}
		w.Write([]byte(itemsDoc))
	}))
	defer srv.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "audit.log")
	if err := os.WriteFile(path, []byte(auditLog), 0o644); err != nil {
		t.Fatal(err)
	}

	f := NewFetcher(WithStdin(strings.NewReader(itemsDoc)), WithLogger(quiet))
	ctx := context.Background()

	tests := []struct {
		src  string
		want int
	}{
		{srv.URL + "/timeline.json", 2},
		{path, 2},
		{StdinSource, 2},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			b, err := f.Load(ctx, tt.src)
			if err != nil {
				t.Fatal(err)
			}
			if len(b.Records) != tt.want {
				t.Errorf("records = %d, want %d", len(b.Records), tt.want)
			}
		})
	}

	_, err := f.Load(ctx, srv.URL+"/missing")
	var fe *FetchError
	if !errors.As(err, &fe) || fe.StatusCode != http.StatusNotFound || !strings.Contains(fe.Body, "no such timeline") {
		t.Errorf("err = %v", err)
	}
	if _, err := f.Load(ctx, filepath.Join(dir, "nope.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file err = %v", err)
	}
}

func TestLoader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(itemsDoc))
	}))
	defer srv.Close()

	l := NewLoader(NewFetcher(WithLogger(quiet)), 2, quiet)
	err := l.Run(context.Background(), srv.URL+"/a", srv.URL+"/b", filepath.Join(t.TempDir(), "gone"))
	if err == nil {
		t.Error("expected the missing file to fail")
	}
	st := l.Status()
	if st.Busy() || st.Loaded != 2 || st.Failed != 1 || st.LastErr == nil {
		t.Errorf("status = %+v", st)
	}

	batches, errs := l.Take()
	if len(batches) != 2 || len(errs) != 1 {
		t.Fatalf("Take = %d batches, %d errors", len(batches), len(errs))
	}
	if b, e := l.Take(); b != nil || e != nil {
		t.Error("second Take should be empty")
	}
}
