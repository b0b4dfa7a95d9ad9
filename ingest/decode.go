// Package ingest turns interval documents and audit logs into batches the
// engine can load.
package ingest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ftahirops/xtimeline/engine"
	"github.com/ftahirops/xtimeline/model"
	"github.com/ftahirops/xtimeline/util"
)

// Format is the detected shape of an input stream.
type Format int

const (
	FormatUnknown Format = iota
	// FormatIntervals is {"items": [...]} or a bare JSON array of intervals.
	FormatIntervals
	// FormatAudit is line-delimited audit events.
	FormatAudit
)

func (f Format) String() string {
	switch f {
	case FormatIntervals:
		return "intervals"
	case FormatAudit:
		return "audit"
	}
	return "unknown"
}

// ErrUnknownFormat is returned when the input is neither an interval
// document nor an audit log.
var ErrUnknownFormat = errors.New("unrecognized input format")

// disruptionEnded records only close a disruption already drawn elsewhere.
const disruptionEnded = "DisruptionEnded"

// auditSpan is the width given to audit events, which are instants.
const auditSpan = time.Second

// Sniff inspects the start of data to pick a decoder.
func Sniff(data []byte) Format {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return FormatUnknown
	}
	switch data[0] {
	case '[':
		return FormatIntervals
	case '{':
	default:
		return FormatUnknown
	}

	var head map[string]json.RawMessage
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&head); err != nil {
		return FormatUnknown
	}
	if _, ok := head["items"]; ok {
		return FormatIntervals
	}
	if _, ok := head["requestReceivedTimestamp"]; ok {
		return FormatAudit
	}
	return FormatUnknown
}

// Decode reads the whole stream, detects its format and returns one batch.
// Records with a DisruptionEnded reason are dropped. Records and audit
// lines that cannot be decoded are skipped and logged.
func Decode(r io.Reader, source string, log *slog.Logger) (engine.Batch, error) {
	if log == nil {
		log = slog.Default()
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return engine.Batch{}, fmt.Errorf("read %s: %w", source, err)
	}

	b := engine.Batch{ID: uuid.NewString(), Source: source}
	format := Sniff(data)
	switch format {
	case FormatIntervals:
		b.Schema = model.IntervalSchema
		b.Records, err = decodeIntervals(data, b.ID, source, log)
	case FormatAudit:
		b.Schema = model.AuditSchema
		b.Records = decodeAudit(data, b.ID, source, log)
	default:
		return engine.Batch{}, fmt.Errorf("%s: %w", source, ErrUnknownFormat)
	}
	if err != nil {
		return engine.Batch{}, fmt.Errorf("decode %s: %w", source, err)
	}

	kept := b.Records[:0]
	for i, rec := range b.Records {
		if rec.Message.Reason == disruptionEnded {
			log.Debug("skipping record", "batch", b.ID, "source", source, "index", i, "reason", disruptionEnded)
			continue
		}
		kept = append(kept, rec)
	}
	b.Records = kept

	log.Info("decoded batch", "batch", b.ID, "source", source, "format", format.String(), "records", len(b.Records))
	return b, nil
}

// decodeIntervals accepts {"items": [...]} or a bare array. Elements are
// decoded one by one so a single bad record does not sink the document.
func decodeIntervals(data []byte, batch, source string, log *slog.Logger) ([]model.RawRecord, error) {
	data = bytes.TrimSpace(data)
	var items []json.RawMessage
	if data[0] == '[' {
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, err
		}
	} else {
		var doc struct {
			Items []json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		items = doc.Items
	}

	recs := make([]model.RawRecord, 0, len(items))
	for i, raw := range items {
		var rec model.RawRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			log.Warn("skipping malformed record", "batch", batch, "source", source, "index", i, "err", err)
			continue
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

type auditEvent struct {
	Kind                     string `json:"kind"`
	AuditID                  string `json:"auditID"`
	Verb                     string `json:"verb"`
	RequestURI               string `json:"requestURI"`
	RequestReceivedTimestamp string `json:"requestReceivedTimestamp"`
}

func (e auditEvent) record() model.RawRecord {
	rec := model.RawRecord{
		Source: e.Kind,
		Locator: model.Locator{
			Raw: e.RequestURI,
			Keys: map[string]string{
				"requestURI": e.RequestURI,
				"auditID":    e.AuditID,
				"verb":       e.Verb,
			},
		},
		From: e.RequestReceivedTimestamp,
	}
	// A bad timestamp is left for the engine to reject with attribution.
	if from, err := util.ParseTime(e.RequestReceivedTimestamp); err == nil {
		rec.To = from.Add(auditSpan).Format(time.RFC3339Nano)
	}
	return rec
}

func decodeAudit(data []byte, batch, source string, log *slog.Logger) []model.RawRecord {
	var recs []model.RawRecord
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024) // 1MB line limit
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var e auditEvent
		if err := json.Unmarshal(raw, &e); err != nil {
			log.Warn("skipping malformed audit line", "batch", batch, "source", source, "line", line, "err", err)
			continue
		}
		recs = append(recs, e.record())
	}
	if err := scanner.Err(); err != nil {
		log.Warn("audit log truncated", "batch", batch, "source", source, "line", line, "err", err)
	}
	return recs
}
