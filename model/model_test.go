package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestRawRecordStructured(t *testing.T) {
	doc := `{
		"source": "PodState",
		"locator": {"type": "Container", "keys": {"pod": "etcd-0", "namespace": "openshift-etcd", "container": "etcd"}},
		"message": {"reason": "Ready", "humanMessage": "container is ready", "annotations": {"phase": "Running"}},
		"from": "2024-03-01T10:00:00Z",
		"to": "2024-03-01T10:00:30Z"
	}`
	var r RawRecord
	if err := json.Unmarshal([]byte(doc), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r.Source != "PodState" {
		t.Errorf("Source = %q", r.Source)
	}
	if got, want := r.Locator.String(), "namespace/openshift-etcd pod/etcd-0 container/etcd"; got != want {
		t.Errorf("Locator = %q, want %q", got, want)
	}
	iv, err := r.ToInterval(0)
	if err != nil {
		t.Fatalf("ToInterval: %v", err)
	}
	iv.Derive()
	if iv.Duration != 30 {
		t.Errorf("Duration = %v, want 30", iv.Duration)
	}
	if iv.MessageText() != "container is ready" {
		t.Errorf("MessageText = %q", iv.MessageText())
	}
}

func TestRawRecordLegacyStrings(t *testing.T) {
	doc := `{
		"source": "ignored",
		"tempSource": "KubeEvent",
		"locator": "ns/openshift-etcd pod/etcd-0",
		"tempStructuredLocator": {"type": "Pod", "keys": {"pod": "etcd-0"}},
		"message": "reason/BackOff Back-off restarting",
		"tempStructuredMessage": {"annotations": {"reason": "BackOff", "interesting": "true"}},
		"from": "2024-03-01T10:00:00Z"
	}`
	var r RawRecord
	if err := json.Unmarshal([]byte(doc), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r.Source != "KubeEvent" {
		t.Errorf("tempSource should win, got %q", r.Source)
	}
	if r.Locator.Raw != "ns/openshift-etcd pod/etcd-0" || r.Locator.Type != "Pod" {
		t.Errorf("Locator = %+v", r.Locator)
	}
	iv, err := r.ToInterval(3)
	if err != nil {
		t.Fatalf("ToInterval: %v", err)
	}
	if iv.Message.Reason != "BackOff" {
		t.Errorf("reason fallback = %q, want BackOff", iv.Message.Reason)
	}
	if !iv.To.Equal(iv.From) {
		t.Errorf("to should default to from, got %v", iv.To)
	}
	if iv.MessageText() != "reason/BackOff Back-off restarting" {
		t.Errorf("MessageText = %q", iv.MessageText())
	}
}

func TestToIntervalMalformed(t *testing.T) {
	tests := []struct {
		name string
		rec  RawRecord
	}{
		{"missing from", RawRecord{Source: "Alert"}},
		{"bad from", RawRecord{From: "not-a-time"}},
		{"bad to", RawRecord{From: "2024-03-01T10:00:00Z", To: "later"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.rec.ToInterval(7)
			var mre *MalformedRecordError
			if !errors.As(err, &mre) {
				t.Fatalf("err = %v, want *MalformedRecordError", err)
			}
			if mre.Index != 7 {
				t.Errorf("Index = %d, want 7", mre.Index)
			}
		})
	}
}

func TestDeriveTimelineKey(t *testing.T) {
	from := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	iv := &Interval{
		Locator: Locator{Keys: map[string]string{"pod": "a"}},
		From:    from,
		To:      from.Add(-time.Second),
	}
	iv.Classify(Classification{Name: "ContainerReady", Category: CategoryPod, TimelineDifferentiator: "container-readiness"})
	iv.Derive()
	if iv.Duration != 0 {
		t.Errorf("negative span should clamp to 0, got %v", iv.Duration)
	}
	if iv.TimelineKey != "pod/a container-readiness" {
		t.Errorf("TimelineKey = %q", iv.TimelineKey)
	}
	if got := iv.Key(); got != (GroupKey{Category: CategoryPod, TimelineKey: "pod/a container-readiness"}) {
		t.Errorf("Key = %+v", got)
	}
}

func TestCompare(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	a := &Interval{Category: CategoryAlert, TimelineKey: "z", From: t0.Add(time.Hour)}
	b := &Interval{Category: CategoryPod, TimelineKey: "a", From: t0}
	c := &Interval{Category: CategoryPod, TimelineKey: "a", From: t0.Add(time.Second)}
	if Compare(a, b) >= 0 || Compare(b, c) >= 0 || Compare(c, c) != 0 {
		t.Errorf("unexpected ordering")
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    Color
		wantErr bool
	}{
		{"#d0312d", Color{0xd0, 0x31, 0x2d, 0xff}, false},
		{"3cb04380", Color{0x3c, 0xb0, 0x43, 0x80}, false},
		{"#fff", Color{}, true},
		{"#gggggg", Color{}, true},
	}
	for _, tt := range tests {
		got, err := ParseHexColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseHexColor(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseHexColor(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
	if got := MustHex("#D0312D").Hex(); got != "#d0312d" {
		t.Errorf("Hex = %q", got)
	}
}

func TestSchema(t *testing.T) {
	if !IntervalSchema.Has(AttrAnnotations | AttrReason) {
		t.Error("interval schema should carry annotations and reason")
	}
	if AuditSchema.Has(AttrAnnotations) {
		t.Error("audit schema should not carry annotations")
	}
	if got := AuditSchema.Missing(AttrSource | AttrReason | AttrLocatorType); got != AttrReason|AttrLocatorType {
		t.Errorf("Missing = %v", got)
	}
	if got := (AttrSource | AttrMessage).String(); got != "source,message" {
		t.Errorf("String = %q", got)
	}
}

func TestParseCategory(t *testing.T) {
	if c, err := ParseCategory("e2etest"); err != nil || c != CategoryE2ETest {
		t.Errorf("ParseCategory = %v, %v", c, err)
	}
	if _, err := ParseCategory("bogus"); err == nil {
		t.Error("expected error")
	}
}
