package classify

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/ftahirops/xtimeline/model"
)

func iv(source string, opts ...func(*model.Interval)) *model.Interval {
	i := &model.Interval{Source: source}
	for _, o := range opts {
		o(i)
	}
	return i
}

func withReason(r string) func(*model.Interval) {
	return func(i *model.Interval) { i.Message.Reason = r }
}

func withKeys(kv ...string) func(*model.Interval) {
	return func(i *model.Interval) {
		i.Locator.Keys = map[string]string{}
		for j := 0; j+1 < len(kv); j += 2 {
			i.Locator.Keys[kv[j]] = kv[j+1]
		}
	}
}

func withAnnotations(kv ...string) func(*model.Interval) {
	return func(i *model.Interval) {
		i.Message.Annotations = map[string]string{}
		for j := 0; j+1 < len(kv); j += 2 {
			i.Message.Annotations[kv[j]] = kv[j+1]
		}
	}
}

func withType(t string) func(*model.Interval) {
	return func(i *model.Interval) { i.Locator.Type = t }
}

func withText(s string) func(*model.Interval) {
	return func(i *model.Interval) { i.Text = s }
}

func TestDefaultRules(t *testing.T) {
	e := Default()
	tests := []struct {
		name     string
		in       *model.Interval
		wantName string
		wantCat  model.Category
		wantDiff string
	}{
		{"pod created", iv("PodState", withReason("Created"), withKeys("pod", "a")), "PodCreated", model.CategoryPod, ""},
		{"pod ready without container", iv("PodState", withReason("Ready"), withKeys("pod", "a")), "PodStateOther", model.CategoryPod, ""},
		{"container ready", iv("PodState", withReason("Ready"), withKeys("pod", "a", "container", "c")), "ContainerReady", model.CategoryPod, "container-readiness"},
		{"container start", iv("PodState", withReason("ContainerStart"), withKeys("pod", "a", "container", "c")), "ContainerStart", model.CategoryPod, "container-lifecycle"},
		{"alert critical", iv("Alert", withAnnotations("severity", "critical")), "AlertCritical", model.CategoryAlert, ""},
		{"alert severity case-insensitive", iv("Alert", withAnnotations("severity", "WARNING")), "AlertWarning", model.CategoryAlert, ""},
		{"pending wins over severity", iv("Alert", withAnnotations("pending", "true", "severity", "critical")), "AlertPending", model.CategoryAlert, ""},
		{"pathological known", iv("KubeEvent", withAnnotations("interesting", "true", "pathological", "true")), "PathologicalKnown", model.CategoryKubeEvent, ""},
		{"pathological new", iv("KubeEvent", withAnnotations("pathological", "true")), "PathologicalNew", model.CategoryKubeEvent, ""},
		{"operator needs both pairs", iv("OperatorState", withAnnotations("condition", "Available", "status", "true")), "Unknown", model.CategoryUnclassified, ""},
		{"operator unavailable", iv("OperatorState", withAnnotations("condition", "Available", "status", "False")), "OperatorUnavailable", model.CategoryOperatorState, ""},
		{"node drain", iv("NodeState", withType("Node"), withAnnotations("phase", "Drain")), "NodeDrain", model.CategoryNodeState, ""},
		{"test failed", iv("E2ETest", withAnnotations("status", "Failed")), "TestFailed", model.CategoryE2ETest, ""},
		{"ci disruption", iv("Disruption", withText("this is likely a problem in cluster running tests")), "CIClusterDisruption", model.CategoryDisruption, ""},
		{"disruption", iv("Disruption"), "Disruption", model.CategoryDisruption, ""},
		{"cluster degraded", iv("ClusterState", withAnnotations("condition", "Degraded")), "Degraded", model.CategoryClusterState, ""},
		{"etcd log", iv("EtcdLog", withAnnotations("severity", "error")), "PodLogError", model.CategoryPodLog, ""},
		{"kubelet", iv("KubeletLog"), "KubeletLog", model.CategoryKubeletLog, ""},
		{"unknown", iv("Mystery"), "Unknown", model.CategoryUnclassified, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Classify(tt.in)
			if got.Name != tt.wantName || got.Category != tt.wantCat {
				t.Errorf("Classify = %s/%s, want %s/%s", got.Category, got.Name, tt.wantCat, tt.wantName)
			}
			if got.TimelineDifferentiator != tt.wantDiff {
				t.Errorf("differentiator = %q, want %q", got.TimelineDifferentiator, tt.wantDiff)
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	e := Default()
	in := iv("Alert", withAnnotations("severity", "critical"))
	first := e.Classify(in)
	for i := 0; i < 10; i++ {
		if got := e.Classify(in); got != first {
			t.Fatalf("call %d: %+v != %+v", i, got, first)
		}
	}
	if in.Category != "" {
		t.Errorf("Classify mutated interval: %q", in.Category)
	}
}

func TestFirstMatchWins(t *testing.T) {
	a := rule("A", model.CategoryAlert, model.Gray, Matcher{Source: src("X")})
	b := rule("B", model.CategoryPod, model.Gray, Matcher{Source: src("X")})
	if got := New(a, b).Classify(iv("X")); got.Name != "A" {
		t.Errorf("got %s, want A", got.Name)
	}
	if got := New(b, a).Classify(iv("X")); got.Name != "B" {
		t.Errorf("got %s, want B", got.Name)
	}
	if got := New(a).Classify(iv("Y")); got.Name != "Unknown" {
		t.Errorf("catch-all not appended, got %s", got.Name)
	}
}

func TestZeroMatcherMatchesAll(t *testing.T) {
	var m Matcher
	if !m.Match(iv("")) || m.Requires() != 0 {
		t.Error("zero matcher should match everything and require nothing")
	}
}

func TestClassifyBatchSchemaWarnings(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	e := New(
		rule("ByAnnotation", model.CategoryAlert, model.Gray, Matcher{
			Source:           src("Event"),
			AnnotationsMatch: map[string]string{"severity": "critical"},
		}),
		rule("BySource", model.CategoryKubeEvent, model.Gray, Matcher{Source: src("Event")}),
	).WithLogger(logger)

	ivs := []*model.Interval{
		iv("Event", withAnnotations("severity", "critical")),
		iv("Other"),
	}
	warnings := e.ClassifyBatch("batch-1", ivs, model.AuditSchema)
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want 1", warnings)
	}
	if warnings[0].Rule != "ByAnnotation" || warnings[0].Missing != model.AttrAnnotations {
		t.Errorf("warning = %+v", warnings[0])
	}
	if ivs[0].Classification.Name != "BySource" {
		t.Errorf("skipped rule still matched: %s", ivs[0].Classification.Name)
	}
	if ivs[1].Category != model.CategoryUnclassified {
		t.Errorf("category = %s", ivs[1].Category)
	}
	if !strings.Contains(buf.String(), "batch=batch-1") {
		t.Errorf("warning not attributed to batch: %s", buf.String())
	}

	if w := e.ClassifyBatch("batch-2", ivs, model.IntervalSchema); len(w) != 0 {
		t.Errorf("full schema produced warnings: %v", w)
	}
	if ivs[0].Classification.Name != "ByAnnotation" {
		t.Errorf("got %s, want ByAnnotation", ivs[0].Classification.Name)
	}
}

func TestParseRules(t *testing.T) {
	doc := `
rules:
  - name: IngressDown
    category: disruption
    color: "#ff00ff"
    timeline: ingress
    match:
      source: [Disruption]
      locator_keys_match:
        backend-disruption-name: ingress-to-console
`
	rules, err := ParseRules([]byte(doc))
	if err != nil {
		t.Fatalf("ParseRules: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("len = %d", len(rules))
	}
	r := rules[0]
	if r.Classification.Category != model.CategoryDisruption || r.Classification.Color.Hex() != "#ff00ff" {
		t.Errorf("classification = %+v", r.Classification)
	}

	e := Default(rules...)
	got := e.Classify(iv("Disruption", withKeys("backend-disruption-name", "Ingress-To-Console")))
	if got.Name != "IngressDown" || got.TimelineDifferentiator != "ingress" {
		t.Errorf("user rule not evaluated first: %+v", got)
	}
}

func TestParseRulesErrors(t *testing.T) {
	tests := map[string]string{
		"bad yaml":     "rules: [",
		"no name":      "rules:\n  - category: Pod\n",
		"bad category": "rules:\n  - name: X\n    category: Nope\n",
		"bad color":    "rules:\n  - name: X\n    category: Pod\n    color: red\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseRules([]byte(doc)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
