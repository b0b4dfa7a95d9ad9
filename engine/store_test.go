package engine

import (
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"github.com/ftahirops/xtimeline/filter"
	"github.com/ftahirops/xtimeline/model"
)

func quietStore() *Store {
	return NewStore().WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func classified(cat model.Category, class, locator string, from, to time.Time) *model.Interval {
	iv := &model.Interval{Locator: model.Locator{Raw: locator}, From: from, To: to}
	iv.Classify(model.Classification{Name: class, Category: cat})
	return iv
}

func assertSorted(t *testing.T, ivs []*model.Interval) {
	t.Helper()
	for i := 1; i < len(ivs); i++ {
		if model.Compare(ivs[i-1], ivs[i]) > 0 {
			t.Fatalf("store out of order at %d: %s/%s@%v after %s/%s@%v", i,
				ivs[i].Category, ivs[i].TimelineKey, ivs[i].From,
				ivs[i-1].Category, ivs[i-1].TimelineKey, ivs[i-1].From)
		}
	}
}

func TestStoreAppendKeepsGlobalOrder(t *testing.T) {
	s := quietStore()
	rng := rand.New(rand.NewSource(1))
	cats := []model.Category{model.CategoryPod, model.CategoryAlert, model.CategoryE2ETest}
	for batch := 0; batch < 5; batch++ {
		var ivs []*model.Interval
		for i := 0; i < 200; i++ {
			from := t0.Add(time.Duration(rng.Intn(3600)) * time.Second)
			ivs = append(ivs, classified(cats[rng.Intn(len(cats))], "X",
				string(rune('a'+rng.Intn(5))), from, from.Add(time.Second)))
		}
		if n := s.Append("b", ivs); n != 200 {
			t.Fatalf("Append kept %d, want 200", n)
		}
		assertSorted(t, s.All())
	}
	if s.Len() != 1000 || len(s.Selected()) != 1000 {
		t.Errorf("Len = %d, Selected = %d", s.Len(), len(s.Selected()))
	}
}

func TestStoreStableOnTies(t *testing.T) {
	s := quietStore()
	first := classified(model.CategoryPod, "A", "pod/a", t0, t0)
	second := classified(model.CategoryPod, "B", "pod/a", t0, t0)
	s.Append("1", []*model.Interval{first})
	s.Append("2", []*model.Interval{second})
	if s.All()[0] != first || s.All()[1] != second {
		t.Error("equal keys should keep append order")
	}
}

func TestStoreDerivesFieldsAndDropsMalformed(t *testing.T) {
	s := quietStore()
	good := classified(model.CategoryPod, "ContainerReady", "", t0, t0.Add(90*time.Second))
	good.Locator = model.Locator{Keys: map[string]string{"pod": "a"}}
	good.Classification.TimelineDifferentiator = "container-readiness"
	ivs := []*model.Interval{good, nil, {Source: "no-from"}}
	if n := s.Append("b", ivs); n != 1 {
		t.Fatalf("kept %d, want 1", n)
	}
	if good.Duration != 90 || good.TimelineKey != "pod/a container-readiness" {
		t.Errorf("derived fields: duration %v key %q", good.Duration, good.TimelineKey)
	}
}

func TestStoreBounds(t *testing.T) {
	s := quietStore()
	if _, ok := s.Bounds(); ok {
		t.Fatal("empty store has bounds")
	}
	s.Append("b", []*model.Interval{
		classified(model.CategoryPod, "X", "a", t0.Add(90*time.Second), t0.Add(100*time.Second)),
		classified(model.CategoryAlert, "Y", "b", t0.Add(5*time.Minute+time.Second), t0.Add(7*time.Minute+30*time.Second)),
	})
	w, ok := s.Bounds()
	if !ok {
		t.Fatal("no bounds")
	}
	if !w.Start.Equal(t0.Add(time.Minute)) || !w.Stop.Equal(t0.Add(8*time.Minute)) {
		t.Errorf("bounds = %+v", w)
	}

	single := quietStore()
	single.Append("b", []*model.Interval{classified(model.CategoryPod, "X", "a", t0, t0)})
	w, _ = single.Bounds()
	if w.Span() != time.Minute {
		t.Errorf("degenerate bounds span = %v, want 1m", w.Span())
	}
}

func TestStoreFilter(t *testing.T) {
	s := quietStore()
	s.Append("b", []*model.Interval{
		classified(model.CategoryPod, "PodCreated", "a", t0, t0),
		classified(model.CategoryPod, "ContainerReadinessFailed", "a", t0.Add(time.Second), t0.Add(time.Second)),
		classified(model.CategoryAlert, "AlertCritical", "", t0, t0),
	})

	all, err := s.Query("")
	if err != nil || len(all) != 3 {
		t.Fatalf("Query(\"\") = %d, %v", len(all), err)
	}
	if err := s.SetFilter(`category contains "pod" & not (classification contains "failed")`); err != nil {
		t.Fatalf("SetFilter: %v", err)
	}
	if len(s.Selected()) != 1 || s.Selected()[0].Classification.Name != "PodCreated" {
		t.Fatalf("Selected = %v", s.Selected())
	}

	err = s.SetFilter(`category contains (`)
	var se *filter.SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *filter.SyntaxError", err)
	}
	if len(s.Selected()) != 1 || !s.Filtered() {
		t.Error("failed SetFilter changed the view")
	}

	s.Append("c", []*model.Interval{classified(model.CategoryPod, "PodScheduled", "b", t0, t0)})
	if len(s.Selected()) != 2 {
		t.Errorf("filter not re-applied on append: %d selected", len(s.Selected()))
	}

	got, err := s.Query("category == Alert")
	if err != nil || len(got) != 1 {
		t.Errorf("Query = %d, %v", len(got), err)
	}
	if len(s.Selected()) != 2 {
		t.Error("Query changed the applied filter")
	}
}
