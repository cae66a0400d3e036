package viewer

import (
	"context"
	"errors"
	"testing"

	"github.com/treykane/cli-pdf/internal/pagecache"
)

func TestTransition(t *testing.T) {
	live := token{id: 1, ctx: context.Background()}
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	dead := token{id: 1, ctx: cancelled}
	other := token{id: 2, ctx: context.Background()}
	b := Bounds{Width: 640, Height: 320}
	boom := errors.New("boom")

	tests := []struct {
		name  string
		from  phase
		event event
		want  PhaseKind
	}{
		{"measure on mount", phaseUnmeasured{}, measuredEvent{bounds: b}, PhaseMeasured},
		{"load before measure is ignored", phaseUnmeasured{}, documentLoadedEvent{numPages: 3, token: live}, PhaseUnmeasured},
		{"load starts caching", phaseMeasured{bounds: b}, documentLoadedEvent{numPages: 3, token: live}, PhaseCaching},
		{"cached with current token", phaseCaching{bounds: b, numPages: 3, token: live}, dimensionsCachedEvent{token: live}, PhaseReady},
		{"cached with other token", phaseCaching{bounds: b, numPages: 3, token: live}, dimensionsCachedEvent{token: other}, PhaseCaching},
		{"cached after cancellation", phaseCaching{bounds: b, numPages: 3, token: dead}, dimensionsCachedEvent{token: dead}, PhaseCaching},
		{"load failure", phaseMeasured{bounds: b}, failedEvent{err: boom}, PhaseFailed},
		{"dimension failure", phaseCaching{bounds: b, token: live}, failedEvent{err: boom}, PhaseFailed},
		{"failure after ready is ignored", phaseReady{bounds: b}, failedEvent{err: boom}, PhaseReady},
		{"failed is terminal", phaseFailed{bounds: b, err: boom}, documentLoadedEvent{token: live}, PhaseFailed},
		{"remeasure keeps ready", phaseReady{bounds: b}, measuredEvent{bounds: Bounds{Width: 1}}, PhaseReady},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := transition(tc.from, tc.event).kind(); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestTransitionUpdatesBoundsInPlace(t *testing.T) {
	dims, err := pagecache.Populate(context.Background(), 0, 0, nil)
	if err != nil {
		t.Fatalf("populate: %v", err)
	}
	from := phaseReady{bounds: Bounds{Width: 10, Height: 10}, numPages: 0, dims: dims}
	next := transition(from, measuredEvent{bounds: Bounds{Width: 20, Height: 30}})

	got, ok := boundsOf(next)
	if !ok || got != (Bounds{Width: 20, Height: 30}) {
		t.Fatalf("expected updated bounds, got %+v", got)
	}
	if _, ok := boundsOf(phaseUnmeasured{}); ok {
		t.Fatal("expected no bounds before measurement")
	}
}
