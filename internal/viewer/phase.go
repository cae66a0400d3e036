package viewer

import (
	"context"

	"github.com/treykane/cli-pdf/internal/pagecache"
)

// PhaseKind names the lifecycle phase of a viewer.
type PhaseKind int

const (
	PhaseUnmeasured PhaseKind = iota
	PhaseMeasured
	PhaseCaching
	PhaseReady
	PhaseFailed
)

func (k PhaseKind) String() string {
	switch k {
	case PhaseUnmeasured:
		return "unmeasured"
	case PhaseMeasured:
		return "measured"
	case PhaseCaching:
		return "caching"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// token identifies one asynchronous request. A result is applied only while
// its token is current and its context has not been cancelled.
type token struct {
	id  uint64
	ctx context.Context
}

func (t token) live() bool {
	return t.ctx != nil && t.ctx.Err() == nil
}

type phase interface {
	kind() PhaseKind
}

type phaseUnmeasured struct{}

// phaseMeasured means bounds are known and the document load is in flight.
type phaseMeasured struct {
	bounds Bounds
}

type phaseCaching struct {
	bounds   Bounds
	numPages int
	token    token
}

type phaseReady struct {
	bounds   Bounds
	numPages int
	dims     pagecache.Dimensions
}

type phaseFailed struct {
	bounds Bounds
	err    error
}

func (phaseUnmeasured) kind() PhaseKind { return PhaseUnmeasured }
func (phaseMeasured) kind() PhaseKind   { return PhaseMeasured }
func (phaseCaching) kind() PhaseKind    { return PhaseCaching }
func (phaseReady) kind() PhaseKind      { return PhaseReady }
func (phaseFailed) kind() PhaseKind     { return PhaseFailed }

type event interface {
	isEvent()
}

type measuredEvent struct {
	bounds Bounds
}

type documentLoadedEvent struct {
	numPages int
	token    token
}

type dimensionsCachedEvent struct {
	token token
	dims  pagecache.Dimensions
}

type failedEvent struct {
	err error
}

func (measuredEvent) isEvent()         {}
func (documentLoadedEvent) isEvent()   {}
func (dimensionsCachedEvent) isEvent() {}
func (failedEvent) isEvent()           {}

// transition is the whole lifecycle. Events that do not apply to the current
// phase leave it unchanged.
func transition(p phase, e event) phase {
	switch e := e.(type) {
	case measuredEvent:
		switch p := p.(type) {
		case phaseUnmeasured, phaseMeasured:
			return phaseMeasured{bounds: e.bounds}
		case phaseCaching:
			p.bounds = e.bounds
			return p
		case phaseReady:
			p.bounds = e.bounds
			return p
		case phaseFailed:
			p.bounds = e.bounds
			return p
		}

	case documentLoadedEvent:
		if p, ok := p.(phaseMeasured); ok {
			return phaseCaching{bounds: p.bounds, numPages: e.numPages, token: e.token}
		}

	case dimensionsCachedEvent:
		if p, ok := p.(phaseCaching); ok && p.token.id == e.token.id && e.token.live() {
			return phaseReady{bounds: p.bounds, numPages: p.numPages, dims: e.dims}
		}

	case failedEvent:
		switch p := p.(type) {
		case phaseMeasured:
			return phaseFailed{bounds: p.bounds, err: e.err}
		case phaseCaching:
			return phaseFailed{bounds: p.bounds, err: e.err}
		}
	}
	return p
}

// boundsOf returns the measured bounds, if any.
func boundsOf(p phase) (Bounds, bool) {
	switch p := p.(type) {
	case phaseMeasured:
		return p.bounds, true
	case phaseCaching:
		return p.bounds, true
	case phaseReady:
		return p.bounds, true
	case phaseFailed:
		return p.bounds, true
	}
	return Bounds{}, false
}
