package analysis

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastionlabs/vulnsync/pkg/component"
)

type fakeAnalyzer struct {
	name     string
	capable  func(component.Component) bool
	err      error
	mu       sync.Mutex
	received []Request
}

func (f *fakeAnalyzer) Identity() string { return f.name }

func (f *fakeAnalyzer) IsCapable(c component.Component) bool { return f.capable(c) }

func (f *fakeAnalyzer) ShouldAnalyze(c component.Component) bool {
	return !c.Internal && f.capable(c)
}

func (f *fakeAnalyzer) Analyze(request Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.received = append(f.received, request)
	return f.err
}

func TestCoordinator_Process_RoutesBySubset(t *testing.T) {
	purlAnalyzer := &fakeAnalyzer{
		name:    "purl",
		capable: func(c component.Component) bool { return c.Purl != "" },
	}
	cpeAnalyzer := &fakeAnalyzer{
		name:    "cpe",
		capable: func(c component.Component) bool { return c.Cpe != "" },
	}

	withPurl := component.Component{Name: "a", Purl: "pkg:npm/a@1.0"}
	withCpe := component.Component{Name: "b", Cpe: "cpe:2.3:a:acme:b:1.0:*:*:*:*:*:*:*"}
	internal := component.Component{Name: "c", Purl: "pkg:npm/c@1.0", Internal: true}

	c := NewCoordinator(purlAnalyzer, cpeAnalyzer)
	require.NoError(t, c.Process(Request{
		Components: []component.Component{withPurl, withCpe, internal},
		Level:      LevelOnUpload,
	}))

	require.Len(t, purlAnalyzer.received, 1)
	assert.Equal(t, []component.Component{withPurl}, purlAnalyzer.received[0].Components)
	assert.Equal(t, LevelOnUpload, purlAnalyzer.received[0].Level)

	require.Len(t, cpeAnalyzer.received, 1)
	assert.Equal(t, []component.Component{withCpe}, cpeAnalyzer.received[0].Components)
}

func TestCoordinator_Process_EmptySubsetSkipsAnalyzer(t *testing.T) {
	analyzer := &fakeAnalyzer{
		name:    "cpe",
		capable: func(c component.Component) bool { return c.Cpe != "" },
	}

	c := NewCoordinator(analyzer)
	require.NoError(t, c.Process(Request{
		Components: []component.Component{{Name: "a", Purl: "pkg:npm/a@1.0"}},
	}))
	assert.Empty(t, analyzer.received)
}

func TestCoordinator_Process_PropagatesFailure(t *testing.T) {
	boom := errors.New("service down")
	failing := &fakeAnalyzer{
		name:    "failing",
		capable: func(component.Component) bool { return true },
		err:     boom,
	}
	healthy := &fakeAnalyzer{
		name:    "healthy",
		capable: func(component.Component) bool { return true },
	}

	c := NewCoordinator(failing, healthy)
	err := c.Process(Request{Components: []component.Component{{Name: "a", Purl: "pkg:npm/a@1.0"}}})
	require.ErrorIs(t, err, boom)

	// the healthy analyzer still ran to completion
	assert.Len(t, healthy.received, 1)
}
