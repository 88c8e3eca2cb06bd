package tracking

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"chime.click/internal/events"
)

// fakeResolver resolves paths present in its map and fails everything else
type fakeResolver struct {
	resources map[string]string
}

func (r *fakeResolver) ResolveSound(relativePath string) (string, error) {
	if resource, ok := r.resources[relativePath]; ok {
		return resource, nil
	}
	return "", fmt.Errorf("not found: %s", relativePath)
}

type hookCall struct {
	path     string
	exists   bool
	sequence int
}

func recordingHook(calls *[]hookCall) PathCheckedHook {
	return func(path string, exists bool, sequence int, event *events.InteractionEvent) {
		*calls = append(*calls, hookCall{path: path, exists: exists, sequence: sequence})
	}
}

func TestSoundCheckerResolve(t *testing.T) {
	resolver := &fakeResolver{resources: map[string]string{
		"click.wav":   "/theme/click.wav",
		"default.wav": "/theme/default.wav",
	}}
	event := &events.InteractionEvent{Event: "click", Element: "save"}

	t.Run("first existing path wins", func(t *testing.T) {
		checker := NewSoundChecker(resolver)
		selected, found := checker.Resolve(event, []string{
			"click/save.wav",
			"click.wav",
			"default.wav",
		})
		assert.True(t, found)
		assert.Equal(t, "/theme/click.wav", selected)
	})

	t.Run("nothing resolves", func(t *testing.T) {
		checker := NewSoundChecker(resolver)
		selected, found := checker.Resolve(event, []string{"a.wav", "b.wav"})
		assert.False(t, found)
		assert.Empty(t, selected)
	})

	t.Run("empty chain", func(t *testing.T) {
		checker := NewSoundChecker(resolver)
		selected, found := checker.Resolve(event, nil)
		assert.False(t, found)
		assert.Empty(t, selected)
	})
}

func TestSoundCheckerHooks(t *testing.T) {
	resolver := &fakeResolver{resources: map[string]string{
		"click.wav": "/theme/click.wav",
	}}
	event := &events.InteractionEvent{Event: "click"}

	t.Run("every path reported with 1-based sequence", func(t *testing.T) {
		var calls []hookCall
		checker := NewSoundChecker(resolver, WithHook(recordingHook(&calls)))

		checker.Resolve(event, []string{"click/save.wav", "click.wav", "default.wav"})

		assert.Len(t, calls, 3)
		assert.Equal(t, hookCall{path: "click/save.wav", exists: false, sequence: 1}, calls[0])
		// Existing paths are reported as the resolved resource
		assert.Equal(t, hookCall{path: "/theme/click.wav", exists: true, sequence: 2}, calls[1])
		assert.Equal(t, hookCall{path: "default.wav", exists: false, sequence: 3}, calls[2])
	})

	t.Run("multiple hooks all fire", func(t *testing.T) {
		var first, second []hookCall
		checker := NewSoundChecker(resolver,
			WithHook(recordingHook(&first)),
			WithHook(recordingHook(&second)))

		checker.Resolve(event, []string{"click.wav"})

		assert.Len(t, first, 1)
		assert.Len(t, second, 1)
	})

	t.Run("chain keeps walking after a match", func(t *testing.T) {
		var calls []hookCall
		checker := NewSoundChecker(resolver, WithHook(recordingHook(&calls)))

		selected, found := checker.Resolve(event, []string{"click.wav", "default.wav"})

		assert.True(t, found)
		assert.Equal(t, "/theme/click.wav", selected)
		// The losing path is still reported so missing-sound stats stay complete
		assert.Len(t, calls, 2)
	})
}

func TestNopHook(t *testing.T) {
	hook := NewNopHook().GetHook()
	assert.NotPanics(t, func() {
		hook("a.wav", false, 1, &events.InteractionEvent{Event: "click"})
	})
}

func TestSlogHookDefaultLogger(t *testing.T) {
	hook := NewSlogHook(nil).GetHook()
	assert.NotPanics(t, func() {
		hook("a.wav", true, 1, &events.InteractionEvent{Event: "click"})
	})
}
