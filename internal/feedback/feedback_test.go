package feedback

import "testing"

type countingTriggerer struct {
	triggers int
}

func (c *countingTriggerer) Trigger() { c.triggers++ }

func TestCompose(t *testing.T) {
	t.Run("both nil yields nil", func(t *testing.T) {
		if Compose(nil, nil) != nil {
			t.Error("Compose(nil, nil) should be nil")
		}
	})

	t.Run("nil injected passes existing through", func(t *testing.T) {
		calls := 0
		existing := func(Event) { calls++ }
		handler := Compose(nil, existing)
		handler(Event{})
		if calls != 1 {
			t.Errorf("existing handler called %d times, want 1", calls)
		}
	})

	t.Run("nil existing passes injected through", func(t *testing.T) {
		calls := 0
		injected := func(Event) { calls++ }
		handler := Compose(injected, nil)
		handler(Event{})
		if calls != 1 {
			t.Errorf("injected handler called %d times, want 1", calls)
		}
	})

	t.Run("injected runs before existing", func(t *testing.T) {
		var order []string
		handler := Compose(
			func(Event) { order = append(order, "injected") },
			func(Event) { order = append(order, "existing") },
		)
		handler(Event{})
		if len(order) != 2 || order[0] != "injected" || order[1] != "existing" {
			t.Errorf("call order = %v, want [injected existing]", order)
		}
	})

	t.Run("event is forwarded to both", func(t *testing.T) {
		want := Event{Kind: "click", Element: "save", Hint: "soft"}
		handler := Compose(
			func(ev Event) {
				if ev != want {
					t.Errorf("injected received %+v, want %+v", ev, want)
				}
			},
			func(ev Event) {
				if ev != want {
					t.Errorf("existing received %+v, want %+v", ev, want)
				}
			},
		)
		handler(want)
	})
}

func TestWrapperOnClick(t *testing.T) {
	click := &countingTriggerer{}
	wrapper := NewWrapper(click, nil)

	existingCalls := 0
	handler := wrapper.OnClick(func(Event) { existingCalls++ })

	handler(Event{Kind: "click", Element: "save"})

	if click.triggers != 1 {
		t.Errorf("click triggered %d times, want 1", click.triggers)
	}
	if existingCalls != 1 {
		t.Errorf("existing handler called %d times, want 1", existingCalls)
	}
}

func TestWrapperOnPointerEnter(t *testing.T) {
	hover := &countingTriggerer{}
	wrapper := NewWrapper(nil, hover)

	handler := wrapper.OnPointerEnter(nil)
	handler(Event{Kind: "pointerenter"})
	handler(Event{Kind: "pointerenter"})

	if hover.triggers != 2 {
		t.Errorf("hover triggered %d times, want 2", hover.triggers)
	}
}

func TestWrapperWithoutSoundKeepsExistingHandler(t *testing.T) {
	wrapper := NewWrapper(nil, nil)

	existingCalls := 0
	handler := wrapper.OnClick(func(Event) { existingCalls++ })
	handler(Event{})

	if existingCalls != 1 {
		t.Errorf("existing handler called %d times, want 1", existingCalls)
	}

	if wrapper.OnPointerEnter(nil) != nil {
		t.Error("no sound and no existing handler should compose to nil")
	}
}
