package eventide_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/eventide"
)

func TestMakeApplier(t *testing.T) {
	type TestData struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}

	type TestState struct {
		Count int
		Last  string
	}

	t.Run("successfully unmarshals and calls applier", func(t *testing.T) {
		var receivedState TestState
		var receivedData TestData
		var receivedEvent *eventide.Event

		applier := eventide.MakeApplier(
			func(state TestState, ev *eventide.Event, data TestData) TestState {
				receivedState = state
				receivedData = data
				receivedEvent = ev
				return TestState{
					Count: state.Count + data.Value,
					Last:  data.Name,
				}
			},
		)

		jsonData, _ := json.Marshal(TestData{Name: "test", Value: 42})
		event := &eventide.Event{
			Type: "test.event",
			Data: jsonData,
		}

		result, err := applier(TestState{Count: 10, Last: "initial"}, event)
		assert.NoError(t, err)
		assert.Equal(t, TestState{Count: 10, Last: "initial"}, receivedState)
		assert.Equal(t, TestData{Name: "test", Value: 42}, receivedData)
		assert.Same(t, event, receivedEvent)
		assert.Equal(t, TestState{Count: 52, Last: "test"}, result)
	})

	t.Run("returns original state on invalid JSON", func(t *testing.T) {
		applier := eventide.MakeApplier(
			func(state TestState, _ *eventide.Event, _ TestData) TestState {
				t.Fatal("applier should not be called with invalid JSON")
				return state
			},
		)

		event := &eventide.Event{
			Type: "test.event",
			Data: json.RawMessage(`{invalid json}`),
		}

		initial := TestState{Count: 99}
		result, err := applier(initial, event)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "test.event")
		assert.Equal(t, initial, result)
	})
}

func TestMakeSignal(t *testing.T) {
	applier := eventide.MakeSignal(func(n int, _ *eventide.Event) int {
		return n + 1
	})

	result, err := applier(1, &eventide.Event{Data: json.RawMessage(`{}`)})
	assert.NoError(t, err)
	assert.Equal(t, 2, result)
}
