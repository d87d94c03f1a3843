package events

import (
	"testing"
)

func TestSubscribeReceivesMatchingType(t *testing.T) {
	bus := NewBus()
	var got []Event
	bus.Subscribe(TypeTaskCreated, func(e Event) {
		got = append(got, e)
	})

	bus.Publish(TaskCreatedEvent{TaskID: "SERV-1", Project: "SERV"})
	bus.Publish(TaskDeletedEvent{TaskID: "SERV-1"})

	if len(got) != 1 {
		t.Fatalf("got %d events, want 1", len(got))
	}
	if got[0].Data["task_id"] != "SERV-1" {
		t.Fatalf("unexpected event data: %v", got[0].Data)
	}
}

func TestSubscribeAllReceivesEverything(t *testing.T) {
	bus := NewBus()
	var count int
	bus.SubscribeAll(func(e Event) { count++ })

	bus.Publish(TaskCreatedEvent{TaskID: "SERV-1"})
	bus.Publish(TaskUpdatedEvent{TaskID: "SERV-1"})
	bus.Publish(TaskDeletedEvent{TaskID: "SERV-1"})

	if count != 3 {
		t.Fatalf("got %d, want 3", count)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus()
	var count int
	id := bus.Subscribe(TypeTaskCreated, func(e Event) { count++ })

	bus.Publish(TaskCreatedEvent{TaskID: "SERV-1"})
	bus.Unsubscribe(id)
	bus.Publish(TaskCreatedEvent{TaskID: "SERV-2"})

	if count != 1 {
		t.Fatalf("got %d, want 1", count)
	}
}

func TestHasSubscribers(t *testing.T) {
	bus := NewBus()
	if bus.HasSubscribers(TypeTaskCreated) {
		t.Fatal("expected no subscribers on a fresh bus")
	}
	bus.Subscribe(TypeTaskCreated, func(Event) {})
	if !bus.HasSubscribers(TypeTaskCreated) {
		t.Fatal("expected subscribers after Subscribe")
	}
}

func TestPublishRecoversHandlerPanic(t *testing.T) {
	bus := NewBus()
	var caught any
	bus.OnHandlerPanic(func(t Type, r any) { caught = r })
	bus.Subscribe(TypeTaskCreated, func(Event) { panic("boom") })

	bus.Publish(TaskCreatedEvent{TaskID: "SERV-1"})

	if caught != "boom" {
		t.Fatalf("expected panic to be recovered and logged, got %v", caught)
	}
}
