package notify

import (
	"context"
	"fmt"
	"log"
	"time"
)

type EventKind string

const (
	EventRequestCreated  EventKind = "request.created"
	EventRequestApproved EventKind = "request.approved"
	EventRequestDeclined EventKind = "request.declined"
	EventRequestIssued   EventKind = "request.issued"
	EventRequestReturned EventKind = "request.returned"
)

// Event describes a request transition for the dispatcher.
type Event struct {
	Kind           EventKind
	RequestULID    string
	RequesterName  string
	RequesterEmail string
	TargetName     string
	Quantity       int
	Reason         string
}

type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

const dispatchTimeout = 10 * time.Second

// Dispatch delivers ev in the background. It never blocks the caller and
// never surfaces delivery errors; they are logged and dropped.
func Dispatch(n Notifier, ev Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()
		if err := n.Notify(ctx, ev); err != nil {
			log.Printf("[WARN] notify %s for request %s failed: %v", ev.Kind, ev.RequestULID, err)
		}
	}()
}

// Subject and Body render the plain-text mail for ev.

func Subject(ev Event) string {
	switch ev.Kind {
	case EventRequestCreated:
		return fmt.Sprintf("New request: %s x%d", ev.TargetName, ev.Quantity)
	case EventRequestApproved:
		return fmt.Sprintf("Request approved: %s", ev.TargetName)
	case EventRequestDeclined:
		return fmt.Sprintf("Request declined: %s", ev.TargetName)
	case EventRequestIssued:
		return fmt.Sprintf("Items issued: %s", ev.TargetName)
	case EventRequestReturned:
		return fmt.Sprintf("Return recorded: %s", ev.TargetName)
	}
	return fmt.Sprintf("Request update: %s", ev.TargetName)
}

func Body(ev Event) string {
	switch ev.Kind {
	case EventRequestCreated:
		return fmt.Sprintf("%s (%s) requested %d x %s.\nRequest ID: %s\n",
			ev.RequesterName, ev.RequesterEmail, ev.Quantity, ev.TargetName, ev.RequestULID)
	case EventRequestApproved:
		return fmt.Sprintf("Your request for %d x %s was approved.\nRequest ID: %s\n",
			ev.Quantity, ev.TargetName, ev.RequestULID)
	case EventRequestDeclined:
		s := fmt.Sprintf("Your request for %d x %s was declined.\nRequest ID: %s\n",
			ev.Quantity, ev.TargetName, ev.RequestULID)
		if ev.Reason != "" {
			s += "Reason: " + ev.Reason + "\n"
		}
		return s
	case EventRequestIssued:
		return fmt.Sprintf("%d x %s issued by the store.\nRequest ID: %s\n",
			ev.Quantity, ev.TargetName, ev.RequestULID)
	case EventRequestReturned:
		return fmt.Sprintf("Return of %d x %s recorded.\nRequest ID: %s\n",
			ev.Quantity, ev.TargetName, ev.RequestULID)
	}
	return fmt.Sprintf("Request %s updated.\n", ev.RequestULID)
}

// LogNotifier is the fallback when mail is disabled.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, ev Event) error {
	log.Printf("[INFO] notify %s request=%s target=%s qty=%d", ev.Kind, ev.RequestULID, ev.TargetName, ev.Quantity)
	return nil
}
