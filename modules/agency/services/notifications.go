package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/agency"
	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/division"
	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/employee"
	"github.com/siadin-id/siadin/pkg/eventbus"
)

const notifyTimeout = 5 * time.Second

// NotificationSender delivers operator notifications. Consumed external
// collaborator; delivery is best-effort and never blocks a core transaction.
type NotificationSender interface {
	Notify(ctx context.Context, subject, body string) error
}

// LogSender writes notifications to the application log. Default sender for
// development and tests.
type LogSender struct {
	log *logrus.Logger
}

func NewLogSender(log *logrus.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Notify(_ context.Context, subject, body string) error {
	s.log.WithField("subject", subject).Info(body)
	return nil
}

// Notifier subscribes to post-commit lifecycle events and fans them out to
// the sender on a separate goroutine with a bounded deadline. Failures are
// logged, never propagated.
type Notifier struct {
	sender NotificationSender
	log    *logrus.Logger
}

func RegisterNotifications(bus eventbus.EventBus, sender NotificationSender, log *logrus.Logger) *Notifier {
	n := &Notifier{sender: sender, log: log}
	bus.Subscribe(n.onAgencyCreated)
	bus.Subscribe(n.onAgencyDeleted)
	bus.Subscribe(n.onDivisionCreated)
	bus.Subscribe(n.onDivisionDeleted)
	bus.Subscribe(n.onEmployeeCreated)
	return n
}

func (n *Notifier) send(subject, body string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := n.sender.Notify(ctx, subject, body); err != nil && n.log != nil {
			n.log.WithError(err).Warnf("notification %q failed", subject)
		}
	}()
}

func (n *Notifier) onAgencyCreated(event agency.CreatedEvent) {
	n.send("agency.created", fmt.Sprintf("agency %s (%s) created by %s", event.Agency.Name(), event.Agency.Code(), event.Actor.Name))
}

func (n *Notifier) onAgencyDeleted(event agency.DeletedEvent) {
	verb := "deactivated"
	if event.Hard {
		verb = "deleted"
	}
	n.send("agency.deleted", fmt.Sprintf("agency %s (%s) %s by %s", event.Agency.Name(), event.Agency.Code(), verb, event.Actor.Name))
}

func (n *Notifier) onDivisionCreated(event division.CreatedEvent) {
	n.send("division.created", fmt.Sprintf("division %s (%s) created", event.Division.Name(), event.Division.Code()))
}

func (n *Notifier) onDivisionDeleted(event division.DeletedEvent) {
	verb := "deactivated"
	if event.Hard {
		verb = "deleted"
	}
	n.send("division.deleted", fmt.Sprintf("division %s (%s) %s", event.Division.Name(), event.Division.Code(), verb))
}

func (n *Notifier) onEmployeeCreated(event employee.CreatedEvent) {
	n.send("employee.created", fmt.Sprintf("employee %s joined division %d", event.Employee.Name(), event.Employee.DivisionID()))
}
