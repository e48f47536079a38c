package services

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/agency"
	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/division"
	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/employee"
	"github.com/siadin-id/siadin/modules/agency/domain/entities/jurisdiction"
	"github.com/siadin-id/siadin/pkg/eventbus"
	"github.com/siadin-id/siadin/pkg/identity"
)

// Cascades implements the lifecycle dependencies between entities: creating
// an agency creates its headquarters division, creating a division creates
// its admin's employee record and primary jurisdiction, and deletes walk the
// tree downward. Handlers run synchronously inside the publishing operation's
// transaction; any handler error rolls the whole operation back.
//
// Cascades works on repositories directly. Going through the services would
// re-run permission checks against the original actor, and cascade steps are
// consequences of an already-authorized parent operation.
type Cascades struct {
	divisions     division.Repository
	employees     employee.Repository
	jurisdictions jurisdiction.Repository
	directory     identity.Directory
	bus           eventbus.EventBusWithError
	log           *logrus.Logger
}

func RegisterLifecycleCascades(
	bus eventbus.EventBusWithError,
	divisions division.Repository,
	employees employee.Repository,
	jurisdictions jurisdiction.Repository,
	directory identity.Directory,
	log *logrus.Logger,
) *Cascades {
	c := &Cascades{
		divisions:     divisions,
		employees:     employees,
		jurisdictions: jurisdictions,
		directory:     directory,
		bus:           bus,
		log:           log,
	}
	bus.Subscribe(c.onAgencyCreated)
	bus.Subscribe(c.onDivisionCreated)
	bus.Subscribe(c.onAgencyDeleted)
	bus.Subscribe(c.onDivisionDeleted)
	return c
}

// onAgencyCreated creates the agency's pusat division. The division admin is
// the agency owner unless a distinct admin principal was supplied. Re-running
// for an agency that already has an active pusat division is a no-op.
func (c *Cascades) onAgencyCreated(ctx context.Context, event agency.CreatedEvent) error {
	a := event.Agency

	_, err := c.divisions.GetActivePusat(ctx, a.ID())
	if err == nil {
		return nil
	}
	if !errors.Is(err, division.ErrNoPusat) {
		return err
	}

	admin := event.AdminPrincipalID
	if admin == uuid.Nil {
		admin = a.OwnerPrincipalID()
	}

	pusat := division.New(
		a,
		a.Name()+" Kantor Pusat",
		division.TypePusat,
		a.ProvinceCode(),
		a.RegencyCode(),
		"",
		admin,
	)
	created, err := c.divisions.Create(ctx, pusat)
	if err != nil {
		return errors.Wrap(err, "headquarters cascade failed")
	}

	return publishTx(c.bus, ctx, division.NewCreatedEvent(created, event.Actor))
}

// onDivisionCreated seeds the division's primary jurisdiction and, when an
// admin principal is set, their employee record in the owning agency.
func (c *Cascades) onDivisionCreated(ctx context.Context, event division.CreatedEvent) error {
	d := event.Division

	if err := c.seedPrimaryJurisdiction(ctx, d, event.Actor); err != nil {
		return err
	}

	admin := d.AdminPrincipalID()
	if admin == uuid.Nil {
		return nil
	}

	_, err := c.employees.GetByPrincipal(ctx, d.AgencyID(), admin)
	if err == nil {
		return nil
	}
	if !errors.Is(err, employee.ErrNotFound) {
		return err
	}

	name := "Administrator"
	if principal, err := c.directory.PrincipalByID(ctx, admin); err == nil && principal.Name != "" {
		name = principal.Name
	}
	position := "Kepala Cabang"
	if d.IsPusat() {
		position = "Kepala Kantor Pusat"
	}

	created, err := c.employees.Create(ctx, employee.New(d.AgencyID(), d.ID(), admin, name, "", "", position))
	if err != nil {
		return errors.Wrap(err, "headquarters employee cascade failed")
	}

	return publishTx(c.bus, ctx, employee.NewCreatedEvent(created, event.Actor))
}

// seedPrimaryJurisdiction assigns the division's own regency as its primary
// territory. When another division in the agency already holds that code the
// seed is skipped with a warning; the operator resolves it via an explicit
// assignment.
func (c *Cascades) seedPrimaryJurisdiction(ctx context.Context, d division.Division, actor identity.Principal) error {
	existing, err := c.jurisdictions.ListByDivision(ctx, d.ID())
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	agencyWide, err := c.jurisdictions.ListByAgency(ctx, d.AgencyID())
	if err != nil {
		return err
	}
	for _, a := range agencyWide {
		if a.TerritoryCode() == d.RegencyCode() {
			if c.log != nil {
				c.log.Warnf("cascade: territory %s already held by division %d, skipping primary seed for division %d", d.RegencyCode(), a.DivisionID(), d.ID())
			}
			return nil
		}
	}

	_, err = c.jurisdictions.CreateBatch(ctx, []jurisdiction.Assignment{
		jurisdiction.New(d.ID(), d.RegencyCode(), true, actor.ID),
	})
	return err
}

// onAgencyDeleted walks every division of the agency through the division
// delete path, which cascades further to employees and jurisdictions.
func (c *Cascades) onAgencyDeleted(ctx context.Context, event agency.DeletedEvent) error {
	divs, err := c.divisions.GetByAgency(ctx, event.Agency.ID())
	if err != nil {
		return err
	}
	for _, d := range divs {
		if err := c.deleteDivision(ctx, d, event.Actor, event.Hard); err != nil {
			return errors.Wrap(err, "division cascade failed")
		}
	}
	return nil
}

func (c *Cascades) deleteDivision(ctx context.Context, d division.Division, actor identity.Principal, hard bool) error {
	// Employees and jurisdictions first, then the division row itself.
	if err := publishTx(c.bus, ctx, division.NewDeletedEvent(d, actor, hard)); err != nil {
		return err
	}
	if hard {
		return c.divisions.Delete(ctx, d.ID())
	}
	if d.IsActive() {
		if _, err := c.divisions.Update(ctx, d.Deactivate()); err != nil {
			return err
		}
	}
	return nil
}

// onDivisionDeleted cascades to the division's employees and jurisdiction
// assignments. Soft deletes keep assignment rows; they carry no status of
// their own and become invisible with their division.
func (c *Cascades) onDivisionDeleted(ctx context.Context, event division.DeletedEvent) error {
	emps, err := c.employees.GetByDivision(ctx, event.Division.ID())
	if err != nil {
		return err
	}
	for _, e := range emps {
		if event.Hard {
			if err := c.employees.Delete(ctx, e.ID()); err != nil {
				return errors.Wrap(err, "employee cascade failed")
			}
		} else if e.IsActive() {
			if _, err := c.employees.Update(ctx, e.Deactivate()); err != nil {
				return errors.Wrap(err, "employee cascade failed")
			}
		}
		if err := publishTx(c.bus, ctx, employee.NewDeletedEvent(e, event.Actor, event.Hard)); err != nil {
			return err
		}
	}

	if event.Hard {
		if err := c.jurisdictions.DeleteByDivision(ctx, event.Division.ID()); err != nil {
			return errors.Wrap(err, "jurisdiction cascade failed")
		}
	}
	return nil
}
