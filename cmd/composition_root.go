package cmd

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"fulfillment/internal/adapters/out/geoindex"
	"fulfillment/internal/adapters/out/kafka"
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/postgres/inboxrepo"
	"fulfillment/internal/adapters/out/postgres/outboxrepo"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/jobs"
)

// CompositionRoot wires adapters into use case handlers. One instance is
// built at startup and handed to the transport layers.
type CompositionRoot struct {
	config     Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	geoIndex   *geoindex.InMemoryGeoIndex
	publisher  ports.EventPublisher
}

// NewCompositionRoot creates the composition root over the shared database
// connection and bus publisher.
func NewCompositionRoot(config Config, gormDB *gorm.DB, publisher ports.EventPublisher) *CompositionRoot {
	return &CompositionRoot{
		config:     config,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB, config.OutboxMaxAttempts),
		geoIndex:   geoindex.NewInMemoryGeoIndex(),
		publisher:  publisher,
	}
}

// GeoIndex exposes the shared dispatch pool index.
func (c *CompositionRoot) GeoIndex() ports.GeoIndex {
	return c.geoIndex
}

// UnitOfWorkFactory exposes the shared transaction factory.
func (c *CompositionRoot) UnitOfWorkFactory() ports.UnitOfWorkFactory {
	return c.uowFactory
}

// HydrateGeoIndex seeds the dispatch pool from the database. Invoked once at
// startup, before dispatch begins.
func (c *CompositionRoot) HydrateGeoIndex(ctx context.Context) error {
	couriers, err := c.uowFactory.Create().CourierRepository().GetAllAvailable(ctx)
	if err != nil {
		return err
	}

	for _, courier := range couriers {
		c.geoIndex.Upsert(courier.ID(), courier.Location(), courier.Available(), courier.AvailableSince())
	}

	return nil
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateOrderCommandHandler(f)
}

func (c *CompositionRoot) CreateRequestTransitionCommandHandler() commands.RequestTransitionCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRequestTransitionCommandHandler(f)
}

func (c *CompositionRoot) CreateAssignCourierCommandHandler() commands.AssignCourierCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewAssignCourierCommandHandler(
		f, c.geoIndex, c.config.AssignBaseRadiusKm, c.config.AssignMaxRadiusKm,
	)
}

func (c *CompositionRoot) CreateCreateCourierCommandHandler() commands.CreateCourierCommandHandler {
	var f commands.CourierUoWFactory = FuncCourierUoWFactory(func() commands.CourierUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateCourierCommandHandler(f)
}

func (c *CompositionRoot) CreateSetCourierAvailabilityCommandHandler() commands.SetCourierAvailabilityCommandHandler {
	var f commands.CourierUoWFactory = FuncCourierUoWFactory(func() commands.CourierUoW {
		return c.uowFactory.Create()
	})
	return commands.NewSetCourierAvailabilityCommandHandler(f, c.geoIndex)
}

func (c *CompositionRoot) CreateUpdateCourierLocationCommandHandler() commands.UpdateCourierLocationCommandHandler {
	var f commands.CourierUoWFactory = FuncCourierUoWFactory(func() commands.CourierUoW {
		return c.uowFactory.Create()
	})
	return commands.NewUpdateCourierLocationCommandHandler(f, c.geoIndex)
}

func (c *CompositionRoot) CreateReleaseCourierCommandHandler() commands.ReleaseCourierCommandHandler {
	var f commands.CourierUoWFactory = FuncCourierUoWFactory(func() commands.CourierUoW {
		return c.uowFactory.Create()
	})
	return commands.NewReleaseCourierCommandHandler(f, c.geoIndex)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListOrdersQueryHandler() queries.ListOrdersQueryHandler {
	return queries.NewListOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListCouriersQueryHandler() queries.ListCouriersQueryHandler {
	return queries.NewListCouriersQueryHandler(c.gormDB)
}

// CreateOutboxRepository builds an outbox view over the shared connection,
// outside any transaction. Used by the relay job.
func (c *CompositionRoot) CreateOutboxRepository() ports.OutboxRepository {
	return outboxrepo.NewGormOutboxRepository(c.gormDB, c.config.OutboxMaxAttempts)
}

// CreateInboxRepository builds the consumer dedup ledger.
func (c *CompositionRoot) CreateInboxRepository() ports.InboxRepository {
	return inboxrepo.NewGormInboxRepository(c.gormDB)
}

// CreateJobManager wires the background jobs.
func (c *CompositionRoot) CreateJobManager(logger *slog.Logger) *jobs.JobManager {
	return jobs.NewJobManager(
		c.uowFactory,
		c.CreateOutboxRepository(),
		c.publisher,
		c.CreateAssignCourierCommandHandler(),
		c.config.OutboxBatchSize,
		logger,
	)
}

// CreateWorkflowEventHandler wires the bus reactions consumer handler.
func (c *CompositionRoot) CreateWorkflowEventHandler(logger *slog.Logger) *kafka.WorkflowEventHandler {
	return kafka.NewWorkflowEventHandler(
		c.CreateInboxRepository(),
		c.publisher,
		c.CreateAssignCourierCommandHandler(),
		c.CreateReleaseCourierCommandHandler(),
		logger,
	)
}

type FuncCourierUoWFactory func() commands.CourierUoW

func (f FuncCourierUoWFactory) Create() commands.CourierUoW {
	return f()
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
