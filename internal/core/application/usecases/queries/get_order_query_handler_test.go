package queries_test

import (
	"context"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// mockAggregateTracker is a no-op tracker for seeding through the write-side
// repositories.
type mockAggregateTracker struct{}

func (m *mockAggregateTracker) TrackAggregate(_ kernel.UUID, _ interface{}) {}

type GetOrderQueryHandlerTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	handler   queries.GetOrderQueryHandler
}

func (suite *GetOrderQueryHandlerTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&orderrepo.OrderDTO{}))

	suite.handler = queries.NewGetOrderQueryHandler(db)
}

func (suite *GetOrderQueryHandlerTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *GetOrderQueryHandlerTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE orders").Error)
}

func (suite *GetOrderQueryHandlerTestSuite) TestHandle_ExistingOrder_ReturnsSnapshot() {
	aggregate := suite.createAndSaveOrder()

	query, err := queries.NewGetOrderQuery(aggregate.ID())
	suite.Require().NoError(err)

	result, err := suite.handler.Handle(context.Background(), query)
	suite.Require().NoError(err)

	suite.Equal(aggregate.ID().String(), result.ID)
	suite.Equal(aggregate.CustomerID().String(), result.CustomerID)
	suite.Equal(aggregate.RestaurantID().String(), result.RestaurantID)
	suite.Nil(result.CourierID)
	suite.Equal(order.Pending.String(), result.Status)
	suite.Equal("21 Rue de la Paix, Paris", result.DeliveryAddress)
	suite.Equal(int64(2896), result.TotalPriceCents)

	suite.Require().Len(result.Items, 2)
	suite.Equal("Margherita", result.Items[0].Name)
	suite.Equal(2, result.Items[0].Quantity)
	suite.Equal(int64(899), result.Items[0].UnitPriceCents)

	suite.Require().Len(result.History, 1)
	suite.Equal(order.Pending.String(), result.History[0].Status)
	suite.Equal(order.RoleSystem.String(), result.History[0].ActorRole)
	suite.Nil(result.History[0].ActorID)
}

func (suite *GetOrderQueryHandlerTestSuite) TestHandle_NonExistentOrder_ReturnsNotFoundError() {
	query, err := queries.NewGetOrderQuery(kernel.NewUUID())
	suite.Require().NoError(err)

	_, err = suite.handler.Handle(context.Background(), query)

	suite.Require().Error(err)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *GetOrderQueryHandlerTestSuite) TestHandle_InvalidQuery_ReturnsError() {
	invalidQuery := queries.GetOrderQuery{}

	_, err := suite.handler.Handle(context.Background(), invalidQuery)

	suite.Require().Error(err)
	suite.Contains(err.Error(), "must be created via NewGetOrderQuery constructor")
}

func (suite *GetOrderQueryHandlerTestSuite) TestHandle_OrderWithProgress_ExposesWorkflowFields() {
	aggregate := suite.createAndSaveOrder()

	repo := orderrepo.NewGormOrderRepository(suite.db, &mockAggregateTracker{})
	stored, err := repo.Get(context.Background(), aggregate.ID())
	suite.Require().NoError(err)

	restaurant, err := order.NewActor(order.RoleRestaurant, stored.RestaurantID())
	suite.Require().NoError(err)

	now := time.Now().UTC()
	suite.Require().NoError(stored.RequestTransition(order.WaitingRestaurantValidation, order.SystemActor(), order.TransitionOptions{}, now))
	suite.Require().NoError(stored.RequestTransition(order.Processing, restaurant, order.TransitionOptions{Note: "stove on"}, now))
	suite.Require().NoError(repo.Update(context.Background(), stored))

	query, err := queries.NewGetOrderQuery(aggregate.ID())
	suite.Require().NoError(err)

	result, err := suite.handler.Handle(context.Background(), query)
	suite.Require().NoError(err)

	suite.Equal(order.Processing.String(), result.Status)
	suite.Require().NotNil(result.AcceptedAt)
	suite.Require().Len(result.History, 3)
	suite.Equal("stove on", result.History[2].Note)
}

func (suite *GetOrderQueryHandlerTestSuite) TestHandle_CustomerScopedRead_ExposesVerificationCode() {
	aggregate := suite.createAndSaveOrder()
	suite.advanceToReadyForPickup(aggregate.ID())

	query, err := queries.NewGetOrderQueryForCustomer(aggregate.ID(), aggregate.CustomerID())
	suite.Require().NoError(err)

	result, err := suite.handler.Handle(context.Background(), query)
	suite.Require().NoError(err)

	suite.Equal(order.ReadyForPickup.String(), result.Status)
	suite.Require().NotNil(result.VerificationCode)
	suite.Regexp(`^\d{6}$`, *result.VerificationCode)
}

func (suite *GetOrderQueryHandlerTestSuite) TestHandle_UnscopedRead_WithholdsVerificationCode() {
	aggregate := suite.createAndSaveOrder()
	suite.advanceToReadyForPickup(aggregate.ID())

	query, err := queries.NewGetOrderQuery(aggregate.ID())
	suite.Require().NoError(err)

	result, err := suite.handler.Handle(context.Background(), query)
	suite.Require().NoError(err)

	suite.Equal(order.ReadyForPickup.String(), result.Status)
	suite.Nil(result.VerificationCode)
}

func (suite *GetOrderQueryHandlerTestSuite) TestHandle_WrongCustomerScope_WithholdsVerificationCode() {
	aggregate := suite.createAndSaveOrder()
	suite.advanceToReadyForPickup(aggregate.ID())

	query, err := queries.NewGetOrderQueryForCustomer(aggregate.ID(), kernel.NewUUID())
	suite.Require().NoError(err)

	result, err := suite.handler.Handle(context.Background(), query)
	suite.Require().NoError(err)

	suite.Nil(result.VerificationCode, "another customer's scope must not leak the code")
}

func (suite *GetOrderQueryHandlerTestSuite) advanceToReadyForPickup(orderID kernel.UUID) {
	ctx := context.Background()
	repo := orderrepo.NewGormOrderRepository(suite.db, &mockAggregateTracker{})

	stored, err := repo.Get(ctx, orderID)
	suite.Require().NoError(err)

	restaurant, err := order.NewActor(order.RoleRestaurant, stored.RestaurantID())
	suite.Require().NoError(err)

	now := time.Now().UTC()
	suite.Require().NoError(stored.RequestTransition(order.WaitingRestaurantValidation, order.SystemActor(), order.TransitionOptions{}, now))
	suite.Require().NoError(stored.RequestTransition(order.Processing, restaurant, order.TransitionOptions{}, now))
	suite.Require().NoError(stored.RequestTransition(order.ReadyForPickup, restaurant, order.TransitionOptions{}, now))
	suite.Require().NoError(repo.Update(ctx, stored))
}

func (suite *GetOrderQueryHandlerTestSuite) createAndSaveOrder() *order.Order {
	pickupPoint, err := kernel.NewGeoPoint(48.8566, 2.3522)
	suite.Require().NoError(err)

	margherita, err := order.NewItem(kernel.NewUUID(), "Margherita", 2, 899)
	suite.Require().NoError(err)
	tiramisu, err := order.NewItem(kernel.NewUUID(), "Tiramisu", 1, 799)
	suite.Require().NoError(err)

	aggregate, err := order.NewOrder(
		kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		pickupPoint, []order.Item{margherita, tiramisu},
		"21 Rue de la Paix, Paris", "card", 299, time.Now().UTC(),
	)
	suite.Require().NoError(err)

	repo := orderrepo.NewGormOrderRepository(suite.db, &mockAggregateTracker{})
	suite.Require().NoError(repo.Add(context.Background(), aggregate))

	return aggregate
}

func TestGetOrderQueryHandler(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(GetOrderQueryHandlerTestSuite))
}
