package queries_test

import (
	"context"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type ListOrdersQueryHandlerTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	handler   queries.ListOrdersQueryHandler
}

func (suite *ListOrdersQueryHandlerTestSuite) SetupSuite() {
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

	suite.handler = queries.NewListOrdersQueryHandler(db)
}

func (suite *ListOrdersQueryHandlerTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *ListOrdersQueryHandlerTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE orders").Error)
}

func (suite *ListOrdersQueryHandlerTestSuite) TestHandle_EmptyDatabase_ReturnsEmptySlice() {
	query, err := queries.NewListOrdersQuery(queries.ListOrdersFilter{}, 0, 0)
	suite.Require().NoError(err)

	result, err := suite.handler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.NotNil(result)
	suite.Empty(result)
}

func (suite *ListOrdersQueryHandlerTestSuite) TestHandle_StatusFilter_NarrowsResults() {
	pending := suite.seedOrder(kernel.NewUUID(), kernel.NewUUID())
	accepted := suite.seedOrder(kernel.NewUUID(), kernel.NewUUID())
	suite.advanceToProcessing(accepted)

	status := order.Processing
	query, err := queries.NewListOrdersQuery(queries.ListOrdersFilter{Status: &status}, 0, 0)
	suite.Require().NoError(err)

	result, err := suite.handler.Handle(context.Background(), query)
	suite.Require().NoError(err)

	suite.Require().Len(result, 1)
	suite.Equal(accepted.ID().String(), result[0].ID)
	suite.NotEqual(pending.ID().String(), result[0].ID)
}

func (suite *ListOrdersQueryHandlerTestSuite) TestHandle_CustomerFilter_NarrowsResults() {
	customerID := kernel.NewUUID()
	mine := suite.seedOrder(customerID, kernel.NewUUID())
	suite.seedOrder(kernel.NewUUID(), kernel.NewUUID())

	query, err := queries.NewListOrdersQuery(queries.ListOrdersFilter{CustomerID: &customerID}, 0, 0)
	suite.Require().NoError(err)

	result, err := suite.handler.Handle(context.Background(), query)
	suite.Require().NoError(err)

	suite.Require().Len(result, 1)
	suite.Equal(mine.ID().String(), result[0].ID)
	suite.Equal(customerID.String(), result[0].CustomerID)
}

func (suite *ListOrdersQueryHandlerTestSuite) TestHandle_CustomerFilter_ExposesVerificationCode() {
	customerID := kernel.NewUUID()
	mine := suite.seedOrder(customerID, kernel.NewUUID())
	suite.advanceToReadyForPickup(mine)

	query, err := queries.NewListOrdersQuery(queries.ListOrdersFilter{CustomerID: &customerID}, 0, 0)
	suite.Require().NoError(err)

	result, err := suite.handler.Handle(context.Background(), query)
	suite.Require().NoError(err)

	suite.Require().Len(result, 1)
	suite.Require().NotNil(result[0].VerificationCode)
	suite.Regexp(`^\d{6}$`, *result[0].VerificationCode)
}

func (suite *ListOrdersQueryHandlerTestSuite) TestHandle_UnfilteredList_WithholdsVerificationCode() {
	mine := suite.seedOrder(kernel.NewUUID(), kernel.NewUUID())
	suite.advanceToReadyForPickup(mine)

	query, err := queries.NewListOrdersQuery(queries.ListOrdersFilter{}, 0, 0)
	suite.Require().NoError(err)

	result, err := suite.handler.Handle(context.Background(), query)
	suite.Require().NoError(err)

	suite.Require().Len(result, 1)
	suite.Nil(result[0].VerificationCode)
}

func (suite *ListOrdersQueryHandlerTestSuite) TestHandle_RestaurantFilter_NarrowsResults() {
	restaurantID := kernel.NewUUID()
	suite.seedOrder(kernel.NewUUID(), restaurantID)
	suite.seedOrder(kernel.NewUUID(), restaurantID)
	suite.seedOrder(kernel.NewUUID(), kernel.NewUUID())

	query, err := queries.NewListOrdersQuery(queries.ListOrdersFilter{RestaurantID: &restaurantID}, 0, 0)
	suite.Require().NoError(err)

	result, err := suite.handler.Handle(context.Background(), query)
	suite.Require().NoError(err)

	suite.Require().Len(result, 2)
	for _, snapshot := range result {
		suite.Equal(restaurantID.String(), snapshot.RestaurantID)
	}
}

func (suite *ListOrdersQueryHandlerTestSuite) TestHandle_Pagination_WalksAllRows() {
	for i := 0; i < 5; i++ {
		suite.seedOrder(kernel.NewUUID(), kernel.NewUUID())
	}

	seen := make(map[string]bool)
	for offset := 0; offset < 5; offset += 2 {
		query, err := queries.NewListOrdersQuery(queries.ListOrdersFilter{}, 2, offset)
		suite.Require().NoError(err)

		page, err := suite.handler.Handle(context.Background(), query)
		suite.Require().NoError(err)
		suite.LessOrEqual(len(page), 2)

		for _, snapshot := range page {
			suite.False(seen[snapshot.ID], "row %s returned twice", snapshot.ID)
			seen[snapshot.ID] = true
		}
	}

	suite.Len(seen, 5)
}

func (suite *ListOrdersQueryHandlerTestSuite) TestHandle_InvalidQuery_ReturnsError() {
	invalidQuery := queries.ListOrdersQuery{}

	result, err := suite.handler.Handle(context.Background(), invalidQuery)

	suite.Require().Error(err)
	suite.Nil(result)
	suite.Contains(err.Error(), "must be created via NewListOrdersQuery constructor")
}

func (suite *ListOrdersQueryHandlerTestSuite) seedOrder(customerID, restaurantID kernel.UUID) *order.Order {
	pickupPoint, err := kernel.NewGeoPoint(48.8566, 2.3522)
	suite.Require().NoError(err)

	item, err := order.NewItem(kernel.NewUUID(), "Margherita", 1, 899)
	suite.Require().NoError(err)

	aggregate, err := order.NewOrder(
		kernel.NewUUID(), customerID, restaurantID,
		pickupPoint, []order.Item{item},
		"21 Rue de la Paix, Paris", "card", 299, time.Now().UTC(),
	)
	suite.Require().NoError(err)

	repo := orderrepo.NewGormOrderRepository(suite.db, &mockAggregateTracker{})
	suite.Require().NoError(repo.Add(context.Background(), aggregate))

	return aggregate
}

func (suite *ListOrdersQueryHandlerTestSuite) advanceToProcessing(aggregate *order.Order) {
	ctx := context.Background()
	repo := orderrepo.NewGormOrderRepository(suite.db, &mockAggregateTracker{})

	stored, err := repo.Get(ctx, aggregate.ID())
	suite.Require().NoError(err)

	restaurant, err := order.NewActor(order.RoleRestaurant, stored.RestaurantID())
	suite.Require().NoError(err)

	now := time.Now().UTC()
	suite.Require().NoError(stored.RequestTransition(order.WaitingRestaurantValidation, order.SystemActor(), order.TransitionOptions{}, now))
	suite.Require().NoError(stored.RequestTransition(order.Processing, restaurant, order.TransitionOptions{}, now))
	suite.Require().NoError(repo.Update(ctx, stored))
}

func (suite *ListOrdersQueryHandlerTestSuite) advanceToReadyForPickup(aggregate *order.Order) {
	ctx := context.Background()
	repo := orderrepo.NewGormOrderRepository(suite.db, &mockAggregateTracker{})

	stored, err := repo.Get(ctx, aggregate.ID())
	suite.Require().NoError(err)

	restaurant, err := order.NewActor(order.RoleRestaurant, stored.RestaurantID())
	suite.Require().NoError(err)

	now := time.Now().UTC()
	suite.Require().NoError(stored.RequestTransition(order.WaitingRestaurantValidation, order.SystemActor(), order.TransitionOptions{}, now))
	suite.Require().NoError(stored.RequestTransition(order.Processing, restaurant, order.TransitionOptions{}, now))
	suite.Require().NoError(stored.RequestTransition(order.ReadyForPickup, restaurant, order.TransitionOptions{}, now))
	suite.Require().NoError(repo.Update(ctx, stored))
}

func TestListOrdersQueryHandler(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(ListOrdersQueryHandlerTestSuite))
}
