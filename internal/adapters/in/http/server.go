package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/courier"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	createOrderHandler        commands.CreateOrderCommandHandler
	requestTransitionHandler  commands.RequestTransitionCommandHandler
	assignCourierHandler      commands.AssignCourierCommandHandler
	createCourierHandler      commands.CreateCourierCommandHandler
	setAvailabilityHandler    commands.SetCourierAvailabilityCommandHandler
	updateLocationHandler     commands.UpdateCourierLocationCommandHandler
	getOrderHandler           queries.GetOrderQueryHandler
	listOrdersHandler         queries.ListOrdersQueryHandler
	listCouriersHandler       queries.ListCouriersQueryHandler
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	createOrderHandler commands.CreateOrderCommandHandler,
	requestTransitionHandler commands.RequestTransitionCommandHandler,
	assignCourierHandler commands.AssignCourierCommandHandler,
	createCourierHandler commands.CreateCourierCommandHandler,
	setAvailabilityHandler commands.SetCourierAvailabilityCommandHandler,
	updateLocationHandler commands.UpdateCourierLocationCommandHandler,
	getOrderHandler queries.GetOrderQueryHandler,
	listOrdersHandler queries.ListOrdersQueryHandler,
	listCouriersHandler queries.ListCouriersQueryHandler,
) *Server {
	return &Server{
		createOrderHandler:       createOrderHandler,
		requestTransitionHandler: requestTransitionHandler,
		assignCourierHandler:     assignCourierHandler,
		createCourierHandler:     createCourierHandler,
		setAvailabilityHandler:   setAvailabilityHandler,
		updateLocationHandler:    updateLocationHandler,
		getOrderHandler:          getOrderHandler,
		listOrdersHandler:        listOrdersHandler,
		listCouriersHandler:      listCouriersHandler,
	}
}

// RegisterRoutes mounts all API routes on the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")

	api.POST("/orders", s.CreateOrder)
	api.GET("/orders", s.ListOrders)
	api.GET("/orders/:id", s.GetOrder)
	api.POST("/orders/:id/transition", s.RequestTransition)
	api.POST("/orders/:id/assignment", s.RequestAssignment)

	api.POST("/couriers", s.CreateCourier)
	api.GET("/couriers", s.ListCouriers)
	api.PUT("/couriers/:id/availability", s.SetCourierAvailability)
	api.PUT("/couriers/:id/location", s.UpdateCourierLocation)

	e.GET("/health", s.Health)
}

// CreateOrder handles POST /api/v1/orders.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var request CreateOrderRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	customerID, err := kernel.UUIDFromString(request.CustomerID)
	if err != nil {
		return badRequest(ctx, "Invalid customer id")
	}
	restaurantID, err := kernel.UUIDFromString(request.RestaurantID)
	if err != nil {
		return badRequest(ctx, "Invalid restaurant id")
	}
	pickupPoint, err := kernel.NewGeoPoint(request.PickupLatitude, request.PickupLongitude)
	if err != nil {
		return badRequest(ctx, "Invalid pickup coordinates: "+err.Error())
	}

	items := make([]commands.OrderItemInput, 0, len(request.Items))
	for _, item := range request.Items {
		dishID, dishErr := kernel.UUIDFromString(item.DishID)
		if dishErr != nil {
			return badRequest(ctx, "Invalid dish id")
		}
		items = append(items, commands.OrderItemInput{
			DishID:         dishID,
			Name:           item.Name,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		})
	}

	cmd, err := commands.NewCreateOrderCommand(
		kernel.NewUUID(),
		customerID,
		restaurantID,
		pickupPoint,
		items,
		request.DeliveryAddress,
		request.PaymentMethod,
		request.DeliveryFeeCents,
	)
	if err != nil {
		return badRequest(ctx, "Invalid order data: "+err.Error())
	}

	created, err := s.createOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, orderFromDomain(created))
}

// GetOrder handles GET /api/v1/orders/:id. A customerId query parameter
// scopes the read to that customer; when it names the order's owner the
// response carries the live verification code.
func (s *Server) GetOrder(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	var query queries.GetOrderQuery
	if raw := ctx.QueryParam("customerId"); raw != "" {
		customerID, idErr := kernel.UUIDFromString(raw)
		if idErr != nil {
			return badRequest(ctx, "Invalid customer id")
		}
		query, err = queries.NewGetOrderQueryForCustomer(orderID, customerID)
	} else {
		query, err = queries.NewGetOrderQuery(orderID)
	}
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	response, err := s.getOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, orderFromQuery(response))
}

// ListOrders handles GET /api/v1/orders.
func (s *Server) ListOrders(ctx echo.Context) error {
	filter := queries.ListOrdersFilter{}

	if raw := ctx.QueryParam("status"); raw != "" {
		status, err := order.StatusFromString(raw)
		if err != nil {
			return badRequest(ctx, "Invalid status filter")
		}
		filter.Status = &status
	}
	if err := bindUUIDParam(ctx, "customerId", &filter.CustomerID); err != nil {
		return badRequest(ctx, "Invalid customer id filter")
	}
	if err := bindUUIDParam(ctx, "restaurantId", &filter.RestaurantID); err != nil {
		return badRequest(ctx, "Invalid restaurant id filter")
	}
	if err := bindUUIDParam(ctx, "courierId", &filter.CourierID); err != nil {
		return badRequest(ctx, "Invalid courier id filter")
	}

	limit, err := intQueryParam(ctx, "limit")
	if err != nil {
		return badRequest(ctx, "Invalid limit")
	}
	offset, err := intQueryParam(ctx, "offset")
	if err != nil {
		return badRequest(ctx, "Invalid offset")
	}

	query, err := queries.NewListOrdersQuery(filter, limit, offset)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	results, err := s.listOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return respondError(ctx, err)
	}

	response := make([]OrderResponse, 0, len(results))
	for _, result := range results {
		response = append(response, orderFromQuery(result))
	}

	return ctx.JSON(http.StatusOK, response)
}

// RequestTransition handles POST /api/v1/orders/:id/transition.
func (s *Server) RequestTransition(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	var request TransitionRequest
	if err = ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	target, err := order.StatusFromString(request.Target)
	if err != nil {
		return badRequest(ctx, "Invalid target status")
	}

	actor, err := actorFromRequest(request.ActorRole, request.ActorID)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	cmd, err := commands.NewRequestTransitionCommand(
		orderID, target, actor, request.VerificationCode, request.Note,
	)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	updated, err := s.requestTransitionHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, orderFromDomain(updated))
}

// RequestAssignment handles POST /api/v1/orders/:id/assignment, the manual
// dispatch trigger. A search that finds nobody is not an error: the order
// simply stays in the retry queue.
func (s *Server) RequestAssignment(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	cmd, err := commands.NewAssignCourierCommand(orderID)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	err = s.assignCourierHandler.Handle(ctx.Request().Context(), cmd)
	if errors.Is(err, commands.ErrNoCourierAvailable) {
		return ctx.JSON(http.StatusOK, AssignmentResponse{Assigned: false})
	}
	if err != nil {
		return respondError(ctx, err)
	}

	query, err := queries.NewGetOrderQuery(orderID)
	if err != nil {
		return respondError(ctx, err)
	}
	snapshot, err := s.getOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, AssignmentResponse{
		Assigned:  snapshot.CourierID != nil,
		CourierID: snapshot.CourierID,
	})
}

// CreateCourier handles POST /api/v1/couriers.
func (s *Server) CreateCourier(ctx echo.Context) error {
	var request CreateCourierRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	vehicle, err := courier.VehicleFromString(request.Vehicle)
	if err != nil {
		return badRequest(ctx, "Invalid vehicle type")
	}
	location, err := kernel.NewGeoPoint(request.Latitude, request.Longitude)
	if err != nil {
		return badRequest(ctx, "Invalid coordinates: "+err.Error())
	}

	cmd, err := commands.NewCreateCourierCommand(kernel.NewUUID(), request.Name, vehicle, location)
	if err != nil {
		return badRequest(ctx, "Invalid courier data: "+err.Error())
	}

	created, err := s.createCourierHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, CourierResponse{
		ID:             created.ID().String(),
		Name:           created.Name(),
		Vehicle:        created.Vehicle().String(),
		Available:      created.Available(),
		Latitude:       created.Location().Latitude(),
		Longitude:      created.Location().Longitude(),
		AvailableSince: created.AvailableSince(),
		Active:         created.Active(),
	})
}

// ListCouriers handles GET /api/v1/couriers.
func (s *Server) ListCouriers(ctx echo.Context) error {
	availableOnly := ctx.QueryParam("available") == "true"

	results, err := s.listCouriersHandler.Handle(
		ctx.Request().Context(), queries.NewListCouriersQuery(availableOnly),
	)
	if err != nil {
		return respondError(ctx, err)
	}

	response := make([]CourierResponse, 0, len(results))
	for _, result := range results {
		response = append(response, courierFromQuery(result))
	}

	return ctx.JSON(http.StatusOK, response)
}

// SetCourierAvailability handles PUT /api/v1/couriers/:id/availability.
func (s *Server) SetCourierAvailability(ctx echo.Context) error {
	courierID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid courier id")
	}

	var request CourierAvailabilityRequest
	if err = ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	location, err := kernel.NewGeoPoint(request.Latitude, request.Longitude)
	if err != nil {
		return badRequest(ctx, "Invalid coordinates: "+err.Error())
	}

	cmd, err := commands.NewSetCourierAvailabilityCommand(courierID, request.Available, location)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	updated, err := s.setAvailabilityHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, CourierResponse{
		ID:             updated.ID().String(),
		Name:           updated.Name(),
		Vehicle:        updated.Vehicle().String(),
		Available:      updated.Available(),
		Latitude:       updated.Location().Latitude(),
		Longitude:      updated.Location().Longitude(),
		AvailableSince: updated.AvailableSince(),
		DeliveryCount:  updated.DeliveryCount(),
		RatingAverage:  updated.RatingAverage(),
		Active:         updated.Active(),
	})
}

// UpdateCourierLocation handles PUT /api/v1/couriers/:id/location.
func (s *Server) UpdateCourierLocation(ctx echo.Context) error {
	courierID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid courier id")
	}

	var request CourierLocationRequest
	if err = ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	location, err := kernel.NewGeoPoint(request.Latitude, request.Longitude)
	if err != nil {
		return badRequest(ctx, "Invalid coordinates: "+err.Error())
	}

	cmd, err := commands.NewUpdateCourierLocationCommand(courierID, location)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	if err = s.updateLocationHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func actorFromRequest(role string, id string) (order.Actor, error) {
	parsedRole, err := order.RoleFromString(role)
	if err != nil {
		return order.Actor{}, err
	}
	if parsedRole == order.RoleSystem {
		return order.SystemActor(), nil
	}

	actorID, err := kernel.UUIDFromString(id)
	if err != nil {
		return order.Actor{}, err
	}

	return order.NewActor(parsedRole, actorID)
}

func bindUUIDParam(ctx echo.Context, name string, target **kernel.UUID) error {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return nil
	}

	id, err := kernel.UUIDFromString(raw)
	if err != nil {
		return err
	}

	*target = &id
	return nil
}

func intQueryParam(ctx echo.Context, name string) (int, error) {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, ErrorResponse{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

func respondError(ctx echo.Context, err error) error {
	status := statusFromError(err)
	return ctx.JSON(status, ErrorResponse{
		Code:    status,
		Message: err.Error(),
	})
}
