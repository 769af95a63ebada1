package order

import (
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// ErrItemIsNotConstructed is returned when using an Item that was not created
// via NewItem.
var ErrItemIsNotConstructed = errors.New("Item must be created via NewItem constructor")

// Item is one immutable line of an order: a snapshot of the dish, quantity
// and unit price taken when the order was placed. Later catalog changes never
// affect an existing order.
//
// Prices are integer cents so line subtotals and the order total stay exact.
type Item struct { //nolint:recvcheck //using for validation
	dishID         kernel.UUID
	name           string
	quantity       int
	unitPriceCents int64

	guard guard.ConstructorGuard
}

// NewItem creates a line item snapshot.
//
// Parameters:
//   - dishID: catalog reference of the dish (must be a valid UUID)
//   - name: dish name as shown to the customer (must be non-empty)
//   - quantity: number of units (must be positive)
//   - unitPriceCents: unit price in cents at order time (must not be negative)
func NewItem(dishID kernel.UUID, name string, quantity int, unitPriceCents int64) (Item, error) {
	item := Item{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		item.setDishID(dishID),
		item.setName(name),
		item.setQuantity(quantity),
		item.setUnitPriceCents(unitPriceCents),
	); err != nil {
		return Item{}, err
	}

	return item, nil
}

// Validate ensures the item was created through NewItem.
func (i Item) Validate() error {
	return i.guard.Validate(ErrItemIsNotConstructed)
}

// DishID returns the catalog reference of the dish.
func (i Item) DishID() kernel.UUID {
	return i.dishID
}

// Name returns the dish name captured at order time.
func (i Item) Name() string {
	return i.name
}

// Quantity returns the ordered unit count.
func (i Item) Quantity() int {
	return i.quantity
}

// UnitPriceCents returns the unit price in cents captured at order time.
func (i Item) UnitPriceCents() int64 {
	return i.unitPriceCents
}

// SubtotalCents returns unit price × quantity in cents.
func (i Item) SubtotalCents() int64 {
	return i.unitPriceCents * int64(i.quantity)
}

func (i *Item) setDishID(dishID kernel.UUID) error {
	if err := dishID.Validate(); err != nil {
		return err
	}
	i.dishID = dishID
	return nil
}

func (i *Item) setName(name string) error {
	if name == "" {
		return errs.NewValueIsRequiredError("item name")
	}
	i.name = name
	return nil
}

func (i *Item) setQuantity(quantity int) error {
	if quantity <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("quantity",
			fmt.Errorf("%d is not greater than 0", quantity))
	}
	i.quantity = quantity
	return nil
}

func (i *Item) setUnitPriceCents(unitPriceCents int64) error {
	if unitPriceCents < 0 {
		return errs.NewValueIsInvalidErrorWithCause("unit price",
			fmt.Errorf("%d is negative", unitPriceCents))
	}
	i.unitPriceCents = unitPriceCents
	return nil
}
