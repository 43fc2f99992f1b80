// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// This package implements the repository pattern for the order domain aggregate, handling
// the conversion between domain entities and database representations.
package orderrepo

import (
	"time"

	"ticketing/internal/core/domain/model/kernel"
	"ticketing/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Maps order domain entities to relational database tables with indexing for
// the status scans the timeout reaper runs.
type OrderDTO struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OrderNumber  string     `gorm:"uniqueIndex;size:64"`
	UserID       uuid.UUID  `gorm:"type:uuid;index"`
	FlightID     *uuid.UUID `gorm:"type:uuid"`
	PriceCents   int64
	Status       int `gorm:"index:idx_orders_status_created_at"`
	TicketNumber string
	CreatedAt    time.Time `gorm:"index:idx_orders_status_created_at"`
	UpdatedAt    time.Time
}

// TableName specifies the database table name for order entities.
// Overrides GORM's default naming convention to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// fromDomain converts an order domain aggregate to its database representation.
func fromDomain(order *order.Order) OrderDTO {
	var flightID *uuid.UUID
	if id := order.FlightID(); id != nil {
		raw := id.Bytes()
		flightID = &raw
	}

	return OrderDTO{
		ID:           order.ID().Bytes(),
		OrderNumber:  order.OrderNumber(),
		UserID:       order.UserID().Bytes(),
		FlightID:     flightID,
		PriceCents:   order.Price().Cents(),
		Status:       int(order.Status()),
		TicketNumber: order.TicketNumber(),
		CreatedAt:    order.CreatedAt(),
		UpdatedAt:    order.UpdatedAt(),
	}
}

// toDomain converts a database DTO to an order domain aggregate.
// Reconstructs the complete aggregate using RestoreOrder so domain invariants
// are re-checked on the way out of the database.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	userID, err := kernel.UUIDFromBytes(dto.UserID[:])
	if err != nil {
		return nil, err
	}

	var flightID *kernel.UUID
	if dto.FlightID != nil {
		fID, flightErr := kernel.UUIDFromBytes((*dto.FlightID)[:])
		if flightErr != nil {
			return nil, flightErr
		}

		flightID = &fID
	}

	price, err := kernel.MoneyFromCents(dto.PriceCents)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(
		id,
		dto.OrderNumber,
		userID,
		flightID,
		price,
		order.Status(dto.Status),
		dto.TicketNumber,
		dto.CreatedAt,
		dto.UpdatedAt,
	)
}
