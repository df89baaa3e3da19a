package handler

import (
	"time"

	"shopfloor/internal/workorder"
)

// CreateRequest is the payload for POST /work-orders.
type CreateRequest struct {
	ProductID     int64      `json:"product_id"`
	Quantity      int        `json:"quantity"`
	ScheduledDate *time.Time `json:"scheduled_date,omitempty"`
}

func (r CreateRequest) Input() workorder.CreateInput {
	return workorder.CreateInput{
		ProductID:     r.ProductID,
		Quantity:      r.Quantity,
		ScheduledDate: r.ScheduledDate,
	}
}

// BatchCreateRequest is the payload for POST /work-orders/batch.
type BatchCreateRequest struct {
	ProductID     int64      `json:"product_id"`
	Quantity      int        `json:"quantity"`
	ScheduledDate *time.Time `json:"scheduled_date,omitempty"`
	Count         int        `json:"count"`
}

func (r BatchCreateRequest) Input() workorder.CreateInput {
	return workorder.CreateInput{
		ProductID:     r.ProductID,
		Quantity:      r.Quantity,
		ScheduledDate: r.ScheduledDate,
	}
}

// OverrideRequest is the payload for PUT /work-orders/{id}. Absent fields are
// left untouched.
type OverrideRequest struct {
	Status        *string    `json:"status,omitempty"`
	Quantity      *int       `json:"quantity,omitempty"`
	ScheduledDate *time.Time `json:"scheduled_date,omitempty"`
}

func (r OverrideRequest) Input() workorder.OverrideInput {
	in := workorder.OverrideInput{
		Quantity:      r.Quantity,
		ScheduledDate: r.ScheduledDate,
	}
	if r.Status != nil {
		st := workorder.Status(*r.Status)
		in.Status = &st
	}
	return in
}
