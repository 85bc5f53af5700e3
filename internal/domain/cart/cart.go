package cart

import (
	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Line is one product entry in a customer's cart
type Line struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// Snapshot is the customer's current buying intent. It lives in the cache
// and is rebuilt from the durable shadow only when the cache copy is gone.
type Snapshot struct {
	Lines []Line `json:"items"`
}

// IsEmpty reports whether the cart has no lines
func (s *Snapshot) IsEmpty() bool {
	return len(s.Lines) == 0
}

// QuantityOf returns the current quantity for a product, zero if absent
func (s *Snapshot) QuantityOf(productID uuid.UUID) int {
	for _, line := range s.Lines {
		if line.ProductID == productID {
			return line.Quantity
		}
	}
	return 0
}

// Add merges quantity into an existing line or appends a new one
func (s *Snapshot) Add(productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	for i := range s.Lines {
		if s.Lines[i].ProductID == productID {
			s.Lines[i].Quantity += quantity
			return nil
		}
	}
	s.Lines = append(s.Lines, Line{ProductID: productID, Quantity: quantity})
	return nil
}

// SetQuantity replaces a line's quantity. Zero removes the line. A missing
// line is an error, callers add lines explicitly.
func (s *Snapshot) SetQuantity(productID uuid.UUID, quantity int) error {
	if quantity < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	for i := range s.Lines {
		if s.Lines[i].ProductID == productID {
			if quantity == 0 {
				s.Lines = append(s.Lines[:i], s.Lines[i+1:]...)
			} else {
				s.Lines[i].Quantity = quantity
			}
			return nil
		}
	}
	return shared.NewDomainError("NOT_FOUND", "Product not in cart")
}

// Remove deletes a line. Removing an absent line is an error.
func (s *Snapshot) Remove(productID uuid.UUID) error {
	return s.SetQuantity(productID, 0)
}
