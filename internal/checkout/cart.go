package checkout

import (
	"fmt"

	"github.com/cellkom/poscellkom-sub000/internal/apierror"

	"github.com/google/uuid"
)

// Cart keeps lines in insertion order, one line per product.
type Cart struct {
	lines []Line
	index map[uuid.UUID]int
}

func NewCart() *Cart {
	return &Cart{index: make(map[uuid.UUID]int)}
}

// Add appends line, or increments the quantity of the existing line for the
// same product. available is the stock known at add time; the merged quantity
// may not exceed it. Non-stock lines (uuid.Nil) are never merged or bounded.
func (c *Cart) Add(line Line, available int) error {
	if line.Quantity <= 0 {
		return apierror.Validation("quantity must be a positive integer")
	}
	if line.ProductID == uuid.Nil {
		c.lines = append(c.lines, line)
		return nil
	}
	if i, ok := c.index[line.ProductID]; ok {
		merged := c.lines[i].Quantity + line.Quantity
		if merged > available {
			return insufficient(c.lines[i].Name, available)
		}
		c.lines[i].Quantity = merged
		return nil
	}
	if line.Quantity > available {
		return insufficient(line.Name, available)
	}
	c.index[line.ProductID] = len(c.lines)
	c.lines = append(c.lines, line)
	return nil
}

// SetQuantity replaces the quantity of a product line.
func (c *Cart) SetQuantity(productID uuid.UUID, qty, available int) error {
	i, ok := c.index[productID]
	if !ok {
		return apierror.NotFound("product is not in the cart")
	}
	if qty <= 0 {
		return apierror.Validation("quantity must be a positive integer")
	}
	if qty > available {
		return insufficient(c.lines[i].Name, available)
	}
	c.lines[i].Quantity = qty
	return nil
}

// Remove drops a product line. Removing an absent product is a no-op.
func (c *Cart) Remove(productID uuid.UUID) {
	i, ok := c.index[productID]
	if !ok {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	delete(c.index, productID)
	for id, j := range c.index {
		if j > i {
			c.index[id] = j - 1
		}
	}
}

// Lines returns a copy of the cart lines.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int { return len(c.lines) }

func insufficient(name string, available int) error {
	return apierror.Validation(fmt.Sprintf("insufficient stock for %s: %d available", name, available))
}
