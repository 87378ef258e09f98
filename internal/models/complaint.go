// internal/models/complaint.go
package models

import "strings"

// ContractorTypeCustomer marks a contractor acting as a reseller's client.
const ContractorTypeCustomer = 0

// Seller is the reseller (tenant) owning a complaint.
type Seller struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Contractor is a party record. Only customer contractors are valid clients.
type Contractor struct {
	ID         int    `json:"id"`
	Type       int    `json:"type"`
	SellerID   int    `json:"sellerId"`
	Name       string `json:"name"`
	FirstName  string `json:"firstName,omitempty"`
	MiddleName string `json:"middleName,omitempty"`
	LastName   string `json:"lastName,omitempty"`
	Email      string `json:"email,omitempty"`
	Mobile     string `json:"mobile,omitempty"`
}

// IsCustomerOf reports whether c is a customer belonging to sellerID.
func (c *Contractor) IsCustomerOf(sellerID int) bool {
	return c != nil && c.Type == ContractorTypeCustomer && c.SellerID == sellerID
}

// FullName joins the non-empty name parts.
func (c *Contractor) FullName() string {
	return joinName(c.FirstName, c.MiddleName, c.LastName)
}

// DisplayName is FullName, or the raw Name when no parts are set.
func (c *Contractor) DisplayName() string {
	if full := c.FullName(); full != "" {
		return full
	}
	return c.Name
}

// Employee is a member of the reseller's staff.
type Employee struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	FirstName  string `json:"firstName,omitempty"`
	MiddleName string `json:"middleName,omitempty"`
	LastName   string `json:"lastName,omitempty"`
	Email      string `json:"email,omitempty"`
}

func (e *Employee) FullName() string {
	if full := joinName(e.FirstName, e.MiddleName, e.LastName); full != "" {
		return full
	}
	return e.Name
}

func joinName(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
