package api

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Typed wrappers over the billing API resources the console pages
// render. All of them ride the authenticated pipeline; the API applies
// company scoping and real permission checks server-side.

type Customer struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Phone     string  `json:"phone"`
	Address   string  `json:"address"`
	PlanID    string  `json:"planId"`
	CompanyID *string `json:"companyId,omitempty"`
	Balance   float64 `json:"balance"`
	Status    string  `json:"status"`
}

type Plan struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	SpeedMbps    int     `json:"speedMbps"`
	MonthlyPrice float64 `json:"monthlyPrice"`
}

type Payment struct {
	ID          string    `json:"id"`
	CustomerID  string    `json:"customerId"`
	Amount      float64   `json:"amount"`
	Method      string    `json:"method"`
	CollectedBy string    `json:"collectedBy"`
	PaidAt      time.Time `json:"paidAt"`
}

type Agent struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Phone     string  `json:"phone"`
	CompanyID *string `json:"companyId,omitempty"`
}

type CollectionSummary struct {
	TotalDue        float64 `json:"totalDue"`
	TotalCollected  float64 `json:"totalCollected"`
	PendingInvoices int     `json:"pendingInvoices"`
}

func (c *Client) ListCustomers(ctx context.Context) ([]Customer, error) {
	var out []Customer
	if err := c.do(ctx, http.MethodGet, "/customers", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	var out Customer
	if err := c.do(ctx, http.MethodGet, "/customers/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListPlans(ctx context.Context) ([]Plan, error) {
	var out []Plan
	if err := c.do(ctx, http.MethodGet, "/plans", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListPayments(ctx context.Context) ([]Payment, error) {
	var out []Payment
	if err := c.do(ctx, http.MethodGet, "/payments", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListAgents(ctx context.Context) ([]Agent, error) {
	var out []Agent
	if err := c.do(ctx, http.MethodGet, "/agents", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCollectionSummary(ctx context.Context) (*CollectionSummary, error) {
	var out CollectionSummary
	if err := c.do(ctx, http.MethodGet, "/collection/summary", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
