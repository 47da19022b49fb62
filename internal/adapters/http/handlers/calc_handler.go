package handlers

import (
	"errors"

	"retail-console/internal/core/domain"
	"retail-console/internal/pkg/finance"
	"retail-console/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CalcHandler exposes the console's derived-value calculators
type CalcHandler struct{}

// NewCalcHandler creates a new calculator handler
func NewCalcHandler() *CalcHandler {
	return &CalcHandler{}
}

// RecyclingProfitRequest represents a recycling profit request body
type RecyclingProfitRequest struct {
	Record            domain.RecyclingRecord `json:"record"`
	RequestedQuantity float64                `json:"requested_quantity"`
}

// CurrencyRequest carries the raw form inputs as typed by the operator
type CurrencyRequest struct {
	AmountUSD    string `json:"amount_usd"`
	ExchangeRate string `json:"exchange_rate"`
}

// DebtRemainderRequest represents a debt remainder request body
type DebtRemainderRequest struct {
	Total    float64   `json:"total"`
	Payments []float64 `json:"payments"`
}

// RecyclingProfit computes the profit of recycling part of a record
func (h *CalcHandler) RecyclingProfit(c *fiber.Ctx) error {
	var req RecyclingProfitRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	profit, err := finance.RecyclingProfit(req.Record, req.RequestedQuantity)
	if err != nil {
		if errors.Is(err, domain.ErrCalculation) {
			return response.UnprocessableEntity(c, err.Error())
		}
		return err
	}

	return response.Success(c, "", fiber.Map{"profit": profit})
}

// Currency converts a USD amount to the local currency
func (h *CalcHandler) Currency(c *fiber.Ctx) error {
	var req CurrencyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	return response.Success(c, "", fiber.Map{
		"amount": finance.ConvertCurrency(req.AmountUSD, req.ExchangeRate),
	})
}

// DebtRemainder computes what is left of a debt after payments
func (h *CalcHandler) DebtRemainder(c *fiber.Ctx) error {
	var req DebtRemainderRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	return response.Success(c, "", fiber.Map{
		"remainder": finance.DebtRemainder(req.Total, req.Payments...),
	})
}
