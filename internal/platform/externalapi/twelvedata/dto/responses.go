// Package dto defines data transfer objects for the Twelve Data API responses.
package dto

import "encoding/json"

// ErrorResponse is the body Twelve Data returns for a failed request,
// usually with HTTP 200.
type ErrorResponse struct {
	Code    int    `json:"code,omitempty"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

// PriceResponse represents the JSON response from the Twelve Data price endpoint.
type PriceResponse struct {
	ErrorResponse
	Price string `json:"price"`
}

// DividendsResponse represents the JSON response from the Twelve Data dividends endpoint.
type DividendsResponse struct {
	ErrorResponse
	Meta struct {
		Symbol   string `json:"symbol"`
		Currency string `json:"currency"`
	} `json:"meta"`
	Dividends []struct {
		ExDate string      `json:"ex_date"`
		Amount json.Number `json:"amount"`
	} `json:"dividends"`
}
