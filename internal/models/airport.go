package models

// Airport maps an IATA code to its city, used to resolve a travel's
// destination city from its country code.
type Airport struct {
	Code    string `json:"code" db:"code"`
	City    string `json:"city" db:"city"`
	Country string `json:"country" db:"country"`
}
