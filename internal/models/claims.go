package models

import "github.com/golang-jwt/jwt/v5"

// DeviceClaims authenticates a scanner device or signed-in employee
// against the development server's scan endpoints.
type DeviceClaims struct {
	jwt.RegisteredClaims
	EmployeeID string `json:"employee_id"`
	StoreID    string `json:"store_id"`
	Role       string `json:"role"`
}
