// Package main provides the entry point of the genzi-rms authorization service.
// It resolves the roles, category grants and form and field rules of a tenant's
// users into allow or deny decisions, and serves them through a Fiber web service
// backed by gorm.
package main
