package handlers

// @title Function Gateway
// @version 1.0
// @description Runs a serverless function behind HTTP: payloads are validated against JSON schemas, dispatched to named handlers and every failure is returned as a JSON error envelope.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:5000
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token. Only enforced when AUTH_JWT_SECRET is set.

// @tag.name function
// @tag.description Function invocation

// @tag.name health
// @tag.description Gateway health
