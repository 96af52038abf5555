package main

// @title Payment Service API
// @version 1.0
// @description VNPay gateway integration and order reconciliation for the e-commerce platform
// @termsOfService http://swagger.io/terms/

// @contact.name API Support

// @license.name MIT

// @host localhost:8083
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @tag.name Payments
// @tag.description VNPay payment creation and callback endpoints

// @tag.name Health
// @tag.description Health check endpoints
