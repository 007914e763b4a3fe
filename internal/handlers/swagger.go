package handlers

// @title Product Inventory API
// @version 1.0
// @description CRUD operations over a single-table product inventory

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8081
// @BasePath /

// @tag.name health
// @tag.description Liveness check

// @tag.name products
// @tag.description Product inventory operations
