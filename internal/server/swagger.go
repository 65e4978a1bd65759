package server

//go:generate swag init -g internal/server/server.go -o docs/swagger

// @title riskd API
// @version 1.0
// @description Interactive documentation for the riskd alert scoring API surface.
// @contact.name riskd Maintainers
// @contact.url https://github.com/exeosec/riskd
// @BasePath /
