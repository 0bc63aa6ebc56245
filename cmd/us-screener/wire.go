//go:build wireinject
// +build wireinject

package main

import (
	"us-screener/internal/app"

	"github.com/google/wire"
)

// InitializeApp builds the App graph via Wire.
// Caller must call the returned cleanup when done.
func InitializeApp(path app.ConfigPath) (*app.App, func(), error) {
	wire.Build(app.ProviderSet)
	return nil, nil, nil
}
