//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/ai-wardrobe/internal/bootstrap"
	"github.com/yanqian/ai-wardrobe/internal/domain/bgremoval"
	"github.com/yanqian/ai-wardrobe/internal/domain/garment"
	"github.com/yanqian/ai-wardrobe/internal/domain/recommendation"
	"github.com/yanqian/ai-wardrobe/internal/domain/settings"
	"github.com/yanqian/ai-wardrobe/internal/domain/weather"
	"github.com/yanqian/ai-wardrobe/internal/infra/config"
	"github.com/yanqian/ai-wardrobe/internal/infra/cutout"
	"github.com/yanqian/ai-wardrobe/internal/infra/removebg"
	"github.com/yanqian/ai-wardrobe/internal/infra/weather/qweather"
	httpiface "github.com/yanqian/ai-wardrobe/internal/interface/http"
	"github.com/yanqian/ai-wardrobe/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideLLMFactory,
		provideModelLister,
		provideGarmentConfig,
		provideBackgroundRemovalConfig,
		provideCutoutRemover,
		provideRemoveBGClient,
		provideWeatherConfig,
		provideQWeatherClient,
		provideRecommendationConfig,
		providePicker,
		provideSettingsDefaults,
		provideValkeyClient,
		provideWeatherCache,
		provideSettingsStore,
		provideWardrobeRepository,
		provideImageStorage,
		bgremoval.NewService,
		garment.NewAnalyzer,
		garment.NewService,
		weather.NewService,
		recommendation.NewEngine,
		settings.NewService,
		wire.Bind(new(bgremoval.LocalRemover), new(*cutout.Remover)),
		wire.Bind(new(bgremoval.RemoteRemover), new(*removebg.Client)),
		wire.Bind(new(settings.CreditChecker), new(*removebg.Client)),
		wire.Bind(new(weather.Provider), new(*qweather.Client)),
		wire.Bind(new(garment.BackgroundRemover), new(*bgremoval.Service)),
		wire.Bind(new(garment.SemanticAnalyzer), new(*garment.Analyzer)),
		wire.Bind(new(httpiface.WardrobeService), new(*garment.Service)),
		wire.Bind(new(httpiface.WeatherService), new(*weather.Service)),
		wire.Bind(new(httpiface.Recommender), new(*recommendation.Engine)),
		wire.Bind(new(httpiface.SettingsService), new(*settings.Service)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
