package di

import (
	"gorm.io/gorm"

	"magic-encyclopedia/backend/ai"
	"magic-encyclopedia/backend/audio"
	"magic-encyclopedia/backend/internal/service"
	"magic-encyclopedia/backend/pkg/cache"
	"magic-encyclopedia/backend/pkg/config"
	"magic-encyclopedia/backend/pkg/jwt"
	"magic-encyclopedia/backend/pkg/logger"
	"magic-encyclopedia/backend/shared/observability"
)

// Container holds all the dependencies for the application
type Container struct {
	DB               *gorm.DB
	Config           *config.Config
	Logger           *logger.Logger
	JWTService       *jwt.Service
	Router           *ai.Router
	Player           *audio.Player
	SpeechCache      cache.SpeechCache
	Metrics          *observability.Metrics
	SettingsService  *service.SettingsService
	CharacterService *service.CharacterService
	MessageService   *service.MessageService
	ChatService      *service.ChatService
}

// New wires the application graph
func New(db *gorm.DB, cfg *config.Config, log *logger.Logger, metrics *observability.Metrics) *Container {
	jwtService := jwt.NewService(cfg.Parental.JWTSecret, cfg.Parental.TokenExpiry)
	aiRouter := ai.NewRouter(log)
	speechCache := cache.New(cfg)

	var sink audio.SinkFactory
	if cfg.Audio.PlaybackEnabled {
		sink = audio.NewPortAudioSink
	}
	player := audio.NewPlayer(sink, log)

	settingsService := service.NewSettingsService(db, cfg, log)
	characterService := service.NewCharacterService(db, aiRouter, settingsService, log)
	messageService := service.NewMessageService(db)
	chatService := service.NewChatService(
		characterService,
		messageService,
		settingsService,
		aiRouter,
		player,
		speechCache,
		metrics,
		cfg.Audio.PlaybackEnabled,
		log,
	)

	return &Container{
		DB:               db,
		Config:           cfg,
		Logger:           log,
		JWTService:       jwtService,
		Router:           aiRouter,
		Player:           player,
		SpeechCache:      speechCache,
		Metrics:          metrics,
		SettingsService:  settingsService,
		CharacterService: characterService,
		MessageService:   messageService,
		ChatService:      chatService,
	}
}
