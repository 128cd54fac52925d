package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"

	"vpnvalidator/internal/classify"
	"vpnvalidator/internal/config"
	"vpnvalidator/internal/extract"
	"vpnvalidator/internal/fields"
	"vpnvalidator/internal/handler"
	"vpnvalidator/internal/judge"
	"vpnvalidator/internal/judge/gemini"
	"vpnvalidator/internal/pipeline"
	"vpnvalidator/internal/port"
	"vpnvalidator/internal/router"
	"vpnvalidator/internal/rules"
	"vpnvalidator/internal/signature"
	localstorage "vpnvalidator/internal/storage/local"
	s3storage "vpnvalidator/internal/storage/s3"
	"vpnvalidator/internal/telemetry/langfuse"
	"vpnvalidator/internal/telemetry/noop"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	validator, err := buildValidator(cfg)
	if err != nil {
		return err
	}

	archiver, err := buildArchiver(cfg)
	if err != nil {
		return err
	}

	healthH := handler.NewHealthHandler(cfg.Judge.Provider)
	validateH := handler.NewValidateHandler(validator, archiver, cfg.Validator.MaxFileSizeMB)

	r := router.Setup(healthH, validateH, cfg.CORS.AllowedOrigins)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func buildValidator(cfg *config.Config) (*pipeline.Validator, error) {
	engine := rules.NewEngine(cfg.Validator.RequiredFields, cfg.Validator.EmailDomain, cfg.Validator.MinSignatures)
	ruleBased := judge.NewRuleBasedJudge(engine)

	judge.RegisterProvider("gemini", func(jc *config.JudgeConfig) (port.Judge, error) {
		return gemini.NewJudge(jc, &cfg.Validator), nil
	})
	judge.RegisterProvider("rules", func(_ *config.JudgeConfig) (port.Judge, error) {
		return ruleBased, nil
	})

	primary, err := judge.NewJudge(&cfg.Judge)
	if err != nil {
		return nil, fmt.Errorf("creating judge: %w", err)
	}

	var traces port.TraceSink
	if cfg.Telemetry.Enabled() {
		traces = langfuse.NewSink(&cfg.Telemetry)
	} else {
		traces = noop.NewNoopSink()
	}

	return pipeline.NewValidator(
		extract.NewExtractor(),
		classify.NewClassifier(),
		fields.NewExtractor(cfg.Validator.RequiredFields),
		signature.NewDetector(extract.NewRasterizer(cfg.Signature.ResolutionDPI), cfg.Signature, cfg.Validator.MinSignatures),
		engine,
		judge.NewFallbackJudge(primary, ruleBased, cfg.Judge.MaxRetries),
		traces,
	), nil
}

func buildArchiver(cfg *config.Config) (*pipeline.Archiver, error) {
	switch cfg.Storage.Provider {
	case "s3":
		store, err := s3storage.NewS3Client(&cfg.Storage.S3)
		if err != nil {
			return nil, fmt.Errorf("initializing s3 storage: %w", err)
		}
		return pipeline.NewArchiver(store), nil
	case "local":
		store, err := localstorage.NewLocalStore(cfg.Storage.LocalDir)
		if err != nil {
			return nil, fmt.Errorf("initializing local storage: %w", err)
		}
		return pipeline.NewArchiver(store), nil
	case "", "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown storage provider: %s", cfg.Storage.Provider)
	}
}
