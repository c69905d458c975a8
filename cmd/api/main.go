package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/nfse-emissor/docs"
	"github.com/jhoicas/nfse-emissor/internal/application/auth"
	"github.com/jhoicas/nfse-emissor/internal/application/emission"
	infranfse "github.com/jhoicas/nfse-emissor/internal/infrastructure/nfse"
	"github.com/jhoicas/nfse-emissor/internal/infrastructure/nfse/signer"
	infrapdf "github.com/jhoicas/nfse-emissor/internal/infrastructure/pdf"
	"github.com/jhoicas/nfse-emissor/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/nfse-emissor/internal/interfaces/http"
	"github.com/jhoicas/nfse-emissor/pkg/config"
	"github.com/jhoicas/nfse-emissor/pkg/logger"
)

// @title                       NFS-e Emissor API
// @version                     1.0
// @description                 Emisión, cancelación y consulta de NFS-e en el Ambiente de Dados Nacional.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("tpAmb", cfg.NFSe.Environment).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var (
		opts    []emission.Option
		clients auth.ClientStore
	)
	if cfg.DB.Enabled() {
		pool, err := postgres.NewPool(ctx, cfg.DB, log.Component("postgres"))
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("aplicar esquema")
		}
		opts = append(opts, emission.WithRepository(postgres.NewSubmissionRepository(pool)))
		clients = postgres.NewAPIClientRepository(pool)
	} else {
		log.Warn().Msg("sin base de datos: los envíos no se registran")
		static, err := auth.ParseStaticClients(cfg.JWT.APIClients)
		if err != nil {
			log.Fatal().Err(err).Msg("API_CLIENTS inválido")
		}
		clients = static
	}
	authUC := auth.NewAuthUseCase(clients, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	certLoader := signer.NewCertificateLoader(
		signer.WithTempDir(cfg.NFSe.TempDir),
		signer.WithOpenSSLBinary(cfg.NFSe.OpenSSLBinary),
		signer.WithLogger(log.Component("certificate")),
	)
	certSource := emission.NewFileCertificateSource(certLoader, cfg.NFSe.CertPath, cfg.NFSe.CertPassword)

	codec := infranfse.NewEnvelopeCodec()
	clientOpts := []infranfse.ClientOption{
		infranfse.WithTimeout(cfg.NFSe.Timeout),
		infranfse.WithMaxRetries(cfg.NFSe.MaxRetries),
		infranfse.WithClientLogger(log.Component("adn")),
	}
	if cfg.NFSe.BaseURL != "" {
		clientOpts = append(clientOpts, infranfse.WithBaseURL(cfg.NFSe.BaseURL))
	}
	adnClient := infranfse.NewADNClient(cfg.NFSe.Environment, codec, clientOpts...)

	opts = append(opts,
		emission.WithPDFGenerator(infrapdf.NewMarotoPDFGenerator()),
		emission.WithLogger(log.Component("emission")),
	)
	emissionSvc := emission.NewService(
		emission.Config{Environment: cfg.NFSe.Environment, AppVersion: cfg.NFSe.AppVersion},
		infranfse.NewXMLBuilderService(cfg.NFSe.TaxDefaults()),
		infranfse.NewEventBuilderService(),
		signer.NewDigitalSignatureService(),
		codec,
		certSource,
		adnClient,
		opts...,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: cfg.NFSe.Timeout + time.Second*10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "NFS-e Emissor API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "tpAmb": cfg.NFSe.Environment})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Auth:        authUC,
		Emission:    emissionSvc,
		Environment: cfg.NFSe.Environment,
		AppVersion:  cfg.NFSe.AppVersion,
		JWTSecret:   cfg.JWT.Secret,
		JWTIssuer:   cfg.JWT.Issuer,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
