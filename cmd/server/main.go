package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/politrack/politrack-api/internal/handler"
	"github.com/politrack/politrack-api/internal/middleware"
	"github.com/politrack/politrack-api/internal/service"
	"github.com/politrack/politrack-api/internal/store"
	"github.com/politrack/politrack-api/pkg/config"
	"github.com/politrack/politrack-api/pkg/logger"
	corsmiddleware "github.com/politrack/politrack-api/pkg/middleware/cors"
	reqidmiddleware "github.com/politrack/politrack-api/pkg/middleware/requestid"
	"github.com/politrack/politrack-api/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	evalStore := buildStore(cfg, logr)

	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := evalStore.Init(initCtx); err != nil {
		logr.Sugar().Fatalw("store initialization failed", "error", err)
	}
	defer evalStore.Close() //nolint:errcheck

	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	metricsSvc.SetActiveDriver(evalStore.ActiveDriver())
	evalStore.SetObserver(metricsSvc)

	cursoSvc := service.NewCursoService(evalStore, validate, logr)
	evalSvc := service.NewEvaluationService(evalStore, validate, logr)
	evalSvc.SetMetrics(metricsSvc)
	backupSvc := service.NewBackupService(evalStore, logr, cfg.Backup.MaxSnapshotBytes)
	exportSvc := service.NewExportService(evalStore, ',', logr)

	var archiveSvc *service.ArchiveService
	if cfg.Backup.ArchiveEnabled {
		archiveStore, err := storage.NewLocalStorage(cfg.Backup.ArchiveDir)
		if err != nil {
			logr.Sugar().Fatalw("archive directory unavailable", "dir", cfg.Backup.ArchiveDir, "error", err)
		}
		archiveSvc = service.NewArchiveService(backupSvc, archiveStore, cfg.Backup.ArchiveInterval, cfg.Backup.ArchiveRetention, logr)
		archiveSvc.Start(context.Background())
		defer archiveSvc.Stop()
	}

	cursoHandler := handler.NewCursoHandler(cursoSvc)
	evalHandler := handler.NewEvaluationHandler(evalSvc)
	backupHandler := handler.NewBackupHandler(backupSvc, archiveSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, evalStore)
	uiStateHandler := handler.NewUIStateHandler(evalStore)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	{
		cursos := api.Group("/cursos")
		{
			cursos.GET("", cursoHandler.List)
			cursos.POST("", cursoHandler.Create)
			cursos.POST("/import", cursoHandler.Import)
			cursos.GET("/:cursoId", cursoHandler.Get)
			cursos.PATCH("/:cursoId", cursoHandler.Rename)
			cursos.PUT("/:cursoId/estudiantes", cursoHandler.ReplaceEstudiantes)
			cursos.DELETE("/:cursoId", cursoHandler.Delete)

			cursos.GET("/:cursoId/evaluaciones", evalHandler.List)
			cursos.PUT("/:cursoId/evaluaciones/grupal/:subgrupoId", evalHandler.SaveGrupal)
			cursos.PUT("/:cursoId/evaluaciones/individual/:correo", evalHandler.SaveIndividual)

			if cfg.Export.Enabled {
				cursos.GET("/:cursoId/notas.csv", exportHandler.CSV)
				cursos.GET("/:cursoId/notas.pdf", exportHandler.PDF)
			}
		}

		api.GET("/comentarios-comunes", evalHandler.ComentariosComunes)
		api.POST("/comentarios-comunes", evalHandler.AddComentarioComun)

		api.GET("/rubricas", evalHandler.Rubricas)
		api.PUT("/rubricas/:rubricaId", evalHandler.SaveRubrica)

		api.GET("/estado-ui", uiStateHandler.Get)
		api.PUT("/estado-ui", uiStateHandler.Save)

		api.GET("/backup", backupHandler.Export)
		api.POST("/backup/restore", backupHandler.Import)

		if cfg.Backup.ArchiveEnabled {
			api.POST("/backup/archive", backupHandler.Archive)
			api.GET("/backup/archives", backupHandler.ListArchives)
			api.GET("/backup/archives/:file", backupHandler.DownloadArchive)
			api.DELETE("/backup/archives/:file", backupHandler.DeleteArchive)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "driver", evalStore.ActiveDriver())
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

// buildStore assembles the hybrid store according to STORAGE_DRIVER. In
// auto mode SQLite is primary and Redis the fallback; forcing a single
// driver leaves the other slot empty.
func buildStore(cfg *config.Config, logr *zap.Logger) *store.Hybrid {
	var relational, document store.EvaluationStore
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		relational = store.NewSQLiteStore(cfg.Storage, logr)
	case config.DriverRedis:
		document = store.NewRedisStore(cfg.Redis, logr)
	default:
		relational = store.NewSQLiteStore(cfg.Storage, logr)
		document = store.NewRedisStore(cfg.Redis, logr)
	}
	return store.NewHybrid(relational, document, logr)
}
