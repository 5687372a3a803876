package router

import (
	"io/fs"
	"net/http"

	"smartexpense/api"
	"smartexpense/config"
	"smartexpense/database"
	_ "smartexpense/docs"
	"smartexpense/middleware"
	"smartexpense/models"
	"smartexpense/service"
	"smartexpense/web"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter 基于 database.DB 组装服务并注册路由
func SetupRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log.Logger))
	r.Use(cors.New(corsConfig(cfg.Server.CORSOrigins)))

	// 嵌入的首页
	r.GET("/", func(c *gin.Context) {
		content, err := fs.ReadFile(web.StaticFS, "index.html")
		if err != nil {
			c.String(http.StatusInternalServerError, "failed to load page")
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", content)
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/health", func(c *gin.Context) {
		if err := database.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unavailable",
				"error":  api.SafeErrorMessage(err, "database unreachable"),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	store := service.NewExpenseStore(database.DB)
	stats := service.NewStatsService(store, cfg.Server.Location())
	settings := service.NewSettingsStore(database.DB, models.Preferences{
		MonthlyBudget: cfg.Budget.DefaultMonthly,
		Theme:         cfg.Budget.DefaultTheme,
	})
	budget := service.NewBudgetService(store, stats, settings)

	var alerter *service.BudgetAlerter
	if cfg.Email.Enabled {
		alerter = service.NewBudgetAlerter(budget, service.NewEmailService(&cfg.Email))
	}

	expenseHandler := api.NewExpenseHandler(store, stats, alerter)
	exportHandler := api.NewExportHandler(store, stats)
	settingsHandler := api.NewSettingsHandler(settings, budget)
	categoryHandler := api.NewCategoryHandler()

	apiGroup := r.Group("/api")
	apiGroup.Use(middleware.WriteRateLimit(cfg.Server.WriteRateLimit, cfg.Server.WriteRateWindow))
	{
		expenses := apiGroup.Group("/expenses")
		{
			expenses.GET("", expenseHandler.List)
			expenses.POST("", expenseHandler.Create)
			expenses.GET("/stats", expenseHandler.Stats)
			expenses.GET("/export", exportHandler.Export)
			expenses.GET("/:id", expenseHandler.Get)
			expenses.PUT("/:id", expenseHandler.Update)
			expenses.DELETE("/:id", expenseHandler.Delete)
		}

		apiGroup.GET("/categories", categoryHandler.List)
		apiGroup.GET("/settings", settingsHandler.Get)
		apiGroup.PUT("/settings", settingsHandler.Update)
		apiGroup.GET("/budget/status", settingsHandler.BudgetStatus)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		MaxAge:        86400,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
