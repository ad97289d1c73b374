package router

import (
	"net/http"

	"autoservice/api"
	"autoservice/config"
	_ "autoservice/docs"
	"autoservice/jobs"
	"autoservice/middleware"
	"autoservice/service"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, store *service.Store, mailer jobs.ReportMailer) *gin.Engine {
	// 设置运行模式
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	api.RegisterValidators()

	r := gin.Default()

	// CORS 中间件
	r.Use(CORSMiddleware())

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	clientHandler := api.NewClientHandler(store)
	workOrderHandler := api.NewWorkOrderHandler(store)
	taskHandler := api.NewTaskHandler(store)
	cashHandler := api.NewCashFlowHandler(store)
	exportHandler := api.NewExportHandler(store)
	employeeHandler := api.NewEmployeeHandler(store)
	settingHandler := api.NewSettingHandler(store)
	dashboardHandler := api.NewDashboardHandler(store, mailer, cfg.Report)

	v := r.Group("/api")
	v.Use(middleware.WriteRateLimit(cfg.Server.RateLimit, cfg.Server.RateWindow))
	{
		clients := v.Group("/clients")
		{
			clients.GET("", clientHandler.List)
			clients.POST("", clientHandler.Create)
			clients.GET("/:id", clientHandler.Get)
			clients.PUT("/:id", clientHandler.Update)
			clients.DELETE("/:id", clientHandler.Delete)
		}

		orders := v.Group("/work-orders")
		{
			orders.GET("", workOrderHandler.List)
			orders.POST("", workOrderHandler.Create)
			orders.GET("/next-number", workOrderHandler.NextNumber)
			orders.GET("/:id", workOrderHandler.Get)
			orders.PUT("/:id", workOrderHandler.Update)
			orders.DELETE("/:id", workOrderHandler.Delete)
			orders.PUT("/:id/status", workOrderHandler.UpdateStatus)
			orders.POST("/:id/complete", workOrderHandler.Complete)
			orders.POST("/:id/works", workOrderHandler.AddWork)
			orders.DELETE("/:id/works/:itemId", workOrderHandler.DeleteWork)
			orders.POST("/:id/expenses", workOrderHandler.AddExpense)
			orders.DELETE("/:id/expenses/:itemId", workOrderHandler.DeleteExpense)
		}

		tasks := v.Group("/tasks")
		{
			tasks.GET("", taskHandler.List)
			tasks.POST("", taskHandler.Create)
			tasks.GET("/:id", taskHandler.Get)
			tasks.PUT("/:id", taskHandler.Update)
			tasks.DELETE("/:id", taskHandler.Delete)
		}

		cash := v.Group("/cash")
		{
			cash.GET("", cashHandler.List)
			cash.POST("", cashHandler.Create)
			cash.DELETE("/:id", cashHandler.Delete)
			cash.GET("/stats", cashHandler.Stats)
			cash.GET("/balance", cashHandler.Balance)
			cash.GET("/export/excel", exportHandler.ExportExcel)
			cash.GET("/export/csv", exportHandler.ExportCSV)
		}

		employees := v.Group("/employees")
		{
			employees.GET("", employeeHandler.List)
			employees.POST("", employeeHandler.Create)
			employees.GET("/:id", employeeHandler.Get)
			employees.PUT("/:id", employeeHandler.Update)
			employees.DELETE("/:id", employeeHandler.Delete)
			employees.GET("/:id/balance", employeeHandler.Balance)
			employees.GET("/:id/salary", employeeHandler.Salary)
			employees.POST("/:id/pay", employeeHandler.Pay)
		}

		settings := v.Group("/settings")
		{
			settings.GET("", settingHandler.List)
			settings.POST("", settingHandler.Upsert)
			settings.POST("/bulk", settingHandler.Bulk)
		}

		v.GET("/dashboard", dashboardHandler.Dashboard)
		v.POST("/reports/email", dashboardHandler.SendReport)
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		if err := store.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unavailable",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
