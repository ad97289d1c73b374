package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"autoservice/config"
	"autoservice/database"
	"autoservice/jobs"
	"autoservice/router"
	"autoservice/service"

	"github.com/joho/godotenv"
)

// @title 汽修店管理系统 API
// @version 1.0
// @description 汽修店后台 API：客户、工单、任务、现金流、员工提成与工资、设置和统计报表
// @host localhost:8080
// @BasePath /

// 优雅关闭时等待进行中请求的最长时间
const shutdownTimeout = 10 * time.Second

var (
	configFile  string
	port        string
	showVersion bool
)

func init() {
	flag.StringVar(&configFile, "config", "", "外部配置文件路径（可选）")
	flag.StringVar(&configFile, "c", "", "外部配置文件路径（简写）")
	flag.StringVar(&port, "port", "", "监听端口，如: 8080 或 :8080")
	flag.StringVar(&port, "p", "", "监听端口（简写）")
	flag.BoolVar(&showVersion, "version", false, "显示版本信息")
	flag.BoolVar(&showVersion, "v", false, "显示版本信息（简写）")
}

func main() {
	flag.Parse()

	if showVersion {
		log.Println("汽修店管理系统 v1.0.0")
		return
	}

	// .env 文件可选，用于本地开发时注入 AUTOSERVICE_* 环境变量
	if err := godotenv.Load(); err == nil {
		log.Println("已加载 .env 文件")
	}

	if err := run(); err != nil {
		log.Fatalf("%v", err)
	}
}

// run 启动服务并阻塞到收到退出信号；返回前依次停止定时任务并关闭数据库
func run() error {
	// 加载配置（内置配置 + 可选的外部配置覆盖）
	cfg := config.MustLoadConfig(configFile)

	// 命令行参数覆盖端口配置
	if port != "" {
		// 自动添加冒号前缀
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Server.Port = port
		log.Printf("命令行指定端口: %s", port)
	}

	// 打印配置信息
	config.PrintConfig()

	// 初始化数据库
	db, err := database.Open(&cfg.Database)
	if err != nil {
		return fmt.Errorf("数据库初始化失败: %w", err)
	}
	store := service.NewStore(db)
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("关闭数据库失败: %v", err)
		}
		log.Println("数据库连接已关闭")
	}()

	mailer := service.NewEmailService(&cfg.Email)

	// 定时财务报表
	if cfg.Report.Enabled {
		scheduler := jobs.NewReportScheduler(cfg.Report, store, mailer)
		if err := scheduler.Start(); err != nil {
			return fmt.Errorf("启动定时报表失败: %w", err)
		}
		defer scheduler.Stop()
	}

	// 设置路由
	r := router.SetupRouter(cfg, store, mailer)

	srv := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 启动服务器
	log.Printf("==========================================")
	log.Printf("  🔧 汽修店管理系统已启动")
	log.Printf("==========================================")
	log.Printf("  Swagger:  http://localhost%s/swagger/index.html", cfg.Server.Port)
	log.Printf("  API接口:  http://localhost%s/api/", cfg.Server.Port)
	log.Printf("==========================================")

	return serve(ctx, srv)
}

// serve 在后台监听，ctx 取消后优雅关闭；监听失败时直接返回错误
func serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("服务器启动失败: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Println("收到退出信号，正在关闭服务...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("关闭服务器失败: %w", err)
	}
	log.Println("服务器已停止")
	return nil
}
