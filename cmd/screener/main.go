package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resume-screener-go/internal/api/handler"
	"resume-screener-go/internal/api/router"
	"resume-screener-go/internal/config"
	"resume-screener-go/internal/evaluation"
	"resume-screener-go/internal/extractor"
	"resume-screener-go/internal/intake"
	applogger "resume-screener-go/internal/logger"
	"resume-screener-go/internal/outbox"
	"resume-screener-go/internal/output"
	"resume-screener-go/internal/processor"
	"resume-screener-go/internal/screening"
	"resume-screener-go/internal/storage"
	"resume-screener-go/internal/tracing"

	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/spf13/pflag"
)

var version = "1.0.0" //nolint:gochecknoglobals

func main() {
	var (
		configPath   string
		mode         string
		dir          string
		position     string
		continuous   bool
		simulate     bool
		baselinePath string
	)
	pflag.StringVarP(&configPath, "config", "c", "", "配置文件路径，为空时在常见位置查找")
	pflag.StringVarP(&mode, "mode", "m", "scan", "运行模式: scan=批量筛选目录, email=邮件收件代理, serve=HTTP服务")
	pflag.StringVarP(&dir, "dir", "d", "", "scan模式的简历目录，覆盖配置文件")
	pflag.StringVarP(&position, "position", "p", "", "目标岗位，覆盖配置文件")
	pflag.BoolVar(&continuous, "continuous", false, "email模式下按间隔持续收件")
	pflag.BoolVar(&simulate, "simulate", false, "使用模拟评分（演示用）")
	pflag.StringVar(&baselinePath, "evaluate", "", "scan模式下与人工基准JSON对比评估")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	if dir != "" {
		cfg.Screening.InputDir = dir
	}
	if position != "" {
		cfg.Screening.TargetPosition = position
	}
	if simulate {
		cfg.Screening.Simulation = true
	}

	applogger.Init(applogger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})
	log := applogger.WithComponent("main")
	log.Info().Str("version", version).Str("mode", mode).Msg("简历筛选服务启动")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		log.Fatal().Err(err).Msg("初始化追踪失败")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("关闭追踪导出失败")
		}
	}()

	store, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("初始化存储失败")
	}
	defer store.Close()

	ext, err := extractor.New(ctx, extractor.WithLogger(applogger.WithComponent("extractor")))
	if err != nil {
		log.Fatal().Err(err).Msg("初始化文本提取器失败")
	}

	proc, err := processor.BuildFromConfig(cfg, ext, store, applogger.WithComponent("processor"))
	if err != nil {
		log.Fatal().Err(err).Msg("初始化筛选流水线失败")
	}

	switch mode {
	case "scan":
		runScan(ctx, cfg, proc, baselinePath)
	case "email":
		runEmail(ctx, cfg, proc, store, continuous)
	case "serve":
		runServe(ctx, cfg, proc, store)
	default:
		fmt.Fprintf(os.Stderr, "未知模式 '%s'，支持: scan, email, serve\n", mode)
		os.Exit(1)
	}
}

// runScan 批量筛选目录并输出报告，可选地与人工基准对比
func runScan(ctx context.Context, cfg *config.Config, proc *processor.ScreeningProcessor, baselinePath string) {
	log := applogger.WithComponent("scan")

	started := time.Now()
	report, err := proc.ScreenDirectory(ctx, cfg.Screening.InputDir, cfg.Screening.TargetPosition)
	if err != nil {
		log.Fatal().Err(err).Msg("批量筛选失败")
	}
	elapsed := time.Since(started)

	fmt.Printf("\n=== 筛选结果: %s (%d 份简历) ===\n", report.TargetPosition, report.Statistics.TotalCandidates)
	for _, c := range report.TopCandidates {
		fmt.Println(screening.FormatRankLine(c))
	}
	fmt.Printf("\n平均分 %.1f | 最高 %d | 最低 %d\n",
		report.Statistics.AverageGrade, report.Statistics.HighestGrade, report.Statistics.LowestGrade)
	if len(report.SkippedFiles) > 0 {
		fmt.Printf("解析失败被跳过: %v\n", report.SkippedFiles)
	}

	csvPath, jsonPath, err := output.WriteReport(report, cfg.Screening.ResultsDir)
	if err != nil {
		log.Fatal().Err(err).Msg("写出结果文件失败")
	}
	log.Info().Str("csv", csvPath).Str("json", jsonPath).Msg("结果文件已生成")

	if baselinePath != "" {
		baseline, err := evaluation.LoadBaseline(baselinePath)
		if err != nil {
			log.Fatal().Err(err).Msg("加载人工基准失败")
		}
		summary := evaluation.Evaluate(report.Results, baseline, elapsed)
		fmt.Printf("\n=== 人工基准对比 ===\n")
		fmt.Printf("评分一致率 %.0f%% (%d 份参与比较) | 平均偏差 %.1f | 标准差 %.1f\n",
			summary.Accuracy.WithinTolerance*100, summary.Accuracy.Compared,
			summary.Accuracy.MeanAbsoluteError, summary.Accuracy.StdDeviation)
		fmt.Printf("Top-%d 重合率 %.0f%%\n", summary.TopN, summary.TopNOverlap*100)
		fmt.Printf("估算节省人工审阅时间 %s (%.0f%%)\n",
			summary.TimeSavings.Saved.Round(time.Second), summary.TimeSavings.SavedRatio*100)
	}
}

// runEmail 邮件收件代理
func runEmail(ctx context.Context, cfg *config.Config, proc *processor.ScreeningProcessor, store *storage.Storage, continuous bool) {
	log := applogger.WithComponent("email")

	agent, err := intake.NewEmailAgent(cfg, proc, store, log)
	if err != nil {
		log.Fatal().Err(err).Msg("初始化邮件代理失败")
	}

	if continuous {
		log.Info().Int("interval_minutes", cfg.Email.IntervalMinutes).Msg("进入持续收件模式")
		if err := agent.RunContinuous(ctx); err != nil && ctx.Err() == nil {
			log.Fatal().Err(err).Msg("持续收件失败")
		}
		return
	}

	n, err := agent.RunOnce(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("收件处理失败")
	}
	log.Info().Int("resumes", n).Msg("收件处理完成")
}

// runServe HTTP服务模式：API + 简历接收事件消费者
func runServe(ctx context.Context, cfg *config.Config, proc *processor.ScreeningProcessor, store *storage.Storage) {
	log := applogger.WithComponent("serve")

	// Hertz日志走zerolog适配器，与应用日志统一
	glog.SetLogger(hertzadapter.From(applogger.Logger))

	if store.RabbitMQ != nil {
		if err := store.RabbitMQ.StartConsumer(ctx, proc.HandleResumeReceived); err != nil {
			log.Fatal().Err(err).Msg("启动简历事件消费者失败")
		}
		log.Info().Msg("简历事件消费者已启动")
	}

	// 发件箱中继补发直连发布失败的事件，需要MySQL与RabbitMQ同时可用
	if store.MySQL != nil && store.RabbitMQ != nil {
		relay := outbox.NewMessageRelay(store.MySQL.DB(), store.RabbitMQ, applogger.WithComponent("outbox"))
		relay.Start()
		defer relay.Stop()
	}

	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		tracer,
	)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))

	screeningHandler := handler.NewScreeningHandler(cfg, store, proc)
	router.RegisterRoutes(h, cfg, screeningHandler)

	go func() {
		log.Info().Str("address", cfg.Server.Address).Msg("HTTP服务器启动")
		if err := h.Run(); err != nil {
			log.Fatal().Err(err).Msg("HTTP服务器退出")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("接收到终止信号，正在优雅退出")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("服务器关闭失败")
	}
	log.Info().Msg("优雅退出完成")
}
