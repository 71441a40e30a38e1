package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"time"

	"github.com/NegoBotEngine/NegoBot/internal/analysis"
	"github.com/NegoBotEngine/NegoBot/internal/archive"
	"github.com/NegoBotEngine/NegoBot/internal/bot"
	"github.com/NegoBotEngine/NegoBot/internal/configs"
	"github.com/NegoBotEngine/NegoBot/internal/language"
	"github.com/NegoBotEngine/NegoBot/internal/llm"
	"github.com/NegoBotEngine/NegoBot/internal/nlog"
	"github.com/NegoBotEngine/NegoBot/internal/session"
	"github.com/NegoBotEngine/NegoBot/internal/web"
	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the yaml config file")
	flag.Parse()

	// 1. Configuration
	_ = godotenv.Load() // .env is optional

	if err := configs.Load(*configPath); err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	logsCfg := configs.GetLogsConfig()
	nlog.Setup(logsCfg.Level, logsCfg.File, logsCfg.MaxSizeMB, logsCfg.MaxBackups)

	serverCfg := configs.GetServerConfig()
	language.SetLocale(serverCfg.Locale)

	// 2. Dependency injection
	sessionsCfg := configs.GetSessionsConfig()
	store := session.NewStore(time.Duration(sessionsCfg.TTLSeconds)*time.Second, sessionsCfg.MaxEntries)

	client := llm.NewClient()

	analysisCfg := configs.GetAnalysisConfig()
	var emotions *analysis.EmotionAnalyzer
	if analysisCfg.EmotionEndpoint != "" {
		emotions = analysis.NewEmotionAnalyzer(analysisCfg.EmotionEndpoint, analysisCfg.ConfidenceThreshold)
	}
	var contexts *analysis.ContextExtractor
	if analysisCfg.ContextEnabled {
		contexts = analysis.NewContextExtractor(client, analysisCfg.ContextModel)
	}
	pipeline := analysis.NewPipeline(emotions, contexts)

	negotiator := bot.New(store, client, pipeline)

	var archiver *archive.Repository
	if dsn := string(configs.GetArchiveConfig().DSN); dsn != "" {
		db, err := sql.Open("mysql", dsn)
		if err != nil {
			log.Fatal("Failed to open archive DB: ", err)
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			log.Fatal("Failed to connect to archive DB: ", err)
		}

		archiver = archive.NewRepository(db)
		if err := archiver.EnsureSchema(context.Background()); err != nil {
			log.Fatal("Failed to prepare archive schema: ", err)
		}
		nlog.Info("Archive", "info", "transcript archive enabled")
	}

	// 3. HTTP API
	server := web.NewServer(store, negotiator, archiver)

	nlog.Info("Main", "info", "starting", "app", configs.GetConfig().AppName, "port", serverCfg.PortString)
	if err := server.ListenAndServe(":" + serverCfg.PortString); err != nil {
		log.Fatal(err)
	}
}
