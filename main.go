package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/example/wordmaster/internal/cloud"
	"github.com/example/wordmaster/internal/database"
	"github.com/example/wordmaster/internal/excel"
	"github.com/example/wordmaster/internal/scheduler"
	"github.com/example/wordmaster/internal/syncer"
)

func main() {
	importFile := flag.String("import", "", "Import a word batch from an Excel/CSV file and exit")
	flag.Parse()

	// Загружаем переменные окружения из .env, если он есть
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	// Подключаемся к локальной базе данных
	if err := database.Connect(); err != nil {
		log.Fatalf("Failed to connect to local database: %v", err)
	}
	defer database.Close()

	backupRepo := database.NewBackupRepository()

	// Import mode: create a pending session and leave it for the next sync
	if *importFile != "" {
		config := excel.DefaultImportConfig()
		config.FilePath = *importFile
		result, err := excel.ImportWords(config, backupRepo)
		if err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		log.Printf("Imported %d words (%d skipped) into session %s",
			result.Created, result.Skipped, result.Session.ID)
		return
	}

	userID := os.Getenv("WORDMASTER_USER_ID")
	if userID == "" {
		log.Fatal("WORDMASTER_USER_ID environment variable is not set")
	}

	dsn := os.Getenv("CLOUD_DATABASE_URL")
	if dsn == "" {
		log.Fatal("CLOUD_DATABASE_URL environment variable is not set")
	}

	cloudClient, err := cloud.Connect(dsn)
	if err != nil {
		log.Fatalf("Failed to connect to cloud database: %v", err)
	}
	defer cloudClient.Close()

	orchestrator := syncer.NewOrchestrator(cloudClient, backupRepo)

	// Подтягиваем актуальную статистику с сервера при старте
	statsService := syncer.NewStatsService(cloudClient, database.NewDayStatsRepository())
	refreshCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if _, err := statsService.RefreshFromServer(refreshCtx, userID); err != nil {
		log.Printf("Could not refresh day stats from server: %v", err)
	}
	cancel()

	// Запускаем периодическую синхронизацию
	sched := scheduler.New(orchestrator, userID)
	sched.Start()
	defer sched.Stop()

	// Run one batch immediately so pending work doesn't wait a full interval
	sched.NotifyOnline()

	log.Println("Sync service started. Press Ctrl+C to stop.")

	// Ждем сигнала завершения
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	log.Printf("Received signal: %v", sig)
	log.Println("Sync service stopped")
}
