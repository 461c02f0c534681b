package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/benwu408/ai-journal/internal/backup"
	"github.com/benwu408/ai-journal/internal/httpapi"
	"github.com/benwu408/ai-journal/internal/llm"
	"github.com/benwu408/ai-journal/internal/service"
	"github.com/benwu408/ai-journal/internal/store"
)

func main() {
	if err := loadConfigFile("ai-journal.ini"); err != nil {
		log.Printf("load ai-journal.ini failed: %v", err)
	}
	if err := loadConfigFile(".env"); err != nil {
		log.Printf("load .env failed: %v", err)
	}

	addr := resolveListenAddr()
	storeEngine := strings.ToLower(envOrDefault("AIJOURNAL_STORE", store.EngineSQLite))
	dataFile := envOrDefault("AIJOURNAL_DATA_FILE", defaultDataFile(storeEngine))

	st, err := store.NewByEngine(storeEngine, dataFile)
	if err != nil {
		log.Fatalf("init store failed: %v", err)
	}
	if closer, ok := st.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				log.Printf("store close failed: %v", err)
			}
		}()
	}

	svc := service.New(st)
	defer svc.Close()

	if llmClient := initLLMClientFromEnv(); llmClient != nil {
		svc.SetLLMClient(llmClient)
		log.Printf("llm integration enabled")
	} else {
		log.Printf("llm integration disabled, insights use local fallbacks only")
	}

	handler := httpapi.NewHandler(svc)
	if uploader := initBackupUploaderFromEnv(); uploader.Configured() {
		handler.SetBackupUploader(uploader)
		log.Printf("backup export enabled")
	}
	router := httpapi.NewRouter(handler)

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("ai journal backend listening on %s (store=%s file=%s)", addr, storeEngine, dataFile)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server failed: %v", err)
	}
}

func resolveListenAddr() string {
	defaultHost, defaultPort := parseListenAddr(envOrDefault("AIJOURNAL_ADDR", ":8080"))
	if defaultPort <= 0 {
		defaultPort = 8080
	}

	defaultHost = strings.TrimSpace(envOrDefault("AIJOURNAL_HOST", defaultHost))
	defaultPort = parseEnvInt("AIJOURNAL_PORT", defaultPort)

	host := flag.String("host", defaultHost, "server listen host, e.g. 0.0.0.0")
	port := flag.Int("port", defaultPort, "server listen port, e.g. 8080")
	flag.Parse()

	return joinListenAddr(strings.TrimSpace(*host), *port)
}

func parseListenAddr(addr string) (string, int) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "", 0
	}
	if strings.HasPrefix(addr, ":") {
		return "", parseEnvIntValue(strings.TrimPrefix(addr, ":"), 0)
	}
	if host, port, err := net.SplitHostPort(addr); err == nil {
		return host, parseEnvIntValue(port, 0)
	}
	if portOnly := parseEnvIntValue(addr, 0); portOnly > 0 {
		return "", portOnly
	}
	return addr, 0
}

func joinListenAddr(host string, port int) string {
	if port <= 0 {
		port = 8080
	}
	if host == "" {
		return fmt.Sprintf(":%d", port)
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

func defaultDataFile(storeEngine string) string {
	switch storeEngine {
	case store.EngineJSON:
		return "data/journal.json"
	default:
		return "data/journal.db"
	}
}

func envOrDefault(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func initLLMClientFromEnv() *llm.Client {
	apiKey := strings.TrimSpace(os.Getenv("AIJOURNAL_LLM_API_KEY"))
	if apiKey == "" {
		log.Printf("llm key missing: AIJOURNAL_LLM_API_KEY is empty")
		return nil
	}

	cfg := llm.Config{
		BaseURL:   envOrDefault("AIJOURNAL_LLM_BASE_URL", "https://api.openai.com"),
		APIKey:    apiKey,
		ChatModel: envOrDefault("AIJOURNAL_LLM_MODEL", "gpt-4o-mini"),
		Timeout:   time.Duration(parseEnvInt("AIJOURNAL_LLM_TIMEOUT_SECONDS", 20)) * time.Second,
	}
	log.Printf(
		"llm init config: base=%s model=%s timeout=%s key_meta={%s}",
		cfg.BaseURL,
		cfg.ChatModel,
		cfg.Timeout.String(),
		safeKeyMeta(cfg.APIKey),
	)

	client, err := llm.NewClient(cfg)
	if err != nil {
		log.Printf("init llm client failed: %v", err)
		return nil
	}
	return client
}

func initBackupUploaderFromEnv() *backup.Uploader {
	return backup.NewUploader(backup.Config{
		SecretID:     os.Getenv("AIJOURNAL_COS_SECRET_ID"),
		SecretKey:    os.Getenv("AIJOURNAL_COS_SECRET_KEY"),
		Region:       envOrDefault("AIJOURNAL_COS_REGION", "ap-hongkong"),
		BucketName:   os.Getenv("AIJOURNAL_COS_BUCKET_NAME"),
		PublicDomain: envOrDefault("AIJOURNAL_COS_PUBLIC_DOMAIN", ""),
	})
}

func parseEnvInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	return parseEnvIntValue(raw, fallback)
}

func parseEnvIntValue(raw string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return value
}

func safeKeyMeta(key string) string {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return "empty=true"
	}
	lower := strings.ToLower(trimmed)
	hasQuotes := (strings.HasPrefix(trimmed, "\"") && strings.HasSuffix(trimmed, "\"")) ||
		(strings.HasPrefix(trimmed, "'") && strings.HasSuffix(trimmed, "'"))
	return fmt.Sprintf(
		"empty=false,len=%d,starts_with_sk=%t,has_bearer_prefix=%t,has_quotes=%t,has_whitespace=%t",
		len(trimmed),
		strings.HasPrefix(trimmed, "sk-"),
		strings.HasPrefix(lower, "bearer "),
		hasQuotes,
		strings.Contains(trimmed, " "),
	)
}

func loadConfigFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}

		sep := strings.Index(line, "=")
		if sep <= 0 {
			continue
		}

		key := strings.TrimSpace(line[:sep])
		if key == "" {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}

		value := strings.TrimSpace(line[sep+1:])
		value = strings.Trim(value, "\"'")
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}
	return scanner.Err()
}
