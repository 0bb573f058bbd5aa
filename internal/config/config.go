package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ClientGoOpenAI = "go-openai"
	ClientOpenAIGo = "openai-go"
)

const (
	DefaultSystemPrompt      = "You are a self-improving AI."
	DefaultInstructionPrompt = "You must explore the idea of self improving. You have the ability to save, and then execute python scripts, and the resulting output will be fed back into the chat to continue with. Decide what you want to create, and call the necessary tools. It should ultimately lead you to improve your abilities based on the feedback you get from script execution. Think about ways you can learn about your environment, gain functionality, improve and most importantly, get smarter. Don't assume any modules are installed. You may need to install them. You can use the subprocess module to run the pip install command. You can also use the subprocess module to run the python command. Never ask for user input or response. This is running autonomously and so the user never gets a chance to enter input. Self improvement is an iterative process. Become a better version of yourself."
	DefaultProceedPrompt     = "Proceed to improve yourself further."
)

type Config struct {
	OpenAIKey     string
	OpenAIBaseURL string
	Client        string
	Model         string
	Temperature   float32
	MaxTokens     int

	MaxIterations       int
	ContextMessageLimit int
	ContextTokenLimit   int

	SnapshotPath string
	Resume       bool

	WorkspaceDir    string
	AllowedCommands []string
	DeniedPaths     []string
	DeniedArgs      []string
	ProcessTimeout  time.Duration

	SystemPrompt      string
	InstructionPrompt string
	ProceedPrompt     string

	TelegramToken  string
	TelegramChatID int64
}

func Load(path string) (Config, error) {
	if err := godotenv.Overload(path); err != nil {
		log.Printf("could not read %s: %v", path, err)
	}

	cfg := Config{
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		Client:        getenvDefault("OPENAI_CLIENT", ClientGoOpenAI),
		Model:         getenvDefault("OPENAI_MODEL", "gpt-4-turbo-preview"),
		Temperature:   getenvFloatDefault("TEMPERATURE", 0.7),
		MaxTokens:     getenvIntDefault("MAX_TOKENS", 2600),

		MaxIterations:       getenvIntDefault("MAX_ITERATIONS", 0),
		ContextMessageLimit: getenvIntDefault("CONTEXT_MESSAGE_LIMIT", 0),
		ContextTokenLimit:   getenvIntDefault("CONTEXT_TOKEN_LIMIT", 0),

		SnapshotPath: getenvDefault("SNAPSHOT_PATH", "messages.json"),
		Resume:       getenvBoolDefault("RESUME", false),

		WorkspaceDir:    getenvDefault("WORKSPACE_DIR", "."),
		AllowedCommands: parseList(getenvDefault("ALLOWED_COMMANDS", "python,python3,pip,pip3")),
		DeniedPaths:     parseList(getenvDefault("DENIED_PATHS", ".env,messages.json,**/.git/**")),
		DeniedArgs:      parseList(os.Getenv("DENIED_ARGS")),
		ProcessTimeout:  time.Duration(getenvIntDefault("PROCESS_TIMEOUT_SECONDS", 0)) * time.Second,

		SystemPrompt:      DefaultSystemPrompt,
		InstructionPrompt: DefaultInstructionPrompt,
		ProceedPrompt:     DefaultProceedPrompt,

		TelegramToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID: getenvInt64Default("TELEGRAM_CHAT_ID", 0),
	}

	if file := os.Getenv("PROMPTS_FILE"); file != "" {
		prompts, err := loadPrompts(file)
		if err != nil {
			return cfg, err
		}
		prompts.apply(&cfg)
	}

	cfg.SystemPrompt = getenvDefault("SYSTEM_PROMPT", cfg.SystemPrompt)
	cfg.InstructionPrompt = getenvDefault("INSTRUCTION_PROMPT", cfg.InstructionPrompt)
	cfg.ProceedPrompt = getenvDefault("PROCEED_PROMPT", cfg.ProceedPrompt)

	if cfg.Client != ClientGoOpenAI && cfg.Client != ClientOpenAIGo {
		return cfg, errors.New("OPENAI_CLIENT must be go-openai or openai-go")
	}

	cfg.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	if cfg.OpenAIKey == "" {
		return cfg, errors.New("openai api key is required")
	}

	return cfg, nil
}

// TelegramEnabled reports whether console output should be mirrored to a chat.
func (c Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		items = append(items, p)
	}
	return items
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvIntDefault(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid int for %s=%q, using default %d", key, v, def)
		return def
	}
	return n
}

func getenvInt64Default(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Printf("invalid int for %s=%q, using default %d", key, v, def)
		return def
	}
	return n
}

func getenvFloatDefault(key string, def float32) float32 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		log.Printf("invalid float for %s=%q, using default %g", key, v, def)
		return def
	}
	return float32(f)
}

func getenvBoolDefault(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("invalid bool for %s=%q, using default %t", key, v, def)
		return def
	}
	return b
}
