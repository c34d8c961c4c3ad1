package config

import (
	"flag"
	"math"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	DebugMode  bool          `env:"DEBUG_MODE"`       // Режим дебага: подробные логи отказов хоста
	Debounce   time.Duration `env:"UIA_DEBOUNCE"`     // Период тишины перед выводом изменения ввода
	MaxTextLen int           `env:"UIA_MAX_TEXT_LEN"` // Предел длины текста, читаемого через шаблон Text
	QueueSize  int           `env:"UIA_QUEUE_SIZE"`   // Ёмкость очереди debounce
	LogFormat  string        `env:"UIA_LOG_FORMAT"`   // console|json
}

// Defaults возвращает конфигурацию с предустановленными значениями по умолчанию.
// Эти значения перекрываются .env, переменными окружения и флагами CLI.
func Defaults() *Config {
	return &Config{
		DebugMode:  false,
		Debounce:   200 * time.Millisecond,
		MaxTextLen: 4096,
		QueueSize:  64,
		LogFormat:  "console",
	}
}

// NewConfig загружает конфигурацию приложения.
func NewConfig() *Config {
	_ = godotenv.Load()
	cfg, err := load(flag.CommandLine, os.Args[1:])
	if err != nil {
		// ошибка разбора окружения фатальна; ошибки флагов flag.CommandLine обрабатывает сам
		panic(err)
	}
	return cfg
}

// load стартует с дефолтов, затем перекрывает окружением и флагами.
func load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := Defaults()
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	fs.BoolVar(&cfg.DebugMode, "debug-mode", cfg.DebugMode, "включить режим дебага для отображения доп. инфы")
	fs.DurationVar(&cfg.Debounce, "debounce", cfg.Debounce, "период тишины перед выводом изменения ввода, напр. 200ms")
	fs.IntVar(&cfg.MaxTextLen, "max-text-len", cfg.MaxTextLen, "максимум символов, читаемых из документа")
	fs.IntVar(&cfg.QueueSize, "queue-size", cfg.QueueSize, "ёмкость очереди debounce")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "формат логов: console|json")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.normalize()
	return cfg, nil
}

// normalize возвращает дефолты для недопустимых значений.
func (c *Config) normalize() {
	def := Defaults()
	if c.Debounce <= 0 {
		c.Debounce = def.Debounce
	}
	if c.MaxTextLen <= 0 {
		c.MaxTextLen = def.MaxTextLen
	}
	// GetText принимает int; больший предел хост понял бы как «без ограничения»
	if c.MaxTextLen > math.MaxInt32 {
		c.MaxTextLen = math.MaxInt32
	}
	if c.QueueSize <= 0 {
		c.QueueSize = def.QueueSize
	}
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	if c.LogFormat != "json" {
		c.LogFormat = def.LogFormat
	}
}
