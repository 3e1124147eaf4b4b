package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Settings holds the values that may be overridden from the environment or a .env file.
type Settings struct {
	BackendURL     string
	ListenAddr     string
	RedisAddr      string
	RedisPassword  string
	UseRedis       bool
	LogFile        string
	RequestTimeout time.Duration
}

const (
	DefaultBackendURL     = "https://intellichatpdf.onrender.com"
	DefaultListenAddr     = ":3000"
	DefaultLogFile        = "chatpdf.log"
	DefaultRequestTimeout = 120 * time.Second
)

func Defaults() Settings {
	return Settings{
		BackendURL:     DefaultBackendURL,
		ListenAddr:     DefaultListenAddr,
		RedisAddr:      RedisAddr,
		LogFile:        DefaultLogFile,
		RequestTimeout: DefaultRequestTimeout,
	}
}

// Load reads .env (when present) and the CHATPDF_* variables on top of Defaults.
func Load() Settings {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("WARNING: could not load .env file: %v", err)
	}
	return FromEnv(os.Getenv)
}

func FromEnv(getenv func(string) string) Settings {
	s := Defaults()

	if v := getenv("CHATPDF_BACKEND_URL"); v != "" {
		s.BackendURL = v
	}
	if v := getenv("CHATPDF_LISTEN_ADDR"); v != "" {
		s.ListenAddr = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		s.RedisAddr = v
	}
	s.RedisPassword = getenv("REDIS_PASSWORD")
	if v := getenv("CHATPDF_USE_REDIS"); v != "" {
		useRedis, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("WARNING: invalid CHATPDF_USE_REDIS %q, ignoring", v)
		} else {
			s.UseRedis = useRedis
		}
	}
	if v := getenv("CHATPDF_LOG_FILE"); v != "" {
		s.LogFile = v
	}
	if v := getenv("CHATPDF_REQUEST_TIMEOUT"); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil || timeout <= 0 {
			log.Printf("WARNING: invalid CHATPDF_REQUEST_TIMEOUT %q, using %s", v, s.RequestTimeout)
		} else {
			s.RequestTimeout = timeout
		}
	}
	return s
}
