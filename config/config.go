package config

import (
	"errors"
	"flag"
	"net"
	"os"
	"regexp"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr        string
	DBUrl       string
	TokenSecret string
	TokenTTL    time.Duration
	Debug       bool
	TimeZone    string

	// AdminEmail and AdminPassword seed the first administrator when the user
	// table is empty.
	AdminEmail    string
	AdminPassword string
}

// ParseFlags reads the command line. Every flag defaults to its GF_*
// environment variable, which may also come from a .env file.
func ParseFlags() (cfg Config, err error) {
	return parse(flag.CommandLine, os.Args[1:])
}

func parse(fs *flag.FlagSet, args []string) (cfg Config, err error) {
	_ = godotenv.Load()

	var host string
	fs.StringVar(&host, "host", env("GF_HOST", "0.0.0.0"), "listen host name")
	var port uint
	fs.UintVar(&port, "port", uint(envInt("GF_PORT", 8080)), "listen port number")
	fs.StringVar(&cfg.DBUrl, "db-url", env("GF_DB_URL", "gestao.sqlite"), "path to SQLite3 DB file")
	fs.StringVar(&cfg.TokenSecret, "token-secret", env("GF_TOKEN_SECRET", ""), "secret key for token encryption and decryption")
	var ttl uint
	fs.UintVar(&ttl, "token-ttl", uint(envInt("GF_TOKEN_TTL", 3600)), "token TTL in seconds")
	fs.BoolVar(&cfg.Debug, "debug", env("GF_DEBUG", "") == "true", "log at DEBUG level")
	fs.StringVar(&cfg.TimeZone, "tz", env("GF_TIMEZONE", "America/Sao_Paulo"), "time zone used in exported dates")
	fs.StringVar(&cfg.AdminEmail, "admin-email", env("GF_ADMIN_EMAIL", ""), "e-mail of the administrator seeded on an empty database")
	fs.StringVar(&cfg.AdminPassword, "admin-password", env("GF_ADMIN_PASSWORD", ""), "password of the seeded administrator")
	if err = fs.Parse(args); err != nil {
		return
	}

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	cfg.TokenTTL = time.Duration(ttl) * time.Second

	if cfg.TokenSecret == "" {
		err = errors.New("missing parameter -token-secret")
		return
	}
	if _, tzErr := time.LoadLocation(cfg.TimeZone); tzErr != nil {
		err = errors.New("invalid parameter -tz: " + tzErr.Error())
	}

	return
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}

// Location is the time zone for exported timestamps. Falls back to UTC.
func (cfg Config) Location() *time.Location {
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func env(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}
