// Package config reads the server settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/Zachkp/cyber-portfolio/internal/mailer"
	"github.com/Zachkp/cyber-portfolio/internal/scanner"
)

type Config struct {
	Port         string
	Debug        bool
	Color        bool
	DatabasePath string
	ContentPath  string
	StaticDir    string
	ImagesDir    string
	ScanInterval time.Duration

	AdminUsername string
	AdminPassword string
	HashSalt      string

	Mail mailer.Settings
}

// LoadDotEnv loads the given files, or .env, into the process environment.
// Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// FromEnv builds a Config from environment variables, falling back to
// development defaults.
func FromEnv() Config {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) Config {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && v != "" {
			return v
		}
		return def
	}
	scan, err := time.ParseDuration(get("SCAN_INTERVAL", ""))
	if err != nil || scan <= 0 {
		scan = scanner.DefaultInterval
	}
	debug, _ := strconv.ParseBool(get("DEBUG", "false"))

	return Config{
		Port:          get("PORT", "8080"),
		Debug:         debug,
		Color:         true,
		DatabasePath:  get("DATABASE_PATH", "portfolio.sqlite"),
		ContentPath:   get("CONTENT_PATH", ""),
		StaticDir:     get("STATIC_DIR", "./static"),
		ImagesDir:     get("IMAGES_DIR", "./images"),
		ScanInterval:  scan,
		AdminUsername: get("ADMIN_USERNAME", ""),
		AdminPassword: get("ADMIN_PASSWORD", ""),
		HashSalt:      get("HASH_SALT", ""),
		Mail: mailer.Settings{
			Relay: get("MAIL_RELAY", ""),
			SMTP: mailer.SMTPConfig{
				Host:     get("SMTP_HOST", "smtp.gmail.com"),
				Port:     get("SMTP_PORT", "587"),
				User:     get("SMTP_USER", ""),
				Password: get("SMTP_PASS", ""),
				To:       get("TO_EMAIL", ""),
			},
			EmailJS: mailer.EmailJSConfig{
				ServiceID:  get("EMAILJS_SERVICE_ID", ""),
				TemplateID: get("EMAILJS_TEMPLATE_ID", ""),
				PublicKey:  get("EMAILJS_PUBLIC_KEY", ""),
				ToName:     get("EMAILJS_TO_NAME", ""),
				Endpoint:   get("EMAILJS_ENDPOINT", ""),
			},
		},
	}
}

// AdminCredentials returns the admin login. Outside debug mode the admin
// area stays disabled until a password is set.
func (c Config) AdminCredentials() (user, pass string, ok bool) {
	user, pass = c.AdminUsername, c.AdminPassword
	if user == "" {
		user = "admin"
	}
	if pass == "" {
		if !c.Debug {
			return "", "", false
		}
		pass = "admin123"
	}
	return user, pass, true
}

func (c Config) Addr() string {
	return ":" + c.Port
}
