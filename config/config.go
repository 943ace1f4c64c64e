package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kataras/golog"
)

type Database struct {
	// Driver is "postgres" or "sqlite".
	Driver string
	URL    string
}

type Cloudinary struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Enabled reports whether every credential needed for uploads is present.
func (c Cloudinary) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

type Config struct {
	Port               string
	LogLevel           string
	AllowedOrigin      string
	RemoteAddrHeaders  []string
	Database           Database
	RedisURL           string
	AccessTokenSecret  string
	RefreshTokenSecret string
	Cloudinary         Cloudinary
	Admin              Admin
}

// Admin is the account ensured at startup when a username and password are set.
type Admin struct {
	Username string
	Email    string
	Password string
}

// Load reads the configuration from the environment. Outside of Render the
// .env file in the working directory is loaded first.
func Load() Config {
	if os.Getenv("RENDER") == "" {
		if err := godotenv.Load(); err != nil {
			golog.Debug("no .env file loaded (this is normal in production)")
		}
	}

	return Config{
		Port:              getenv("PORT", "8080"),
		LogLevel:          strings.ToLower(getenv("LOG_LEVEL", "info")),
		AllowedOrigin:     os.Getenv("ALLOWED_ORIGIN"),
		RemoteAddrHeaders: splitList(os.Getenv("REMOTE_ADDR_HEADERS")),
		Database: Database{
			Driver: strings.ToLower(getenv("DB_DRIVER", "postgres")),
			URL:    os.Getenv("DB_CONNECTION_STRING"),
		},
		RedisURL:           getenv("REDIS_URL", "localhost:6379"),
		AccessTokenSecret:  os.Getenv("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret: os.Getenv("REFRESH_TOKEN_SECRET"),
		Cloudinary: Cloudinary{
			CloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
			APIKey:    os.Getenv("CLOUDINARY_API_KEY"),
			APISecret: os.Getenv("CLOUDINARY_API_SECRET"),
			Folder:    getenv("CLOUDINARY_FOLDER", "tour_images"),
		},
		Admin: Admin{
			Username: os.Getenv("ADMIN_USERNAME"),
			Email:    os.Getenv("ADMIN_EMAIL"),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(value string) []string {
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
