package configuration

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"auto-post/infrastructure/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Database    Database      `json:"database"`
	RedisClient RedisClient   `json:"redisClient"`
	Instagram   Instagram     `json:"instagram"`
	X           X             `json:"x"`
	Drive       Drive         `json:"drive"`
	Staging     Staging       `json:"staging"`
	Pubsub      Pubsub        `json:"pubsub"`
	Posting     Posting       `json:"posting"`
	Logger      logger.Config `json:"logger"`
}

type Database struct {
	Psql  Db `json:"psql"`
	Mssql Db `json:"mssql"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
}

type RedisClient struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type Instagram struct {
	AppID             string `json:"appId"`
	AppSecret         string `json:"appSecret"`
	AccessToken       string `json:"accessToken"`
	BusinessAccountID string `json:"businessAccountId"`
	APIVersion        string `json:"apiVersion"`
}

type X struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type Drive struct {
	CredentialsPath string `json:"credentialsPath"`
	FolderID        string `json:"folderId"`
}

type Staging struct {
	Bucket string `json:"bucket"`
}

type Pubsub struct {
	ProjectID string `json:"projectId"`
	Topic     string `json:"topic"`
}

type Posting struct {
	DefaultTags      string `json:"defaultTags"`
	ItemDelaySeconds int    `json:"itemDelaySeconds"`
	MediaDelayMillis int    `json:"mediaDelayMillis"`
	ErrorLogMaxRunes int    `json:"errorLogMaxRunes"`
	DailyRunAt       string `json:"dailyRunAt"` // HH:MM local time, daemon mode
}

func (p Posting) ItemDelay() time.Duration {
	return time.Duration(p.ItemDelaySeconds) * time.Second
}

func (p Posting) MediaDelay() time.Duration {
	return time.Duration(p.MediaDelayMillis) * time.Millisecond
}

// Load reads config.json (config-<ENV>.json when ENV is set) via viper, then
// applies environment-variable overrides. Secrets are expected from env in
// production; the file carries structure and defaults.
func Load() (*Config, error) {
	// Non-destructive .env loading; OS env keeps precedence.
	_ = godotenv.Load("config.env")
	_ = godotenv.Load()

	name := "config"
	if env := os.Getenv("ENV"); env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}

	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Missing file is fine: everything can come from env.
	}

	var c Config
	if err := viper.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	applyEnvOverrides(&c)
	applyDefaults(&c)
	return &c, nil
}

func applyEnvOverrides(c *Config) {
	setIfEnv(&c.Database.Psql.Name, "DB_NAME")
	setIfEnv(&c.Database.Psql.Host, "DB_HOST")
	setIfEnv(&c.Database.Psql.Port, "DB_PORT")
	setIfEnv(&c.Database.Psql.User, "DB_USER")
	setIfEnv(&c.Database.Psql.Password, "DB_PASSWORD")

	setIfEnv(&c.Database.Mssql.Name, "MSSQL_DB_NAME")
	setIfEnv(&c.Database.Mssql.Host, "MSSQL_HOST")
	setIfEnv(&c.Database.Mssql.Port, "MSSQL_PORT")
	setIfEnv(&c.Database.Mssql.User, "MSSQL_USER")
	setIfEnv(&c.Database.Mssql.Password, "MSSQL_PASSWORD")

	setIfEnv(&c.RedisClient.Host, "REDIS_HOST")
	setIfEnv(&c.RedisClient.Port, "REDIS_PORT")
	setIfEnv(&c.RedisClient.Username, "REDIS_USERNAME")
	setIfEnv(&c.RedisClient.Password, "REDIS_PASSWORD")

	setIfEnv(&c.Instagram.AppID, "INSTAGRAM_APP_ID")
	setIfEnv(&c.Instagram.AppSecret, "INSTAGRAM_APP_SECRET")
	setIfEnv(&c.Instagram.AccessToken, "INSTAGRAM_ACCESS_TOKEN")
	setIfEnv(&c.Instagram.BusinessAccountID, "INSTAGRAM_BUSINESS_ACCOUNT_ID")

	setIfEnv(&c.X.ClientID, "X_CLIENT_ID")
	setIfEnv(&c.X.ClientSecret, "X_CLIENT_SECRET")
	setIfEnv(&c.X.AccessToken, "X_ACCESS_TOKEN")
	setIfEnv(&c.X.RefreshToken, "X_REFRESH_TOKEN")

	setIfEnv(&c.Drive.CredentialsPath, "GOOGLE_CREDENTIALS_PATH")
	setIfEnv(&c.Drive.FolderID, "GOOGLE_DRIVE_FOLDER_ID")
	setIfEnv(&c.Staging.Bucket, "STAGING_BUCKET")
	setIfEnv(&c.Pubsub.ProjectID, "PUBSUB_PROJECT_ID")
	setIfEnv(&c.Pubsub.Topic, "PUBSUB_TOPIC")
	setIfEnv(&c.Posting.DefaultTags, "DEFAULT_TAGS")

	if v := os.Getenv("ITEM_DELAY_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Posting.ItemDelaySeconds = n
		}
	}
}

func applyDefaults(c *Config) {
	if c.Database.Psql.Host == "" {
		c.Database.Psql.Host = "localhost"
	}
	if c.Database.Psql.Port == "" {
		c.Database.Psql.Port = "5432"
	}
	if c.Database.Mssql.Port == "" {
		c.Database.Mssql.Port = "1433"
	}
	if c.Instagram.APIVersion == "" {
		c.Instagram.APIVersion = "v19.0"
	}
	if c.Drive.CredentialsPath == "" {
		c.Drive.CredentialsPath = "credentials.json"
	}
	if c.Posting.DefaultTags == "" {
		c.Posting.DefaultTags = "#木彫り教室生徒作品 #木彫り #woodcarving #彫刻 #handcarved #woodart #ハンドメイド #手仕事"
	}
	if c.Posting.ItemDelaySeconds == 0 {
		c.Posting.ItemDelaySeconds = 2
	}
	if c.Posting.MediaDelayMillis == 0 {
		c.Posting.MediaDelayMillis = 500
	}
	if c.Posting.ErrorLogMaxRunes == 0 {
		c.Posting.ErrorLogMaxRunes = 2000
	}
	if c.Posting.DailyRunAt == "" {
		c.Posting.DailyRunAt = "09:00"
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
}

func setIfEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
