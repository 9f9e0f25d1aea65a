package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/JC-comp/karaoke/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
	usage        string
}

var (
	port          = configVar[int]{"KARAOKE_PORT", "port", 80, "Server port"}
	host          = configVar[string]{"KARAOKE_HOST", "host", "0.0.0.0", "Server host"}
	logLevel      = configVar[string]{"KARAOKE_LOG_LEVEL", "log-level", "INFO", "Logging level"}
	clientsLimit  = configVar[int]{"KARAOKE_CLIENTS_LIMIT", "clients-limit", 30, "Maximum number of clients in a room"}
	playlistLimit = configVar[int]{"KARAOKE_PLAYLIST_LIMIT", "playlist-limit", 100, "Maximum number of items in a playlist"}
	redisPort     = configVar[int]{"REDIS_PORT", "redis-port", 6379, "Redis port"}
	redisHost     = configVar[string]{"REDIS_HOST", "redis-host", "localhost", "Redis host"}
	redisPassword = configVar[string]{"REDIS_PASSWORD", "redis-password", "", "Redis password"}
)

func bindInt(v configVar[int]) {
	pflag.Int(v.flagKey, v.defaultValue, v.usage)
	viper.BindEnv(v.flagKey, v.envKey)
	viper.SetDefault(v.flagKey, v.defaultValue)
}

func bindString(v configVar[string]) {
	pflag.String(v.flagKey, v.defaultValue, v.usage)
	viper.BindEnv(v.flagKey, v.envKey)
	viper.SetDefault(v.flagKey, v.defaultValue)
}

func loadAppConfig() *app.AppConfig {
	bindInt(port)
	bindString(host)
	bindString(logLevel)
	bindInt(clientsLimit)
	bindInt(playlistLimit)
	bindInt(redisPort)
	bindString(redisHost)
	bindString(redisPassword)

	pflag.Parse()
	viper.BindPFlags(pflag.CommandLine)

	return &app.AppConfig{
		Host:          viper.GetString(host.flagKey),
		Port:          viper.GetInt(port.flagKey),
		LogLevel:      viper.GetString(logLevel.flagKey),
		ClientsLimit:  viper.GetInt(clientsLimit.flagKey),
		PlaylistLimit: viper.GetInt(playlistLimit.flagKey),
		RedisPort:     viper.GetInt(redisPort.flagKey),
		RedisHost:     viper.GetString(redisHost.flagKey),
		RedisPassword: viper.GetString(redisPassword.flagKey),
	}
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}
