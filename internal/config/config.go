package config

import "github.com/spf13/viper"

type Config struct {
	HTTPPort       string `mapstructure:"HTTP_PORT"`
	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         string `mapstructure:"DB_PORT"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	DBName         string `mapstructure:"DB_NAME"`
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	AccessSecret   string `mapstructure:"ACCESS_SECRET"`
	RefreshSecret  string `mapstructure:"REFRESH_SECRET"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
}

func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// ВАЖНО: явно биндим
	viper.BindEnv("HTTP_PORT")
	viper.BindEnv("DB_HOST")
	viper.BindEnv("DB_PORT")
	viper.BindEnv("DB_USER")
	viper.BindEnv("DB_PASSWORD")
	viper.BindEnv("DB_NAME")
	viper.BindEnv("REDIS_ADDR")
	viper.BindEnv("ACCESS_SECRET")
	viper.BindEnv("REFRESH_SECRET")
	viper.BindEnv("ALLOWED_ORIGINS")

	err = viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
	}
	err = viper.Unmarshal(&config)
	return
}
