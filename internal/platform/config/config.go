package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config 结构体定义了应用程序的所有配置项
// 它与 config.yaml 文件的结构完全对应
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Steps    StepsConfig    `mapstructure:"steps"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Mail     MailConfig     `mapstructure:"mail"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig 定义了服务器相关的配置
type ServerConfig struct {
	Mode    string     `mapstructure:"mode"`
	Address string     `mapstructure:"address"`
	Cors    CorsConfig `mapstructure:"cors"`
}

// CorsConfig 定义了CORS相关的配置
type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// DatabaseConfig 定义了数据库和偏好存储相关的配置
type DatabaseConfig struct {
	Sqlite SqliteConfig `mapstructure:"sqlite"`
	Redis  RedisConfig  `mapstructure:"redis"`
}

// SqliteConfig 定义了本地SQLite数据库的配置
type SqliteConfig struct {
	Path string `mapstructure:"path"`
}

// RedisConfig 定义了Redis偏好存储的配置
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StepsConfig 定义了计步与统计管道相关的配置
type StepsConfig struct {
	// DefaultGoal 是用户未设置步数目标时管道使用的默认值
	DefaultGoal int `mapstructure:"defaultGoal"`
	// CaloriesPerStep 是由步数估算卡路里的系数
	CaloriesPerStep float64 `mapstructure:"caloriesPerStep"`
	// MotionThreshold 是加速度传感器回退模式下的合加速度阈值
	// 需要略高于静止时的重力加速度(约9.8)
	MotionThreshold float64 `mapstructure:"motionThreshold"`
}

// ChatConfig 定义了AI助手相关的配置
type ChatConfig struct {
	BaseURL    string `mapstructure:"baseUrl"`
	Model      string `mapstructure:"model"`
	TokenEnv   string `mapstructure:"tokenEnv"`
	DailyLimit int    `mapstructure:"dailyLimit"`
}

// MailConfig 定义了一次性验证码邮件的SMTP配置
type MailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// LogConfig 定义了结构化日志的输出配置
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	Console    bool   `mapstructure:"console"`
	MaxSizeMB  int    `mapstructure:"maxSizeMB"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAgeDays"`
}

// LoadConfig 函数负责查找、加载和解析配置文件
// 它会在指定的路径中查找名为 config.yaml 的文件
func LoadConfig() (*Config, error) {
	v := viper.New()

	// 1. 设置配置文件名和类型
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// 2. 添加配置文件搜索路径
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	// 3. 设置环境变量支持
	// 允许通过环境变量覆盖配置，例如 DATABASE_REDIS_ADDRESS=...
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. 默认值：即使配置文件缺省，统计管道的核心参数也必须有定义良好的值
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("database.sqlite.path", "smartfit.db")
	v.SetDefault("steps.defaultGoal", 2500)
	v.SetDefault("steps.caloriesPerStep", 0.04)
	v.SetDefault("steps.motionThreshold", 12.0)
	v.SetDefault("chat.dailyLimit", 20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", true)

	// 5. 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	// 6. 将配置反序列化到结构体中
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
