package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"tunnel-dashboard/internal/config"
	"tunnel-dashboard/internal/env"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	defaultLogger *zap.SugaredLogger
)

// GetLogLevelFromString 将字符串转换为日志级别
func GetLogLevelFromString(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel // 默认级别
	}
}

func newEncoder(format string) zapcore.Encoder {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if strings.ToLower(format) == "json" {
		return zapcore.NewJSONEncoder(encCfg)
	}
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(encCfg)
}

// New builds a sugared logger writing to w. Used by InitLogger and by tests.
func New(cfg *config.LogConfig, w io.Writer) *zap.SugaredLogger {
	core := zapcore.NewCore(newEncoder(cfg.Format), zapcore.AddSync(w), GetLogLevelFromString(cfg.Level))
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
}

// InitLogger 初始化日志系统
func InitLogger(cfg *config.LogConfig) {
	var output io.Writer
	if cfg.Path == "console" || cfg.Path == "" {
		output = os.Stdout
	} else {
		output = setupLogFileOutput(cfg.Path)
	}
	defaultLogger = New(cfg, output)
}

// InitLoggerWithMode 根据运行模式初始化日志系统
// isServerMode: true表示仪表盘服务模式（同时输出到控制台），false表示CLI模式
func InitLoggerWithMode(cfg *config.LogConfig, isServerMode bool) {
	var output io.Writer

	switch {
	case cfg.Path == "console" && isServerMode:
		output = os.Stdout
	case cfg.Path == "console":
		// CLI模式下日志不能混入命令输出
		output = os.Stderr
	case cfg.Path == "":
		output = setupLogFileOutput(filepath.Join(env.DashboardDir, "logs", "tunnel-dashboard.log"))
	default:
		output = setupLogFileOutput(cfg.Path)
	}

	// 服务模式下同时输出到控制台
	if isServerMode && output != os.Stdout {
		output = io.MultiWriter(os.Stdout, output)
	}
	defaultLogger = New(cfg, output)
}

// SetLogger replaces the package logger.
func SetLogger(l *zap.SugaredLogger) {
	defaultLogger = l
}

// setupLogFileOutput 设置日志文件输出
func setupLogFileOutput(logPath string) io.Writer {
	// 确保日志目录存在
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "create log dir failed: %v\n", err)
		return os.Stdout
	}

	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		// 在日志系统初始化失败时，暂时使用标准输出
		fmt.Fprintf(os.Stderr, "open log file failed: %v\n", err)
		return os.Stdout
	}
	return file
}

// Sync flushes buffered entries.
func Sync() {
	if defaultLogger != nil {
		_ = defaultLogger.Sync()
	}
}

// Debug 输出调试日志
func Debug(v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.Debug(v...)
	}
}

// Debugf 输出格式化调试日志
func Debugf(format string, v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.Debugf(format, v...)
	}
}

// Info 输出信息日志
func Info(v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.Info(v...)
	}
}

// Infof 输出格式化信息日志
func Infof(format string, v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.Infof(format, v...)
	}
}

// Warn 输出警告日志
func Warn(v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.Warn(v...)
	}
}

// Warnf 输出格式化警告日志
func Warnf(format string, v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.Warnf(format, v...)
	}
}

// Error 输出错误日志
func Error(v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.Error(v...)
	}
}

// Errorf 输出格式化错误日志
func Errorf(format string, v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.Errorf(format, v...)
	}
}

// Fatal 输出致命错误日志并退出程序
func Fatal(v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.Fatal(v...)
	}
	// 在日志系统未初始化时，使用标准错误输出
	fmt.Fprintln(os.Stderr, append([]interface{}{"FATAL:"}, v...)...)
	os.Exit(1)
}

// Fatalf 输出格式化致命错误日志并退出程序
func Fatalf(format string, v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.Fatalf(format, v...)
	}
	fmt.Fprintf(os.Stderr, "FATAL: "+format+"\n", v...)
	os.Exit(1)
}
