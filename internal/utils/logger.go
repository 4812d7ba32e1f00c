package utils

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	DebugMode      bool
	CurrentLevel   LogLevel = LevelInfo
	ShowRaylibInfo bool
	ShowDebugUI    bool

	colorOutput = isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
)

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// ParseLogLevel maps a flag/config value onto a LogLevel.
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

func logMessage(level LogLevel, format string, v ...interface{}) {
	if level < CurrentLevel && !(level == LevelDebug && DebugMode) {
		return
	}

	const (
		colorReset  = "\033[0m"
		colorCyan   = "\033[36m"
		colorBlue   = "\033[34m"
		colorYellow = "\033[33m"
		colorRed    = "\033[31m"
	)

	prefix := fmt.Sprintf("[%s] ", level.String())
	if colorOutput {
		var colorCode string
		switch level {
		case LevelDebug:
			colorCode = colorCyan
		case LevelInfo:
			colorCode = colorBlue
		case LevelWarn:
			colorCode = colorYellow
		case LevelError:
			colorCode = colorRed
		}
		prefix = fmt.Sprintf("%s[%s]%s ", colorCode, level.String(), colorReset)
	}
	log.Printf(prefix+format, v...)
}

func Info(format string, v ...interface{})  { logMessage(LevelInfo, format, v...) }
func Debug(format string, v ...interface{}) { logMessage(LevelDebug, format, v...) }
func Warn(format string, v ...interface{})  { logMessage(LevelWarn, format, v...) }
func Error(format string, v ...interface{}) { logMessage(LevelError, format, v...) }

func RaylibLogCallback(level int, text string) {
	formattedText := "[RAYLIB] " + text
	if colorOutput {
		formattedText = "\033[35m[RAYLIB]\033[0m " + text
	}
	switch level {
	case 1, 2: // LOG_TRACE, LOG_DEBUG
		Debug("%s", formattedText)
	case 3: // LOG_INFO
		if ShowRaylibInfo || CurrentLevel <= LevelDebug {
			Info("%s", formattedText)
		}
	case 4: // LOG_WARNING
		Warn("%s", formattedText)
	case 5, 6: // LOG_ERROR, LOG_FATAL
		Error("%s", formattedText)
	}
}
