package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"sync"
)

// ********************************************************
// ********* LOGGING **************************************
// ********************************************************

type LogLevel int

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorOrange = "\033[38;5;208m"
)

const (
	DEBUG LogLevel = iota
	INFO
	HIGHLIGHT
	WARN
	ERROR
	FATAL
)

// DefaultLogFile is used by SetLogOutput when no file has been configured
const DefaultLogFile = "/tmp/cardstats.log"

type Logger struct {
	mu          sync.Mutex
	infoLogger  *log.Logger
	errorLogger *log.Logger
	level       LogLevel
	colour      bool
	dateTime    bool
}

var (
	defaultLogger *Logger
	logFile       *os.File
	logFilePath   = DefaultLogFile
)

func init() {
	defaultLogger = NewLogger(INFO, os.Stdout, os.Stderr)
}

// NewLogger builds a logger writing DEBUG..WARN to out and ERROR/FATAL to errOut
func NewLogger(level LogLevel, out, errOut io.Writer) *Logger {
	return &Logger{
		infoLogger:  log.New(out, "", 0),
		errorLogger: log.New(errOut, "", 0),
		level:       level,
		colour:      true,
	}
}

func (l *Logger) flags() int {
	if l.dateTime {
		return log.Ldate | log.Ltime
	}
	return 0
}

func (l *Logger) setWriters(out, errOut io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infoLogger = log.New(out, "", l.flags())
	l.errorLogger = log.New(errOut, "", l.flags())
}

func SetShowDateTime(value bool) {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.dateTime = value
	defaultLogger.infoLogger.SetFlags(defaultLogger.flags())
	defaultLogger.errorLogger.SetFlags(defaultLogger.flags())
}

// SetLevel drops every message below level
func SetLevel(level LogLevel) {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.level = level
}

// SetColour toggles ANSI colour codes, file output reads better without them
func SetColour(on bool) {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.colour = on
}

// SetLogFile changes the file used by the 'f' and 'b' outputs
func SetLogFile(path string) {
	if path != "" {
		logFilePath = path
	}
}

// SetWriter points the default logger at an arbitrary writer (tests use a buffer)
func SetWriter(w io.Writer) {
	defaultLogger.setWriters(w, w)
}

// SetLogOutput sets the output destination for logs
// 'c' for console, 'f' for file, 'b' for both
func SetLogOutput(outputType rune) error {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}

	openFile := func() (*os.File, error) {
		if err := os.MkdirAll(filepath.Dir(logFilePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", logFilePath, err)
		}
		return f, nil
	}

	switch outputType {
	case 'c':
		defaultLogger.setWriters(os.Stdout, os.Stderr)
	case 'f':
		f, err := openFile()
		if err != nil {
			return err
		}
		logFile = f
		defaultLogger.setWriters(f, f)
	case 'b':
		f, err := openFile()
		if err != nil {
			return err
		}
		logFile = f
		defaultLogger.setWriters(io.MultiWriter(os.Stdout, f), io.MultiWriter(os.Stderr, f))
	default:
		return fmt.Errorf("invalid log output type: %c", outputType)
	}
	return nil
}

// ParseLevel maps a config string onto a level, unknown names give INFO
func ParseLevel(level string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return DEBUG
	case "highlight":
		return HIGHLIGHT
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	case "fatal":
		return FATAL
	default:
		return INFO
	}
}

func (l *Logger) log(level LogLevel, format string, v ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}

	_, file, line, ok := runtime.Caller(2)
	if !ok {
		file = "unknown"
		line = 0
	}
	file = filepath.Base(file)

	msg := format
	var jsonObjects []string
	if len(v) > 0 {
		processedArgs, jsonStrings := processArgs(v...)
		jsonObjects = jsonStrings
		if len(processedArgs) > 0 {
			msg = format + " " + strings.Join(processedArgs, " ")
		}
	}

	colourCode, reset := "", ""
	if l.colour {
		colourCode, reset = level.colour(), colorReset
	}

	out := l.infoLogger
	if level >= ERROR {
		out = l.errorLogger
	}
	out.Printf("[%s] %s:%d: %s%s%s", level, file, line, colourCode, msg, reset)
	// complex arguments follow on their own lines
	for _, obj := range jsonObjects {
		out.Printf("[%s] %s:%d: %s%s%s", level, file, line, colourCode, obj, reset)
	}
}

func (l LogLevel) colour() string {
	switch l {
	case DEBUG:
		return colorBlue
	case INFO:
		return colorGreen
	case HIGHLIGHT:
		return colorCyan
	case WARN:
		return colorYellow
	case ERROR:
		return colorOrange
	case FATAL:
		return colorRed
	default:
		return colorReset
	}
}

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case HIGHLIGHT:
		return "HIGHLIGHT"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// processArgs renders primitives inline and everything else as indented JSON
func processArgs(args ...any) ([]string, []string) {
	var primitives []string
	var jsonObjects []string

	for _, arg := range args {
		if isPrimitive(arg) {
			primitives = append(primitives, formatPrimitive(arg))
			continue
		}
		jsonBytes, err := json.MarshalIndent(arg, "", "  ")
		if err != nil {
			primitives = append(primitives, fmt.Sprintf("%v", arg))
			continue
		}
		primitives = append(primitives, fmt.Sprintf("[Object of type %s]", reflect.TypeOf(arg)))
		jsonObjects = append(jsonObjects, string(jsonBytes))
	}
	return primitives, jsonObjects
}

func formatPrimitive(arg any) string {
	switch v := arg.(type) {
	case nil:
		return "nil"
	case float32:
		return fmt.Sprintf("%.2f", v)
	case float64:
		return fmt.Sprintf("%.2f", v)
	case string:
		return v
	case error:
		return v.Error()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func isPrimitive(v any) bool {
	if v == nil {
		return true
	}
	switch v.(type) {
	case string, bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, error, fmt.Stringer:
		return true
	default:
		return false
	}
}

// Convenience methods using the default logger
func Debug(format string, v ...any) {
	defaultLogger.log(DEBUG, format, v...)
}

func Info(format string, v ...any) {
	defaultLogger.log(INFO, format, v...)
}

func Highlight(format string, v ...any) {
	defaultLogger.log(HIGHLIGHT, format, v...)
}

func Warn(format string, v ...any) {
	defaultLogger.log(WARN, format, v...)
}

func Error(format string, v ...any) {
	defaultLogger.log(ERROR, format, v...)
}

func Fatal(format string, v ...any) {
	defaultLogger.log(FATAL, format, v...)
	os.Exit(1)
}
