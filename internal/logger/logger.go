package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Init configures the global logrus logger. When file is non-empty, log
// lines also go to a size-rotated file at that path.
func Init(level, file string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.JSONFormatter{})

	if file == "" {
		logrus.SetOutput(os.Stdout)
		return
	}

	rotated := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    100, // MB
		MaxBackups: 5,
		MaxAge:     30, // days
	}
	logrus.SetOutput(io.MultiWriter(os.Stdout, rotated))
}
