package logging

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

var fieldMap = logrus.FieldMap{
	logrus.FieldKeyLevel: "loglevel",
}

// New builds a logger writing to out. format is "text" or "json".
func New(level, format string, out io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	var formatter logrus.Formatter
	switch format {
	case "json":
		formatter = &logrus.JSONFormatter{FieldMap: fieldMap}
	case "text", "":
		formatter = &logrus.TextFormatter{FieldMap: fieldMap, DisableColors: true, FullTimestamp: true}
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	logger := &logrus.Logger{
		Formatter: formatter,
		Out:       out,
		Hooks:     make(logrus.LevelHooks),
		Level:     lvl,
		ExitFunc:  func(int) {},
	}

	return logger, nil
}
