package cli

import (
	"bytes"
	"fmt"
	"io"
	"slices"

	"github.com/sirupsen/logrus"
)

// prefixFormatter renders entries as "name: message", the way command line
// tools report diagnostics.
type prefixFormatter struct {
	name string
}

// Format implements logrus.Formatter.
func (f prefixFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(f.name)
	buf.WriteString(": ")

	switch entry.Level {
	case logrus.WarnLevel:
		buf.WriteString("warning: ")
	case logrus.DebugLevel, logrus.TraceLevel:
		buf.WriteString("[debug] ")
	default:
	}

	buf.WriteString(entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	for _, k := range keys {
		fmt.Fprintf(&buf, " %s=%v", k, entry.Data[k])
	}

	buf.WriteByte('\n')

	return buf.Bytes(), nil
}

// NewLogger creates a logger writing prefixed diagnostics to w.
func NewLogger(name string, w io.Writer, debug bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(prefixFormatter{name: name})
	log.SetLevel(logrus.InfoLevel)

	if debug {
		log.SetLevel(logrus.DebugLevel)
	}

	return log
}
