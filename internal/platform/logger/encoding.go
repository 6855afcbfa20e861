package logger

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"

	"github.com/modelheap/registry-admin/internal/cli"
)

// prettyConsoleEncoding is the registered name of the console encoder that
// syntax-highlights JSON field blobs.
const prettyConsoleEncoding = "console-pretty"

var registerOnce sync.Once

func registerPrettyConsole() {
	registerOnce.Do(func() {
		_ = zap.RegisterEncoder(prettyConsoleEncoding, func(cfg zapcore.EncoderConfig) (zapcore.Encoder, error) {
			return newPrettyConsoleEncoder(cfg), nil
		})
	})
}

// prettyConsoleEncoder wraps zap's standard console encoder to add syntax
// highlighting to the JSON blob at the end of each line.
type prettyConsoleEncoder struct {
	zapcore.Encoder
}

func newPrettyConsoleEncoder(cfg zapcore.EncoderConfig) zapcore.Encoder {
	// The standard console encoder does the heavy lifting (time, level, caller)
	return &prettyConsoleEncoder{
		Encoder: zapcore.NewConsoleEncoder(cfg),
	}
}

// Clone is required to implement the Encoder interface
func (c *prettyConsoleEncoder) Clone() zapcore.Encoder {
	return &prettyConsoleEncoder{
		Encoder: c.Encoder.Clone(),
	}
}

func (c *prettyConsoleEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	buf, err := c.Encoder.EncodeEntry(ent, fields)
	if err != nil {
		return nil, err
	}

	logLine := buf.String()

	// The console encoder separates the metadata from the JSON fields with
	// a tab: "TIMESTAMP INFO MSG\t{json...}". The last part of the line
	// starting with '{' is the JSON blob.
	splitIdx := strings.Index(logLine, "\t{")
	if splitIdx == -1 {
		return buf, nil
	}

	metaPart := logLine[:splitIdx+1] // include the tab
	jsonPart := logLine[splitIdx+1:] // the JSON blob (including newline)

	newBuf := buffer.NewPool().Get()
	newBuf.AppendString(metaPart)
	newBuf.AppendString(cli.HighlightJSON(jsonPart))
	buf.Free()

	return newBuf, nil
}
