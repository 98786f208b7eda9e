package main

import (
	"io"
	"os"

	"go.uber.org/zap/zapcore"
)

func zapcoreWriter(w io.Writer) zapcore.WriteSyncer {
	if f, ok := w.(*os.File); ok {
		return zapcore.Lock(f)
	}
	return zapcore.AddSync(w)
}
