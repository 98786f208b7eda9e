// Package output 命令行输出：数据写 stdout，提示写 stderr
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"
)

// Format 输出格式
type Format string

const (
	// FormatText 纯文本格式（默认）
	FormatText Format = "text"
	// FormatJSON JSON格式
	FormatJSON Format = "json"
	// FormatPretty 美化JSON格式
	FormatPretty Format = "pretty"
	// FormatTable 表格格式
	FormatTable Format = "table"
)

// ParseFormat 解析 -o 参数
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatPretty, FormatTable:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text|json|pretty|table)", s)
}

// Field 一行键值
type Field struct {
	Key   string
	Value string
}

// Record 可按键值展示的结果
type Record interface {
	Fields() []Field
}

// Formatter 输出格式化器
type Formatter struct {
	format    Format
	writer    io.Writer
	logWriter io.Writer
	silent    bool
}

// NewFormatter 创建格式化器
func NewFormatter(format Format, writer io.Writer) *Formatter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Formatter{
		format:    format,
		writer:    writer,
		logWriter: os.Stderr,
	}
}

// SetLogWriter 设置提示输出目标（默认 stderr）
func (f *Formatter) SetLogWriter(writer io.Writer) {
	if writer == nil {
		writer = os.Stderr
	}
	f.logWriter = writer
}

// SetSilent 静默模式下只输出数据
func (f *Formatter) SetSilent(silent bool) {
	f.silent = silent
}

// Format 当前格式
func (f *Formatter) Format() Format {
	return f.format
}

// Print 按格式输出结果
func (f *Formatter) Print(data interface{}) error {
	switch f.format {
	case FormatJSON:
		return f.printJSON(data, false)
	case FormatPretty:
		return f.printJSON(data, true)
	case FormatTable:
		return f.printTable(data)
	default:
		return f.printText(data)
	}
}

func (f *Formatter) printJSON(data interface{}, pretty bool) error {
	var (
		out []byte
		err error
	)
	if pretty {
		out, err = json.MarshalIndent(data, "", "  ")
	} else {
		out, err = json.Marshal(data)
	}
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if _, err := fmt.Fprintln(f.writer, string(out)); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func (f *Formatter) printTable(data interface{}) error {
	rec, ok := data.(Record)
	if !ok {
		return f.printJSON(data, true)
	}
	rows := [][]string{{"Key", "Value"}}
	for _, fd := range rec.Fields() {
		rows = append(rows, []string{fd.Key, fd.Value})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(rows).WithWriter(f.writer).Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	return nil
}

func (f *Formatter) printText(data interface{}) error {
	rec, ok := data.(Record)
	if !ok {
		if _, err := fmt.Fprintf(f.writer, "%v\n", data); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		return nil
	}
	for _, fd := range rec.Fields() {
		if _, err := fmt.Fprintf(f.writer, "%s: %s\n", fd.Key, fd.Value); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	return nil
}

// PrintSuccess 成功提示
func (f *Formatter) PrintSuccess(message string) {
	if f.silent {
		return
	}
	pterm.Success.WithWriter(f.logWriter).Println(message)
}

// PrintWarning 警告提示
func (f *Formatter) PrintWarning(message string) {
	if f.silent {
		return
	}
	pterm.Warning.WithWriter(f.logWriter).Println(message)
}

// PrintInfo 信息提示
func (f *Formatter) PrintInfo(message string) {
	if f.silent {
		return
	}
	pterm.Info.WithWriter(f.logWriter).Println(message)
}

// PrintError 错误提示，静默模式也输出
func (f *Formatter) PrintError(err error) {
	pterm.Error.WithWriter(f.logWriter).Println(err.Error())
}

// Spinner 长时间操作的进度提示；非文本格式或静默模式下不显示
func (f *Formatter) Spinner(text string) func(success bool, final string) {
	if f.silent || f.format != FormatText {
		return func(bool, string) {}
	}
	sp, err := pterm.DefaultSpinner.WithWriter(f.logWriter).WithText(text).Start()
	if err != nil {
		return func(bool, string) {}
	}
	return func(success bool, final string) {
		if success {
			sp.Success(final)
		} else {
			sp.Fail(final)
		}
	}
}
