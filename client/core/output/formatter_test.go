package output

import (
	"bytes"
	"errors"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type status struct {
	Address string `json:"address"`
	Count   uint64 `json:"count"`
}

func (s status) Fields() []Field {
	return []Field{
		{Key: "Address", Value: s.Address},
		{Key: "Whitelisted", Value: "3"},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	f, err = ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("yaml")
	assert.Error(t, err)
}

func TestFormatter_Print(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	data := status{Address: "0xabc", Count: 3}

	tests := []struct {
		format Format
		want   []string
	}{
		{FormatJSON, []string{`{"address":"0xabc","count":3}`}},
		{FormatPretty, []string{"\"address\": \"0xabc\"", "\"count\": 3"}},
		{FormatText, []string{"Address: 0xabc\n", "Whitelisted: 3\n"}},
		{FormatTable, []string{"Key", "Address", "0xabc", "Whitelisted"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewFormatter(tt.format, &buf).Print(data))
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
		})
	}
}

func TestFormatter_TextPlainValue(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatText, &buf).Print("0x1234"))
	assert.Equal(t, "0x1234\n", buf.String())
}

func TestFormatter_MessagesGoToLogWriter(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	var out, log bytes.Buffer
	f := NewFormatter(FormatJSON, &out)
	f.SetLogWriter(&log)

	f.PrintInfo("connecting")
	f.PrintSuccess("joined")
	f.PrintError(errors.New("boom"))
	assert.Empty(t, out.String())
	assert.Contains(t, log.String(), "connecting")
	assert.Contains(t, log.String(), "joined")
	assert.Contains(t, log.String(), "boom")

	log.Reset()
	f.SetSilent(true)
	f.PrintInfo("hidden")
	f.PrintError(errors.New("still shown"))
	assert.NotContains(t, log.String(), "hidden")
	assert.Contains(t, log.String(), "still shown")
}
