package wallet

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"
)

// ErrNoTerminal 需要输入密码但标准输入不是终端
var ErrNoTerminal = errors.New("keystore password required but stdin is not a terminal (set WALLET_KEYSTORE_PASSWORD)")

// PasswordFunc 读取 keystore 密码
type PasswordFunc func(prompt string) (string, error)

// PromptPassword 从终端读取密码，不回显；提示写到 stderr
func PromptPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", ErrNoTerminal
	}
	fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}

// WithPassword keystore 未配置密码时通过 ask 补齐；ask 为 nil 时原样返回
func (s KeySource) WithPassword(ask PasswordFunc) (KeySource, error) {
	if !s.NeedsPassword() || ask == nil {
		return s, nil
	}
	pw, err := ask(fmt.Sprintf("Keystore password (%s): ", s.KeystorePath))
	if err != nil {
		return s, err
	}
	s.KeystorePassword = pw
	return s, nil
}
