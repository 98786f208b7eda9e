package wallet

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeySource_WithPassword(t *testing.T) {
	path := writeKeystore(t, "secret")

	t.Run("询问并解密", func(t *testing.T) {
		var prompts []string
		src, err := KeySource{KeystorePath: path}.WithPassword(func(prompt string) (string, error) {
			prompts = append(prompts, prompt)
			return "secret", nil
		})
		require.NoError(t, err)
		require.Len(t, prompts, 1)
		assert.Contains(t, prompts[0], path)

		key, err := src.LoadKey()
		require.NoError(t, err)
		assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", crypto.PubkeyToAddress(key.PublicKey).Hex())
	})

	t.Run("已配置密码不询问", func(t *testing.T) {
		src, err := KeySource{KeystorePath: path, KeystorePassword: "secret"}.WithPassword(func(string) (string, error) {
			t.Fatal("unexpected prompt")
			return "", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "secret", src.KeystorePassword)
	})

	t.Run("私钥来源不询问", func(t *testing.T) {
		src, err := KeySource{PrivateKey: testPrivateKey}.WithPassword(func(string) (string, error) {
			t.Fatal("unexpected prompt")
			return "", nil
		})
		require.NoError(t, err)
		assert.Equal(t, SourcePrivateKey, src.Type())
	})

	t.Run("读取失败", func(t *testing.T) {
		_, err := KeySource{KeystorePath: path}.WithPassword(func(string) (string, error) {
			return "", ErrNoTerminal
		})
		assert.True(t, errors.Is(err, ErrNoTerminal))
	})

	t.Run("无询问函数", func(t *testing.T) {
		src, err := KeySource{KeystorePath: path}.WithPassword(nil)
		require.NoError(t, err)
		assert.True(t, src.NeedsPassword())
	})
}
