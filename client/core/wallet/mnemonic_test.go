package wallet

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Hardhat / Foundry 默认测试助记词
const testMnemonic = "test test test test test test test test test test test junk"

func TestGenerateMnemonic(t *testing.T) {
	tests := []struct {
		name      string
		strength  MnemonicStrength
		wantWords int
		wantErr   bool
	}{
		{"12 words", Mnemonic12Words, 12, false},
		{"24 words", Mnemonic24Words, 24, false},
		{"invalid strength", MnemonicStrength(100), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mnemonic, err := GenerateMnemonic(tt.strength)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, strings.Split(mnemonic, " "), tt.wantWords)
			assert.True(t, ValidateMnemonic(mnemonic))
		})
	}
}

func TestDeriveKeyFromMnemonic(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"默认路径", "", "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"},
		{"第二个账户", "m/44'/60'/0'/0/1", "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := DeriveKeyFromMnemonic(testMnemonic, "", tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, crypto.PubkeyToAddress(key.PublicKey).Hex())
		})
	}
}

func TestDeriveKeyFromMnemonic_Normalize(t *testing.T) {
	key, err := DeriveKeyFromMnemonic("  test test test test test  test test test test test test junk ", "", "")
	require.NoError(t, err)
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", crypto.PubkeyToAddress(key.PublicKey).Hex())
}

func TestDeriveKeyFromMnemonic_Invalid(t *testing.T) {
	_, err := DeriveKeyFromMnemonic("test test test", "", "")
	assert.ErrorIs(t, err, ErrInvalidMnemonic)

	_, err = DeriveKeyFromMnemonic(testMnemonic, "", "m/44'/60'")
	assert.Error(t, err)
}

func TestDeriveKeyFromMnemonic_Passphrase(t *testing.T) {
	plain, err := DeriveKeyFromMnemonic(testMnemonic, "", "")
	require.NoError(t, err)
	salted, err := DeriveKeyFromMnemonic(testMnemonic, "salt", "")
	require.NoError(t, err)
	assert.NotEqual(t, crypto.PubkeyToAddress(plain.PublicKey), crypto.PubkeyToAddress(salted.PublicKey))
}
