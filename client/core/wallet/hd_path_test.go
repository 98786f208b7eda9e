package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDerivationPath(t *testing.T) {
	dp := DefaultDerivationPath()
	assert.Equal(t, BIP44Purpose, dp.Purpose)
	assert.Equal(t, EthereumCoinType, dp.CoinType)
	assert.Equal(t, "m/44'/60'/0'/0/0", dp.String())
}

func TestParseDerivationPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{"标准路径", "m/44'/60'/0'/0/0", "m/44'/60'/0'/0/0", false},
		{"无m前缀", "44'/60'/0'/0/3", "m/44'/60'/0'/0/3", false},
		{"h硬化标记", "m/44h/60h/1h/0/2", "m/44'/60'/1'/0/2", false},
		{"空路径使用默认", "", "m/44'/60'/0'/0/0", false},
		{"组件数量错误", "m/44'/60'/0'", "", true},
		{"purpose错误", "m/49'/60'/0'/0/0", "", true},
		{"缺少硬化", "m/44'/60/0'/0/0", "", true},
		{"change越界", "m/44'/60'/0'/2/0", "", true},
		{"非数字", "m/44'/60'/0'/0/x", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dp, err := ParseDerivationPath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, dp.String())
		})
	}
}

func TestDerivationPath_ToUint32Array(t *testing.T) {
	arr := DefaultDerivationPath().WithAddressIndex(7).ToUint32Array()
	assert.Equal(t, []uint32{
		44 + HardenedOffset,
		60 + HardenedOffset,
		0 + HardenedOffset,
		0,
		7,
	}, arr)
}
