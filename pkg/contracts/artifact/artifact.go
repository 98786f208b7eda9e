// Package artifact 读取 Hardhat 编译产物（artifacts/contracts/<Name>.sol/<Name>.json）
package artifact

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ErrEmptyBytecode 产物中没有创建字节码（抽象合约或接口）
var ErrEmptyBytecode = errors.New("artifact has no creation bytecode")

// Artifact Hardhat 编译产物
type Artifact struct {
	Format       string          `json:"_format"`
	ContractName string          `json:"contractName"`
	SourceName   string          `json:"sourceName"`
	RawABI       json.RawMessage `json:"abi"`
	Bytecode     string          `json:"bytecode"`

	parsedABI abi.ABI
	code      []byte
}

// Load 从文件加载产物
func Load(path string) (*Artifact, error) {
	//nolint:gosec // G304: 路径来自运维配置
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	a, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("artifact %s: %w", path, err)
	}
	return a, nil
}

// Parse 解析产物内容并校验 ABI 与字节码
func Parse(data []byte) (*Artifact, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("unmarshal artifact: %w", err)
	}
	if len(a.RawABI) == 0 {
		return nil, errors.New("artifact has no abi")
	}

	parsed, err := abi.JSON(bytes.NewReader(a.RawABI))
	if err != nil {
		return nil, fmt.Errorf("parse abi: %w", err)
	}
	a.parsedABI = parsed

	bytecode := strings.TrimSpace(a.Bytecode)
	if bytecode == "" || bytecode == "0x" {
		return nil, ErrEmptyBytecode
	}
	if !strings.HasPrefix(bytecode, "0x") {
		bytecode = "0x" + bytecode
	}
	// 未链接的库占位符形如 __$...$__，不能直接部署
	if strings.Contains(bytecode, "__") {
		return nil, errors.New("bytecode has unlinked library references")
	}
	code, err := hexutil.Decode(bytecode)
	if err != nil {
		return nil, fmt.Errorf("decode bytecode: %w", err)
	}
	a.code = code

	return &a, nil
}

// ABI 返回解析后的 ABI
func (a *Artifact) ABI() abi.ABI {
	return a.parsedABI
}

// Code 返回创建字节码
func (a *Artifact) Code() []byte {
	return a.code
}
