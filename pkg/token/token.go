package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// secretKey 是一个全局变量，用于存储服务器在启动时生成的32字节密钥。
var secretKey []byte

// SessionPayload 定义了会话cookie中被签名的数据结构。
type SessionPayload struct {
	UserID   uint  `json:"u"`
	IssuedAt int64 `json:"t"`
}

// GenerateSecretKey 生成一个密码学安全的32字节随机密钥。
// 密钥只存在于内存中，进程重启后所有旧会话自然失效。
func GenerateSecretKey() {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	if err != nil {
		panic("无法生成安全的密钥: " + err.Error())
	}
	secretKey = key
	fmt.Println("HMAC密钥已成功生成。")
}

// SignSession 将会话载荷序列化并附加HMAC-SHA256签名。
// 返回格式为 base64(payload) + "." + base64(signature)。
func SignSession(payload SessionPayload) (string, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("无法序列化会话载荷: %w", err)
	}

	mac := hmac.New(sha256.New, secretKey)
	mac.Write(payloadBytes)
	signature := mac.Sum(nil)

	encodedPayload := base64.RawURLEncoding.EncodeToString(payloadBytes)
	encodedSignature := base64.RawURLEncoding.EncodeToString(signature)
	return encodedPayload + "." + encodedSignature, nil
}

// ParseSession 验证并解析一个会话token。
// 签名校验使用恒定时间比较，防止时序攻击。
func ParseSession(tokenStr string) (SessionPayload, bool) {
	var payload SessionPayload

	parts := strings.SplitN(tokenStr, ".", 2)
	if len(parts) != 2 {
		return payload, false
	}

	payloadBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return payload, false
	}
	actualSignature, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return payload, false
	}

	mac := hmac.New(sha256.New, secretKey)
	mac.Write(payloadBytes)
	expectedSignature := mac.Sum(nil)

	if !hmac.Equal(expectedSignature, actualSignature) {
		return payload, false
	}

	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		return payload, false
	}
	return payload, true
}
