package alipay

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/paygate-next/internal/constants"
)

func TestSignContentReproducible(t *testing.T) {
	key := generateTestKeyPEM(t)
	content := "app_id=2088000000000001&method=alipay.trade.app.pay"

	first, err := SignContent(content, key, constants.SignTypeRSA2, constants.CharsetUTF8)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	second, err := SignContent(content, key, constants.SignTypeRSA2, constants.CharsetUTF8)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if first != second {
		t.Fatalf("signature not reproducible:\n%s\n%s", first, second)
	}

	changed, err := SignContent(content+"x", key, constants.SignTypeRSA2, constants.CharsetUTF8)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if changed == first {
		t.Fatalf("signature unchanged after content change")
	}
}

func TestSignContentRSA1UsesDifferentDigest(t *testing.T) {
	key := generateTestKeyPEM(t)
	content := "app_id=x&method=y"
	rsa2Sign, err := SignContent(content, key, constants.SignTypeRSA2, constants.CharsetUTF8)
	if err != nil {
		t.Fatalf("rsa2 sign failed: %v", err)
	}
	rsaSign, err := SignContent(content, key, constants.SignTypeRSA, constants.CharsetUTF8)
	if err != nil {
		t.Fatalf("rsa sign failed: %v", err)
	}
	if rsa2Sign == rsaSign {
		t.Fatalf("expected RSA and RSA2 signatures to differ")
	}
}

func TestSignContentGBKCharset(t *testing.T) {
	key := generateTestKeyPEM(t)
	utf8Sign, err := SignContent("subject=测试商品", key, constants.SignTypeRSA2, constants.CharsetUTF8)
	if err != nil {
		t.Fatalf("utf-8 sign failed: %v", err)
	}
	gbkSign, err := SignContent("subject=测试商品", key, constants.SignTypeRSA2, constants.CharsetGBK)
	if err != nil {
		t.Fatalf("gbk sign failed: %v", err)
	}
	if utf8Sign == gbkSign {
		t.Fatalf("expected charset to change signed bytes")
	}
}

func TestSignContentUnsupportedCharset(t *testing.T) {
	key := generateTestKeyPEM(t)
	if _, err := SignContent("a=1", key, constants.SignTypeRSA2, "big5"); !errors.Is(err, ErrSignFailed) {
		t.Fatalf("expected ErrSignFailed, got %v", err)
	}
}

func TestSignContentInvalidKey(t *testing.T) {
	if _, err := SignContent("a=1", "not-a-key", constants.SignTypeRSA2, constants.CharsetUTF8); !errors.Is(err, ErrKeyInvalid) {
		t.Fatalf("expected ErrKeyInvalid, got %v", err)
	}
	if _, err := SignContent("a=1", "", constants.SignTypeRSA2, constants.CharsetUTF8); !errors.Is(err, ErrKeyInvalid) {
		t.Fatalf("expected ErrKeyInvalid for empty key, got %v", err)
	}
}

func TestSignContentEmptyContent(t *testing.T) {
	key := generateTestKeyPEM(t)
	if _, err := SignContent("", key, constants.SignTypeRSA2, constants.CharsetUTF8); !errors.Is(err, ErrSignFailed) {
		t.Fatalf("expected ErrSignFailed, got %v", err)
	}
}

func TestParsePrivateKeyPKCS1(t *testing.T) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key failed: %v", err)
	}
	pkcs1PEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	})
	if _, err := ParsePrivateKey(string(pkcs1PEM)); err != nil {
		t.Fatalf("pkcs1 key rejected: %v", err)
	}
}

func TestParsePrivateKeyBareBody(t *testing.T) {
	raw, err := os.ReadFile("testdata/merchant_rsa_key.pem")
	if err != nil {
		t.Fatalf("read fixture failed: %v", err)
	}
	// 去掉 PEM 头尾后的裸密钥也应可解析
	body := string(raw)
	body = trimPEMArmor(body)
	if _, err := ParsePrivateKey(body); err != nil {
		t.Fatalf("bare key body rejected: %v", err)
	}
}

func trimPEMArmor(s string) string {
	var b strings.Builder
	for _, line := range strings.Split(s, "\n") {
		if line == "" || strings.HasPrefix(line, "-") {
			continue
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func generateTestKeyPEM(t *testing.T) string {
	t.Helper()
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key failed: %v", err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(privateKey)
	if err != nil {
		t.Fatalf("marshal key failed: %v", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
}
