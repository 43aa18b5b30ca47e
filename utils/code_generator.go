// file: utils/code_generator.go
package utils

import (
	"crypto/rand"
	"math/big"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const charset = "abcdefghijklmnopqrstuvwxyz0123456789"

// RandomString 生成指定长度的随机字符串
func RandomString(length int) string {
	var sb strings.Builder
	sb.Grow(length)
	max := big.NewInt(int64(len(charset)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		sb.WriteByte(charset[n.Int64()])
	}
	return sb.String()
}

// GenerateOTP returns a zero padded numeric code of the given length.
func GenerateOTP(digits int) (string, error) {
	var sb strings.Builder
	sb.Grow(digits)
	ten := big.NewInt(10)
	for i := 0; i < digits; i++ {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		sb.WriteByte(byte('0' + n.Int64()))
	}
	return sb.String(), nil
}

// UploadKey builds "prefix/<unix-millis>-<rand>.ext" for a stored upload.
func UploadKey(prefix, filename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	name := strconv.FormatInt(now.UnixMilli(), 10) + "-" + RandomString(8) + ext
	if prefix == "" {
		return name
	}
	return strings.Trim(prefix, "/") + "/" + name
}
