package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateNumericCode — равномерно распределённый числовой код фиксированной длины.
// Возвращаем строку с ведущими нулями ("042137"), а не число.
func GenerateNumericCode(digits int) (string, error) {
	if digits <= 0 {
		digits = 6
	}
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}
