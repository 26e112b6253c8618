// utils/response.go
package utils

import (
	"crypto/rand"
	"math/big"

	"github.com/gin-gonic/gin"
)

// RespondWithError sends the standard JSON error envelope.
func RespondWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

const randomAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateRandomString returns a random uppercase alphanumeric string.
func GenerateRandomString(length int) string {
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(randomAlphabet))))
		if err != nil {
			panic(err)
		}
		b[i] = randomAlphabet[n.Int64()]
	}
	return string(b)
}
