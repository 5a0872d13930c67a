// Command tokengen prints a freshly generated bot API token. Tokens are
// minted once when a bot registers and are never regenerated
// automatically, so this runs as part of the out-of-band registration
// process.
package main

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/coinlink/exchange/pkg/envconf"
)

type tokengenConfig struct {
	Salt string `env:"TOKEN_SALT"`
}

func main() {
	token, err := generate()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error generating token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
}

func generate() (string, error) {
	cfg := new(tokengenConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}

	var random [128]byte

	_, err = rand.Read(random[:])
	if err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	mac := hmac.New(sha256.New, []byte(cfg.Salt))
	mac.Write(random[:])

	return hex.EncodeToString(mac.Sum(nil)), nil
}
