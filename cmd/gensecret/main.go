// Prints a random hex-encoded secret suitable for SECRET_KEY.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

const defaultSecretBytesLen = 32

func main() {
	n := pflag.IntP("bytes", "n", defaultSecretBytesLen, "Secret length in bytes")
	pflag.Parse()

	b := make([]byte, *n)

	_, err := rand.Read(b)
	if err != nil {
		fmt.Printf("error while generating secret key: %v", err)
		os.Exit(1)
	}

	fmt.Println(hex.EncodeToString(b))
}
