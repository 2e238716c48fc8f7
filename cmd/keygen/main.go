// AngelaMos | 2026
// main.go

// keygen writes a fresh ES256 key pair for token signing.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/selfmode/selfmode-api/internal/auth"
)

func main() {
	privatePath := flag.String("private", "jwt_private.pem", "private key output path")
	publicPath := flag.String("public", "jwt_public.pem", "public key output path")
	flag.Parse()

	if err := auth.GenerateKeyPair(*privatePath, *publicPath); err != nil {
		fmt.Fprintln(os.Stderr, "keygen:", err)
		os.Exit(1)
	}

	fmt.Println("wrote", *privatePath, "and", *publicPath)
}
