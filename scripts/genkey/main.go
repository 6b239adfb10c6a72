// genkey generates an Ed25519 key pair for knapsackd session tokens.
//
// Usage (run from the repo root):
//
//	go run ./scripts/genkey [-dir data]
//
// Writes <dir>/jwt_private.pem and <dir>/jwt_public.pem (mode 0600). Point
// KNAPSACK_JWT_PRIVATE_KEY and KNAPSACK_JWT_PUBLIC_KEY at them. Without
// persistent keys the server generates ephemeral ones on every start and
// all issued tokens stop validating after a restart.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ashita-ai/knapsack/internal/auth"
)

func main() {
	dir := flag.String("dir", "data", "output directory")
	flag.Parse()

	privPath := filepath.Join(*dir, "jwt_private.pem")
	pubPath := filepath.Join(*dir, "jwt_public.pem")

	if err := auth.WriteKeyPair(privPath, pubPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if errors.Is(err, auth.ErrKeyExists) {
			fmt.Fprintln(os.Stderr, "delete the existing files first if you want to rotate keys")
		}
		os.Exit(1)
	}

	fmt.Printf("wrote %s\n", privPath)
	fmt.Printf("wrote %s\n", pubPath)
}
