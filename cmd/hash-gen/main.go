package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"heirloom.backend/pkg/crypto"
)

var (
	stdout         io.Writer = os.Stdout
	generateHashFn           = crypto.HashPassword
	fatalfFn                 = log.Fatalf
)

const minPasswordLength = 8

// resolvePassword takes the first argument, falling back to ADMIN_PASSWORD
func resolvePassword(args []string, getenv func(string) string) (string, error) {
	password := getenv("ADMIN_PASSWORD")
	if len(args) > 0 {
		password = args[0]
	}
	password = strings.TrimSpace(password)
	if password == "" {
		return "", fmt.Errorf("usage: hash-gen <password> (or set ADMIN_PASSWORD)")
	}
	if len(password) < minPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	return password, nil
}

func main() {
	password, err := resolvePassword(os.Args[1:], os.Getenv)
	if err != nil {
		fatalfFn("%v", err)
		return
	}

	hash, err := generateHashFn(password)
	if err != nil {
		fatalfFn("Failed to hash password: %v", err)
		return
	}

	_, _ = fmt.Fprintf(stdout, "Bcrypt Hash: %s\n", hash)
}
