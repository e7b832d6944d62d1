package main

import (
	"fmt"
	"log"
	"os"

	"brandguard-platform/utils"
)

// Generates the bcrypt hash for ADMIN_PASS_HASH from a plaintext password.
func main() {
	if len(os.Args) != 2 {
		fmt.Println("Usage: hashpass <password>")
		os.Exit(1)
	}

	hash, err := utils.HashPassword(os.Args[1], 12)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	fmt.Println(hash)
}
