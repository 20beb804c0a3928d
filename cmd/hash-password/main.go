package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"admissions_app_go/services"
)

// Reads the admin password from the first argument or stdin and prints the
// bcrypt hash for ADMIN_PASSWORD_HASH.
func main() {
	var password string
	if len(os.Args) > 1 {
		password = os.Args[1]
	} else {
		fmt.Fprint(os.Stderr, "Admin password: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			log.Fatalf("Failed to read password: %v", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	if err := services.ValidatePassword(password); err != nil {
		log.Fatalf("Password rejected: %v", err)
	}

	hash, err := services.HashPassword(password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	fmt.Println(hash)
}
